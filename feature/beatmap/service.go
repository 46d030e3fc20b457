package beatmap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service exposes the beatmap feature's operations to handlers and other
// features: tiered resolution, manual status overrides and the private
// submission slice.
type Service struct {
	resolver *Resolver
	store    Store
	cache    *MemoryIndex
	files    *FileManager
	domain   string
	logger   *zap.Logger
}

// NewService creates a beatmap service.
func NewService(resolver *Resolver, store Store, cache *MemoryIndex, files *FileManager, domain string, logger *zap.Logger) *Service {
	return &Service{
		resolver: resolver,
		store:    store,
		cache:    cache,
		files:    files,
		domain:   domain,
		logger:   logger,
	}
}

// ResolveByMD5 resolves a beatmap by checksum. knownSetID may be <= 0.
func (s *Service) ResolveByMD5(ctx context.Context, md5 string, knownSetID int) (*Beatmap, error) {
	return s.resolver.ResolveByMD5(ctx, md5, knownSetID)
}

// ResolveByID resolves a beatmap by id.
func (s *Service) ResolveByID(ctx context.Context, id int) (*Beatmap, error) {
	return s.resolver.ResolveByID(ctx, id)
}

// ResolveSet resolves a whole set by id.
func (s *Service) ResolveSet(ctx context.Context, setID int) (*BeatmapSet, error) {
	return s.resolver.ResolveSet(ctx, setID)
}

// SetStatus manually overrides a map's ranked status and freezes it, so
// upstream synchronization will refresh everything except the status from
// then on.
func (s *Service) SetStatus(ctx context.Context, id int, status RankedStatus) error {
	b, err := s.resolver.ResolveByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("beatmap: map %d not found", id)
	}

	if err := s.store.UpdateMapStatus(ctx, id, status, true); err != nil {
		return err
	}

	// Every cached holder shares this pointer; no re-cache needed.
	b.Status = status
	b.Frozen = true

	s.logger.Info("manual status override",
		zap.Int("map_id", id),
		zap.String("status", status.String()),
	)

	return nil
}

// EnsureOsuFile makes the map's .osu file available in object storage.
func (s *Service) EnsureOsuFile(ctx context.Context, beatmapID int, expectedMD5 string) (bool, error) {
	return s.files.EnsureOsuFile(ctx, beatmapID, expectedMD5)
}

// Domain returns the public domain used for canonical urls.
func (s *Service) Domain() string { return s.domain }
