package beatmap

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"beatmap-manager/feature/beatmap/models"
)

// placeholderMD5 derives a unique placeholder checksum for a freshly
// allocated private map; the real checksum replaces it once the map's
// content is uploaded.
func placeholderMD5(mapID int) string {
	sum := md5.Sum([]byte(strconv.Itoa(mapID)))
	return hex.EncodeToString(sum[:])
}

// CreateBeatmapset allocates a new privately-submitted set with the given
// number of empty difficulties. The set starts Inactive and becomes Pending
// once the submission pipeline uploads real content.
func (s *Service) CreateBeatmapset(ctx context.Context, creator string, mapCount int) (*BeatmapSet, error) {
	if mapCount <= 0 {
		return nil, fmt.Errorf("beatmap: set needs at least one difficulty, got %d", mapCount)
	}

	setID, err := s.store.NextSetID(ctx)
	if err != nil {
		return nil, err
	}

	// Ids are handed out in one block; nothing is persisted until SaveSet,
	// so asking the store again inside the loop would return the same id.
	firstMapID, err := s.store.NextMapID(ctx)
	if err != nil {
		return nil, err
	}

	set := &BeatmapSet{ID: setID, LastAPICheck: time.Now()}
	for i := 0; i < mapCount; i++ {
		mapID := firstMapID + i

		set.Maps = append(set.Maps, &Beatmap{
			Set:        set,
			MD5:        placeholderMD5(mapID),
			ID:         mapID,
			SetID:      setID,
			Creator:    creator,
			LastUpdate: time.Now(),
			Status:     StatusInactive,
			Server:     models.ServerPrivate,
		})
	}

	if err := s.store.SaveSet(ctx, set, models.ServerPrivate, nil); err != nil {
		return nil, err
	}
	s.cache.PutSet(set)

	s.logger.Info("created private beatmapset",
		zap.Int("set_id", setID),
		zap.String("creator", creator),
		zap.Int("maps", mapCount),
	)

	return set, nil
}

// DeleteInactive removes every private set of a creator that never finished
// submission, cascading score deletion the same way synchronization does.
func (s *Service) DeleteInactive(ctx context.Context, creator string) (int, error) {
	rows, err := s.store.InactiveMaps(ctx, creator)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	md5s := make([]string, 0, len(rows))
	setIDs := make(map[int]struct{})
	for _, row := range rows {
		md5s = append(md5s, row.MD5)
		setIDs[row.SetID] = struct{}{}
	}

	if err := s.store.DeleteMaps(ctx, md5s); err != nil {
		return 0, err
	}

	if s.files != nil {
		for _, row := range rows {
			if err := s.files.RemoveOsuFile(ctx, row.ID); err != nil {
				// The database rows are gone; a leftover file is
				// unreachable and harmless, so keep going.
				s.logger.Warn("failed to remove stored .osu file",
					zap.Int("map_id", row.ID),
					zap.Error(err),
				)
			}
		}
	}

	for setID := range setIDs {
		if err := s.store.DeleteMapset(ctx, setID); err != nil {
			return 0, err
		}
		if cached := s.cache.Set(setID); cached != nil {
			s.cache.DropSet(cached)
		}
	}

	s.logger.Info("deleted inactive submissions",
		zap.String("creator", creator),
		zap.Int("maps", len(md5s)),
		zap.Int("sets", len(setIDs)),
	)

	return len(md5s), nil
}
