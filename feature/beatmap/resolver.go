package beatmap

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"beatmap-manager/core/osuapi"
	"beatmap-manager/feature/beatmap/models"
)

// Catalogue is the upstream authority for beatmap metadata.
// Implementations must return osuapi.ErrNotFound for a definitive miss and
// any other error for transient trouble; the two are handled very
// differently (see Reconciler).
type Catalogue interface {
	LookupBeatmap(ctx context.Context, q osuapi.Lookup) (*osuapi.Beatmap, error)
	GetBeatmapset(ctx context.Context, setID int) (*osuapi.Beatmapset, error)
	GetOsuFile(ctx context.Context, beatmapID int) ([]byte, error)
}

// Resolver answers beatmap lookups through three tiers: the in-process
// memory index, the durable store and the upstream catalogue. Each tier down
// is an order of magnitude slower, so results always populate the tiers
// above them.
//
// Individual map lookups resolve through their owning set: a miss triggers a
// whole-set fetch, which caches every sibling difficulty for free and keeps
// one synchronization timestamp per set.
type Resolver struct {
	cache  *MemoryIndex
	store  Store
	api    Catalogue
	rec    *Reconciler
	logger *zap.Logger

	// sf collapses concurrent fetches and syncs of the same set into one
	// upstream call; later arrivals wait for the first.
	sf singleflight.Group
}

// NewResolver wires the three tiers together.
func NewResolver(cache *MemoryIndex, store Store, api Catalogue, logger *zap.Logger) *Resolver {
	return &Resolver{
		cache:  cache,
		store:  store,
		api:    api,
		rec:    NewReconciler(store, api, cache, logger),
		logger: logger,
	}
}

// ResolveByMD5 fetches a beatmap by checksum from the fastest tier that has
// it. Pass a positive knownSetID to skip the set-id discovery step (the game
// client often knows it already). Returns nil without error when the map
// does not exist anywhere.
func (r *Resolver) ResolveByMD5(ctx context.Context, md5 string, knownSetID int) (*Beatmap, error) {
	if b := r.cache.BeatmapByMD5(md5); b != nil {
		if err := r.refreshIfStale(ctx, b.Set); err != nil {
			return nil, err
		}
		return r.cache.BeatmapByMD5(md5), nil
	}

	setID := knownSetID
	if setID <= 0 {
		row, err := r.store.MapByMD5(ctx, md5)
		if err != nil {
			return nil, err
		}
		if row != nil {
			setID = row.SetID
		} else {
			rec, err := r.api.LookupBeatmap(ctx, osuapi.Lookup{Checksum: md5})
			if errors.Is(err, osuapi.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			setID = rec.BeatmapsetID
		}
	}

	if _, err := r.ResolveSet(ctx, setID); err != nil {
		return nil, err
	}

	// The set fetch populated the index; a remaining miss means the md5
	// is not part of the set anymore (outdated client copy).
	return r.cache.BeatmapByMD5(md5), nil
}

// ResolveByID fetches a beatmap by id from the fastest tier that has it.
// Returns nil without error when the map does not exist anywhere.
func (r *Resolver) ResolveByID(ctx context.Context, id int) (*Beatmap, error) {
	if b := r.cache.BeatmapByID(id); b != nil {
		if err := r.refreshIfStale(ctx, b.Set); err != nil {
			return nil, err
		}
		return r.cache.BeatmapByID(id), nil
	}

	var setID int
	row, err := r.store.MapByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row != nil {
		setID = row.SetID
	} else {
		rec, err := r.api.LookupBeatmap(ctx, osuapi.Lookup{ID: id})
		if errors.Is(err, osuapi.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		setID = rec.BeatmapsetID
	}

	if _, err := r.ResolveSet(ctx, setID); err != nil {
		return nil, err
	}

	return r.cache.BeatmapByID(id), nil
}

// ResolveSet fetches a whole set from the fastest tier that has it,
// synchronizing it first when stale. Returns nil without error when the set
// is absent from all three tiers.
func (r *Resolver) ResolveSet(ctx context.Context, setID int) (*BeatmapSet, error) {
	if s := r.cache.Set(setID); s != nil {
		if err := r.refreshIfStale(ctx, s); err != nil {
			return nil, err
		}
		return r.cache.Set(setID), nil
	}

	v, err, _ := r.sf.Do("set:"+strconv.Itoa(setID), func() (any, error) {
		// Double-check after winning the flight; a concurrent resolve
		// may have populated the index while we waited.
		if s := r.cache.Set(setID); s != nil {
			return s, nil
		}
		return r.loadSet(ctx, setID)
	})
	if err != nil {
		return nil, err
	}

	set, _ := v.(*BeatmapSet)
	return set, nil
}

// refreshIfStale synchronizes a cached set when its staleness window has
// passed. Concurrent refreshes of the same set collapse into one.
func (r *Resolver) refreshIfStale(ctx context.Context, set *BeatmapSet) error {
	if !set.Stale(time.Now()) {
		return nil
	}

	_, err, _ := r.sf.Do("sync:"+strconv.Itoa(set.ID), func() (any, error) {
		if !set.Stale(time.Now()) {
			return nil, nil
		}
		return nil, r.rec.Sync(ctx, set)
	})
	return err
}

// loadSet walks the durable store and then the upstream catalogue.
func (r *Resolver) loadSet(ctx context.Context, setID int) (*BeatmapSet, error) {
	lastCheck, err := r.store.SetLastCheck(ctx, setID)
	if err != nil {
		return nil, err
	}

	if lastCheck == nil {
		// Not stored locally; this is the live-fetch path and the
		// result is fresh by definition, no staleness check needed.
		return r.fetchSetFromAPI(ctx, setID)
	}

	rows, err := r.store.MapsBySet(ctx, setID)
	if err != nil {
		return nil, err
	}

	set := &BeatmapSet{ID: setID, LastAPICheck: *lastCheck}
	for _, row := range rows {
		set.Maps = append(set.Maps, fromRow(row, set))
	}

	if set.Stale(time.Now()) {
		if err := r.rec.Sync(ctx, set); err != nil {
			return nil, err
		}
		if len(set.Maps) == 0 {
			// Confirmed gone upstream with nothing local left.
			return nil, nil
		}
		return set, nil
	}

	r.cache.PutSet(set)
	return set, nil
}

// fetchSetFromAPI constructs, persists and caches a set from a live
// catalogue response. Statuses of maps already frozen in the store are
// carried over so a manual override survives a cache wipe.
func (r *Resolver) fetchSetFromAPI(ctx context.Context, setID int) (*BeatmapSet, error) {
	rec, err := r.api.GetBeatmapset(ctx, setID)
	if errors.Is(err, osuapi.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rec.Beatmaps) == 0 {
		return nil, nil
	}

	frozen, err := r.store.FrozenStatuses(ctx, setID)
	if err != nil {
		return nil, err
	}

	set := &BeatmapSet{ID: setID, LastAPICheck: time.Now()}
	for _, apiMap := range rec.Beatmaps {
		if apiMap.BeatmapsetID != setID {
			return nil, ErrSetMismatch
		}

		b := &Beatmap{Set: set, ID: apiMap.ID}
		if status, ok := frozen[apiMap.ID]; ok {
			b.Status = status
			b.Frozen = true
		}
		b.applyAPIRecord(apiMap, rec)
		set.Maps = append(set.Maps, b)
	}

	if err := r.store.SaveSet(ctx, set, models.ServerOsu, nil); err != nil {
		return nil, err
	}

	r.cache.PutSet(set)
	r.logger.Info("cached beatmapset from upstream",
		zap.Int("set_id", setID),
		zap.Int("maps", len(set.Maps)),
	)

	return set, nil
}
