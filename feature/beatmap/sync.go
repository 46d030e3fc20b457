package beatmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"beatmap-manager/core/osuapi"
	"beatmap-manager/feature/beatmap/models"
)

// ErrSetMismatch is returned when an upstream set response contains a map
// belonging to a different set. This is a hard invariant violation: caching
// it would corrupt both sets, so the operation aborts instead.
var ErrSetMismatch = errors.New("beatmap: upstream set response spans multiple set ids")

// Reconciler applies the authoritative upstream state of a set onto the
// local cache and durable store.
//
// It is the only component allowed to mutate cached beatmaps: existing maps
// are updated in place so that every holder of the pointer observes the new
// data, and only genuinely new maps are allocated.
type Reconciler struct {
	store  Store
	api    Catalogue
	cache  *MemoryIndex
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store Store, api Catalogue, cache *MemoryIndex, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, api: api, cache: cache, logger: logger}
}

// Sync fetches the authoritative map list for the set and propagates adds,
// updates and deletes into the cache and the durable store.
//
// A transient upstream failure changes nothing — not even LastAPICheck, so
// the very next request retries instead of waiting out the staleness window
// — and is not reported as an error: the caller keeps serving the data it
// already has. A definitive not-found (or an authoritative empty map list)
// is different: the official maps are gone upstream, so their local rows and
// dependent score records are removed. Privately submitted maps sharing the
// set id survive either way.
func (r *Reconciler) Sync(ctx context.Context, set *BeatmapSet) error {
	rec, err := r.api.GetBeatmapset(ctx, set.ID)
	if err != nil && !errors.Is(err, osuapi.ErrNotFound) {
		r.logger.Warn("beatmapset sync failed, serving cached state",
			zap.Int("set_id", set.ID),
			zap.Error(err),
		)
		return nil
	}

	if err != nil || len(rec.Beatmaps) == 0 {
		return r.removeUpstreamMaps(ctx, set)
	}

	return r.applyDiff(ctx, set, rec)
}

// applyDiff reconciles the set against a non-empty upstream response.
// The diff is keyed by map id, not checksum: a checksum changes on every
// content edit, the id is stable.
func (r *Reconciler) applyDiff(ctx context.Context, set *BeatmapSet, rec *osuapi.Beatmapset) error {
	newMaps := make(map[int]osuapi.Beatmap, len(rec.Beatmaps))
	for _, apiMap := range rec.Beatmaps {
		if apiMap.BeatmapsetID != set.ID {
			return fmt.Errorf("%w: set %d got map %d of set %d",
				ErrSetMismatch, set.ID, apiMap.ID, apiMap.BeatmapsetID)
		}
		newMaps[apiMap.ID] = apiMap
	}

	oldMaps := make(map[int]*Beatmap, len(set.Maps))
	for _, b := range set.Maps {
		oldMaps[b.ID] = b
	}

	set.LastAPICheck = time.Now()

	updated := make([]*Beatmap, 0, len(newMaps))
	var deletedMD5s []string

	// Walk the current state: delete what upstream no longer has, update
	// in place what changed.
	for _, old := range set.Maps {
		apiMap, ok := newMaps[old.ID]
		if !ok {
			deletedMD5s = append(deletedMD5s, old.MD5)
			r.cache.DropBeatmap(old)
			continue
		}

		// Status still participates in the comparison for frozen maps:
		// the re-parse refreshes every other field and leaves the
		// pinned status alone.
		newStatus := StatusFromOsuAPI(apiMap.Status)
		if old.MD5 != apiMap.Checksum || old.Status != newStatus {
			// The md5 key changes here; the stale index entry is
			// replaced when the set is re-cached below.
			r.cache.DropBeatmap(old)
			old.applyAPIRecord(apiMap, rec)
		}
		updated = append(updated, old)
	}

	// Anything upstream has that we don't is new.
	for _, apiMap := range rec.Beatmaps {
		if _, ok := oldMaps[apiMap.ID]; ok {
			continue
		}
		b := &Beatmap{
			Set:    set,
			ID:     apiMap.ID,
			Frozen: false,
			Plays:  0,
			Passes: 0,
		}
		b.applyAPIRecord(apiMap, rec)
		updated = append(updated, b)
	}

	set.Maps = updated

	if err := r.store.SaveSet(ctx, set, models.ServerOsu, deletedMD5s); err != nil {
		return err
	}

	r.cache.PutSet(set)

	if len(deletedMD5s) > 0 {
		r.logger.Warn("removed maps deleted upstream",
			zap.Int("set_id", set.ID),
			zap.Int("deleted", len(deletedMD5s)),
			zap.Strings("md5s", deletedMD5s),
		)
	}

	return nil
}

// removeUpstreamMaps handles a definitive "this set no longer exists
// upstream": every officially-sourced map is removed along with its score
// records, private maps are kept, and LastAPICheck advances because this is
// a confirmed answer, not a failure.
func (r *Reconciler) removeUpstreamMaps(ctx context.Context, set *BeatmapSet) error {
	var kept []*Beatmap
	var deletedMD5s []string

	for _, b := range set.Maps {
		if b.Server == models.ServerOsu {
			deletedMD5s = append(deletedMD5s, b.MD5)
			r.cache.DropBeatmap(b)
			continue
		}
		kept = append(kept, b)
	}

	if err := r.store.DeleteMaps(ctx, deletedMD5s); err != nil {
		return err
	}

	set.LastAPICheck = time.Now()
	set.Maps = kept

	if len(kept) == 0 {
		if err := r.store.DeleteMapset(ctx, set.ID); err != nil {
			return err
		}
		r.cache.DropSet(set)
	} else {
		if err := r.store.SaveSet(ctx, set, models.ServerPrivate, nil); err != nil {
			return err
		}
		r.cache.PutSet(set)
	}

	if len(deletedMD5s) > 0 {
		r.logger.Warn("set gone upstream, removed official maps",
			zap.Int("set_id", set.ID),
			zap.Int("deleted", len(deletedMD5s)),
			zap.Int("kept_private", len(kept)),
			zap.Strings("md5s", deletedMD5s),
		)
	}

	return nil
}
