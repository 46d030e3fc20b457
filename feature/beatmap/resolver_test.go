package beatmap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"beatmap-manager/core/osuapi"
	"beatmap-manager/feature/beatmap/models"
)

func newTestResolver() (*Resolver, *memStore, *fakeCatalogue, *MemoryIndex) {
	store := newMemStore()
	api := newFakeCatalogue()
	cache := NewMemoryIndex(0)
	return NewResolver(cache, store, api, zap.NewNop()), store, api, cache
}

func TestResolveByMD5CacheHit(t *testing.T) {
	r, _, api, cache := newTestResolver()

	now := time.Now()
	b := &Beatmap{MD5: "md5-1", ID: 1, Status: StatusRanked, Server: models.ServerOsu, LastUpdate: now.Add(-time.Hour)}
	set := testSet(100, now, b)
	cache.PutSet(set)

	got, err := r.ResolveByMD5(context.Background(), "md5-1", -1)
	assert.NoError(t, err)
	assert.Same(t, b, got)

	// A fresh cache hit never leaves the process.
	assert.Equal(t, 0, api.setCallCount())
	assert.Equal(t, 0, api.lookupCallCount())
}

func TestResolveByMD5FromStore(t *testing.T) {
	r, store, api, cache := newTestResolver()

	now := time.Now()
	row := models.Map{
		MD5: "md5-1", ID: 1, SetID: 100, Server: models.ServerOsu,
		Status: int(StatusRanked), LastUpdate: now.Add(-time.Hour),
		Artist: "Artist", Title: "Title", Version: "Hard", Creator: "Creator",
	}
	sibling := models.Map{
		MD5: "md5-2", ID: 2, SetID: 100, Server: models.ServerOsu,
		Status: int(StatusRanked), LastUpdate: now.Add(-time.Hour),
	}
	store.seed(row, now, models.ServerOsu)
	store.seed(sibling, now, models.ServerOsu)

	got, err := r.ResolveByMD5(context.Background(), "md5-1", -1)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "Artist - Title [Hard]", got.FullName())

	// The whole set was loaded, so the sibling is now a cache hit.
	assert.NotNil(t, cache.BeatmapByMD5("md5-2"))
	assert.Equal(t, 0, api.setCallCount())
}

func TestResolveByMD5FromAPI(t *testing.T) {
	r, store, api, cache := newTestResolver()

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-1", Status: 1, Version: "Easy"},
		osuapi.Beatmap{ID: 2, BeatmapsetID: 100, Checksum: "md5-2", Status: 1, Version: "Hard"},
	)

	got, err := r.ResolveByMD5(context.Background(), "md5-1", -1)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, models.ServerOsu, got.Server)

	// One lookup to discover the set id, one set fetch; the result landed
	// in both lower tiers.
	assert.Equal(t, 1, api.lookupCallCount())
	assert.Equal(t, 1, api.setCallCount())
	assert.True(t, store.hasMap("md5-1"))
	assert.True(t, store.hasMap("md5-2"))

	// Resolving the sibling afterwards is free.
	sibling, err := r.ResolveByMD5(context.Background(), "md5-2", -1)
	assert.NoError(t, err)
	assert.NotNil(t, sibling)
	assert.Equal(t, 1, api.setCallCount())
	assert.Same(t, sibling, cache.BeatmapByMD5("md5-2"))
}

func TestResolveByMD5KnownSetSkipsLookup(t *testing.T) {
	r, _, api, _ := newTestResolver()

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-1", Status: 1},
	)

	got, err := r.ResolveByMD5(context.Background(), "md5-1", 100)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 0, api.lookupCallCount())
	assert.Equal(t, 1, api.setCallCount())
}

func TestResolveByMD5NotFound(t *testing.T) {
	r, _, api, _ := newTestResolver()

	got, err := r.ResolveByMD5(context.Background(), "nothing", -1)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, api.lookupCallCount())
}

func TestResolveByMD5ColdTransientFailure(t *testing.T) {
	r, _, api, _ := newTestResolver()
	api.err = errors.New("upstream timeout")

	// With nothing cached there is no stale data to fall back on.
	got, err := r.ResolveByMD5(context.Background(), "md5-1", -1)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestResolveByID(t *testing.T) {
	r, _, api, cache := newTestResolver()

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-1", Status: 1},
	)

	got, err := r.ResolveByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "md5-1", got.MD5)
	assert.Same(t, got, cache.BeatmapByID(1))

	missing, err := r.ResolveByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResolveSetNotFound(t *testing.T) {
	r, _, _, _ := newTestResolver()

	set, err := r.ResolveSet(context.Background(), 100)
	assert.NoError(t, err)
	assert.Nil(t, set)
}

func TestResolveStaleSetSyncsBeforeServing(t *testing.T) {
	r, store, api, _ := newTestResolver()

	staleCheck := time.Now().Add(-48 * time.Hour)
	store.seed(models.Map{
		MD5: "md5-old", ID: 1, SetID: 100, Server: models.ServerOsu,
		Status: int(StatusPending), LastUpdate: staleCheck,
	}, staleCheck, models.ServerOsu)

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-new", Status: 1, Version: "Hard"},
	)

	set, err := r.ResolveSet(context.Background(), 100)
	assert.NoError(t, err)
	assert.NotNil(t, set)
	assert.Equal(t, 1, api.setCallCount())

	// The stale row was reconciled before anything was served.
	assert.Len(t, set.Maps, 1)
	assert.Equal(t, "md5-new", set.Maps[0].MD5)
	assert.Equal(t, StatusRanked, set.Maps[0].Status)
	assert.True(t, store.hasMap("md5-new"))
	assert.False(t, store.hasMap("md5-old"))
}

func TestResolveStaleCacheHitRefreshes(t *testing.T) {
	r, _, api, cache := newTestResolver()

	staleCheck := time.Now().Add(-48 * time.Hour)
	b := &Beatmap{MD5: "md5-old", ID: 1, Status: StatusPending, Server: models.ServerOsu, LastUpdate: staleCheck}
	set := testSet(100, staleCheck, b)
	cache.PutSet(set)

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-new", Status: 1},
	)

	got, err := r.ResolveByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "md5-new", got.MD5)
	assert.Equal(t, 1, api.setCallCount())
}

func TestResolveStaleCacheHitServesThroughOutage(t *testing.T) {
	r, _, api, cache := newTestResolver()

	staleCheck := time.Now().Add(-48 * time.Hour)
	b := &Beatmap{MD5: "md5-1", ID: 1, Status: StatusRanked, Server: models.ServerOsu, LastUpdate: staleCheck}
	set := testSet(100, staleCheck, b)
	cache.PutSet(set)

	api.err = errors.New("upstream timeout")

	// Stale but present beats unavailable.
	got, err := r.ResolveByMD5(context.Background(), "md5-1", -1)
	assert.NoError(t, err)
	assert.Same(t, b, got)
}

func TestFetchSetFromAPICarriesFrozenStatus(t *testing.T) {
	r, store, api, _ := newTestResolver()

	// A frozen row survives in the store while the cache and set row are
	// gone, the state after a deploy with a wiped mapset table.
	store.seedMapOnly(models.Map{
		MD5: "md5-stale", ID: 1, SetID: 100, Server: models.ServerOsu,
		Status: int(StatusLoved), Frozen: true,
	})

	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-new", Status: 1},
		osuapi.Beatmap{ID: 2, BeatmapsetID: 100, Checksum: "md5-2", Status: 1},
	)

	set, err := r.ResolveSet(context.Background(), 100)
	assert.NoError(t, err)
	assert.NotNil(t, set)
	assert.Len(t, set.Maps, 2)

	// The manual override outlives the cache wipe.
	assert.Equal(t, StatusLoved, set.Maps[0].Status)
	assert.True(t, set.Maps[0].Frozen)
	assert.Equal(t, StatusRanked, set.Maps[1].Status)
	assert.False(t, set.Maps[1].Frozen)
}

func TestResolveByMD5OutdatedCopy(t *testing.T) {
	r, _, api, _ := newTestResolver()

	// The client submits a checksum the set no longer contains; the lookup
	// resolves the set id, but the fetched set holds only the new version.
	api.sets[100] = apiSet(100,
		osuapi.Beatmap{ID: 1, BeatmapsetID: 100, Checksum: "md5-current", Status: 1},
	)

	got, err := r.ResolveByMD5(context.Background(), "md5-outdated", 100)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
