package beatmap

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryIndex is the process-wide associative cache for resolved beatmaps.
//
// One logical beatmap is reachable under two independent keys (md5 and id)
// and through its set; all three entries share the same *Beatmap pointer, so
// an in-place update during synchronization is visible to every holder
// without re-fetching. The index is derived, rebuildable state: the durable
// store and the upstream catalogue remain the sources of truth, so entries
// may be evicted at any time without correctness impact.
type MemoryIndex struct {
	beatmaps *gocache.Cache
	sets     *gocache.Cache
}

// CacheConfig holds configuration for the memory index.
type CacheConfig struct {
	// TTLHours is how long entries live before eviction. Zero keeps
	// entries for the process lifetime.
	TTLHours int `mapstructure:"ttl_hours" default:"24"`
}

// TTL returns the configured entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// NewMemoryIndex creates a memory index. A non-positive ttl disables
// eviction entirely.
func NewMemoryIndex(ttl time.Duration) *MemoryIndex {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl / 2
	}

	return &MemoryIndex{
		beatmaps: gocache.New(expiration, cleanup),
		sets:     gocache.New(expiration, cleanup),
	}
}

func md5Key(md5 string) string { return "md5:" + md5 }
func idKey(id int) string      { return "id:" + strconv.Itoa(id) }

// BeatmapByMD5 returns the cached beatmap for a checksum, or nil.
func (m *MemoryIndex) BeatmapByMD5(md5 string) *Beatmap {
	if v, ok := m.beatmaps.Get(md5Key(md5)); ok {
		return v.(*Beatmap)
	}
	return nil
}

// BeatmapByID returns the cached beatmap for an id, or nil.
func (m *MemoryIndex) BeatmapByID(id int) *Beatmap {
	if v, ok := m.beatmaps.Get(idKey(id)); ok {
		return v.(*Beatmap)
	}
	return nil
}

// Set returns the cached set for a set id, or nil.
func (m *MemoryIndex) Set(setID int) *BeatmapSet {
	if v, ok := m.sets.Get(strconv.Itoa(setID)); ok {
		return v.(*BeatmapSet)
	}
	return nil
}

// PutBeatmap indexes a beatmap under both of its keys.
func (m *MemoryIndex) PutBeatmap(b *Beatmap) {
	m.beatmaps.SetDefault(md5Key(b.MD5), b)
	m.beatmaps.SetDefault(idKey(b.ID), b)
}

// PutSet indexes a set and every one of its maps, so that resolving one map
// of a set makes all of its siblings cache hits.
func (m *MemoryIndex) PutSet(s *BeatmapSet) {
	m.sets.SetDefault(strconv.Itoa(s.ID), s)
	for _, b := range s.Maps {
		m.PutBeatmap(b)
	}
}

// DropBeatmap removes a beatmap from both indices.
func (m *MemoryIndex) DropBeatmap(b *Beatmap) {
	m.beatmaps.Delete(md5Key(b.MD5))
	m.beatmaps.Delete(idKey(b.ID))
}

// DropSet removes a set and all of its maps from the index.
func (m *MemoryIndex) DropSet(s *BeatmapSet) {
	m.sets.Delete(strconv.Itoa(s.ID))
	for _, b := range s.Maps {
		m.DropBeatmap(b)
	}
}
