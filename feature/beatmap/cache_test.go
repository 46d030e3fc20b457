package beatmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryIndexDualKeys(t *testing.T) {
	idx := NewMemoryIndex(time.Hour)

	set := &BeatmapSet{ID: 100, LastAPICheck: time.Now()}
	b := &Beatmap{Set: set, MD5: "abc123", ID: 741, SetID: 100}
	set.Maps = []*Beatmap{b}

	idx.PutBeatmap(b)

	// Both keys must resolve to the same object, not copies.
	assert.Same(t, b, idx.BeatmapByMD5("abc123"))
	assert.Same(t, b, idx.BeatmapByID(741))
}

func TestMemoryIndexPutSetIndexesSiblings(t *testing.T) {
	idx := NewMemoryIndex(time.Hour)

	set := &BeatmapSet{ID: 100, LastAPICheck: time.Now()}
	easy := &Beatmap{Set: set, MD5: "md5-easy", ID: 1, SetID: 100}
	hard := &Beatmap{Set: set, MD5: "md5-hard", ID: 2, SetID: 100}
	set.Maps = []*Beatmap{easy, hard}

	idx.PutSet(set)

	assert.Same(t, set, idx.Set(100))
	assert.Same(t, easy, idx.BeatmapByMD5("md5-easy"))
	assert.Same(t, hard, idx.BeatmapByID(2))
}

func TestMemoryIndexDrop(t *testing.T) {
	idx := NewMemoryIndex(time.Hour)

	set := &BeatmapSet{ID: 100, LastAPICheck: time.Now()}
	b := &Beatmap{Set: set, MD5: "abc123", ID: 741, SetID: 100}
	set.Maps = []*Beatmap{b}
	idx.PutSet(set)

	idx.DropBeatmap(b)
	assert.Nil(t, idx.BeatmapByMD5("abc123"))
	assert.Nil(t, idx.BeatmapByID(741))
	// The set entry is independent of its members.
	assert.Same(t, set, idx.Set(100))

	idx.DropSet(set)
	assert.Nil(t, idx.Set(100))
}

func TestMemoryIndexSharedPointerUpdate(t *testing.T) {
	idx := NewMemoryIndex(time.Hour)

	set := &BeatmapSet{ID: 100, LastAPICheck: time.Now()}
	b := &Beatmap{Set: set, MD5: "abc123", ID: 741, SetID: 100, Status: StatusPending}
	set.Maps = []*Beatmap{b}
	idx.PutSet(set)

	// An in-place mutation is visible through every key without re-caching.
	b.Status = StatusRanked

	assert.Equal(t, StatusRanked, idx.BeatmapByMD5("abc123").Status)
	assert.Equal(t, StatusRanked, idx.BeatmapByID(741).Status)
	assert.Equal(t, StatusRanked, idx.Set(100).Maps[0].Status)
}

func TestMemoryIndexMiss(t *testing.T) {
	idx := NewMemoryIndex(0)

	assert.Nil(t, idx.BeatmapByMD5("nothing"))
	assert.Nil(t, idx.BeatmapByID(1))
	assert.Nil(t, idx.Set(1))
}
