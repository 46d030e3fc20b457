package beatmap

import (
	"strconv"
	"time"
)

// staleCap is the absolute maximum time a set is served without an upstream
// check.
const staleCap = 24 * time.Hour

// BeatmapSet is the collection of all difficulties sharing one song.
//
// Sets own their maps exclusively: a beatmap's lifetime is bounded by its
// set's, and all maps of a set are cached, persisted and synchronized
// together so they share a single LastAPICheck timestamp.
type BeatmapSet struct {
	// ID is the set id. Upstream ids and local submission ids live in
	// disjoint ranges.
	ID int
	// LastAPICheck is when the set was last reconciled against upstream.
	LastAPICheck time.Time
	// Maps is the ordered list of difficulties in the set.
	Maps []*Beatmap
}

// URL returns the canonical set page url for the given domain.
func (s *BeatmapSet) URL(domain string) string {
	return "https://osu." + domain + "/s/" + strconv.Itoa(s.ID)
}

// HasLeaderboard reports whether any map in the set keeps a leaderboard.
func (s *BeatmapSet) HasLeaderboard() bool {
	for _, b := range s.Maps {
		if b.HasLeaderboard() {
			return true
		}
	}
	return false
}

// Stale reports whether the set must be reconciled against upstream before
// being served.
//
// The refresh interval grows with the age of the content: serving slightly
// outdated metadata is cheap, upstream round trips are not, and maps that
// have not changed in years almost never change again. Starting from two
// hours, five hours are added per year since the newest map update; sets
// with a leaderboard get four times the interval (they change far less
// often); and the whole thing is capped at 24 hours.
//
// An empty set is always stale: there is nothing to serve, so a refresh
// attempt is always worthwhile.
func (s *BeatmapSet) Stale(now time.Time) bool {
	if len(s.Maps) == 0 {
		return true
	}

	var lastUpdate time.Time
	for _, b := range s.Maps {
		if b.LastUpdate.After(lastUpdate) {
			lastUpdate = b.LastUpdate
		}
	}

	days := int(now.Sub(lastUpdate).Hours() / 24)
	interval := time.Duration(float64(time.Hour) * (2 + (5.0/365.0)*float64(days)))

	if s.HasLeaderboard() {
		interval *= 4
	}
	if interval > staleCap {
		interval = staleCap
	}

	return now.After(s.LastAPICheck.Add(interval))
}
