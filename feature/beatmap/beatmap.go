package beatmap

import (
	"fmt"
	"time"

	"beatmap-manager/core/osuapi"
	"beatmap-manager/feature/beatmap/models"
)

// Beatmap is one playable difficulty of a song.
//
// A beatmap is reachable by two independent identities: its md5 checksum
// (which changes on every content edit) and its numeric id (stable for the
// map's lifetime). Both identities point at the same shared object; the
// memory index never duplicates the record under each key.
//
// A beatmap is always owned by exactly one BeatmapSet and is only ever
// created, mutated or deleted through its set's resolution and
// synchronization paths, or through explicit local edit operations.
type Beatmap struct {
	// Set is the owning set. Never nil for a cached beatmap.
	Set *BeatmapSet

	MD5         string
	ID          int
	SetID       int
	Artist      string
	Title       string
	Version     string
	Creator     string
	Filename    string
	LastUpdate  time.Time
	TotalLength int
	MaxCombo    int
	Status      RankedStatus
	// Frozen pins the ranked status against upstream synchronization.
	// It is set when a map's status is changed manually; all other fields
	// remain refreshable.
	Frozen bool
	Plays  int
	Passes int
	Mode   int
	BPM    float64
	CS     float64
	OD     float64
	AR     float64
	HP     float64
	Diff   float64
	// Server is the origin of this map's data. Maps from ServerPrivate are
	// preserved when upstream reports their set gone.
	Server models.MapServer
}

// FullName returns the full formatted name, `Artist - Title [Version]`.
func (b *Beatmap) FullName() string {
	return fmt.Sprintf("%s - %s [%s]", b.Artist, b.Title, b.Version)
}

// URL returns the canonical beatmap page url for the given domain.
func (b *Beatmap) URL(domain string) string {
	return fmt.Sprintf("https://osu.%s/b/%d", domain, b.ID)
}

// Embed returns an in-game chat embed linking to the beatmap page.
func (b *Beatmap) Embed(domain string) string {
	return fmt.Sprintf("[%s %s]", b.URL(domain), b.FullName())
}

// HasLeaderboard reports whether the map keeps a leaderboard.
func (b *Beatmap) HasLeaderboard() bool { return b.Status.HasLeaderboard() }

// AwardsRankedPP reports whether scores on the map award ranked pp.
func (b *Beatmap) AwardsRankedPP() bool { return b.Status.AwardsRankedPP() }

// makeFilename builds the canonical .osu filename for a map.
func makeFilename(artist, title, creator, version string) string {
	return fmt.Sprintf("%s - %s (%s) [%s].osu", artist, title, creator, version)
}

// applyAPIRecord overwrites the beatmap's refreshable fields from an api
// record. The numeric id is deliberately left alone: it is the diff key and
// must already be set by the caller. A frozen map keeps its status.
func (b *Beatmap) applyAPIRecord(rec osuapi.Beatmap, set *osuapi.Beatmapset) {
	b.MD5 = rec.Checksum
	b.SetID = rec.BeatmapsetID
	b.Artist = set.Artist
	b.Title = set.Title
	b.Version = rec.Version
	b.Creator = set.Creator
	b.Filename = makeFilename(set.Artist, set.Title, set.Creator, rec.Version)
	b.LastUpdate = rec.LastUpdated
	b.TotalLength = rec.TotalLength
	b.MaxCombo = rec.MaxCombo
	if !b.Frozen {
		b.Status = StatusFromOsuAPI(rec.Status)
	}
	b.Mode = rec.Mode
	b.BPM = rec.BPM
	b.CS = rec.CS
	b.OD = rec.OD
	b.AR = rec.AR
	b.HP = rec.HP
	b.Diff = rec.Difficulty
	b.Server = models.ServerOsu
}

// toRow converts the beatmap to its database row.
func (b *Beatmap) toRow() models.Map {
	return models.Map{
		MD5:         b.MD5,
		ID:          b.ID,
		Server:      b.Server,
		SetID:       b.SetID,
		Artist:      b.Artist,
		Title:       b.Title,
		Version:     b.Version,
		Creator:     b.Creator,
		Filename:    b.Filename,
		LastUpdate:  b.LastUpdate,
		TotalLength: b.TotalLength,
		MaxCombo:    b.MaxCombo,
		Status:      int(b.Status),
		Frozen:      b.Frozen,
		Plays:       b.Plays,
		Passes:      b.Passes,
		Mode:        b.Mode,
		BPM:         b.BPM,
		CS:          b.CS,
		OD:          b.OD,
		AR:          b.AR,
		HP:          b.HP,
		Diff:        b.Diff,
	}
}

// fromRow rebuilds a beatmap from its database row.
func fromRow(row models.Map, set *BeatmapSet) *Beatmap {
	b := &Beatmap{
		Set:         set,
		MD5:         row.MD5,
		ID:          row.ID,
		SetID:       row.SetID,
		Artist:      row.Artist,
		Title:       row.Title,
		Version:     row.Version,
		Creator:     row.Creator,
		Filename:    row.Filename,
		LastUpdate:  row.LastUpdate,
		TotalLength: row.TotalLength,
		MaxCombo:    row.MaxCombo,
		Status:      RankedStatus(row.Status),
		Frozen:      row.Frozen,
		Plays:       row.Plays,
		Passes:      row.Passes,
		Mode:        row.Mode,
		BPM:         row.BPM,
		CS:          row.CS,
		OD:          row.OD,
		AR:          row.AR,
		HP:          row.HP,
		Diff:        row.Diff,
		Server:      row.Server,
	}

	// Older deployments stored rows without a filename.
	if b.Filename == "" {
		b.Filename = makeFilename(b.Artist, b.Title, b.Creator, b.Version)
	}

	return b
}
