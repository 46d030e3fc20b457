package osuapi

import "time"

// Beatmapset is the api representation of a beatmap set, including all of
// its difficulties.
type Beatmapset struct {
	// ID is the set id assigned by the upstream server.
	ID int `json:"id"`
	// Artist is the song artist.
	Artist string `json:"artist"`
	// Title is the song title.
	Title string `json:"title"`
	// Creator is the mapper's username.
	Creator string `json:"creator"`
	// Beatmaps lists every difficulty in the set. The api may return an
	// empty list for a set that still exists; that is an authoritative
	// answer, distinct from a 404.
	Beatmaps []Beatmap `json:"beatmaps"`
}

// Beatmap is the api representation of a single difficulty.
type Beatmap struct {
	// ID is the beatmap id assigned by the upstream server.
	ID int `json:"id"`
	// BeatmapsetID is the id of the containing set.
	BeatmapsetID int `json:"beatmapset_id"`
	// Checksum is the md5 of the .osu file; it changes on every edit.
	Checksum string `json:"checksum"`
	// Version is the difficulty name.
	Version string `json:"version"`
	// Status is the upstream ranked status code.
	Status int `json:"ranked"`
	// Mode is the game mode id.
	Mode int `json:"mode_int"`
	// TotalLength is the map length in seconds.
	TotalLength int `json:"total_length"`
	// MaxCombo is the maximum achievable combo. May be absent upstream.
	MaxCombo int `json:"max_combo"`
	// BPM is the dominant tempo of the map.
	BPM float64 `json:"bpm"`
	// CS, OD, AR, HP are the four difficulty dials.
	CS float64 `json:"cs"`
	OD float64 `json:"accuracy"`
	AR float64 `json:"ar"`
	HP float64 `json:"drain"`
	// Difficulty is the calculated star rating.
	Difficulty float64 `json:"difficulty_rating"`
	// LastUpdated is the upstream last-modified timestamp.
	LastUpdated time.Time `json:"last_updated"`
}

// Lookup selects a single beatmap by one of its identities.
// Exactly one field should be set.
type Lookup struct {
	// Checksum looks the map up by its .osu file md5.
	Checksum string
	// ID looks the map up by its beatmap id.
	ID int
}
