package models

import "time"

// MapServer identifies which server a beatmap's data is sourced from.
// Officially-sourced maps are kept in sync with the upstream catalogue;
// privately submitted maps are never touched by synchronization.
type MapServer string

const (
	// ServerOsu marks a map sourced from the official catalogue.
	ServerOsu MapServer = "osu!"
	// ServerPrivate marks a locally submitted map.
	ServerPrivate MapServer = "private"
)

// Map is the database row for a single beatmap difficulty.
// The md5 is the primary key (it is the identity the client submits scores
// against); the numeric id is unique but changes meaning across servers:
// upstream ids come from the catalogue, private ids from a local sequence
// in a disjoint range.
type Map struct {
	MD5         string    `gorm:"column:md5;primaryKey;size:32"`
	ID          int       `gorm:"column:id;uniqueIndex"`
	Server      MapServer `gorm:"column:server;size:16"`
	SetID       int       `gorm:"column:set_id;index"`
	Artist      string    `gorm:"column:artist"`
	Title       string    `gorm:"column:title"`
	Version     string    `gorm:"column:version"`
	Creator     string    `gorm:"column:creator"`
	Filename    string    `gorm:"column:filename"`
	LastUpdate  time.Time `gorm:"column:last_update"`
	TotalLength int       `gorm:"column:total_length"`
	MaxCombo    int       `gorm:"column:max_combo"`
	Status      int       `gorm:"column:status"`
	Frozen      bool      `gorm:"column:frozen"`
	Plays       int       `gorm:"column:plays"`
	Passes      int       `gorm:"column:passes"`
	Mode        int       `gorm:"column:mode"`
	BPM         float64   `gorm:"column:bpm"`
	CS          float64   `gorm:"column:cs"`
	OD          float64   `gorm:"column:od"`
	AR          float64   `gorm:"column:ar"`
	HP          float64   `gorm:"column:hp"`
	Diff        float64   `gorm:"column:diff"`
}

// TableName returns the table name for Map.
func (Map) TableName() string { return "maps" }

// Mapset is the database row for a beatmap set. Only bookkeeping lives here;
// the member maps reference the set through Map.SetID.
type Mapset struct {
	ID           int       `gorm:"column:id;primaryKey"`
	Server       MapServer `gorm:"column:server;size:16"`
	LastAPICheck time.Time `gorm:"column:last_osuapi_check"`
}

// TableName returns the table name for Mapset.
func (Mapset) TableName() string { return "mapsets" }

// Score is the database row for a submitted score. Scores reference their
// map by md5; when a map is deleted its scores must be cascade-deleted by
// the application (there is no foreign key at the storage layer).
type Score struct {
	ID     int64  `gorm:"column:id;primaryKey"`
	MapMD5 string `gorm:"column:map_md5;size:32;index"`
	UserID int    `gorm:"column:userid"`
	Score  int64  `gorm:"column:score"`
}

// TableName returns the table name for Score.
func (Score) TableName() string { return "scores" }
