// Package models defines the database rows backing the beatmap cache.
//
// Three tables are involved: maps (one row per difficulty, keyed by md5),
// mapsets (per-set bookkeeping, notably the last upstream check timestamp)
// and scores (dependent records that must be cascade-deleted with their map).
//
// Referential integrity between these tables is enforced by the feature's
// own cascading logic, not by storage-level constraints.
package models
