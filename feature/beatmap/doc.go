// Package beatmap implements tiered beatmap resolution and lifecycle
// management.
//
// Lookups by checksum, map id or set id resolve through three tiers:
//  1. MemoryIndex: in-process cache, dual-keyed by md5 and id.
//  2. Store (MySQL): the durable copy of every map ever resolved.
//  3. Catalogue (osu! API v2): the upstream authority, rate limited.
//
// Results always populate the tiers above the one that answered, and a
// single map lookup resolves the whole owning set so sibling difficulties
// become cache hits for free.
//
// # Synchronization
//
// Stored sets carry a per-set staleness window that grows with the age of
// the set (old ranked maps barely change; fresh pending maps change daily).
// A stale set is re-fetched and diffed against the upstream snapshot by the
// Reconciler: updated maps are mutated in place, vanished maps are deleted
// together with their scores, new difficulties are added. Maps with a
// frozen status keep it across syncs.
//
// # Private submissions
//
// Maps submitted directly to this server live in an id namespace disjoint
// from upstream's and are never touched by synchronization.
//
// # Components
//
//   - Resolver: the tiered lookup path, single-flighted per set.
//   - Reconciler: upstream diffing and cascading deletes.
//   - FileManager: keeps raw .osu files available in object storage.
//   - Service: the feature's operations surface (resolution, status
//     overrides, submissions).
//   - Handler: HTTP endpoints.
//
// # HTTP Endpoints
//
//   - GET /maps/md5/:md5 : Resolve a beatmap by checksum.
//   - GET /maps/:id : Resolve a beatmap by id.
//   - PATCH /maps/:id/status : Manually override and freeze a map's status.
//   - GET /mapsets/:id : Resolve a whole set.
//   - POST /mapsets : Allocate a private submission set.
package beatmap
