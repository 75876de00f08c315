// Package repositories persists tracks loaded by the dispatch engine in a local SQLite cache.
//
// [TrackRepository] stores one row per track URI with a seen counter and a last-seen time, so
// the CLI can list what was browsed recently or most often without a network round trip.
// Rows are soft-deleted via deleted_at and excluded from queries by default.
//
// [TrackCacheAdapter] adapts the repository to the engine's TrackCacher interface.
//
// The [NextSequence] function atomically increments per-table sequence counters kept in
// dedicated sequence tables, giving rows a stable insertion order.
package repositories
