// Package store persists contributions in SQLite.
//
// The schema is managed with embedded goose migrations. Saves use an
// optimistic version check: a contribution saved from a stale copy fails
// with ConcurrencyConflictError instead of overwriting newer data. Parsed
// disc structure lives in relational tables; raw logs live in the blob
// store and only their path is recorded here.
package store
