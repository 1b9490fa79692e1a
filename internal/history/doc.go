// Package history records device connection events in SQLite.
//
// The Recorder subscribes to the event bus and appends one row per event, so
// the full connect/disconnect timeline of every camera survives restarts and
// is queryable by stable ID. Pruning by retention keeps the database bounded.
//
// History is an optional sink: nothing else in the system depends on it, and
// a write failure is logged and dropped rather than propagated back to the
// reconciliation loop.
package history
