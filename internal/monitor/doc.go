// Package monitor orchestrates detection, the registry and the event bus.
//
// The Manager is the main entry point for the system. It exposes one-shot
// operations (detect, register, list, lookup) and a background reconciliation
// loop that polls the detector, compares the result against the registry and
// drives status transitions:
//
//   - a registered camera seen by detection while marked disconnected
//     transitions to connected (on_connect + on_status_change)
//   - a registered camera absent from detection while marked connected
//     transitions to disconnected (on_disconnect + on_status_change)
//   - a registered camera seen while already connected gets its detection
//     snapshot and last-seen timestamp refreshed silently
//
// Detected cameras that were never registered are left alone: registration
// is always an explicit caller decision.
//
// The loop is resilient: a failed detection or registry read costs one cycle
// and is logged, never crashes the loop. Detection runs outside all registry
// locks so a slow platform backend cannot stall concurrent reads.
package monitor
