// Package registry provides the durable stable-ID store for StableCam.
//
// The store maps stable IDs to registered cameras and is the single owner of
// all record mutation: status transitions, snapshot refreshes and new
// registrations all go through it, and every mutating operation is durable
// before it returns.
//
// # Persistence
//
// State lives in one JSON file:
//
//	{
//	  "version": "1.0",
//	  "devices": {
//	    "stable-cam-001": { "stable_id": "...", "vendor_id": "...", ... }
//	  }
//	}
//
// Writes are atomic — content goes to a temp file in the same directory,
// is fsynced, then renamed over the target — so readers never observe a
// half-written file. Cross-process access is serialised with an advisory
// exclusive lock on a sidecar file; in-process access with a mutex.
//
// # Corruption recovery
//
// A registry file that fails parsing or schema validation is moved aside as
// a timestamped ".corrupt-<ts>" backup and replaced with a fresh empty
// registry. This trades strict durability for availability: losing a
// corrupted registry is preferred to blocking all camera operations.
//
// # Identity semantics
//
// Exactly one record exists per hardware fingerprint. Register is idempotent:
// re-registering a known fingerprint refreshes the record and returns the
// existing stable ID. Stable IDs are never reassigned to a different
// fingerprint, and records are never deleted implicitly.
package registry
