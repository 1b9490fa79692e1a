package registry

import "errors"

// Domain errors for the registry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, registry.ErrNotFound) {
//	    // handle unknown stable ID
//	}
var (
	// ErrNotFound is returned when a stable ID or hardware fingerprint has
	// no matching record.
	ErrNotFound = errors.New("registry: device not found")

	// ErrCorrupt indicates the registry file failed parsing or schema
	// validation. Recovery (backup + reinitialise) is automatic; this error
	// only surfaces if the recovery itself fails.
	ErrCorrupt = errors.New("registry: file corrupt")

	// ErrWriteFailed is returned when a mutating operation could not be
	// persisted. The in-memory and on-disk state are left unchanged.
	ErrWriteFailed = errors.New("registry: write failed")

	// ErrLockFailed is returned when the cross-process file lock cannot be
	// acquired or released.
	ErrLockFailed = errors.New("registry: file lock failed")
)
