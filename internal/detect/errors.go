package detect

import "errors"

// Domain errors for the detect package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, detect.ErrDetectionFailed) {
//	    // enumeration itself failed; individual device errors are skipped
//	}
var (
	// ErrDetectionFailed indicates platform camera enumeration failed as a
	// whole. Per-device extraction failures do not produce this error; those
	// devices are skipped.
	ErrDetectionFailed = errors.New("detect: camera detection failed")

	// ErrDeviceNotFound is returned when a requested system index has no
	// corresponding camera.
	ErrDeviceNotFound = errors.New("detect: device not found")
)
