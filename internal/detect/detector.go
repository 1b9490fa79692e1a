package detect

import "github.com/stablecam/stablecam/internal/device"

// Logger defines the logging interface used by detection backends.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Detector enumerates the cameras currently attached to the host.
//
// Implementations are stateless between calls and safe for concurrent use.
// DetectCameras returns the full set of cameras visible right now; callers
// compare successive results to derive connect and disconnect transitions.
type Detector interface {
	// DetectCameras returns all cameras currently visible to the platform.
	// Individual devices that cannot be read are skipped; the error is
	// non-nil only when enumeration itself fails.
	DetectCameras() ([]device.CameraDevice, error)

	// PlatformName identifies the backend ("linux", "darwin" or "windows").
	PlatformName() string
}
