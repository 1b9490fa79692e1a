package device

import "time"

// CameraDevice represents a USB camera as reported by a platform detection
// backend. It is ephemeral: a fresh set is produced on every detection pass,
// and the system index is only valid until the next reconnect.
type CameraDevice struct {
	// SystemIndex is the OS-assigned camera slot (e.g. the N in /dev/videoN).
	// Not stable across reconnects or replug events.
	SystemIndex int `json:"system_index"`

	// VendorID and ProductID are fixed-format lowercase hex strings (e.g. "046d").
	VendorID  string `json:"vendor_id"`
	ProductID string `json:"product_id"`

	// SerialNumber is the most reliable identity signal when present.
	SerialNumber *string `json:"serial_number"`

	// PortPath is the physical USB topology path (e.g. "1-1.4").
	// May change if the camera is moved to another port.
	PortPath *string `json:"port_path"`

	// Label is a human-readable device name, informational only.
	Label string `json:"label"`

	// PlatformData holds backend-specific extra fields. Never used for identity.
	PlatformData map[string]any `json:"platform_data"`
}

// DeepCopy creates a complete independent copy of the CameraDevice.
// The platform data map is cloned so modifications to the copy do not
// affect the original.
func (d *CameraDevice) DeepCopy() *CameraDevice {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields
	cpy.PlatformData = deepCopyMap(d.PlatformData)

	// Pointer fields (*string) don't need deep copy because strings are
	// immutable in Go.
	return &cpy
}

// RegisteredDevice represents a camera in the persistent registry.
//
// It binds a durable stable ID to the most recent hardware snapshot and
// tracks connection status over time.
type RegisteredDevice struct {
	// StableID is the durable caller-facing identity (e.g. "stable-cam-001").
	// Unique within a registry, assigned once, never reassigned to a
	// different hardware fingerprint.
	StableID string `json:"stable_id"`

	// DeviceInfo is the most recent detection snapshot for this camera.
	// Refreshed on every successful match.
	DeviceInfo CameraDevice `json:"device_info"`

	// Status is the current connection state.
	Status Status `json:"status"`

	// RegisteredAt is set exactly once, at first registration.
	RegisteredAt time.Time `json:"registered_at"`

	// LastSeen is updated whenever the device is observed connected.
	LastSeen *time.Time `json:"last_seen"`
}

// DeepCopy creates a complete independent copy of the RegisteredDevice.
// Callers can safely modify the result without affecting registry state.
func (r *RegisteredDevice) DeepCopy() *RegisteredDevice {
	if r == nil {
		return nil
	}

	cpy := *r
	cpy.DeviceInfo = *r.DeviceInfo.DeepCopy()

	if r.LastSeen != nil {
		ts := *r.LastSeen
		cpy.LastSeen = &ts
	}

	return &cpy
}

// HardwareID returns the hardware fingerprint for this registered device,
// computed from the stored device snapshot.
func (r *RegisteredDevice) HardwareID() string {
	return r.DeviceInfo.GenerateHardwareID()
}

// IsConnected reports whether the device is currently connected.
func (r *RegisteredDevice) IsConnected() bool {
	return r.Status == StatusConnected
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy by value
		return v
	}
}

// Status represents the connection state of a registered device.
type Status string

// Status constants.
const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{StatusConnected, StatusDisconnected, StatusError}
}

// Valid reports whether the status is one of the recognised values.
func (s Status) Valid() bool {
	switch s {
	case StatusConnected, StatusDisconnected, StatusError:
		return true
	default:
		return false
	}
}
