// Package device defines the core data model for StableCam.
//
// It provides the two central types of the system and the pure hardware
// identity resolver that binds them together:
//
//   - CameraDevice: an ephemeral detection snapshot produced by a platform
//     backend on every poll. Its system index is volatile and changes across
//     reconnect/replug events.
//   - RegisteredDevice: the durable registry record binding a stable ID to a
//     hardware fingerprint, with connection status and timestamps.
//
// # Hardware fingerprints
//
// GenerateHardwareID derives a deterministic fingerprint string from a
// detection snapshot using a strict priority order: serial number first,
// then vendor/product/port-path, then vendor/product plus a stable metadata
// digest. Matching is exact string equality; two snapshots refer to the same
// physical camera exactly when their fingerprints are equal.
//
// # Usage
//
//	dev := device.CameraDevice{
//	    SystemIndex: 0,
//	    VendorID:    "046d",
//	    ProductID:   "085e",
//	    SerialNumber: &serial,
//	    Label:       "Logitech BRIO",
//	}
//	hwID := dev.GenerateHardwareID() // "serial:..."
//
// The package has no state and no dependencies outside the standard library;
// the registry, reconciler and event bus all build on it.
package device
