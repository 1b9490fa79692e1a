package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrInvalidVendorID) {
//	    // handle malformed vendor ID
//	}
var (
	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidVendorID is returned when a vendor ID is not a 4-digit hex string.
	ErrInvalidVendorID = errors.New("device: invalid vendor id")

	// ErrInvalidProductID is returned when a product ID is not a 4-digit hex string.
	ErrInvalidProductID = errors.New("device: invalid product id")

	// ErrInvalidLabel is returned when a device label is empty.
	ErrInvalidLabel = errors.New("device: invalid label")

	// ErrInvalidStatus is returned when a status value is not recognised.
	ErrInvalidStatus = errors.New("device: invalid status")
)
