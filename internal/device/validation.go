package device

import (
	"fmt"
	"regexp"
)

// hexIDPattern matches the fixed-format USB vendor/product IDs
// (4 hex digits, e.g. "046d" or "082D").
var hexIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{4}$`)

// Validate checks that a detected device carries well-formed identity fields.
//
// Validation covers only what the identity resolver depends on: vendor and
// product IDs must be 4-digit hex strings and the label must be non-empty.
// Serial number and port path are optional by design.
//
// Returns:
//   - error: nil when valid, or a wrapped sentinel error naming the field
func (d *CameraDevice) Validate() error {
	if !hexIDPattern.MatchString(d.VendorID) {
		return fmt.Errorf("%w: %q", ErrInvalidVendorID, d.VendorID)
	}
	if !hexIDPattern.MatchString(d.ProductID) {
		return fmt.Errorf("%w: %q", ErrInvalidProductID, d.ProductID)
	}
	if d.Label == "" {
		return ErrInvalidLabel
	}
	return nil
}

// ValidateStatus checks that a status value is one of the closed set of
// connection states.
func ValidateStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return nil
}
