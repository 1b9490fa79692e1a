package device

import (
	"crypto/md5" //nolint:gosec // Fingerprint disambiguation, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
)

// Hardware fingerprint prefixes. The prefix encodes which identity rule
// produced the fingerprint, so fingerprints from different rules can never
// collide with each other.
const (
	fingerprintPrefixSerial  = "serial"
	fingerprintPrefixPort    = "vid-pid-port"
	fingerprintPrefixHash    = "vid-pid-hash"
	fingerprintHashHexLength = 8
)

// GenerateHardwareID produces the deterministic hardware fingerprint for
// this device.
//
// Resolution uses a strict priority order, first applicable rule wins:
//  1. Serial number, when present and non-empty.
//  2. Vendor ID + product ID + physical port path.
//  3. Vendor ID + product ID + a stable digest of the remaining metadata.
//
// The fallback rule cannot distinguish two physically distinct but
// identically-modelled cameras that expose neither a serial number nor a
// port path. This is a known limitation of the available identity signals,
// not something the resolver papers over.
func (d *CameraDevice) GenerateHardwareID() string {
	if d.SerialNumber != nil && *d.SerialNumber != "" {
		return fingerprintPrefixSerial + ":" + *d.SerialNumber
	}

	if d.PortPath != nil && *d.PortPath != "" {
		return fmt.Sprintf("%s:%s:%s:%s", fingerprintPrefixPort, d.VendorID, d.ProductID, *d.PortPath)
	}

	return fmt.Sprintf("%s:%s:%s:%s", fingerprintPrefixHash, d.VendorID, d.ProductID, d.metadataDigest())
}

// MatchesHardwareID reports whether this device resolves to the given
// fingerprint. Identity is exact string equality; there is no fuzzy matching.
func (d *CameraDevice) MatchesHardwareID(hardwareID string) bool {
	return d.GenerateHardwareID() == hardwareID
}

// metadataDigest computes a short stable digest over the non-volatile
// metadata of the device: vendor, product and label only. PlatformData and
// SystemIndex are deliberately excluded — both carry OS-assigned values
// (driver names, synthesized instance paths, enumeration order) that change
// across ports and reconnects and would fork the identity of one physical
// camera.
func (d *CameraDevice) metadataDigest() string {
	var b strings.Builder
	b.WriteString(d.VendorID)
	b.WriteByte('|')
	b.WriteString(d.ProductID)
	b.WriteByte('|')
	b.WriteString(d.Label)

	sum := md5.Sum([]byte(b.String())) //nolint:gosec // See import note
	return hex.EncodeToString(sum[:])[:fingerprintHashHexLength]
}

// stableIDFormat is the printf format for generated stable IDs.
// Zero-padded so IDs sort naturally in listings.
const stableIDFormat = "stable-cam-%03d"

// GenerateStableID allocates the next free stable ID given the set of IDs
// already present in the registry. IDs are sequential and human-readable;
// the counter retries upward on collision so an ID is never reused while
// still present.
func GenerateStableID(existing map[string]struct{}) string {
	for counter := 1; ; counter++ {
		stableID := fmt.Sprintf(stableIDFormat, counter)
		if _, taken := existing[stableID]; !taken {
			return stableID
		}
	}
}
