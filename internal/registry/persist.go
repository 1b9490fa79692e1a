package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/stablecam/stablecam/internal/device"
)

// registryVersion is the schema tag written to (and required of) the
// registry file.
const registryVersion = "1.0"

// filePermissions is the permission mode for the registry file.
const filePermissions = 0600

// corruptBackupTimeFormat names corruption backups so repeated recoveries
// never clobber an earlier backup.
const corruptBackupTimeFormat = "20060102T150405"

// registryFile is the on-disk representation of the registry: a schema
// version tag plus a mapping from stable ID to flat device object.
type registryFile struct {
	Version string                  `json:"version"`
	Devices map[string]storedDevice `json:"devices"`
}

// storedDevice is the flat wire form of a RegisteredDevice. Serial number,
// port path and last-seen serialise as explicit nulls when absent, per the
// registry file contract; consumers must tolerate them.
type storedDevice struct {
	StableID     string         `json:"stable_id"`
	VendorID     string         `json:"vendor_id"`
	ProductID    string         `json:"product_id"`
	SerialNumber *string        `json:"serial_number"`
	PortPath     *string        `json:"port_path"`
	Label        string         `json:"label"`
	PlatformData map[string]any `json:"platform_data"`
	Status       device.Status  `json:"status"`
	RegisteredAt time.Time      `json:"registered_at"`
	LastSeen     *time.Time     `json:"last_seen"`
}

// toDevice reconstructs the detection snapshot from the stored form.
// The system index is transient and not persisted; it is refreshed by the
// reconciliation loop on the next sighting.
func (d storedDevice) toDevice() *device.CameraDevice {
	return &device.CameraDevice{
		SystemIndex:  0,
		VendorID:     d.VendorID,
		ProductID:    d.ProductID,
		SerialNumber: d.SerialNumber,
		PortPath:     d.PortPath,
		Label:        d.Label,
		PlatformData: d.PlatformData,
	}
}

// toRegistered reconstructs a full registry record from the stored form.
func (d storedDevice) toRegistered() *device.RegisteredDevice {
	return &device.RegisteredDevice{
		StableID:     d.StableID,
		DeviceInfo:   *d.toDevice(),
		Status:       d.Status,
		RegisteredAt: d.RegisteredAt,
		LastSeen:     d.LastSeen,
	}
}

// fromRegistered converts a registry record to its flat wire form.
func fromRegistered(rec *device.RegisteredDevice) storedDevice {
	return storedDevice{
		StableID:     rec.StableID,
		VendorID:     rec.DeviceInfo.VendorID,
		ProductID:    rec.DeviceInfo.ProductID,
		SerialNumber: rec.DeviceInfo.SerialNumber,
		PortPath:     rec.DeviceInfo.PortPath,
		Label:        rec.DeviceInfo.Label,
		PlatformData: rec.DeviceInfo.PlatformData,
		Status:       rec.Status,
		RegisteredAt: rec.RegisteredAt,
		LastSeen:     rec.LastSeen,
	}
}

// emptyRegistry returns a fresh registry structure with the current schema.
func emptyRegistry() *registryFile {
	return &registryFile{
		Version: registryVersion,
		Devices: make(map[string]storedDevice),
	}
}

// loadLocked reads and validates the registry file, creating an empty one if
// it does not exist. Callers must hold the store mutex.
//
// A file that cannot be parsed or fails schema validation is moved aside as
// a timestamped backup and replaced with an empty registry. Losing a
// corrupted registry is preferred to blocking all camera operations.
func (s *Store) loadLocked() (*registryFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		reg := emptyRegistry()
		if err := s.persistLocked(reg); err != nil {
			return nil, err
		}
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var reg registryFile
	if err := json.Unmarshal(data, &reg); err != nil {
		return s.recoverCorruptLocked(fmt.Errorf("%w: %w", ErrCorrupt, err))
	}
	if reg.Version != registryVersion || reg.Devices == nil {
		return s.recoverCorruptLocked(fmt.Errorf("%w: unexpected schema version %q", ErrCorrupt, reg.Version))
	}

	return &reg, nil
}

// recoverCorruptLocked moves the bad registry file aside and initialises a
// fresh empty registry in its place.
func (s *Store) recoverCorruptLocked(cause error) (*registryFile, error) {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format(corruptBackupTimeFormat))
	if err := os.Rename(s.path, backup); err != nil {
		return nil, fmt.Errorf("backing up corrupt registry: %w", err)
	}

	s.logger.Warn("registry file corrupt, reinitialised",
		"path", s.path,
		"backup", backup,
		"error", cause,
	)

	reg := emptyRegistry()
	if err := s.persistLocked(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// persistLocked writes the registry atomically: serialise to a temp file in
// the same directory, fsync it, then rename over the target. A crash at any
// point leaves either the old or the new file visible, never a torn write.
// Callers must hold the store mutex.
func (s *Store) persistLocked(reg *registryFile) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrWriteFailed, err)
	}
	tmpPath := tmp.Name()

	// On any failure below, remove the temp file so crashes never
	// accumulate stale temporaries next to the registry.
	cleanup := func(cause error) error {
		tmp.Close()           //nolint:errcheck // Best effort on error path
		os.Remove(tmpPath)    //nolint:errcheck // Best effort on error path
		return fmt.Errorf("%w: %w", ErrWriteFailed, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return nil
}

// lockFile acquires the OS advisory exclusive lock that serialises mutating
// operations across processes. The returned function releases the lock.
//
// The lock is taken on a sidecar file rather than the registry itself:
// atomic persistence replaces the registry inode on every write, which
// would silently detach a lock held on the old inode.
func (s *Store) lockFile() (func(), error) {
	lockPath := s.path + ".lock"

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %w", ErrLockFailed, err)
	}

	if err := flockExclusive(f); err != nil {
		f.Close() //nolint:errcheck // Best effort on error path
		return nil, fmt.Errorf("%w: %w", ErrLockFailed, err)
	}

	return func() {
		if err := flockUnlock(f); err != nil {
			s.logger.Error("releasing registry lock", "error", err)
		}
		f.Close() //nolint:errcheck // Lock already released
	}, nil
}
