package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stablecam/stablecam/internal/device"
)

// Default registry location, relative to the user's home directory.
const (
	defaultRegistryDir  = ".stablecam"
	defaultRegistryFile = "registry.json"

	// dirPermissions is the permission mode for the registry directory.
	dirPermissions = 0750
)

// Logger defines the logging interface used by the Store.
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

// Config contains registry store configuration options.
type Config struct {
	// Path is the filesystem path to the registry JSON file.
	// Empty means ~/.stablecam/registry.json.
	Path string
}

// Store is the durable mapping from stable IDs to registered cameras.
//
// It is backed by a single JSON file written atomically (temp file + rename)
// so a crash mid-write never leaves a half-written registry visible. Records
// are never silently deleted: a camera that vanishes from detection merely
// transitions to disconnected.
//
// Thread Safety: an in-process mutex serialises all record access within the
// process; an OS advisory exclusive lock on the registry file serialises
// mutating operations across processes. Neither lock is ever held across a
// call into detection or event callbacks.
type Store struct {
	path   string
	mu     sync.Mutex
	logger Logger
}

// DefaultPath returns the default registry file location
// (~/.stablecam/registry.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, defaultRegistryDir, defaultRegistryFile), nil
}

// New creates a registry store backed by the configured file.
//
// The registry directory is created if missing, and an empty registry file
// is initialised on first use. An existing file that is unreadable or fails
// schema validation is moved aside as a timestamped backup and replaced with
// a fresh empty registry; this is reported as a warning, not a failure, so a
// corrupted registry never blocks camera operations.
//
// Parameters:
//   - cfg: Store configuration (path; empty selects the default location)
//
// Returns:
//   - *Store: Store ready for use
//   - error: If the directory cannot be created or the file cannot be written
func New(cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	s := &Store{
		path:   path,
		logger: noopLogger{},
	}

	// Touch the file so later opens (and cross-process locks) have a target,
	// and surface corruption recovery at startup rather than first use.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.loadLocked(); err != nil {
		return nil, err
	}

	return s, nil
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Path returns the registry file location.
func (s *Store) Path() string {
	return s.path
}

// Register assigns a stable ID to a detected camera.
//
// Registration is idempotent per hardware fingerprint: if a record with the
// same fingerprint already exists, its device snapshot, status and last-seen
// timestamp are refreshed and the existing stable ID is returned. Otherwise
// a new record is created with the next free sequential ID.
//
// Parameters:
//   - dev: The detected camera to register
//
// Returns:
//   - string: The stable ID (existing or newly allocated)
//   - bool: true if a new record was created
//   - error: Validation or persistence failure; on failure no state changes
func (s *Store) Register(dev device.CameraDevice) (string, bool, error) {
	if err := dev.Validate(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile()
	if err != nil {
		return "", false, err
	}
	defer unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return "", false, err
	}

	now := time.Now().UTC()
	hardwareID := dev.GenerateHardwareID()

	// Existing fingerprint: refresh in place, keep the stable ID.
	for id, stored := range reg.Devices {
		if stored.toDevice().MatchesHardwareID(hardwareID) {
			rec := stored.toRegistered()
			rec.DeviceInfo = *dev.DeepCopy()
			rec.Status = device.StatusConnected
			rec.LastSeen = &now
			reg.Devices[id] = fromRegistered(rec)

			if err := s.persistLocked(reg); err != nil {
				return "", false, err
			}
			s.logger.Debug("re-registered existing device", "stable_id", id, "hardware_id", hardwareID)
			return id, false, nil
		}
	}

	existing := make(map[string]struct{}, len(reg.Devices))
	for id := range reg.Devices {
		existing[id] = struct{}{}
	}
	stableID := device.GenerateStableID(existing)

	reg.Devices[stableID] = fromRegistered(&device.RegisteredDevice{
		StableID:     stableID,
		DeviceInfo:   *dev.DeepCopy(),
		Status:       device.StatusConnected,
		RegisteredAt: now,
		LastSeen:     &now,
	})

	if err := s.persistLocked(reg); err != nil {
		return "", false, err
	}

	s.logger.Info("device registered", "stable_id", stableID, "hardware_id", hardwareID, "label", dev.Label)
	return stableID, true, nil
}

// GetAll returns a snapshot of every registered device.
// Ordering is not meaningful; callers must not rely on it.
func (s *Store) GetAll() ([]device.RegisteredDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	devices := make([]device.RegisteredDevice, 0, len(reg.Devices))
	for _, stored := range reg.Devices {
		devices = append(devices, *stored.toRegistered())
	}
	return devices, nil
}

// GetByID returns the registered device with the given stable ID.
//
// Returns:
//   - *device.RegisteredDevice: An independent snapshot of the record
//   - error: ErrNotFound if the stable ID is unknown
func (s *Store) GetByID(stableID string) (*device.RegisteredDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	stored, ok := reg.Devices[stableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, stableID)
	}
	return stored.toRegistered(), nil
}

// UpdateStatus sets the connection status of a registered device. A
// transition to connected also refreshes the last-seen timestamp.
//
// Returns:
//   - error: ErrNotFound for an unknown stable ID, device.ErrInvalidStatus
//     for a value outside the closed status set, or a persistence failure
func (s *Store) UpdateStatus(stableID string, status device.Status) error {
	if err := device.ValidateStatus(status); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return err
	}

	stored, ok := reg.Devices[stableID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stableID)
	}

	stored.Status = status
	if status == device.StatusConnected {
		now := time.Now().UTC()
		stored.LastSeen = &now
	}
	reg.Devices[stableID] = stored

	if err := s.persistLocked(reg); err != nil {
		return err
	}

	s.logger.Debug("device status updated", "stable_id", stableID, "status", status)
	return nil
}

// UpdateDeviceInfo refreshes the stored detection snapshot for a device
// without changing its status. The reconciliation loop calls this when a
// connected camera is re-observed with a new system index or platform data.
//
// Returns:
//   - error: ErrNotFound for an unknown stable ID, or a persistence failure
func (s *Store) UpdateDeviceInfo(stableID string, dev device.CameraDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return err
	}

	stored, ok := reg.Devices[stableID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, stableID)
	}

	rec := stored.toRegistered()
	rec.DeviceInfo = *dev.DeepCopy()
	now := time.Now().UTC()
	rec.LastSeen = &now
	reg.Devices[stableID] = fromRegistered(rec)

	return s.persistLocked(reg)
}

// FindByHardwareID looks up a registered device by the hardware fingerprint
// of a detected camera, without creating a record. This is the read-only
// counterpart to Register.
//
// Returns:
//   - *device.RegisteredDevice: The matching record
//   - error: ErrNotFound if no record matches the fingerprint
func (s *Store) FindByHardwareID(dev device.CameraDevice) (*device.RegisteredDevice, error) {
	hardwareID := dev.GenerateHardwareID()

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	for _, stored := range reg.Devices {
		rec := stored.toRegistered()
		if rec.HardwareID() == hardwareID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: hardware id %s", ErrNotFound, hardwareID)
}

// Count returns the number of registered devices.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadLocked()
	if err != nil {
		return 0, err
	}
	return len(reg.Devices), nil
}
