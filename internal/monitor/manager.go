package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/stablecam/stablecam/internal/detect"
	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/registry"
)

// Reconciliation loop timing bounds.
const (
	// DefaultPollInterval is the reconciliation period used when the
	// configuration does not set one.
	DefaultPollInterval = 2 * time.Second

	// MinPollInterval is the floor the configured interval is clamped to.
	// Polling faster than this hammers the platform detection APIs for no
	// practical gain.
	MinPollInterval = 100 * time.Millisecond

	// stopJoinTimeout bounds how long Stop waits for the in-flight cycle.
	// A platform backend stuck inside a detection call must not wedge
	// shutdown with it.
	stopJoinTimeout = 5 * time.Second
)

// State describes the lifecycle of the reconciliation loop.
type State string

const (
	// StateIdle means the loop is not running.
	StateIdle State = "idle"

	// StateRunning means the loop is polling and reconciling.
	StateRunning State = "running"

	// StateStopping means a stop was requested and the loop is draining its
	// final cycle.
	StateStopping State = "stopping"
)

// Logger defines the logging interface used by the Manager.
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

// Config contains monitor configuration options.
type Config struct {
	// PollInterval is the reconciliation period. Zero selects the default;
	// values below the minimum are clamped up to it.
	PollInterval time.Duration
}

// Manager is the orchestrator tying together detection, the registry and
// the event bus.
//
// Thread Safety: all methods are safe for concurrent use. The lifecycle
// state is guarded by a mutex; reconciliation itself runs on a single
// goroutine so cycles never overlap.
type Manager struct {
	registry *registry.Store
	detector detect.Detector
	bus      *events.Bus

	pollInterval time.Duration
	stopTimeout  time.Duration
	logger       Logger

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
}

// New creates a monitor Manager.
//
// Parameters:
//   - reg: The registry store (required)
//   - det: The platform detector (required)
//   - bus: The event bus used for status notifications (required)
//   - cfg: Loop configuration
//
// Returns:
//   - *Manager: Manager in the idle state
func New(reg *registry.Store, det detect.Detector, bus *events.Bus, cfg Config) *Manager {
	interval := cfg.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}

	return &Manager{
		registry:     reg,
		detector:     det,
		bus:          bus,
		pollInterval: interval,
		stopTimeout:  stopJoinTimeout,
		logger:       noopLogger{},
		state:        StateIdle,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// State returns the current lifecycle state of the reconciliation loop.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PollInterval returns the effective (clamped) reconciliation period.
func (m *Manager) PollInterval() time.Duration {
	return m.pollInterval
}

// Detect returns all cameras currently visible to the platform backend.
func (m *Manager) Detect() ([]device.CameraDevice, error) {
	cameras, err := m.detector.DetectCameras()
	if err != nil {
		m.logger.Error("camera detection failed", "platform", m.detector.PlatformName(), "error", err)
		return nil, err
	}
	m.logger.Debug("cameras detected", "count", len(cameras))
	return cameras, nil
}

// Register assigns a stable ID to a detected camera.
//
// Registration is idempotent: a camera whose hardware fingerprint is already
// known gets its record refreshed and its existing ID back. Connect and
// status-change events are emitted only when a new record is created.
//
// Returns:
//   - string: The stable ID (existing or newly allocated)
//   - bool: true if a new record was created
//   - error: Validation or persistence failure
func (m *Manager) Register(dev device.CameraDevice) (string, bool, error) {
	stableID, created, err := m.registry.Register(dev)
	if err != nil {
		return "", false, err
	}

	if created {
		if rec, err := m.registry.GetByID(stableID); err == nil {
			m.bus.Emit(events.TypeConnect, rec)      //nolint:errcheck // Known event type
			m.bus.Emit(events.TypeStatusChange, rec) //nolint:errcheck // Known event type
		}
	}

	return stableID, created, nil
}

// List returns all registered devices with their current status.
func (m *Manager) List() ([]device.RegisteredDevice, error) {
	return m.registry.GetAll()
}

// GetByID returns the registered device with the given stable ID.
func (m *Manager) GetByID(stableID string) (*device.RegisteredDevice, error) {
	return m.registry.GetByID(stableID)
}

// On subscribes a callback to an event type and returns its subscription
// handle for later removal.
func (m *Manager) On(eventType events.Type, callback events.Callback) (int, error) {
	return m.bus.Subscribe(eventType, callback)
}

// Off removes a subscription previously created with On.
func (m *Manager) Off(eventType events.Type, id int) error {
	return m.bus.Unsubscribe(eventType, id)
}

// Run starts the reconciliation loop on a background goroutine.
//
// The loop polls the detector at the configured interval, reconciles the
// result against the registry and emits events for status transitions. It
// stops when Stop is called or ctx is cancelled.
//
// Calling Run while the loop is already active leaves it untouched; the
// sentinel marks the call as a no-op, not a failure.
//
// Returns:
//   - error: ErrAlreadyRunning if the loop is already active
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.state = StateRunning
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go m.loop(ctx, stop, done)

	m.logger.Info("device monitoring started", "poll_interval", m.pollInterval)
	return nil
}

// Stop halts the reconciliation loop and blocks until the in-flight cycle
// completes, up to a bounded wait. If the cycle is still running when the
// bound expires (a detector call that never returns), Stop logs a warning
// and returns; the loop goroutine exits on its own once the call unblocks.
//
// Calling Stop while the loop is idle leaves it untouched; the sentinel
// marks the call as a no-op, not a failure.
//
// Returns:
//   - error: ErrNotRunning if the loop is idle
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.state = StateStopping
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(m.stopTimeout):
		m.logger.Warn("reconciliation loop did not stop in time, abandoning wait",
			"timeout", m.stopTimeout,
		)
		return nil
	}

	m.logger.Info("device monitoring stopped")
	return nil
}

// loop runs reconciliation cycles until stopped or the context ends.
func (m *Manager) loop(ctx context.Context, stop, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.state = StateIdle
		m.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	// Reconcile once immediately so startup state is accurate before the
	// first tick.
	m.reconcile()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			m.logger.Debug("monitoring context cancelled")
			return
		case <-ticker.C:
			m.reconcile()
		}
	}
}

// reconcile runs one detection/registry comparison cycle.
//
// A failure at any step costs this cycle only: the error is logged and the
// loop tries again on the next tick. Detection runs before any registry
// access so the registry is never locked while a platform backend is busy.
func (m *Manager) reconcile() {
	detected, err := m.detector.DetectCameras()
	if err != nil {
		m.logger.Warn("detection failed, skipping cycle", "error", err)
		return
	}

	registered, err := m.registry.GetAll()
	if err != nil {
		m.logger.Error("registry read failed, skipping cycle", "error", err)
		return
	}

	detectedByHW := make(map[string]device.CameraDevice, len(detected))
	for _, cam := range detected {
		detectedByHW[cam.GenerateHardwareID()] = cam
	}

	for i := range registered {
		rec := registered[i]
		cam, seen := detectedByHW[rec.HardwareID()]

		switch {
		case seen && rec.Status != device.StatusConnected:
			m.transition(rec.StableID, device.StatusConnected, cam, events.TypeConnect)

		case seen:
			// Still connected: refresh the snapshot silently so transient
			// fields (system index, platform data) track reality.
			if err := m.registry.UpdateDeviceInfo(rec.StableID, cam); err != nil {
				m.logger.Error("snapshot refresh failed", "stable_id", rec.StableID, "error", err)
			}

		case rec.Status == device.StatusConnected:
			m.transitionStatus(rec.StableID, device.StatusDisconnected, events.TypeDisconnect)
		}
	}
}

// transition updates both the detection snapshot and the status of a device,
// then emits the transition events.
func (m *Manager) transition(stableID string, status device.Status, cam device.CameraDevice, event events.Type) {
	if err := m.registry.UpdateDeviceInfo(stableID, cam); err != nil {
		m.logger.Error("snapshot refresh failed", "stable_id", stableID, "error", err)
		return
	}
	m.transitionStatus(stableID, status, event)
}

// transitionStatus updates a device's status and emits the transition event
// plus the accompanying status-change event.
func (m *Manager) transitionStatus(stableID string, status device.Status, event events.Type) {
	if err := m.registry.UpdateStatus(stableID, status); err != nil {
		m.logger.Error("status update failed", "stable_id", stableID, "status", status, "error", err)
		return
	}

	m.logger.Info("device status changed", "stable_id", stableID, "status", status)

	rec, err := m.registry.GetByID(stableID)
	if err != nil {
		m.logger.Error("reading record for event emission", "stable_id", stableID, "error", err)
		return
	}

	m.bus.Emit(event, rec)                   //nolint:errcheck // Known event type
	m.bus.Emit(events.TypeStatusChange, rec) //nolint:errcheck // Known event type
}
