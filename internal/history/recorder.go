package history

import (
	"context"
	"time"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
)

// recordTimeout bounds each history insert so a stalled database cannot
// block event delivery indefinitely.
const recordTimeout = 5 * time.Second

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Recorder subscribes to the event bus and appends every connect and
// disconnect event to the history store. Status-change events are skipped:
// they always accompany a connect or disconnect and would only duplicate
// rows.
type Recorder struct {
	store  *Store
	logger Logger

	subscriptions map[events.Type]int
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store:         store,
		logger:        noopLogger{},
		subscriptions: make(map[events.Type]int),
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Attach subscribes the recorder to the bus.
//
// Returns:
//   - error: If a subscription fails; already-made subscriptions are removed
func (r *Recorder) Attach(bus *events.Bus) error {
	for _, et := range []events.Type{events.TypeConnect, events.TypeDisconnect} {
		et := et
		id, err := bus.Subscribe(et, func(dev *device.RegisteredDevice) {
			r.record(et, dev)
		})
		if err != nil {
			r.Detach(bus)
			return err
		}
		r.subscriptions[et] = id
	}
	return nil
}

// Detach removes the recorder's bus subscriptions.
func (r *Recorder) Detach(bus *events.Bus) {
	for et, id := range r.subscriptions {
		if err := bus.Unsubscribe(et, id); err != nil {
			r.logger.Error("removing history subscription", "event_type", et, "error", err)
		}
		delete(r.subscriptions, et)
	}
}

// record writes one event row. Failures are logged and dropped: history is
// a best-effort sink and must never disturb the reconciliation loop.
func (r *Recorder) record(eventType events.Type, dev *device.RegisteredDevice) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.store.Record(ctx, eventType, dev); err != nil {
		r.logger.Error("recording connection event",
			"stable_id", dev.StableID,
			"event_type", eventType,
			"error", err,
		)
		return
	}
	r.logger.Debug("connection event recorded", "stable_id", dev.StableID, "event_type", eventType)
}
