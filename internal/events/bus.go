package events

import (
	"fmt"
	"sync"

	"github.com/stablecam/stablecam/internal/device"
)

// Type identifies a kind of device event.
type Type string

// Event type constants.
const (
	// TypeConnect fires when a registered camera transitions to connected.
	TypeConnect Type = "on_connect"

	// TypeDisconnect fires when a registered camera transitions to disconnected.
	TypeDisconnect Type = "on_disconnect"

	// TypeStatusChange fires on every status transition, alongside the
	// more specific connect/disconnect event.
	TypeStatusChange Type = "on_status_change"
)

// AllTypes returns all valid event types.
func AllTypes() []Type {
	return []Type{TypeConnect, TypeDisconnect, TypeStatusChange}
}

// Valid reports whether the event type is one of the recognised values.
func (t Type) Valid() bool {
	switch t {
	case TypeConnect, TypeDisconnect, TypeStatusChange:
		return true
	default:
		return false
	}
}

// Callback is the signature for event subscribers. The device argument is a
// snapshot owned by the callback; mutating it does not affect registry state.
//
// Callbacks run synchronously on the emitter's goroutine, one at a time, in
// subscription order. Slow callbacks delay the next reconciliation cycle, so
// long-running work should be dispatched elsewhere by the subscriber.
type Callback func(dev *device.RegisteredDevice)

// Logger defines the logging interface used by the Bus.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// subscriber pairs a callback with its subscription handle so it can be
// removed later. Go functions are not comparable, so removal is by ID.
type subscriber struct {
	id int
	cb Callback
}

// Bus is an in-process publish/subscribe mechanism for device events.
//
// The reconciliation loop publishes to it; the CLI, TUI, and the optional
// MQTT/Influx/history sinks consume it.
//
// Thread Safety: all methods are safe for concurrent use. Emission snapshots
// the subscriber list under the lock and invokes callbacks outside it, so a
// callback may safely subscribe or unsubscribe without deadlocking.
type Bus struct {
	mu          sync.Mutex
	subscribers map[Type][]subscriber
	nextID      int
	logger      Logger
}

// NewBus creates an event bus with no subscribers.
func NewBus() *Bus {
	subs := make(map[Type][]subscriber, len(AllTypes()))
	for _, t := range AllTypes() {
		subs[t] = nil
	}
	return &Bus{
		subscribers: subs,
		nextID:      1,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger used to report callback failures.
func (b *Bus) SetLogger(logger Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if logger != nil {
		b.logger = logger
	}
}

// Subscribe registers a callback for an event type and returns a handle
// for later removal.
//
// Returns:
//   - int: Subscription handle, unique within this bus
//   - error: ErrInvalidEventType or ErrNilCallback, signalled immediately
func (b *Bus) Subscribe(eventType Type, cb Callback) (int, error) {
	if !eventType.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}
	if cb == nil {
		return 0, ErrNilCallback
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber{id: id, cb: cb})

	b.logger.Debug("subscriber added", "event_type", eventType, "id", id)
	return id, nil
}

// Unsubscribe removes a previously registered callback.
//
// Returns:
//   - error: ErrInvalidEventType for an unknown type, ErrUnknownSubscriber
//     if the handle is not currently subscribed to that type
func (b *Bus) Unsubscribe(eventType Type, id int) error {
	if !eventType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			b.logger.Debug("subscriber removed", "event_type", eventType, "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d for %q", ErrUnknownSubscriber, id, eventType)
}

// Emit delivers a device snapshot to every subscriber of the event type.
//
// Each callback receives its own deep copy and runs isolated: a panic in one
// callback is recovered and logged, and the remaining callbacks still run.
//
// Returns:
//   - error: ErrInvalidEventType for an unknown type; callback failures are
//     never surfaced to the emitter
func (b *Bus) Emit(eventType Type, dev *device.RegisteredDevice) error {
	if !eventType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}

	// Snapshot under lock, invoke outside it.
	b.mu.Lock()
	subs := make([]subscriber, len(b.subscribers[eventType]))
	copy(subs, b.subscribers[eventType])
	b.mu.Unlock()

	if len(subs) == 0 {
		return nil
	}

	b.logger.Debug("emitting event", "event_type", eventType, "subscribers", len(subs))
	for _, s := range subs {
		b.invoke(eventType, s, dev)
	}
	return nil
}

// invoke runs a single callback with panic isolation.
func (b *Bus) invoke(eventType Type, s subscriber, dev *device.RegisteredDevice) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event callback panicked",
				"event_type", eventType,
				"subscriber_id", s.id,
				"panic", r,
			)
		}
	}()
	s.cb(dev.DeepCopy())
}

// SubscriberCount returns the number of subscribers for an event type.
func (b *Bus) SubscriberCount(eventType Type) (int, error) {
	if !eventType.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[eventType]), nil
}
