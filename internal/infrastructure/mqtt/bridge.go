package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
)

// publisher is the slice of Client the bridge needs. Tests substitute a fake.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// eventPayload is the JSON shape published for each device event.
type eventPayload struct {
	Event     string                   `json:"event"`
	Device    *device.RegisteredDevice `json:"device"`
	Timestamp string                   `json:"timestamp"`
}

// statusPayload is the JSON shape retained on the per-camera status topic.
type statusPayload struct {
	StableID  string        `json:"stable_id"`
	Status    device.Status `json:"status"`
	Label     string        `json:"label"`
	LastSeen  *time.Time    `json:"last_seen"`
	Timestamp string        `json:"timestamp"`
}

// Bridge republishes bus events to the MQTT broker.
//
// Every event goes out on its event topic; connect and disconnect events
// additionally refresh the retained per-camera status topic so late
// subscribers immediately learn each camera's current state.
type Bridge struct {
	pub    publisher
	qos    byte
	topics Topics

	subscriptions map[events.Type]int

	logger   Logger
	loggerMu sync.RWMutex
}

// NewBridge creates a bridge publishing through the given client.
func NewBridge(client *Client, qos byte) *Bridge {
	return &Bridge{
		pub:           client,
		qos:           qos,
		subscriptions: make(map[events.Type]int),
	}
}

// SetLogger sets a logger for publish failures.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

// Attach subscribes the bridge to the bus.
//
// Returns:
//   - error: If a subscription fails; already-made subscriptions are removed
func (b *Bridge) Attach(bus *events.Bus) error {
	for _, et := range events.AllTypes() {
		et := et
		id, err := bus.Subscribe(et, func(dev *device.RegisteredDevice) {
			b.publishEvent(et, dev)
		})
		if err != nil {
			b.Detach(bus)
			return fmt.Errorf("attaching mqtt bridge: %w", err)
		}
		b.subscriptions[et] = id
	}
	return nil
}

// Detach removes the bridge's bus subscriptions.
func (b *Bridge) Detach(bus *events.Bus) {
	for et, id := range b.subscriptions {
		bus.Unsubscribe(et, id) //nolint:errcheck // Best effort on teardown
		delete(b.subscriptions, et)
	}
}

// publishEvent sends one bus event to the broker. Failures are logged and
// dropped: the broker being away must not disturb the reconciliation loop.
func (b *Bridge) publishEvent(eventType events.Type, dev *device.RegisteredDevice) {
	now := time.Now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(eventPayload{
		Event:     string(eventType),
		Device:    dev,
		Timestamp: now,
	})
	if err != nil {
		b.logError("encoding event payload", eventType, dev.StableID, err)
		return
	}

	topic := b.topics.Event(string(eventType), dev.StableID)
	if err := b.pub.Publish(topic, payload, b.qos, false); err != nil {
		b.logError("publishing event", eventType, dev.StableID, err)
	}

	// Status-change events carry no information the retained status topic
	// needs beyond what connect/disconnect already provide.
	if eventType == events.TypeStatusChange {
		return
	}

	status, err := json.Marshal(statusPayload{
		StableID:  dev.StableID,
		Status:    dev.Status,
		Label:     dev.DeviceInfo.Label,
		LastSeen:  dev.LastSeen,
		Timestamp: now,
	})
	if err != nil {
		b.logError("encoding status payload", eventType, dev.StableID, err)
		return
	}

	if err := b.pub.Publish(b.topics.Status(dev.StableID), status, b.qos, true); err != nil {
		b.logError("publishing retained status", eventType, dev.StableID, err)
	}
}

// logError reports a bridge failure through the configured logger, if any.
func (b *Bridge) logError(msg string, eventType events.Type, stableID string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error("mqtt bridge: "+msg,
			"event_type", eventType,
			"stable_id", stableID,
			"error", err,
		)
	}
}
