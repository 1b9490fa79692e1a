package influxdb

import (
	"fmt"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
)

// metricWriter is the slice of Client the sink needs. Tests substitute a fake.
type metricWriter interface {
	WriteConnectionEvent(stableID, eventType, vendorID, productID string, connected bool)
}

// Sink forwards connect/disconnect events from the bus into InfluxDB.
//
// Status-change events are skipped: they always accompany a connect or
// disconnect event and would double every point.
//
// Writes are non-blocking and batched by the underlying client, so the sink
// never delays the reconciliation loop.
type Sink struct {
	writer        metricWriter
	subscriptions map[events.Type]int
}

// NewSink creates a sink writing through the given client.
func NewSink(client *Client) *Sink {
	return &Sink{
		writer:        client,
		subscriptions: make(map[events.Type]int),
	}
}

// Attach subscribes the sink to the bus.
//
// Returns:
//   - error: If a subscription fails; already-made subscriptions are removed
func (s *Sink) Attach(bus *events.Bus) error {
	for _, et := range []events.Type{events.TypeConnect, events.TypeDisconnect} {
		et := et
		id, err := bus.Subscribe(et, func(dev *device.RegisteredDevice) {
			s.record(et, dev)
		})
		if err != nil {
			s.Detach(bus)
			return fmt.Errorf("attaching influxdb sink: %w", err)
		}
		s.subscriptions[et] = id
	}
	return nil
}

// Detach removes the sink's bus subscriptions.
func (s *Sink) Detach(bus *events.Bus) {
	for et, id := range s.subscriptions {
		bus.Unsubscribe(et, id) //nolint:errcheck // Best effort on teardown
		delete(s.subscriptions, et)
	}
}

// record writes one event as a connection_events point.
func (s *Sink) record(eventType events.Type, dev *device.RegisteredDevice) {
	s.writer.WriteConnectionEvent(
		dev.StableID,
		string(eventType),
		dev.DeviceInfo.VendorID,
		dev.DeviceInfo.ProductID,
		dev.Status == device.StatusConnected,
	)
}
