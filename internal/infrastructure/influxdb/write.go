package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteConnectionEvent records a camera connect/disconnect transition.
//
// This is the primary measurement for plug/unplug telemetry: one point per
// bus event, tagged by stable ID and hardware identity so dashboards can
// chart flapping cameras and per-port reliability.
//
// Parameters:
//   - stableID: The camera's stable identifier (e.g., "stable-cam-001")
//   - eventType: The bus event kind ("on_connect", "on_disconnect")
//   - vendorID: USB vendor ID (4 hex digits)
//   - productID: USB product ID (4 hex digits)
//   - connected: Whether the camera is connected after the transition
//
// Example:
//
//	client.WriteConnectionEvent("stable-cam-001", "on_connect", "046d", "085e", true)
func (c *Client) WriteConnectionEvent(stableID, eventType, vendorID, productID string, connected bool) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if connected {
		state = 1
	}

	point := write.NewPoint(
		"connection_events",
		map[string]string{
			"stable_id":  stableID,
			"event_type": eventType,
			"vendor_id":  vendorID,
			"product_id": productID,
		},
		map[string]interface{}{
			"connected": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteFleetGauge records fleet-level counts for the whole registry.
//
// Written periodically so dashboards show how many registered cameras
// exist and how many are currently connected.
//
// Parameters:
//   - registered: Total cameras in the registry
//   - connected: Cameras currently connected
func (c *Client) WriteFleetGauge(registered, connected int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"fleet",
		nil,
		map[string]interface{}{
			"registered": registered,
			"connected":  connected,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "cam-host-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
