// Package events provides the in-process publish/subscribe bus for camera
// state changes.
//
// Three event kinds exist: on_connect, on_disconnect and on_status_change,
// each delivering a RegisteredDevice snapshot. The reconciliation loop is
// the only producer; the TUI, websocket hub, MQTT bridge, history recorder
// and Influx telemetry are the consumers.
//
// # Delivery semantics
//
// Callbacks execute synchronously on the emitting goroutine, in subscription
// order. A panicking callback is recovered and logged without affecting the
// remaining subscribers or the reconciliation cycle. Each callback receives
// its own deep copy of the device, so subscribers can never corrupt registry
// state through the event payload.
package events
