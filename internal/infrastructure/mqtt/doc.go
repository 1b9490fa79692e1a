// Package mqtt provides the optional MQTT event bridge for StableCam.
//
// The Bridge subscribes to the in-process event bus and republishes every
// device event to an external broker, so home automation systems and other
// services can react to cameras appearing and disappearing without linking
// against StableCam:
//
//	stablecam/event/{kind}/{stable_id}  — one message per event
//	stablecam/status/{stable_id}        — retained latest status per camera
//	stablecam/system/status             — bridge online/offline (LWT)
//
// The Client wraps paho.mqtt.golang with connection management, automatic
// reconnection with exponential backoff, and a Last Will and Testament so
// subscribers can distinguish a crash from a graceful shutdown. StableCam
// only publishes; there is no subscribe surface.
//
// # Security Considerations
//
//   - TLS is recommended for non-local brokers (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	bridge := mqtt.NewBridge(client, byte(cfg.MQTT.QoS))
//	if err := bridge.Attach(bus); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error handling
//
// The bridge is a best-effort sink: a failed publish is logged and dropped,
// never propagated back to the reconciliation loop.
package mqtt
