package mqtt

import "fmt"

// Topic prefixes for the StableCam MQTT bridge.
//
// Scheme:
//
//	stablecam/event/{kind}/{stable_id}  — one message per bus event
//	stablecam/status/{stable_id}        — retained latest status per camera
//	stablecam/system/status             — bridge online/offline (LWT)
const (
	// TopicPrefix is the base for all StableCam topics.
	TopicPrefix = "stablecam"

	// TopicPrefixEvent is the base for event topics.
	TopicPrefixEvent = "stablecam/event"

	// TopicPrefixStatus is the base for retained per-camera status topics.
	TopicPrefixStatus = "stablecam/status"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "stablecam/system"
)

// Topics provides builders for StableCam MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// Event returns the topic for one device event.
//
// Example: stablecam/event/on_connect/stable-cam-001
func (Topics) Event(kind, stableID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEvent, kind, stableID)
}

// Status returns the retained status topic for a camera.
//
// Example: stablecam/status/stable-cam-001
func (Topics) Status(stableID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixStatus, stableID)
}

// SystemStatus returns the bridge status topic (also used for the LWT).
//
// Example: stablecam/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching every device event.
//
// Pattern: stablecam/event/+/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixEvent)
}

// AllStatuses returns a pattern matching every camera status topic.
//
// Pattern: stablecam/status/+
func (Topics) AllStatuses() string {
	return fmt.Sprintf("%s/+", TopicPrefixStatus)
}

// AllTopics returns a pattern matching all StableCam topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: stablecam/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
