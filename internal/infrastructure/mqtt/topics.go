package mqtt

import "fmt"

// Topic prefixes for the LabCheck MQTT namespace.
//
// Sensor topics use the flat scheme: labcheck/{sensor_external_id}/{kind}
// where kind is "door", "entrance" or "event". This matches the topic
// layout the ESP32 firmware publishes on.
const (
	// TopicPrefixSensor is the base for all sensor topics.
	// Flat scheme: labcheck/{sensor_external_id}/{kind}
	TopicPrefixSensor = "labcheck"

	// TopicPrefixCore is the base for topics published by Core.
	TopicPrefixCore = "labcheck/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "labcheck/system"
)

// Topics provides builders for LabCheck MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	doorTopic := topics.SensorDoor("esp32")
//	// Returns: "labcheck/esp32/door"
type Topics struct{}

// =============================================================================
// Sensor Topics (published by firmware, consumed by Core)
// =============================================================================

// SensorDoor returns the door reading topic for a sensor.
// Payload is "1" (open) or "0" (closed).
//
// Example: labcheck/esp32/door
func (Topics) SensorDoor(externalID string) string {
	return fmt.Sprintf("%s/%s/door", TopicPrefixSensor, externalID)
}

// SensorEntrance returns the entrance reading topic for a sensor.
// Payload is "1" (entering) or "0" (exiting), before orientation is applied.
//
// Example: labcheck/esp32/entrance
func (Topics) SensorEntrance(externalID string) string {
	return fmt.Sprintf("%s/%s/entrance", TopicPrefixSensor, externalID)
}

// SensorEvent returns the structured event topic for a sensor.
// Payload is a JSON envelope carrying type, value and optional timestamp.
//
// Example: labcheck/esp32/event
func (Topics) SensorEvent(externalID string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixSensor, externalID)
}

// =============================================================================
// Core Topics (published by Core)
// =============================================================================

// RoomStatus returns the canonical room status topic.
// Published retained after every occupancy transition so displays
// receive current state on connect.
//
// Example: labcheck/core/room/room-a1b2c3d4/status
func (Topics) RoomStatus(roomID string) string {
	return fmt.Sprintf("%s/room/%s/status", TopicPrefixCore, roomID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic used for LWT and
// online/offline announcements.
//
// Example: labcheck/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllSensorDoors returns a pattern matching door readings from any sensor.
//
// Pattern: labcheck/+/door
func (Topics) AllSensorDoors() string {
	return fmt.Sprintf("%s/+/door", TopicPrefixSensor)
}

// AllSensorEntrances returns a pattern matching entrance readings from any sensor.
//
// Pattern: labcheck/+/entrance
func (Topics) AllSensorEntrances() string {
	return fmt.Sprintf("%s/+/entrance", TopicPrefixSensor)
}

// AllSensorEvents returns a pattern matching structured events from any sensor.
//
// Pattern: labcheck/+/event
func (Topics) AllSensorEvents() string {
	return fmt.Sprintf("%s/+/event", TopicPrefixSensor)
}

// AllRoomStatuses returns a pattern matching all room status topics.
//
// Pattern: labcheck/core/room/+/status
func (Topics) AllRoomStatuses() string {
	return fmt.Sprintf("%s/room/+/status", TopicPrefixCore)
}

// AllTopics returns a pattern matching all LabCheck topics.
// Use with caution - this receives ALL traffic, including Core's own
// publications.
//
// Pattern: labcheck/#
func (Topics) AllTopics() string {
	return "labcheck/#"
}
