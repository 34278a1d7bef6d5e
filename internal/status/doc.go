// Package status publishes room state to everything that watches it.
//
// After the occupancy engine commits a transition, the Notifier re-reads
// the room row and fans the snapshot out to the WebSocket hub, a retained
// MQTT status topic and InfluxDB. Fanout is strictly best-effort: a dead
// broker or database must never block or fail event processing, so every
// fanout error is logged and swallowed.
//
// The color banding mirrors the physical traffic-light displays mounted
// outside each room.
package status
