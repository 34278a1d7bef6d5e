// Package sensor manages the door and entrance sensors that feed LabCheck.
//
// Sensors identify themselves on the wire by an external ID (the middle
// segment of their MQTT topic, e.g. "esp32"). The Directory resolves an
// external ID to a sensor and its room, creating both on first sight so a
// freshly flashed device starts counting without manual registration.
//
// A sensor whose room has been deleted is an orphan. Resolve repairs
// orphans on the fly by re-attaching them to the default room, and
// FixOrphanedSensors sweeps the whole table on demand.
package sensor
