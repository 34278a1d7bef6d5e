package ingest

import "time"

// Direction is the travel direction of a passage event, after decoding
// but before room orientation is applied.
type Direction string

// Valid directions.
const (
	DirectionEnter Direction = "enter"
	DirectionExit  Direction = "exit"
)

// Event is a decoded sensor event. It is a closed sum: the only
// implementations are DoorStateEvent and PassageEvent, and consumers
// switch on the concrete type.
type Event interface {
	// SensorExternalID returns the wire identity of the publishing sensor.
	SensorExternalID() string

	// OccurredAt returns when the event happened (sensor-reported when
	// available, receive time otherwise).
	OccurredAt() time.Time

	// sealed prevents implementations outside this package.
	sealed()
}

// DoorStateEvent reports a door opening or closing.
type DoorStateEvent struct {
	ExternalID string
	IsOpen     bool
	Timestamp  time.Time
}

// SensorExternalID implements Event.
func (e DoorStateEvent) SensorExternalID() string { return e.ExternalID }

// OccurredAt implements Event.
func (e DoorStateEvent) OccurredAt() time.Time { return e.Timestamp }

func (DoorStateEvent) sealed() {}

// PassageEvent reports a person crossing the entrance.
type PassageEvent struct {
	ExternalID string
	Direction  Direction
	Timestamp  time.Time
}

// SensorExternalID implements Event.
func (e PassageEvent) SensorExternalID() string { return e.ExternalID }

// OccurredAt implements Event.
func (e PassageEvent) OccurredAt() time.Time { return e.Timestamp }

func (PassageEvent) sealed() {}
