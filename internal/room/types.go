package room

import (
	"time"

	"github.com/google/uuid"
)

// Orientation describes which way an entrance sensor is mounted relative
// to the room. With a "normal" orientation a raw entering reading means a
// person entered the room; with "inverted" the sensor faces out of the
// room and the sign of every passage is flipped.
type Orientation string

// Valid orientations.
const (
	OrientationNormal   Orientation = "normal"
	OrientationInverted Orientation = "inverted"
)

// Valid reports whether the orientation is a known value.
func (o Orientation) Valid() bool {
	return o == OrientationNormal || o == OrientationInverted
}

// DefaultRoomName is the name of the room that hosts sensors which have
// not been assigned to a room yet. It is created on demand.
const DefaultRoomName = "Main Lab"

// Room represents a physical space whose occupancy is tracked.
type Room struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Occupancy   int         `json:"occupancy"`
	MaxCapacity int         `json:"max_capacity"`
	IsOpen      bool        `json:"is_open"`
	Orientation Orientation `json:"orientation"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewID generates a unique room identifier.
//
// Format: room-{8 char hex} (e.g., "room-a1b2c3d4")
func NewID() string {
	return "room-" + uuid.NewString()[:8]
}
