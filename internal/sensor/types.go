package sensor

import (
	"time"

	"github.com/google/uuid"
)

// Kind describes what a sensor reports.
type Kind string

// Valid sensor kinds.
const (
	// KindDoor reports door open/closed state only.
	KindDoor Kind = "door"

	// KindPassage reports directional passages only.
	KindPassage Kind = "passage"

	// KindCombined reports both, the common case for the ESP32 firmware
	// which publishes on its door and entrance topics.
	KindCombined Kind = "combined"
)

// Valid reports whether the kind is a known value.
func (k Kind) Valid() bool {
	return k == KindDoor || k == KindPassage || k == KindCombined
}

// Sensor represents a physical device publishing readings over MQTT.
type Sensor struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	RoomID     *string   `json:"room_id,omitempty"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewID generates a unique sensor identifier.
//
// Format: sen-{8 char hex} (e.g., "sen-a1b2c3d4")
func NewID() string {
	return "sen-" + uuid.NewString()[:8]
}
