package status

import "time"

// Color is the traffic-light band shown on room displays.
type Color string

// Display colors.
const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Color band thresholds, in percent of capacity.
const (
	redThresholdPct    = 90
	yellowThresholdPct = 60
)

// Status is the public snapshot of a room, shaped for displays.
type Status struct {
	RoomID           string    `json:"room_id"`
	RoomName         string    `json:"room_name"`
	IsOpen           bool      `json:"is_open"`
	CurrentOccupancy int       `json:"current_occupancy"`
	MaxOccupancy     int       `json:"max_occupancy"`
	Color            Color     `json:"color"`
	Timestamp        time.Time `json:"timestamp"`
}

// ColorFor computes the display color for a room.
//
// A closed room is always red regardless of occupancy. Open rooms band on
// the occupancy ratio: 90% and above is red, 60% and above is yellow
// (exactly 60% included), below that green. Integer arithmetic avoids
// float edge cases at the band boundaries.
func ColorFor(occupancy, capacity int, isOpen bool) Color {
	if !isOpen {
		return ColorRed
	}
	if capacity <= 0 {
		// A room that can hold nobody is full by definition.
		return ColorRed
	}
	pct := occupancy * 100
	switch {
	case pct >= capacity*redThresholdPct:
		return ColorRed
	case pct >= capacity*yellowThresholdPct:
		return ColorYellow
	default:
		return ColorGreen
	}
}
