package room

import "errors"

// Sentinel errors for room operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrRoomNotFound is returned when a room lookup finds no row.
	ErrRoomNotFound = errors.New("room: not found")

	// ErrRoomExists is returned when creating a room whose name is taken.
	ErrRoomExists = errors.New("room: name already exists")

	// ErrInvalidRoom is returned when a room fails validation.
	ErrInvalidRoom = errors.New("room: invalid room")
)
