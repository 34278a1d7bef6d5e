package room

import (
	"context"
	"errors"
	"fmt"
)

// Registry provides room lookup and auto-provisioning on top of the Repository.
type Registry struct {
	repo Repository

	defaultCapacity    int
	defaultOrientation Orientation
}

// NewRegistry creates a room registry.
//
// defaultCapacity and defaultOrientation seed rooms created on demand,
// including the default room that hosts unassigned sensors.
func NewRegistry(repo Repository, defaultCapacity int, defaultOrientation Orientation) *Registry {
	return &Registry{
		repo:               repo,
		defaultCapacity:    defaultCapacity,
		defaultOrientation: defaultOrientation,
	}
}

// Get returns a room by ID.
func (g *Registry) Get(ctx context.Context, id string) (*Room, error) {
	return g.repo.GetByID(ctx, id)
}

// List returns all rooms.
func (g *Registry) List(ctx context.Context) ([]Room, error) {
	return g.repo.List(ctx)
}

// Create creates a room with the given name, applying registry defaults
// for capacity and orientation when the caller leaves them unset.
func (g *Registry) Create(ctx context.Context, rm *Room) error {
	if rm.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if rm.ID == "" {
		rm.ID = NewID()
	}
	if rm.MaxCapacity <= 0 {
		rm.MaxCapacity = g.defaultCapacity
	}
	if rm.Orientation == "" {
		rm.Orientation = g.defaultOrientation
	}
	if !rm.Orientation.Valid() {
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidRoom, rm.Orientation)
	}
	return g.repo.Create(ctx, rm)
}

// Update modifies a room's name, capacity and orientation. Shrinking the
// capacity below the current occupancy clamps the count down with it.
func (g *Registry) Update(ctx context.Context, rm *Room) error {
	if rm.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if rm.MaxCapacity <= 0 {
		return fmt.Errorf("%w: max_capacity must be positive", ErrInvalidRoom)
	}
	if !rm.Orientation.Valid() {
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidRoom, rm.Orientation)
	}
	return g.repo.Update(ctx, rm)
}

// EnsureDefaultRoom returns the default room, creating it if it does not
// exist yet. Safe to call concurrently: if another caller creates the room
// first, the resulting unique-name conflict is resolved by re-reading.
func (g *Registry) EnsureDefaultRoom(ctx context.Context) (*Room, error) {
	rm, err := g.repo.GetByName(ctx, DefaultRoomName)
	if err == nil {
		return rm, nil
	}
	if !errors.Is(err, ErrRoomNotFound) {
		return nil, fmt.Errorf("looking up default room: %w", err)
	}

	rm = &Room{
		ID:          NewID(),
		Name:        DefaultRoomName,
		MaxCapacity: g.defaultCapacity,
		IsOpen:      true,
		Orientation: g.defaultOrientation,
	}
	err = g.repo.Create(ctx, rm)
	if errors.Is(err, ErrRoomExists) {
		// Lost the race to a concurrent caller; their row wins.
		return g.repo.GetByName(ctx, DefaultRoomName)
	}
	if err != nil {
		return nil, fmt.Errorf("creating default room: %w", err)
	}
	return rm, nil
}
