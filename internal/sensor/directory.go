package sensor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labcheck/labcheck-core/internal/room"
)

// Directory resolves wire identities to sensors and their rooms,
// auto-provisioning both on first sight.
type Directory struct {
	repo  Repository
	rooms *room.Registry
}

// NewDirectory creates a sensor directory.
func NewDirectory(repo Repository, rooms *room.Registry) *Directory {
	return &Directory{repo: repo, rooms: rooms}
}

// Resolve maps a sensor external ID to its sensor record and room.
//
// Unknown sensors are created on the fly and attached to the default
// room, so a freshly flashed device starts counting without manual
// registration. Known sensors whose room has been deleted are repaired
// the same way.
//
// Safe to call concurrently for the same external ID: creation races are
// resolved by re-reading the winner's row.
func (d *Directory) Resolve(ctx context.Context, externalID string) (*Sensor, *room.Room, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, nil, fmt.Errorf("%w: empty external ID", ErrInvalidSensor)
	}

	s, err := d.repo.GetByExternalID(ctx, externalID)
	switch {
	case errors.Is(err, ErrSensorNotFound):
		s, err = d.provision(ctx, externalID)
		if err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, fmt.Errorf("looking up sensor %s: %w", externalID, err)
	}

	if s.RoomID == nil {
		// Orphan: room was deleted out from under the sensor.
		if err := d.reattach(ctx, s); err != nil {
			return nil, nil, err
		}
	}

	rm, err := d.rooms.Get(ctx, *s.RoomID)
	if errors.Is(err, room.ErrRoomNotFound) {
		// Room vanished between the sensor read and now. Repair once.
		if err := d.reattach(ctx, s); err != nil {
			return nil, nil, err
		}
		rm, err = d.rooms.Get(ctx, *s.RoomID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading room for sensor %s: %w", externalID, err)
	}

	return s, rm, nil
}

// provision creates a sensor attached to the default room.
func (d *Directory) provision(ctx context.Context, externalID string) (*Sensor, error) {
	rm, err := d.rooms.EnsureDefaultRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensuring default room: %w", err)
	}

	s := &Sensor{
		ID:         NewID(),
		ExternalID: externalID,
		RoomID:     &rm.ID,
		Name:       externalID,
		Kind:       KindCombined,
		Active:     true,
	}
	err = d.repo.Create(ctx, s)
	if errors.Is(err, ErrSensorExists) {
		// Lost the race to a concurrent caller; their row wins.
		return d.repo.GetByExternalID(ctx, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("provisioning sensor %s: %w", externalID, err)
	}
	return s, nil
}

// reattach assigns an orphaned sensor to the default room and updates the
// in-memory record.
func (d *Directory) reattach(ctx context.Context, s *Sensor) error {
	rm, err := d.rooms.EnsureDefaultRoom(ctx)
	if err != nil {
		return fmt.Errorf("ensuring default room: %w", err)
	}
	if err := d.repo.AttachRoom(ctx, s.ID, rm.ID); err != nil {
		return fmt.Errorf("reattaching sensor %s: %w", s.ExternalID, err)
	}
	s.RoomID = &rm.ID
	return nil
}

// FixOrphanedSensors reattaches every sensor without a room to the
// default room. Returns the number of sensors fixed and the number that
// could not be fixed.
func (d *Directory) FixOrphanedSensors(ctx context.Context) (fixed, failed int, err error) {
	orphans, err := d.repo.ListOrphaned(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing orphaned sensors: %w", err)
	}
	if len(orphans) == 0 {
		return 0, 0, nil
	}

	rm, err := d.rooms.EnsureDefaultRoom(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("ensuring default room: %w", err)
	}

	for i := range orphans {
		if err := d.repo.AttachRoom(ctx, orphans[i].ID, rm.ID); err != nil {
			failed++
			continue
		}
		fixed++
	}
	return fixed, failed, nil
}

// Get returns a sensor by ID.
func (d *Directory) Get(ctx context.Context, id string) (*Sensor, error) {
	return d.repo.GetByID(ctx, id)
}

// List returns all sensors.
func (d *Directory) List(ctx context.Context) ([]Sensor, error) {
	return d.repo.List(ctx)
}

// ListByRoom returns sensors attached to a room.
func (d *Directory) ListByRoom(ctx context.Context, roomID string) ([]Sensor, error) {
	return d.repo.ListByRoom(ctx, roomID)
}

// Update modifies a sensor's name, kind, room assignment and active flag.
func (d *Directory) Update(ctx context.Context, s *Sensor) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSensor, s.Kind)
	}
	if s.RoomID != nil {
		if _, err := d.rooms.Get(ctx, *s.RoomID); err != nil {
			return fmt.Errorf("checking room %s: %w", *s.RoomID, err)
		}
	}
	return d.repo.Update(ctx, s)
}
