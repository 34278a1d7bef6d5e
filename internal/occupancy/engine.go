package occupancy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labcheck/labcheck-core/internal/eventlog"
	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/ingest"
	"github.com/labcheck/labcheck-core/internal/room"
	"github.com/labcheck/labcheck-core/internal/sensor"
)

// Notifier is told about committed room changes so status can fan out.
// Called after the transaction commits, never inside it.
type Notifier interface {
	NotifyRoomChanged(roomID string)
}

// NoopNotifier discards change notifications. Used when fanout is disabled.
type NoopNotifier struct{}

// NotifyRoomChanged implements Notifier.
func (NoopNotifier) NotifyRoomChanged(string) {}

// Deps contains the engine's dependencies.
type Deps struct {
	DB       *sql.DB
	Sensors  *sensor.Directory
	Rooms    room.Repository
	Events   eventlog.Repository
	Notifier Notifier
	Logger   *logging.Logger
}

// Engine turns sensor events into room state transitions.
type Engine struct {
	db       *sql.DB
	sensors  *sensor.Directory
	rooms    room.Repository
	events   eventlog.Repository
	notifier Notifier
	logger   *logging.Logger
}

// New creates an occupancy engine. A nil Notifier is replaced with NoopNotifier.
func New(deps Deps) *Engine {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Engine{
		db:       deps.DB,
		sensors:  deps.Sensors,
		rooms:    deps.Rooms,
		events:   deps.Events,
		notifier: notifier,
		logger:   deps.Logger.With("component", "occupancy"),
	}
}

// Apply resolves an event's sensor and applies the transition.
//
// Resolution failure or transaction failure drops the event: the error is
// returned for the caller to log, nothing is retried, and room state is
// left exactly as it was.
func (e *Engine) Apply(ctx context.Context, ev ingest.Event) error {
	s, rm, err := e.sensors.Resolve(ctx, ev.SensorExternalID())
	if err != nil {
		return fmt.Errorf("resolving sensor %s: %w", ev.SensorExternalID(), err)
	}

	if !s.Active {
		e.logger.Debug("ignoring event from inactive sensor",
			"sensor", s.ExternalID, "room", rm.ID)
		return nil
	}

	switch ev := ev.(type) {
	case ingest.DoorStateEvent:
		return e.applyDoor(ctx, s, rm.ID, ev)
	case ingest.PassageEvent:
		return e.applyPassage(ctx, s, rm.ID, ev)
	default:
		return fmt.Errorf("unhandled event type %T", ev)
	}
}

// applyDoor writes the door state and logs the event in one transaction.
// Occupancy is carried forward untouched: the door closing does not mean
// the room emptied.
func (e *Engine) applyDoor(ctx context.Context, s *sensor.Sensor, roomID string, ev ingest.DoorStateEvent) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning door transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cur, err := e.rooms.GetForUpdateTx(ctx, tx, roomID)
	if err != nil {
		return fmt.Errorf("reading room %s: %w", roomID, err)
	}

	if err := e.rooms.SetDoorStateTx(ctx, tx, roomID, ev.IsOpen); err != nil {
		return err
	}

	entry := &eventlog.Entry{
		SensorID:    s.ID,
		RoomID:      roomID,
		EventType:   eventlog.TypeDoor,
		PersonCount: cur.Occupancy,
		DoorOpen:    ev.IsOpen,
		CreatedAt:   ev.Timestamp,
	}
	if err := e.events.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing door transaction: %w", err)
	}

	e.logger.Info("door state changed",
		"room", roomID, "sensor", s.ExternalID, "open", ev.IsOpen)
	e.notifier.NotifyRoomChanged(roomID)
	return nil
}

// applyPassage updates occupancy and logs the event in one transaction.
// Door state is carried forward untouched.
func (e *Engine) applyPassage(ctx context.Context, s *sensor.Sensor, roomID string, ev ingest.PassageEvent) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning passage transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cur, err := e.rooms.GetForUpdateTx(ctx, tx, roomID)
	if err != nil {
		return fmt.Errorf("reading room %s: %w", roomID, err)
	}

	next := cur.Occupancy + passageDelta(ev.Direction, cur.Orientation)
	switch {
	case next < 0:
		e.logger.Warn("clamping occupancy at floor",
			"room", roomID, "sensor", s.ExternalID,
			"occupancy", cur.Occupancy, "candidate", next)
		next = 0
	case next > cur.MaxCapacity:
		e.logger.Warn("clamping occupancy at capacity",
			"room", roomID, "sensor", s.ExternalID,
			"occupancy", cur.Occupancy, "candidate", next,
			"max_capacity", cur.MaxCapacity)
		next = cur.MaxCapacity
	}

	if err := e.rooms.SetOccupancyTx(ctx, tx, roomID, next); err != nil {
		return err
	}

	entry := &eventlog.Entry{
		SensorID:    s.ID,
		RoomID:      roomID,
		EventType:   eventlog.TypePassage,
		PersonCount: next,
		DoorOpen:    cur.IsOpen,
		CreatedAt:   ev.Timestamp,
	}
	if err := e.events.Append(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing passage transaction: %w", err)
	}

	e.logger.Info("occupancy changed",
		"room", roomID, "sensor", s.ExternalID,
		"direction", ev.Direction, "occupancy", next)
	e.notifier.NotifyRoomChanged(roomID)
	return nil
}

// passageDelta converts a direction and room orientation into a count change.
//
// With a normal orientation enter adds and exit subtracts; an inverted
// sensor faces out of the room, so the sign flips.
func passageDelta(dir ingest.Direction, orientation room.Orientation) int {
	delta := -1
	if dir == ingest.DirectionEnter {
		delta = 1
	}
	if orientation == room.OrientationInverted {
		delta = -delta
	}
	return delta
}
