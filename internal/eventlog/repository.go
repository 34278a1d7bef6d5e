// Package eventlog provides access to the occupancy_events table, the
// append-only record of every processed sensor event.
//
// Each entry snapshots room state after a transition (person count and
// door state), so the table doubles as training data for the prediction
// service. Appends run inside the occupancy engine's transaction: an
// event is logged if and only if the state change it describes commits.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies what a logged event recorded.
type EventType string

// Valid event types.
const (
	TypeDoor    EventType = "door"
	TypePassage EventType = "passage"
)

// Entry represents a single occupancy event record.
type Entry struct {
	ID          string    `json:"id"`
	SensorID    string    `json:"sensor_id"`
	RoomID      string    `json:"room_id"`
	EventType   EventType `json:"event_type"`
	PersonCount int       `json:"person_count"`
	DoorOpen    bool      `json:"door_open"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	RoomID    string // optional: filter by room
	SensorID  string // optional: filter by sensor
	EventType string // optional: "door" or "passage"
	Limit     int    // default 50, max 200
	Offset    int    // pagination offset
}

// ListResult contains the paginated event results.
type ListResult struct {
	Events []Entry `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Repository defines the interface for event log operations.
//
// Append takes a transaction so the log entry commits atomically with the
// room state change it records.
type Repository interface {
	Append(ctx context.Context, tx *sql.Tx, e *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository reads and writes occupancy events in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new event log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts an event inside the caller's transaction.
// The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Append(ctx context.Context, tx *sql.Tx, e *Entry) error {
	if e.ID == "" {
		e.ID = "evt-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO occupancy_events (id, sensor_id, room_id, event_type, person_count, door_open, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SensorID, e.RoomID, string(e.EventType),
		e.PersonCount, boolToInt(e.DoorOpen),
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending occupancy event: %w", err)
	}

	return nil
}

// List returns events matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for event queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.SensorID != "" {
		conditions = append(conditions, "sensor_id = ?")
		args = append(args, filter.SensorID)
	}
	if filter.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, filter.EventType)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM occupancy_events %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting occupancy events: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, sensor_id, room_id, event_type, person_count, door_open, created_at FROM occupancy_events %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying occupancy events: %w", err)
	}
	defer rows.Close()

	var events []Entry
	for rows.Next() {
		var e Entry
		var eventType string
		var doorOpen int
		var createdAt string

		if err := rows.Scan(&e.ID, &e.SensorID, &e.RoomID,
			&eventType, &e.PersonCount, &doorOpen, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning occupancy event: %w", err)
		}

		e.EventType = EventType(eventType)
		e.DoorOpen = doorOpen != 0

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			t, err = time.Parse("2006-01-02T15:04:05Z", createdAt)
			if err != nil {
				return nil, fmt.Errorf("parsing event timestamp %q: %w", createdAt, err)
			}
		}
		e.CreatedAt = t

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating occupancy events: %w", err)
	}

	if events == nil {
		events = []Entry{}
	}

	return &ListResult{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// boolToInt converts a bool to the 0/1 representation SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
