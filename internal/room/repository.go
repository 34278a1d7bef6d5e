package room

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for room persistence operations.
//
// The Tx-suffixed methods operate inside a caller-supplied transaction so
// the occupancy engine can read room state, write the new counter and
// append an event log entry atomically.
type Repository interface {
	Create(ctx context.Context, rm *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	GetByName(ctx context.Context, name string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	Update(ctx context.Context, rm *Room) error

	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*Room, error)
	SetOccupancyTx(ctx context.Context, tx *sql.Tx, id string, occupancy int) error
	SetDoorStateTx(ctx context.Context, tx *sql.Tx, id string, isOpen bool) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed room repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const roomColumns = `id, name, occupancy, max_capacity, is_open, orientation, created_at, updated_at`

// Create inserts a new room into the database.
// Returns ErrRoomExists if the name is already taken.
func (r *SQLiteRepository) Create(ctx context.Context, rm *Room) error {
	const query = `INSERT INTO rooms (id, name, occupancy, max_capacity, is_open, orientation)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rm.ID, rm.Name, rm.Occupancy, rm.MaxCapacity, boolToInt(rm.IsOpen), string(rm.Orientation))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrRoomExists
		}
		return fmt.Errorf("inserting room %s: %w", rm.ID, err)
	}
	return nil
}

// GetByID returns a single room by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanRoom(row)
}

// GetByName returns a single room by its unique name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE name = ?`
	row := r.db.QueryRowContext(ctx, query, name)
	return scanRoom(row)
}

// List returns all rooms ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		rm, err := scanRoomRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// Update updates a room's name, capacity and orientation.
// Occupancy and door state are owned by the occupancy engine and only
// change through the Tx helpers, with one exception: shrinking
// max_capacity below the current occupancy clamps occupancy down in the
// same statement, so the occupancy <= max_capacity invariant holds
// without waiting for the next passage event.
func (r *SQLiteRepository) Update(ctx context.Context, rm *Room) error {
	const query = `UPDATE rooms SET name = ?, max_capacity = ?, orientation = ?,
		occupancy = MIN(occupancy, ?),
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		rm.Name, rm.MaxCapacity, string(rm.Orientation), rm.MaxCapacity, rm.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrRoomExists
		}
		return fmt.Errorf("updating room %s: %w", rm.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// GetForUpdateTx reads a room inside a transaction.
//
// With SQLite's single-writer model the enclosing write transaction
// serialises against all other writers, so the value read here cannot be
// changed underneath the caller before commit.
func (r *SQLiteRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	row := tx.QueryRowContext(ctx, query, id)
	return scanRoom(row)
}

// SetOccupancyTx writes a room's occupancy inside a transaction.
func (r *SQLiteRepository) SetOccupancyTx(ctx context.Context, tx *sql.Tx, id string, occupancy int) error {
	const query = `UPDATE rooms SET occupancy = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := tx.ExecContext(ctx, query, occupancy, id)
	if err != nil {
		return fmt.Errorf("setting occupancy for room %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetDoorStateTx writes a room's door state inside a transaction.
func (r *SQLiteRepository) SetDoorStateTx(ctx context.Context, tx *sql.Tx, id string, isOpen bool) error {
	const query = `UPDATE rooms SET is_open = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := tx.ExecContext(ctx, query, boolToInt(isOpen), id)
	if err != nil {
		return fmt.Errorf("setting door state for room %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// scanRoom scans a single row into a Room (for QueryRow).
func scanRoom(row *sql.Row) (*Room, error) {
	var rm Room
	var isOpen int
	var orientation string
	var createdAt, updatedAt string

	err := row.Scan(&rm.ID, &rm.Name, &rm.Occupancy, &rm.MaxCapacity,
		&isOpen, &orientation, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	rm.IsOpen = isOpen != 0
	rm.Orientation = Orientation(orientation)
	rm.CreatedAt = parseTime(createdAt)
	rm.UpdatedAt = parseTime(updatedAt)
	return &rm, nil
}

// scanRoomRow scans a room from a Rows cursor.
func scanRoomRow(rows *sql.Rows) (*Room, error) {
	var rm Room
	var isOpen int
	var orientation string
	var createdAt, updatedAt string

	err := rows.Scan(&rm.ID, &rm.Name, &rm.Occupancy, &rm.MaxCapacity,
		&isOpen, &orientation, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning room row: %w", err)
	}
	rm.IsOpen = isOpen != 0
	rm.Orientation = Orientation(orientation)
	rm.CreatedAt = parseTime(createdAt)
	rm.UpdatedAt = parseTime(updatedAt)
	return &rm, nil
}

// boolToInt converts a bool to the 0/1 representation SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks for SQLite unique constraint violations.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05Z", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
