package sensor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for sensor persistence operations.
type Repository interface {
	Create(ctx context.Context, s *Sensor) error
	GetByID(ctx context.Context, id string) (*Sensor, error)
	GetByExternalID(ctx context.Context, externalID string) (*Sensor, error)
	List(ctx context.Context) ([]Sensor, error)
	ListByRoom(ctx context.Context, roomID string) ([]Sensor, error)
	ListOrphaned(ctx context.Context) ([]Sensor, error)
	Update(ctx context.Context, s *Sensor) error
	AttachRoom(ctx context.Context, id, roomID string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed sensor repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sensorColumns = `id, external_id, room_id, name, kind, active, created_at, updated_at`

// Create inserts a new sensor into the database.
// Returns ErrSensorExists if the external ID is already registered.
func (r *SQLiteRepository) Create(ctx context.Context, s *Sensor) error {
	const query = `INSERT INTO sensors (id, external_id, room_id, name, kind, active)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ExternalID, nullStr(s.RoomID), s.Name, string(s.Kind), boolToInt(s.Active))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrSensorExists
		}
		return fmt.Errorf("inserting sensor %s: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a single sensor by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanSensor(row)
}

// GetByExternalID returns a single sensor by its wire identity.
func (r *SQLiteRepository) GetByExternalID(ctx context.Context, externalID string) (*Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE external_id = ?`
	row := r.db.QueryRowContext(ctx, query, externalID)
	return scanSensor(row)
}

// List returns all sensors ordered by external ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors ORDER BY external_id`
	return r.querySensors(ctx, query)
}

// ListByRoom returns sensors attached to a specific room.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID string) ([]Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE room_id = ? ORDER BY external_id`
	return r.querySensors(ctx, query, roomID)
}

// ListOrphaned returns sensors with no room, including those whose room
// was deleted (the FK sets room_id to NULL on delete).
func (r *SQLiteRepository) ListOrphaned(ctx context.Context) ([]Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE room_id IS NULL ORDER BY external_id`
	return r.querySensors(ctx, query)
}

// Update updates a sensor's name, kind, room assignment and active flag.
func (r *SQLiteRepository) Update(ctx context.Context, s *Sensor) error {
	const query = `UPDATE sensors SET name = ?, kind = ?, room_id = ?, active = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		s.Name, string(s.Kind), nullStr(s.RoomID), boolToInt(s.Active), s.ID)
	if err != nil {
		return fmt.Errorf("updating sensor %s: %w", s.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// AttachRoom assigns a sensor to a room.
func (r *SQLiteRepository) AttachRoom(ctx context.Context, id, roomID string) error {
	const query = `UPDATE sensors SET room_id = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, roomID, id)
	if err != nil {
		return fmt.Errorf("attaching sensor %s to room %s: %w", id, roomID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// SetActive toggles a sensor's active flag. Events from inactive sensors
// are resolved but not applied.
func (r *SQLiteRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE sensors SET active = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("setting active for sensor %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// querySensors executes a query and returns a slice of Sensor.
func (r *SQLiteRepository) querySensors(ctx context.Context, query string, args ...any) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensorRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}
	return sensors, nil
}

// scanSensor scans a single row into a Sensor (for QueryRow).
func scanSensor(row *sql.Row) (*Sensor, error) {
	var s Sensor
	var roomID sql.NullString
	var kind string
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.ExternalID, &roomID, &s.Name, &kind, &active, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("scanning sensor: %w", err)
	}
	if roomID.Valid {
		s.RoomID = &roomID.String
	}
	s.Kind = Kind(kind)
	s.Active = active != 0
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// scanSensorRow scans a sensor from a Rows cursor.
func scanSensorRow(rows *sql.Rows) (*Sensor, error) {
	var s Sensor
	var roomID sql.NullString
	var kind string
	var active int
	var createdAt, updatedAt string

	err := rows.Scan(&s.ID, &s.ExternalID, &roomID, &s.Name, &kind, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning sensor row: %w", err)
	}
	if roomID.Valid {
		s.RoomID = &roomID.String
	}
	s.Kind = Kind(kind)
	s.Active = active != 0
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
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
