package eventlog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the occupancy_events table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE occupancy_events (
			id TEXT PRIMARY KEY,
			sensor_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			event_type TEXT NOT NULL CHECK (event_type IN ('door', 'passage')),
			person_count INTEGER NOT NULL,
			door_open INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// appendEntry appends an entry inside its own committed transaction.
func appendEntry(t *testing.T, db *sql.DB, repo *SQLiteRepository, e *Entry) {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := repo.Append(ctx, tx, e); err != nil {
		tx.Rollback()
		t.Fatalf("Append: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestAppendGeneratesIDAndTimestamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	e := &Entry{SensorID: "sen-a", RoomID: "room-a", EventType: TypePassage, PersonCount: 1, DoorOpen: true}
	appendEntry(t, db, repo, e)

	if e.ID == "" {
		t.Error("ID not generated")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not generated")
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1", result.Total)
	}
	got := result.Events[0]
	if got.PersonCount != 1 || !got.DoorOpen || got.EventType != TypePassage {
		t.Errorf("entry round-trip mismatch: %+v", got)
	}
}

func TestAppendRollbackDiscardsEntry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	e := &Entry{SensorID: "sen-a", RoomID: "room-a", EventType: TypeDoor, PersonCount: 0, DoorOpen: false}
	if err := repo.Append(ctx, tx, e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total = %d after rollback, want 0", result.Total)
	}
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{SensorID: "sen-a", RoomID: "room-1", EventType: TypeDoor, PersonCount: 0, DoorOpen: true, CreatedAt: base},
		{SensorID: "sen-a", RoomID: "room-1", EventType: TypePassage, PersonCount: 1, DoorOpen: true, CreatedAt: base.Add(time.Minute)},
		{SensorID: "sen-b", RoomID: "room-2", EventType: TypePassage, PersonCount: 3, DoorOpen: false, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		appendEntry(t, db, repo, e)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"by room", Filter{RoomID: "room-1"}, 2},
		{"by sensor", Filter{SensorID: "sen-b"}, 1},
		{"by type", Filter{EventType: "passage"}, 2},
		{"room and type", Filter{RoomID: "room-1", EventType: "door"}, 1},
		{"no match", Filter{RoomID: "room-9"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if result.Total != tt.want {
				t.Errorf("Total = %d, want %d", result.Total, tt.want)
			}
			if len(result.Events) != tt.want {
				t.Errorf("len(Events) = %d, want %d", len(result.Events), tt.want)
			}
		})
	}
}

func TestListOrderAndPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendEntry(t, db, repo, &Entry{
			SensorID:    "sen-a",
			RoomID:      "room-1",
			EventType:   TypePassage,
			PersonCount: i,
			DoorOpen:    true,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}

	result, err := repo.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(result.Events))
	}
	// Most recent first.
	if result.Events[0].PersonCount != 4 || result.Events[1].PersonCount != 3 {
		t.Errorf("unexpected order: %d, %d", result.Events[0].PersonCount, result.Events[1].PersonCount)
	}

	page2, err := repo.List(ctx, Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page2.Events) != 2 || page2.Events[0].PersonCount != 2 {
		t.Errorf("unexpected page 2: %+v", page2.Events)
	}
}

func TestListEmptyReturnsEmptySlice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Events == nil {
		t.Error("Events is nil, want empty slice")
	}
}
