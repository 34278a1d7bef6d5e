package status

import (
	"database/sql"
	"io"
	"errors"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/room"
)

type fakeBroadcaster struct {
	channel string
	payload any
	calls   int
}

func (f *fakeBroadcaster) Broadcast(channel string, payload any) {
	f.channel = channel
	f.payload = payload
	f.calls++
}

type fakePublisher struct {
	topic   string
	payload []byte
	err     error
	calls   int
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	f.topic = topic
	f.payload = payload
	f.calls++
	return f.err
}

type fakeMetrics struct {
	roomID    string
	occupancy int
	calls     int
}

func (f *fakeMetrics) WriteRoomOccupancy(roomID string, occupancy, capacity int, isOpen bool) {
	f.roomID = roomID
	f.occupancy = occupancy
	f.calls++
}

func setupNotifier(t *testing.T) (*Notifier, *fakeBroadcaster, *fakePublisher, *fakeMetrics) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			occupancy INTEGER NOT NULL DEFAULT 0 CHECK (occupancy >= 0),
			max_capacity INTEGER NOT NULL DEFAULT 0 CHECK (max_capacity >= 0),
			is_open INTEGER NOT NULL DEFAULT 0,
			orientation TEXT NOT NULL DEFAULT 'normal'
				CHECK (orientation IN ('normal', 'inverted')),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		INSERT INTO rooms (id, name, occupancy, max_capacity, is_open)
			VALUES ('room-lab1', 'Lab 1', 3, 5, 1);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	registry := room.NewRegistry(room.NewSQLiteRepository(db), 20, room.OrientationNormal)
	broadcaster := &fakeBroadcaster{}
	publisher := &fakePublisher{}
	metrics := &fakeMetrics{}
	logger := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	return NewNotifier(registry, broadcaster, publisher, metrics, logger), broadcaster, publisher, metrics
}

func TestNotifyRoomChangedFansOut(t *testing.T) {
	n, broadcaster, publisher, metrics := setupNotifier(t)

	n.NotifyRoomChanged("room-lab1")

	if broadcaster.calls != 1 {
		t.Fatalf("broadcaster called %d times, want 1", broadcaster.calls)
	}
	if broadcaster.channel != ChannelRoomStatus {
		t.Errorf("channel = %q, want %q", broadcaster.channel, ChannelRoomStatus)
	}
	st, ok := broadcaster.payload.(*Status)
	if !ok {
		t.Fatalf("payload = %T, want *Status", broadcaster.payload)
	}
	if st.CurrentOccupancy != 3 || st.MaxOccupancy != 5 || !st.IsOpen {
		t.Errorf("status = %+v, want 3/5 open", st)
	}
	if st.Color != ColorYellow {
		t.Errorf("Color = %q, want yellow at exactly 60%%", st.Color)
	}
	if st.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}

	if publisher.calls != 1 {
		t.Fatalf("publisher called %d times, want 1", publisher.calls)
	}
	if publisher.topic != "labcheck/core/room/room-lab1/status" {
		t.Errorf("topic = %q", publisher.topic)
	}

	if metrics.calls != 1 || metrics.roomID != "room-lab1" || metrics.occupancy != 3 {
		t.Errorf("metrics = %+v, want one point for room-lab1 at 3", metrics)
	}
}

func TestNotifyRoomChangedSwallowsPublishError(t *testing.T) {
	n, broadcaster, publisher, metrics := setupNotifier(t)
	publisher.err = errors.New("broker down")

	n.NotifyRoomChanged("room-lab1")

	// A dead broker must not stop the other sinks.
	if broadcaster.calls != 1 {
		t.Errorf("broadcaster called %d times, want 1", broadcaster.calls)
	}
	if metrics.calls != 1 {
		t.Errorf("metrics called %d times, want 1", metrics.calls)
	}
}

func TestNotifyRoomChangedUnknownRoom(t *testing.T) {
	n, broadcaster, publisher, metrics := setupNotifier(t)

	n.NotifyRoomChanged("room-missing")

	if broadcaster.calls != 0 || publisher.calls != 0 || metrics.calls != 0 {
		t.Error("fanout ran for a room that does not exist")
	}
}

func TestNotifierNilSinks(t *testing.T) {
	n, _, _, _ := setupNotifier(t)
	n.broadcaster = nil
	n.publisher = nil
	n.metrics = nil

	// Must not panic.
	n.NotifyRoomChanged("room-lab1")
}
