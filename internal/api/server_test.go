package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/labcheck/labcheck-core/internal/eventlog"
	"github.com/labcheck/labcheck-core/internal/infrastructure/config"
	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/room"
	"github.com/labcheck/labcheck-core/internal/sensor"
	"github.com/labcheck/labcheck-core/internal/status"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
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

		CREATE TABLE sensors (
			id TEXT PRIMARY KEY,
			external_id TEXT NOT NULL UNIQUE,
			room_id TEXT REFERENCES rooms(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'combined'
				CHECK (kind IN ('door', 'passage', 'combined')),
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE occupancy_events (
			id TEXT PRIMARY KEY,
			sensor_id TEXT NOT NULL REFERENCES sensors(id),
			room_id TEXT NOT NULL REFERENCES rooms(id),
			event_type TEXT NOT NULL CHECK (event_type IN ('door', 'passage')),
			person_count INTEGER NOT NULL DEFAULT 0,
			door_open INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
	`
	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", execErr)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testServer creates a Server backed by in-memory SQLite.
func testServer(t *testing.T) (*Server, *room.Registry, *sensor.Directory) {
	t.Helper()

	db := setupTestDB(t)
	registry := room.NewRegistry(room.NewSQLiteRepository(db), 20, room.OrientationNormal)
	directory := sensor.NewDirectory(sensor.NewSQLiteRepository(db), registry)
	events := eventlog.NewSQLiteRepository(db)

	log := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		Rooms:   registry,
		Sensors: directory,
		Events:  events,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	srv.hub = NewHub(srv.wsCfg, log)
	go srv.hub.Run(context.Background())

	return srv, registry, directory
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHealth_DegradedComponent(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.health = map[string]HealthChecker{
		"mqtt": func(context.Context) error { return context.DeadlineExceeded },
		"db":   func(context.Context) error { return nil },
	}
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", resp["status"])
	}
	components, ok := resp["components"].(map[string]any)
	if !ok {
		t.Fatalf("components missing: %v", resp)
	}
	if components["db"] != "ok" {
		t.Errorf("db component = %v, want ok", components["db"])
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

func TestNotFound(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Room CRUD Tests ───────────────────────────────────────────────

func TestListRooms_Empty(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if int(resp["count"].(float64)) != 0 {
		t.Errorf("count = %v, want 0", resp["count"])
	}
}

func TestCreateAndGetRoom(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"name": "Electronics Lab", "max_capacity": 12, "is_open": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created room.Room
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}

	if created.ID == "" {
		t.Error("expected room ID to be auto-generated")
	}
	if created.Orientation != room.OrientationNormal {
		t.Errorf("orientation = %q, want default normal", created.Orientation)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/rooms/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", w.Code, http.StatusOK)
	}

	var got room.Room
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}

	if got.Name != "Electronics Lab" {
		t.Errorf("name = %q, want %q", got.Name, "Electronics Lab")
	}
	if got.MaxCapacity != 12 {
		t.Errorf("max_capacity = %d, want 12", got.MaxCapacity)
	}
}

func TestCreateRoom_IgnoresOccupancy(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"name": "Chem Lab", "max_capacity": 8, "occupancy": 99}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created room.Room
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Occupancy != 0 {
		t.Errorf("occupancy = %d, want 0", created.Occupancy)
	}
}

func TestCreateRoom_DuplicateName(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	if err := registry.Create(context.Background(), &room.Room{Name: "Bio Lab"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"name": "Bio Lab"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestCreateRoom_MissingName(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", strings.NewReader(`{"max_capacity": 5}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/room-missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateRoom(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	rm := &room.Room{Name: "Original", MaxCapacity: 10}
	if err := registry.Create(context.Background(), rm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"name": "Renamed", "is_open": true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rooms/"+rm.ID, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var updated room.Room
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want %q", updated.Name, "Renamed")
	}
	if !updated.IsOpen {
		t.Error("is_open = false, want true")
	}
	if updated.MaxCapacity != 10 {
		t.Errorf("max_capacity = %d, want 10 (unchanged)", updated.MaxCapacity)
	}
}

func TestUpdateRoom_OccupancyNotWritable(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	rm := &room.Room{Name: "Counted", MaxCapacity: 10}
	if err := registry.Create(context.Background(), rm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := `{"occupancy": 42}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/rooms/"+rm.ID, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var updated room.Room
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.Occupancy != 0 {
		t.Errorf("occupancy = %d, want 0; only sensor events may move it", updated.Occupancy)
	}
}

// ─── Status Endpoint Tests ─────────────────────────────────────────

func TestRoomStatus(t *testing.T) {
	srv, registry, _ := testServer(t)
	router := srv.buildRouter()

	rm := &room.Room{Name: "Physics Lab", MaxCapacity: 10, IsOpen: true}
	if err := registry.Create(context.Background(), rm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms/"+rm.ID+"/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var st status.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if st.RoomID != rm.ID {
		t.Errorf("room_id = %q, want %q", st.RoomID, rm.ID)
	}
	if st.Color != status.ColorGreen {
		t.Errorf("color = %q, want green for empty open room", st.Color)
	}
}

func TestDefaultStatus_CreatesDefaultRoom(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var st status.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if st.RoomName != room.DefaultRoomName {
		t.Errorf("room_name = %q, want %q", st.RoomName, room.DefaultRoomName)
	}
	if !st.IsOpen {
		t.Error("default room should start open")
	}
}

// ─── Sensor Endpoint Tests ─────────────────────────────────────────

func TestListSensors(t *testing.T) {
	srv, _, directory := testServer(t)
	router := srv.buildRouter()

	if _, _, err := directory.Resolve(context.Background(), "esp32-01"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(resp["count"].(float64)) != 1 {
		t.Errorf("count = %v, want 1", resp["count"])
	}
}

func TestGetSensor_NotFound(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors/sen-missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUpdateSensor_ReassignRoom(t *testing.T) {
	srv, registry, directory := testServer(t)
	router := srv.buildRouter()

	sn, _, err := directory.Resolve(context.Background(), "esp32-02")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	target := &room.Room{Name: "Target Lab"}
	if err := registry.Create(context.Background(), target); err != nil {
		t.Fatalf("Create room: %v", err)
	}

	body := `{"name": "front door", "kind": "door", "room_id": "` + target.ID + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sensors/"+sn.ID, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var updated sensor.Sensor
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if updated.Name != "front door" {
		t.Errorf("name = %q, want %q", updated.Name, "front door")
	}
	if updated.Kind != sensor.KindDoor {
		t.Errorf("kind = %q, want door", updated.Kind)
	}
	if updated.RoomID == nil || *updated.RoomID != target.ID {
		t.Errorf("room_id = %v, want %q", updated.RoomID, target.ID)
	}
	if updated.ExternalID != "esp32-02" {
		t.Errorf("external_id = %q, must not change", updated.ExternalID)
	}
}

func TestUpdateSensor_UnknownRoom(t *testing.T) {
	srv, _, directory := testServer(t)
	router := srv.buildRouter()

	sn, _, err := directory.Resolve(context.Background(), "esp32-03")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	body := `{"room_id": "room-missing"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sensors/"+sn.ID, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestFixOrphanedSensors(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sensors/fix-orphans", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if int(resp["fixed"].(float64)) != 0 {
		t.Errorf("fixed = %v, want 0 with no orphans", resp["fixed"])
	}
}

// ─── Event Log Endpoint Tests ──────────────────────────────────────

func TestListEvents_Empty(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var result eventlog.ListResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.Total != 0 {
		t.Errorf("total = %d, want 0", result.Total)
	}
	if result.Events == nil {
		t.Error("events should be an empty array, not null")
	}
}

func TestListEvents_InvalidParams(t *testing.T) {
	srv, _, _ := testServer(t)
	router := srv.buildRouter()

	tests := []struct {
		name string
		url  string
	}{
		{"bad limit", "/api/v1/events?limit=abc"},
		{"negative limit", "/api/v1/events?limit=-1"},
		{"bad offset", "/api/v1/events?offset=x"},
		{"bad type", "/api/v1/events?type=window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

// ─── WebSocket Hub Tests ───────────────────────────────────────────

func TestHub_BroadcastToSubscribed(t *testing.T) {
	log := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{status.ChannelRoomStatus: {}},
	}
	hub.Register(client)

	hub.Broadcast(status.ChannelRoomStatus, map[string]any{"room_id": "room-1", "color": "green"})

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		if err := json.Unmarshal(msg, &wsMsg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wsMsg.EventType != status.ChannelRoomStatus {
			t.Errorf("event_type = %q, want %q", wsMsg.EventType, status.ChannelRoomStatus)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for broadcast message")
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	log := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{"other.channel": {}},
	}
	hub.Register(client)

	hub.Broadcast(status.ChannelRoomStatus, map[string]any{"room_id": "room-1"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
		// OK — no message received
	}
}

func TestHub_ClientCount(t *testing.T) {
	log := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	if hub.ClientCount() != 0 {
		t.Errorf("initial client count = %d, want 0", hub.ClientCount())
	}

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}
}

// Hub satisfies the notifier's broadcast dependency.
var _ status.Broadcaster = (*Hub)(nil)
