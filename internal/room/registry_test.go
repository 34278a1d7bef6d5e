package room

import (
	"context"
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db := setupTestDB(t)
	return NewRegistry(NewSQLiteRepository(db), 20, OrientationNormal)
}

func TestEnsureDefaultRoomCreates(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	rm, err := reg.EnsureDefaultRoom(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultRoom: %v", err)
	}
	if rm.Name != DefaultRoomName {
		t.Errorf("Name = %q, want %q", rm.Name, DefaultRoomName)
	}
	if rm.MaxCapacity != 20 {
		t.Errorf("MaxCapacity = %d, want 20", rm.MaxCapacity)
	}
	if rm.Orientation != OrientationNormal {
		t.Errorf("Orientation = %q, want normal", rm.Orientation)
	}
	if !rm.IsOpen {
		t.Error("default room should start open")
	}
}

func TestEnsureDefaultRoomIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	first, err := reg.EnsureDefaultRoom(ctx)
	if err != nil {
		t.Fatalf("first EnsureDefaultRoom: %v", err)
	}
	second, err := reg.EnsureDefaultRoom(ctx)
	if err != nil {
		t.Fatalf("second EnsureDefaultRoom: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("got two different default rooms: %s and %s", first.ID, second.ID)
	}

	rooms, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rooms) != 1 {
		t.Errorf("expected 1 room, got %d", len(rooms))
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	rm := &Room{Name: "Lab 3"}
	if err := reg.Create(ctx, rm); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rm.ID == "" {
		t.Error("ID not generated")
	}
	if rm.MaxCapacity != 20 {
		t.Errorf("MaxCapacity = %d, want default 20", rm.MaxCapacity)
	}
	if rm.Orientation != OrientationNormal {
		t.Errorf("Orientation = %q, want default normal", rm.Orientation)
	}
}

func TestCreateRejectsEmptyName(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.Create(context.Background(), &Room{})
	if !errors.Is(err, ErrInvalidRoom) {
		t.Errorf("Create = %v, want ErrInvalidRoom", err)
	}
}

func TestUpdateShrinkingCapacityClampsOccupancy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	reg := NewRegistry(repo, 20, OrientationNormal)
	ctx := context.Background()

	rm := &Room{Name: "Lab 3", MaxCapacity: 10}
	if err := reg.Create(ctx, rm); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := db.Exec(`UPDATE rooms SET occupancy = 8 WHERE id = ?`, rm.ID); err != nil {
		t.Fatalf("seeding occupancy: %v", err)
	}

	rm.MaxCapacity = 3
	if err := reg.Update(ctx, rm); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := reg.Get(ctx, rm.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MaxCapacity != 3 {
		t.Errorf("MaxCapacity = %d, want 3", got.MaxCapacity)
	}
	if got.Occupancy != 3 {
		t.Errorf("Occupancy = %d, want clamped 3", got.Occupancy)
	}
}

func TestUpdateGrowingCapacityKeepsOccupancy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	reg := NewRegistry(repo, 20, OrientationNormal)
	ctx := context.Background()

	rm := &Room{Name: "Lab 3", MaxCapacity: 10}
	if err := reg.Create(ctx, rm); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := db.Exec(`UPDATE rooms SET occupancy = 8 WHERE id = ?`, rm.ID); err != nil {
		t.Fatalf("seeding occupancy: %v", err)
	}

	rm.MaxCapacity = 30
	if err := reg.Update(ctx, rm); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := reg.Get(ctx, rm.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Occupancy != 8 {
		t.Errorf("Occupancy = %d, want 8", got.Occupancy)
	}
}

func TestUpdateRejectsInvalidOrientation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	rm := &Room{Name: "Lab 3"}
	if err := reg.Create(ctx, rm); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rm.Orientation = "sideways"
	if err := reg.Update(ctx, rm); !errors.Is(err, ErrInvalidRoom) {
		t.Errorf("Update = %v, want ErrInvalidRoom", err)
	}
}
