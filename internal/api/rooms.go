package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labcheck/labcheck-core/internal/room"
	"github.com/labcheck/labcheck-core/internal/status"
)

// handleListRooms returns all rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list rooms")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

// handleGetRoom returns a single room by ID.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rm, err := s.rooms.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	writeJSON(w, http.StatusOK, rm)
}

// handleCreateRoom creates a new room.
// Occupancy always starts at zero; only name, capacity, orientation and
// the open flag are taken from the request.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var rm room.Room
	if err := json.NewDecoder(r.Body).Decode(&rm); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	rm.ID = ""
	rm.Occupancy = 0

	if err := s.rooms.Create(r.Context(), &rm); err != nil {
		switch {
		case errors.Is(err, room.ErrInvalidRoom):
			writeBadRequest(w, err.Error())
		case errors.Is(err, room.ErrRoomExists):
			writeConflict(w, "a room with that name already exists")
		default:
			writeInternalError(w, "failed to create room")
		}
		return
	}

	writeJSON(w, http.StatusCreated, rm)
}

// handleUpdateRoom partially updates a room's name, capacity, orientation
// or open flag. Occupancy is not writable through the API; it only moves
// through sensor events.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.rooms.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	occupancy := existing.Occupancy
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id // Ensure ID cannot be changed
	existing.Occupancy = occupancy

	if err := s.rooms.Update(r.Context(), existing); err != nil {
		switch {
		case errors.Is(err, room.ErrInvalidRoom):
			writeBadRequest(w, err.Error())
		case errors.Is(err, room.ErrRoomExists):
			writeConflict(w, "a room with that name already exists")
		case errors.Is(err, room.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		default:
			writeInternalError(w, "failed to update room")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleRoomStatus returns the public status snapshot of a room.
func (s *Server) handleRoomStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rm, err := s.rooms.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	writeJSON(w, http.StatusOK, status.StatusOf(rm))
}

// handleDefaultStatus returns the status snapshot of the default room.
// Creates the default room on first call, same as sensor auto-provisioning.
func (s *Server) handleDefaultStatus(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.EnsureDefaultRoom(r.Context())
	if err != nil {
		writeInternalError(w, "failed to load default room")
		return
	}

	writeJSON(w, http.StatusOK, status.StatusOf(rm))
}

// handleListRoomSensors returns the sensors attached to a room.
func (s *Server) handleListRoomSensors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.rooms.Get(r.Context(), id); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to get room")
		return
	}

	sensors, err := s.sensors.ListByRoom(r.Context(), id)
	if err != nil {
		writeInternalError(w, "failed to list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}
