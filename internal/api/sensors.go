package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labcheck/labcheck-core/internal/room"
	"github.com/labcheck/labcheck-core/internal/sensor"
)

// handleListSensors returns all sensors, with optional query filters.
//
// Query parameters:
//   - room_id: filter by room
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		sensors, err := s.sensors.ListByRoom(ctx, roomID)
		if err != nil {
			writeInternalError(w, "failed to list sensors")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
		return
	}

	sensors, err := s.sensors.List(ctx)
	if err != nil {
		writeInternalError(w, "failed to list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleGetSensor returns a single sensor by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sn, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrSensorNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to get sensor")
		return
	}

	writeJSON(w, http.StatusOK, sn)
}

// handleUpdateSensor partially updates a sensor: rename, change kind,
// reassign to a room, or toggle the active flag. The external ID is the
// sensor's wire identity and cannot be changed.
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrSensorNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to get sensor")
		return
	}

	externalID := existing.ExternalID
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id
	existing.ExternalID = externalID

	if err := s.sensors.Update(r.Context(), existing); err != nil {
		switch {
		case errors.Is(err, sensor.ErrInvalidSensor):
			writeBadRequest(w, err.Error())
		case errors.Is(err, room.ErrRoomNotFound):
			writeBadRequest(w, "target room does not exist")
		case errors.Is(err, sensor.ErrSensorNotFound):
			writeNotFound(w, "sensor not found")
		default:
			writeInternalError(w, "failed to update sensor")
		}
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// handleFixOrphanedSensors reattaches all sensors without a room to the
// default room.
func (s *Server) handleFixOrphanedSensors(w http.ResponseWriter, r *http.Request) {
	fixed, failed, err := s.sensors.FixOrphanedSensors(r.Context())
	if err != nil {
		writeInternalError(w, "failed to fix orphaned sensors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fixed":  fixed,
		"failed": failed,
	})
}
