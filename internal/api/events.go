package api

import (
	"net/http"
	"strconv"

	"github.com/labcheck/labcheck-core/internal/eventlog"
)

// handleListEvents returns occupancy events, newest first.
//
// Query parameters:
//   - room_id: filter by room
//   - sensor_id: filter by sensor
//   - type: filter by event type ("door" or "passage")
//   - limit: page size (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := eventlog.Filter{
		RoomID:    q.Get("room_id"),
		SensorID:  q.Get("sensor_id"),
		EventType: q.Get("type"),
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	switch filter.EventType {
	case "", string(eventlog.TypeDoor), string(eventlog.TypePassage):
	default:
		writeBadRequest(w, `type must be "door" or "passage"`)
		return
	}

	result, err := s.events.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
