package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds per-component health probes so one stuck
// dependency cannot hang the whole endpoint.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Default room snapshot, the single endpoint displays poll on boot
		r.Get("/status", s.handleDefaultStatus)

		// Room endpoints
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.handleListRooms)
			r.Post("/", s.handleCreateRoom)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRoom)
				r.Patch("/", s.handleUpdateRoom)
				r.Get("/status", s.handleRoomStatus)
				r.Get("/sensors", s.handleListRoomSensors)
			})
		})

		// Sensor endpoints
		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/fix-orphans", s.handleFixOrphanedSensors)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSensor)
				r.Patch("/", s.handleUpdateSensor)
			})
		})

		// Occupancy event log
		r.Get("/events", s.handleListEvents)

		// WebSocket for room status push
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status, probing each registered
// component.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if len(s.health) > 0 {
		components := make(map[string]string, len(s.health))
		healthy := true
		for name, check := range s.health {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			if err := check(ctx); err != nil {
				components[name] = err.Error()
				healthy = false
			} else {
				components[name] = "ok"
			}
			cancel()
		}
		resp["components"] = components
		if !healthy {
			resp["status"] = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
