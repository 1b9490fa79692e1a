package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// defaultHistoryLimit bounds history queries when the client omits ?limit=.
const defaultHistoryLimit = 100

// handleRecentHistory returns the most recent connection events across all
// cameras, newest first.
func (s *Server) handleRecentHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is not enabled")
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	events, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeInternalError(w, "failed to query history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleDeviceHistory returns connection events for one camera, newest first.
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history is not enabled")
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	events, err := s.history.ForDevice(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("history query failed", "stable_id", id, "error", err)
		writeInternalError(w, "failed to query history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// parseLimit reads the ?limit= query parameter, writing a 400 on bad input.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeBadRequest(w, "limit must be a positive integer")
		return 0, false
	}
	return limit, true
}
