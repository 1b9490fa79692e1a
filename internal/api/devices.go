package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stablecam/stablecam/internal/registry"
)

// handleListDevices returns every registered camera.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := s.monitor.List()
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single registered camera by stable ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.monitor.GetByID(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleDetect runs a one-shot hardware scan and returns the connected
// cameras without touching the registry.
func (s *Server) handleDetect(w http.ResponseWriter, _ *http.Request) {
	cameras, err := s.monitor.Detect()
	if err != nil {
		s.logger.Error("detection failed", "error", err)
		writeInternalError(w, "detection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cameras": cameras, "count": len(cameras)})
}

// registerRequest is the body for POST /register.
type registerRequest struct {
	SystemIndex int `json:"system_index"`
}

// registerResponse is the body returned by POST /register.
type registerResponse struct {
	StableID string `json:"stable_id"`
	Created  bool   `json:"created"`
}

// handleRegister detects connected cameras and registers the one at the
// requested system index. Registering an already-known camera is idempotent
// and returns created=false.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.SystemIndex < 0 {
		writeBadRequest(w, "system_index must not be negative")
		return
	}

	cameras, err := s.monitor.Detect()
	if err != nil {
		s.logger.Error("detection failed", "error", err)
		writeInternalError(w, "detection failed")
		return
	}

	for _, cam := range cameras {
		if cam.SystemIndex != req.SystemIndex {
			continue
		}

		stableID, created, err := s.monitor.Register(cam)
		if err != nil {
			s.logger.Error("registration failed", "system_index", req.SystemIndex, "error", err)
			writeInternalError(w, "registration failed")
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, registerResponse{StableID: stableID, Created: created})
		return
	}

	writeNotFound(w, "no camera at that system index")
}
