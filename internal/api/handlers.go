package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "equi-bridge",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "database not ready")
		return
	}

	if err := s.sessions.HealthCheck(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "session store not ready")
		return
	}

	// Unavailable capabilities are skipped; a configured one that fails
	// its check degrades readiness.
	for name, err := range s.registry.HealthCheckAll(r.Context()) {
		if err != nil {
			slog.Warn("capability health check failed", "capability", name, "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", "capability "+name+" not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Platform handlers

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.registry.List())
}
