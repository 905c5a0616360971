package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	state, err := s.sessions.Workflow(r.Context(), sess.Email)
	if err != nil {
		slog.Error("failed to load workflow state", "email", sess.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load workflow state")
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handlePutWorkflow(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var state models.WorkflowState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.sessions.SaveWorkflow(r.Context(), sess.Email, &state); err != nil {
		slog.Error("failed to save workflow state", "email", sess.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save workflow state")
		return
	}

	respondJSON(w, http.StatusOK, &state)
}
