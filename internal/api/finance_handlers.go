package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Subhash2005/equi-bridge/internal/invest"
	"github.com/Subhash2005/equi-bridge/internal/models"
)

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req models.InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := invest.Execute(r.Context(), s.repo, req.UserEmail)
	if err != nil {
		switch {
		case errors.Is(err, invest.ErrInsufficientBalance):
			respondError(w, http.StatusBadRequest, "insufficient_balance", "Insufficient balance")
		default:
			slog.Error("investment failed", "email", req.UserEmail, "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to invest")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleInvestmentStatus(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	status, err := invest.Status(r.Context(), s.repo, email)
	if err != nil {
		slog.Error("failed to load investment status", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load investment status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req models.RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := invest.Recover(r.Context(), s.repo, req.UserEmail)
	if err != nil {
		switch {
		case errors.Is(err, invest.ErrNothingInvested):
			respondError(w, http.StatusBadRequest, "nothing_invested", "No investments to recover")
		default:
			slog.Error("recovery failed", "email", req.UserEmail, "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to recover investment")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, err := s.repo.ListLedger(r.Context(), email, limit)
	if err != nil {
		slog.Error("failed to list ledger", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load ledger")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
