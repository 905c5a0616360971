package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Subhash2005/equi-bridge/internal/layout"
	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/platform"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

func (s *Server) handleWorkerRegister(w http.ResponseWriter, r *http.Request) {
	var req models.WorkerRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserEmail == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_email and name are required")
		return
	}

	existing, err := s.repo.GetDailyWorker(r.Context(), req.UserEmail)
	if err != nil {
		slog.Error("failed to lookup worker", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register worker")
		return
	}

	if existing != nil {
		if err := s.repo.RefreshDailyWorker(r.Context(), req.UserEmail, req.Location, req.ProblemType, req.PhotoURL); err != nil {
			slog.Error("failed to refresh worker", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to register worker")
			return
		}
		worker, err := s.repo.GetDailyWorker(r.Context(), req.UserEmail)
		if err != nil {
			slog.Error("failed to reload worker", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to register worker")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Welcome back",
			"worker":  worker,
		})
		return
	}

	worker := &models.DailyWorker{
		ID:          uuid.New().String(),
		UserEmail:   req.UserEmail,
		Name:        req.Name,
		Location:    req.Location,
		ProblemType: req.ProblemType,
		PhotoURL:    req.PhotoURL,
		CreatedAt:   time.Now().UTC(),
		LastSeen:    time.Now().UTC(),
	}

	if err := s.repo.CreateDailyWorker(r.Context(), worker); err != nil {
		slog.Error("failed to create worker", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register worker")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Worker registered",
		"worker":  worker,
	})
}

func (s *Server) handleWorkerMe(w http.ResponseWriter, r *http.Request) {
	worker, ok := s.requireWorker(w, r, chi.URLParam(r, "email"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, worker)
}

func (s *Server) handlePostProblem(w http.ResponseWriter, r *http.Request) {
	var req models.PostProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Title == "" || req.Pay <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "title and a positive pay are required")
		return
	}

	listing := &models.WorkListing{
		ID:          uuid.New().String(),
		UserEmail:   req.UserEmail,
		Title:       req.Title,
		Location:    req.Location,
		ProblemType: req.ProblemType,
		PhotoURL:    req.PhotoURL,
		Description: req.Description,
		Pay:         req.Pay,
		Status:      models.JobPosted,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateWorkListing(r.Context(), listing); err != nil {
		slog.Error("failed to create work listing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to post problem")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Problem posted",
		"listing": listing,
	})
}

func (s *Server) handleOpenWork(w http.ResponseWriter, r *http.Request) {
	listings, err := s.repo.ListOpenWork(r.Context())
	if err != nil {
		slog.Error("failed to list open work", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list work")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"listings": listings,
		"count":    len(listings),
	})
}

func (s *Server) handleNearbyWorkers(w http.ResponseWriter, r *http.Request) {
	filters := nearbyFiltersFromQuery(r)

	workers, err := s.repo.ListNearbyWorkers(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list nearby workers", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list workers")
		return
	}

	public := make([]models.NearbyWorker, 0, len(workers))
	for _, worker := range workers {
		public = append(public, worker.PublicView())
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"workers": public,
		"count":   len(public),
	})
}

func (s *Server) handleWorkMap(w http.ResponseWriter, r *http.Request) {
	workers, err := s.repo.ListNearbyWorkers(r.Context(), nearbyFiltersFromQuery(r))
	if err != nil {
		slog.Error("failed to list workers for map", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to build map")
		return
	}

	listings, err := s.repo.ListOpenWork(r.Context())
	if err != nil {
		slog.Error("failed to list work for map", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to build map")
		return
	}

	items := make([]layout.Item, 0, len(workers)+len(listings))
	public := make([]models.NearbyWorker, 0, len(workers))
	for _, worker := range workers {
		items = append(items, layout.Item{ID: worker.ID, Kind: layout.KindWorker})
		public = append(public, worker.PublicView())
	}
	for _, listing := range listings {
		items = append(items, layout.Item{ID: listing.ID, Kind: layout.KindJob})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"positions": layout.Place(items),
		"workers":   public,
		"jobs":      listings,
	})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil || !s.geocoder.Available() {
		respondError(w, http.StatusServiceUnavailable, "geocode_unavailable", "Reverse geocoding is not configured")
		return
	}

	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "lat and lon query parameters are required")
		return
	}

	place, err := s.geocoder.Locate(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, platform.ErrUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "geocode_unavailable", "Reverse geocoding is not configured")
			return
		}
		slog.Error("reverse geocode failed", "error", err)
		respondError(w, http.StatusBadGateway, "geocode_failed", "failed to resolve location")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"location": place})
}

func (s *Server) handleAcceptWork(w http.ResponseWriter, r *http.Request) {
	var req models.AcceptJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, ok := s.requireWorker(w, r, req.UserEmail); !ok {
		return
	}

	listing, err := s.repo.GetWorkListing(r.Context(), req.JobID)
	if err != nil {
		slog.Error("failed to lookup listing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to accept job")
		return
	}
	if listing == nil {
		respondError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	if err := s.repo.AcceptWorkListing(r.Context(), req.JobID, req.UserEmail); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusConflict, "conflict", "Job is no longer open")
			return
		}
		slog.Error("failed to accept listing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to accept job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Job '%s' accepted!", listing.Title),
		"pay":     listing.Pay,
	})
}

func (s *Server) handleCompleteWork(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	worker, ok := s.requireWorker(w, r, req.UserEmail)
	if !ok {
		return
	}

	listing, err := s.repo.GetWorkListing(r.Context(), req.JobID)
	if err != nil {
		slog.Error("failed to lookup listing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to complete job")
		return
	}
	if listing == nil || listing.AcceptedBy != req.UserEmail {
		respondError(w, http.StatusNotFound, "not_found", "Job not found or not assigned to you")
		return
	}

	if err := s.repo.CompleteWorkListing(r.Context(), req.JobID, req.CompletionVideoURL, req.AIVerified); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusConflict, "conflict", "Job is not in an accepted state")
			return
		}
		slog.Error("failed to complete listing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to complete job")
		return
	}

	if err := s.repo.AddWorkerEarnings(r.Context(), req.UserEmail, listing.Pay); err != nil {
		slog.Error("failed to credit worker", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to credit payout")
		return
	}

	description := fmt.Sprintf("Completed: %s", listing.Title)
	if req.AIVerified {
		description += " (AI-verified)"
	}
	s.recordLedger(r, req.UserEmail, models.LedgerCredit, listing.Pay, description)

	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Job completed!",
		"pay":         listing.Pay,
		"new_balance": worker.Balance + listing.Pay,
	})
}

func (s *Server) handleWorkerRevenue(w http.ResponseWriter, r *http.Request) {
	worker, ok := s.requireWorker(w, r, chi.URLParam(r, "email"))
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"balance":         worker.Balance,
		"total_earned":    worker.TotalEarned,
		"invested_amount": worker.InvestedAmount,
		"auto_invest":     worker.AutoInvest,
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	worker, ok := s.requireWorker(w, r, req.UserEmail)
	if !ok {
		return
	}

	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "a positive amount is required")
		return
	}
	if req.Amount > worker.Balance {
		respondError(w, http.StatusBadRequest, "insufficient_balance", "Insufficient balance")
		return
	}

	if err := s.repo.AdjustWorkerBalance(r.Context(), req.UserEmail, -req.Amount); err != nil {
		slog.Error("failed to withdraw", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to withdraw")
		return
	}

	s.recordLedger(r, req.UserEmail, models.LedgerDebit, req.Amount, "Withdrawal to bank account")

	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Withdrawal successful",
		"new_balance": worker.Balance - req.Amount,
	})
}

func (s *Server) handleToggleInvest(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleInvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	worker, ok := s.requireWorker(w, r, req.UserEmail)
	if !ok {
		return
	}

	next := !worker.AutoInvest
	if err := s.repo.SetAutoInvest(r.Context(), req.UserEmail, next); err != nil {
		slog.Error("failed to toggle auto-invest", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to toggle auto-invest")
		return
	}

	message := "Auto-invest disabled"
	if next {
		message = "Auto-invest enabled"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"auto_invest": next,
	})
}

func nearbyFiltersFromQuery(r *http.Request) models.NearbyFilters {
	filters := models.NearbyFilters{
		Location:    r.URL.Query().Get("location"),
		ProblemType: r.URL.Query().Get("problem_type"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	return filters
}

// requireWorker loads a daily worker profile or writes the standard 404
func (s *Server) requireWorker(w http.ResponseWriter, r *http.Request, email string) (*models.DailyWorker, bool) {
	worker, err := s.repo.GetDailyWorker(r.Context(), email)
	if err != nil {
		slog.Error("failed to lookup worker", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load worker")
		return nil, false
	}
	if worker == nil {
		respondError(w, http.StatusNotFound, "not_found", "Worker not found")
		return nil, false
	}
	return worker, true
}
