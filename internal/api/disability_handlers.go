package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

func (s *Server) handleDisabilityRegister(w http.ResponseWriter, r *http.Request) {
	var req models.DisabilityRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserEmail == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_email and name are required")
		return
	}

	existing, err := s.repo.GetDisabilityProfile(r.Context(), req.UserEmail)
	if err != nil {
		slog.Error("failed to lookup disability profile", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	if existing != nil {
		if err := s.repo.RefreshDisabilityProfile(r.Context(), req.UserEmail, req.Name, req.Profession, req.DisabilityType, req.Skills); err != nil {
			slog.Error("failed to refresh disability profile", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
			return
		}
		profile, err := s.repo.GetDisabilityProfile(r.Context(), req.UserEmail)
		if err != nil {
			slog.Error("failed to reload disability profile", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Welcome back",
			"profile": profile,
		})
		return
	}

	profile := &models.DisabilityProfile{
		ID:             uuid.New().String(),
		UserEmail:      req.UserEmail,
		Name:           req.Name,
		IDProof:        req.IDProof,
		Profession:     req.Profession,
		DisabilityType: req.DisabilityType,
		Skills:         req.Skills,
		CreatedAt:      time.Now().UTC(),
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	if err := s.repo.CreateDisabilityProfile(r.Context(), profile); err != nil {
		slog.Error("failed to create disability profile", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Profile registered",
		"profile": profile,
	})
}

func (s *Server) handlePostDisabilityJob(w http.ResponseWriter, r *http.Request) {
	var req models.PostDisabilityJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Title == "" || req.Pay <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "title and a positive pay are required")
		return
	}

	job := &models.DisabilityJob{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Company:        req.Company,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Pay:            req.Pay,
		Profession:     req.Profession,
		Status:         models.JobPosted,
		CreatedAt:      time.Now().UTC(),
	}
	if job.RequiredSkills == nil {
		job.RequiredSkills = []string{}
	}

	if err := s.repo.CreateDisabilityJob(r.Context(), job); err != nil {
		slog.Error("failed to create disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to post job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Job posted",
		"job":     job,
	})
}

func (s *Server) handleDisabilityJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.repo.ListOpenDisabilityJobs(r.Context())
	if err != nil {
		slog.Error("failed to list disability jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list jobs")
		return
	}

	// Match annotations come from the caller's stored profile when one
	// exists; explicit query params override it.
	var skills []string
	profession := r.URL.Query().Get("profession")
	if email := r.URL.Query().Get("user_email"); email != "" {
		if profile, err := s.repo.GetDisabilityProfile(r.Context(), email); err == nil && profile != nil {
			skills = profile.Skills
			if profession == "" {
				profession = profile.Profession
			}
		}
	}

	for _, job := range jobs {
		job.Annotate(skills, profession)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].MatchScore > jobs[j].MatchScore
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleAcceptDisabilityJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	job, err := s.repo.GetDisabilityJob(r.Context(), req.JobID)
	if err != nil {
		slog.Error("failed to lookup disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to accept job")
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	if err := s.repo.AcceptDisabilityJob(r.Context(), req.JobID, req.UserEmail); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusBadRequest, "conflict", "Job is no longer open")
			return
		}
		slog.Error("failed to accept disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to accept job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Job accepted! Please complete it to receive payment.",
		"job_id":  req.JobID,
	})
}

func (s *Server) handleMyActiveJobs(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	jobs, err := s.repo.ListWorkerDisabilityJobs(r.Context(), email)
	if err != nil {
		slog.Error("failed to list active jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list active jobs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleCompleteDisabilityJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.repo.CompleteDisabilityJob(r.Context(), req.JobID, req.UserEmail); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusNotFound, "not_found", "Job not found or not assigned to you")
			return
		}
		slog.Error("failed to complete disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to complete job")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Job marked as complete! Waiting for client approval.",
		"job_id":  req.JobID,
	})
}

func (s *Server) handleApproveDisabilityJob(w http.ResponseWriter, r *http.Request) {
	var req models.JobActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	job, err := s.repo.GetDisabilityJob(r.Context(), req.JobID)
	if err != nil {
		slog.Error("failed to lookup disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to approve job")
		return
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	if err := s.repo.ApproveDisabilityJob(r.Context(), req.JobID); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusBadRequest, "conflict", "Only completed jobs can be approved")
			return
		}
		slog.Error("failed to approve disability job", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to approve job")
		return
	}

	if err := s.repo.AddDisabilityEarnings(r.Context(), job.AcceptedBy, job.Pay); err != nil {
		slog.Error("failed to credit disability earnings", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to credit payout")
		return
	}

	s.recordLedger(r, job.AcceptedBy, models.LedgerCredit, job.Pay,
		fmt.Sprintf("Payment approved for: %s at %s", job.Title, job.Company))

	profile, err := s.repo.GetDisabilityProfile(r.Context(), job.AcceptedBy)
	if err != nil {
		slog.Error("failed to reload disability profile", "error", err)
	}

	resp := map[string]any{
		"message": fmt.Sprintf("Rs.%.0f credited to worker!", job.Pay),
		"pay":     job.Pay,
	}
	if profile != nil {
		resp["total_earnings"] = profile.TotalEarnings
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDisabilityRevenue(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	profile, err := s.repo.GetDisabilityProfile(r.Context(), email)
	if err != nil {
		slog.Error("failed to lookup disability profile", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load revenue")
		return
	}
	if profile == nil {
		respondError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}

	jobs, err := s.repo.ListWorkerDisabilityJobs(r.Context(), email)
	if err != nil {
		slog.Error("failed to list worker jobs", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load revenue")
		return
	}

	pending := 0.0
	for _, job := range jobs {
		if job.Status == models.JobCompleted {
			pending += job.Pay
		}
	}

	respondJSON(w, http.StatusOK, models.DisabilityRevenue{
		DisabilityProfile: *profile,
		PendingEarnings:   pending,
	})
}
