package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

// repaymentRate is the share of monthly salary routed to fund repayment
const repaymentRate = 0.10

func (s *Server) handleStudentRegister(w http.ResponseWriter, r *http.Request) {
	var req models.StudentRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserEmail == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_email and name are required")
		return
	}

	existing, err := s.repo.GetStudent(r.Context(), req.UserEmail)
	if err != nil {
		slog.Error("failed to lookup student", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register student")
		return
	}
	if existing != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Existing student found",
			"student": existing,
		})
		return
	}

	student := &models.Student{
		ID:              uuid.New().String(),
		UserEmail:       req.UserEmail,
		Name:            req.Name,
		Age:             req.Age,
		DocumentID:      req.DocumentID,
		FieldOfInterest: req.FieldOfInterest,
		CompletedSteps:  []int{},
		QuizResults:     map[string]models.QuizResult{},
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.CreateStudent(r.Context(), student); err != nil {
		slog.Error("failed to create student", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register student")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Student registered",
		"student": student,
	})
}

func (s *Server) handleStudentMe(w http.ResponseWriter, r *http.Request) {
	student, ok := s.requireStudent(w, r, chi.URLParam(r, "email"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, student)
}

func (s *Server) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")

	orgs, err := s.repo.ListOrganizations(r.Context(), field)
	if err != nil {
		slog.Error("failed to list organizations", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list organizations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"organizations": orgs,
		"count":         len(orgs),
	})
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "org")

	// Roadmaps live in the catalog; the rows in Postgres only carry the
	// listing fields.
	org := s.catalog.Organization(name)
	if org == nil {
		respondError(w, http.StatusNotFound, "not_found", "Organization not found")
		return
	}

	respondJSON(w, http.StatusOK, org)
}

func (s *Server) handleSelectOrg(w http.ResponseWriter, r *http.Request) {
	var req models.SelectOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, ok := s.requireStudent(w, r, req.UserEmail); !ok {
		return
	}

	if s.catalog.Organization(req.OrgName) == nil {
		respondError(w, http.StatusNotFound, "not_found", "Organization not found")
		return
	}

	if err := s.repo.SetSelectedOrg(r.Context(), req.UserEmail, req.OrgName); err != nil {
		slog.Error("failed to select org", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to join organization")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":      fmt.Sprintf("Joined %s", req.OrgName),
		"selected_org": req.OrgName,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	student, ok := s.requireStudent(w, r, req.UserEmail)
	if !ok {
		return
	}

	orgName := req.OrgName
	if orgName == "" {
		orgName = student.SelectedOrg
	}
	org := s.catalog.Organization(orgName)
	if org == nil {
		respondError(w, http.StatusNotFound, "not_found", "Organization not found")
		return
	}

	steps := req.CompletedSteps
	if steps == nil {
		steps = []int{}
	}

	funding := 0
	for _, step := range org.Roadmap {
		for _, done := range steps {
			if step.Step == done {
				funding += step.EstimatedFee
			}
		}
	}

	pct := 0
	if len(org.Roadmap) > 0 {
		pct = int(math.Round(float64(len(steps)) / float64(len(org.Roadmap)) * 100))
	}

	if err := s.repo.UpdateStudentProgress(r.Context(), req.UserEmail, steps, funding, pct); err != nil {
		slog.Error("failed to update progress", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update progress")
		return
	}

	respondJSON(w, http.StatusOK, models.ProgressResponse{
		CompletedSteps:       steps,
		TotalFundingReceived: funding,
		ProgressPct:          pct,
		TotalSteps:           len(org.Roadmap),
	})
}

func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")

	months := s.catalog.SanitizedCurriculum(field)
	respondJSON(w, http.StatusOK, map[string]any{
		"field":      field,
		"curriculum": months,
	})
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.QuizSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	student, ok := s.requireStudent(w, r, req.UserEmail)
	if !ok {
		return
	}

	graded, err := s.catalog.Grade(student.FieldOfInterest, req.Month, req.Answers)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_month", err.Error())
		return
	}

	month := s.catalog.Month(student.FieldOfInterest, req.Month)
	result := models.QuizResult{
		Month:          req.Month,
		Topic:          month.Topic,
		Score:          graded.Score,
		Total:          graded.Total,
		PctScore:       graded.PctScore,
		Passed:         graded.Passed,
		TaskSubmitted:  req.TaskSubmission != "",
		TaskSubmission: req.TaskSubmission,
		SubmittedAt:    time.Now().UTC(),
	}

	if err := s.repo.SaveQuizResult(r.Context(), req.UserEmail, strconv.Itoa(req.Month), result); err != nil {
		slog.Error("failed to save quiz result", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save quiz result")
		return
	}

	respondJSON(w, http.StatusOK, graded)
}

func (s *Server) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	student, ok := s.requireStudent(w, r, chi.URLParam(r, "email"))
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"field":   student.FieldOfInterest,
		"results": student.QuizResults,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	student, ok := s.requireStudent(w, r, chi.URLParam(r, "email"))
	if !ok {
		return
	}

	if !student.JobPlaced {
		if err := s.repo.SetJobPlaced(r.Context(), student.UserEmail); err != nil {
			slog.Error("failed to mark job placed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to load job status")
			return
		}
		student.JobPlaced = true
		student.Salary = models.DefaultSalary
	}

	salary := student.Salary
	if salary == 0 {
		salary = models.DefaultSalary
	}

	monthly := int(math.Round(float64(salary) * repaymentRate))
	remaining := student.TotalFundingReceived - student.RepaymentPaid
	if remaining < 0 {
		remaining = 0
	}

	monthsRemaining := 0
	net := salary
	if remaining > 0 {
		monthsRemaining = remaining/monthly + 1
		net = salary - monthly
	}

	var breakdown []models.FundingLine
	if org := s.catalog.Organization(student.SelectedOrg); org != nil {
		for _, step := range org.Roadmap {
			for _, done := range student.CompletedSteps {
				if step.Step != done {
					continue
				}
				// The org fronts every completed step; the student repays
				// out of salary, never out of pocket.
				breakdown = append(breakdown, models.FundingLine{
					Step:      step.Step,
					Title:     step.Title,
					OrgFunded: step.EstimatedFee,
				})
			}
		}
	}

	respondJSON(w, http.StatusOK, models.JobStatusResponse{
		Name:                 student.Name,
		Org:                  student.SelectedOrg,
		Field:                student.FieldOfInterest,
		Salary:               salary,
		TotalFundingReceived: student.TotalFundingReceived,
		RepaymentPaid:        student.RepaymentPaid,
		RemainingDebt:        remaining,
		MonthlyRepayment:     monthly,
		MonthsRepaid:         student.MonthsRepaid,
		MonthsRemaining:      monthsRemaining,
		NetThisMonth:         net,
		FundingBreakdown:     breakdown,
		CompletedSteps:       student.CompletedSteps,
		ProgressPct:          student.ProgressPct,
	})
}

func (s *Server) handleRepayMonth(w http.ResponseWriter, r *http.Request) {
	var req models.RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	student, ok := s.requireStudent(w, r, req.UserEmail)
	if !ok {
		return
	}

	if !student.JobPlaced {
		respondError(w, http.StatusBadRequest, "not_placed", "No active job placement")
		return
	}

	salary := student.Salary
	if salary == 0 {
		salary = models.DefaultSalary
	}
	monthly := int(math.Round(float64(salary) * repaymentRate))

	remaining := student.TotalFundingReceived - student.RepaymentPaid
	if remaining <= 0 {
		respondJSON(w, http.StatusOK, models.RepaymentResponse{
			TotalPaid: student.RepaymentPaid,
			Message:   "Debt fully repaid!",
		})
		return
	}

	actual := monthly
	if remaining < monthly {
		actual = remaining
	}

	if err := s.repo.ApplyRepayment(r.Context(), req.UserEmail, actual); err != nil {
		slog.Error("failed to apply repayment", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to record repayment")
		return
	}

	s.recordLedger(r, req.UserEmail, models.LedgerDebit, float64(actual),
		fmt.Sprintf("Monthly fund repayment to %s (10%% of salary)", student.SelectedOrg))

	totalPaid := student.RepaymentPaid + actual
	newRemaining := student.TotalFundingReceived - totalPaid
	message := "Payment recorded"
	if newRemaining <= 0 {
		newRemaining = 0
		message = "Debt fully repaid!"
	}

	respondJSON(w, http.StatusOK, models.RepaymentResponse{
		PaidThisMonth: actual,
		TotalPaid:     totalPaid,
		RemainingDebt: newRemaining,
		Message:       message,
	})
}

// requireStudent loads a student profile or writes the standard 404
func (s *Server) requireStudent(w http.ResponseWriter, r *http.Request, email string) (*models.Student, bool) {
	student, err := s.repo.GetStudent(r.Context(), email)
	if err != nil {
		slog.Error("failed to lookup student", "email", email, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load student")
		return nil, false
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "not_found", "Student not found")
		return nil, false
	}
	return student, true
}

// recordLedger appends a money-movement line; failures are logged only
func (s *Server) recordLedger(r *http.Request, email, entryType string, amount float64, description string) {
	entry := &models.LedgerEntry{
		ID:          uuid.New().String(),
		UserEmail:   email,
		Type:        entryType,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.repo.InsertLedger(r.Context(), entry); err != nil {
		slog.Error("failed to insert ledger entry", "email", email, "error", err)
	}
}
