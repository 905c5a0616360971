package storage

import (
	"context"
	"errors"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

// Common storage errors
var (
	// ErrConflict is returned when a guarded state transition finds the
	// row in a different state than required (e.g. accepting a job that
	// is no longer posted).
	ErrConflict = errors.New("conflict")
)

// Repository defines the interface for EquiBridge persistence
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Students
	CreateStudent(ctx context.Context, s *models.Student) error
	GetStudent(ctx context.Context, email string) (*models.Student, error)
	SetSelectedOrg(ctx context.Context, email, orgName string) error
	UpdateStudentProgress(ctx context.Context, email string, steps []int, funding, pct int) error
	SaveQuizResult(ctx context.Context, email, monthKey string, result models.QuizResult) error
	SetJobPlaced(ctx context.Context, email string) error
	ApplyRepayment(ctx context.Context, email string, amount int) error

	// Organizations
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, name string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, field string) ([]*models.Organization, error)
	CountOrganizations(ctx context.Context) (int, error)

	// Work listings
	CreateWorkListing(ctx context.Context, l *models.WorkListing) error
	GetWorkListing(ctx context.Context, id string) (*models.WorkListing, error)
	ListOpenWork(ctx context.Context) ([]*models.WorkListing, error)
	CountWorkListings(ctx context.Context) (int, error)
	AcceptWorkListing(ctx context.Context, id, workerEmail string) error
	CompleteWorkListing(ctx context.Context, id, videoURL string, aiVerified bool) error

	// Daily workers
	CreateDailyWorker(ctx context.Context, w *models.DailyWorker) error
	GetDailyWorker(ctx context.Context, email string) (*models.DailyWorker, error)
	RefreshDailyWorker(ctx context.Context, email, location, problemType, photoURL string) error
	ListNearbyWorkers(ctx context.Context, filters models.NearbyFilters) ([]*models.DailyWorker, error)
	AddWorkerEarnings(ctx context.Context, email string, amount float64) error
	AdjustWorkerBalance(ctx context.Context, email string, delta float64) error
	ApplyWorkerInvestment(ctx context.Context, email string, amount float64) error
	ResetWorkerInvestment(ctx context.Context, email string, credit float64) error
	SetAutoInvest(ctx context.Context, email string, on bool) error
	ListAutoInvestWorkers(ctx context.Context, minBalance float64) ([]*models.DailyWorker, error)

	// Disability profiles and jobs
	CreateDisabilityProfile(ctx context.Context, p *models.DisabilityProfile) error
	GetDisabilityProfile(ctx context.Context, email string) (*models.DisabilityProfile, error)
	RefreshDisabilityProfile(ctx context.Context, email, name, profession, disabilityType string, skills []string) error
	AddDisabilityEarnings(ctx context.Context, email string, amount float64) error
	CreateDisabilityJob(ctx context.Context, j *models.DisabilityJob) error
	GetDisabilityJob(ctx context.Context, id string) (*models.DisabilityJob, error)
	ListOpenDisabilityJobs(ctx context.Context) ([]*models.DisabilityJob, error)
	CountDisabilityJobs(ctx context.Context) (int, error)
	ListWorkerDisabilityJobs(ctx context.Context, email string) ([]*models.DisabilityJob, error)
	AcceptDisabilityJob(ctx context.Context, id, workerEmail string) error
	CompleteDisabilityJob(ctx context.Context, id, workerEmail string) error
	ApproveDisabilityJob(ctx context.Context, id string) error

	// Investments and ledger
	GetInvestment(ctx context.Context, email string) (*models.Investment, error)
	AccrueInvestment(ctx context.Context, email string, amount, grams float64) error
	ResetInvestment(ctx context.Context, email string) error
	InsertLedger(ctx context.Context, e *models.LedgerEntry) error
	ListLedger(ctx context.Context, email string, limit int) ([]*models.LedgerEntry, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
