package models

import "time"

// JobStatus is the lifecycle of a work listing or inclusive job.
// Transitions happen only through explicit action calls, in order:
// posted -> accepted -> completed -> paid.
type JobStatus string

const (
	JobPosted    JobStatus = "posted"
	JobAccepted  JobStatus = "accepted"
	JobCompleted JobStatus = "completed"
	JobPaid      JobStatus = "paid"
)

// IsOpen returns true if the job can still be accepted
func (s JobStatus) IsOpen() bool {
	return s == JobPosted
}

// IsTerminal returns true once payout has happened
func (s JobStatus) IsTerminal() bool {
	return s == JobPaid
}

// DailyWorker is a gig worker's profile and wallet
type DailyWorker struct {
	ID             string    `json:"id"`
	UserEmail      string    `json:"user_email"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	ProblemType    string    `json:"problem_type,omitempty"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	Balance        float64   `json:"balance"`
	TotalEarned    float64   `json:"total_earned"`
	InvestedAmount float64   `json:"invested_amount"`
	AutoInvest     bool      `json:"auto_invest"`
	CreatedAt      time.Time `json:"created_at"`
	LastSeen       time.Time `json:"last_seen"`
}

// NearbyWorker is the public view of a worker, wallet fields stripped
type NearbyWorker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	ProblemType string `json:"problem_type,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// PublicView strips wallet fields before a worker is shown to other users
func (w *DailyWorker) PublicView() NearbyWorker {
	return NearbyWorker{
		ID:          w.ID,
		Name:        w.Name,
		Location:    w.Location,
		ProblemType: w.ProblemType,
		PhotoURL:    w.PhotoURL,
	}
}

// WorkListing is a posted problem that a worker can accept and complete
type WorkListing struct {
	ID                 string    `json:"id"`
	UserEmail          string    `json:"user_email,omitempty"`
	Title              string    `json:"title"`
	Location           string    `json:"location"`
	ProblemType        string    `json:"problem_type"`
	PhotoURL           string    `json:"photo_url,omitempty"`
	Description        string    `json:"description,omitempty"`
	Pay                float64   `json:"pay"`
	Status             JobStatus `json:"status"`
	AcceptedBy         string    `json:"accepted_by,omitempty"`
	CompletionVideoURL string    `json:"completion_video_url,omitempty"`
	AIVerified         bool      `json:"ai_verified"`
	CreatedAt          time.Time `json:"created_at"`
}

// WorkerRegisterRequest creates or refreshes a worker profile
type WorkerRegisterRequest struct {
	UserEmail   string `json:"user_email"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	ProblemType string `json:"problem_type,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// PostProblemRequest creates a new work listing
type PostProblemRequest struct {
	UserEmail   string  `json:"user_email"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	ProblemType string  `json:"problem_type"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	Description string  `json:"description,omitempty"`
	Pay         float64 `json:"pay"`
}

// AcceptJobRequest claims a posted job for a worker
type AcceptJobRequest struct {
	UserEmail string `json:"user_email"`
	JobID     string `json:"job_id"`
}

// CompleteJobRequest marks an accepted job finished
type CompleteJobRequest struct {
	UserEmail          string `json:"user_email"`
	JobID              string `json:"job_id"`
	CompletionVideoURL string `json:"completion_video_url,omitempty"`
	AIVerified         bool   `json:"ai_verified,omitempty"`
}

// WithdrawRequest moves money out of the worker's balance
type WithdrawRequest struct {
	UserEmail string  `json:"user_email"`
	Amount    float64 `json:"amount"`
}

// ToggleInvestRequest flips the worker's auto-invest flag
type ToggleInvestRequest struct {
	UserEmail string `json:"user_email"`
}

// NearbyFilters selects workers by problem type and location substring
type NearbyFilters struct {
	Location    string
	ProblemType string
	Limit       int
}
