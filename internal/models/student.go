package models

import "time"

// Student holds the career-pipeline profile for a user, keyed by email
type Student struct {
	ID                   string                `json:"id"`
	UserEmail            string                `json:"user_email"`
	Name                 string                `json:"name"`
	Age                  int                   `json:"age"`
	DocumentID           string                `json:"document_id"`
	FieldOfInterest      string                `json:"field_of_interest"`
	SelectedOrg          string                `json:"selected_org,omitempty"`
	CompletedSteps       []int                 `json:"completed_steps"`
	TotalFundingReceived int                   `json:"total_funding_received"`
	ProgressPct          int                   `json:"progress_pct"`
	JobPlaced            bool                  `json:"job_placed"`
	Salary               int                   `json:"salary"`
	RepaymentPaid        int                   `json:"repayment_paid"`
	MonthsRepaid         int                   `json:"months_repaid"`
	QuizResults          map[string]QuizResult `json:"quiz_results"`
	CreatedAt            time.Time             `json:"created_at"`
}

// DefaultSalary is the simulated placement salary in rupees per month.
const DefaultSalary = 50000

// QuizResult records one month's graded submission
type QuizResult struct {
	Month          int       `json:"month"`
	Topic          string    `json:"topic"`
	Score          int       `json:"score"`
	Total          int       `json:"total"`
	PctScore       int       `json:"pct_score"`
	Passed         bool      `json:"passed"`
	TaskSubmitted  bool      `json:"task_submitted"`
	TaskSubmission string    `json:"task_submission,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Organization is a career destination with a funded roadmap
type Organization struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Field        string        `json:"field"`
	Description  string        `json:"description"`
	Logo         string        `json:"logo,omitempty"`
	TotalFunding int           `json:"total_funding"`
	Roadmap      []RoadmapStep `json:"roadmap,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// RoadmapStep is one ordered step of an organization's pipeline
type RoadmapStep struct {
	Step             int      `json:"step" yaml:"step"`
	Title            string   `json:"title" yaml:"title"`
	Duration         string   `json:"duration" yaml:"duration"`
	Description      string   `json:"description" yaml:"description"`
	EstimatedFee     int      `json:"estimated_fee" yaml:"estimated_fee"`
	FundingAvailable bool     `json:"funding_available" yaml:"funding_available"`
	FundingSource    string   `json:"funding_source,omitempty" yaml:"funding_source"`
	FundingAmount    int      `json:"funding_amount" yaml:"funding_amount"`
	Skills           []string `json:"skills,omitempty" yaml:"skills"`
}

// StudentRegisterRequest creates the student profile
type StudentRegisterRequest struct {
	UserEmail       string `json:"user_email"`
	Name            string `json:"name"`
	Age             int    `json:"age"`
	DocumentID      string `json:"document_id"`
	FieldOfInterest string `json:"field_of_interest"`
}

// SelectOrgRequest joins a student to an organization's pipeline
type SelectOrgRequest struct {
	UserEmail string `json:"user_email"`
	OrgName   string `json:"org_name"`
}

// ProgressUpdateRequest replaces the set of completed roadmap steps
type ProgressUpdateRequest struct {
	UserEmail      string `json:"user_email"`
	OrgName        string `json:"org_name"`
	CompletedSteps []int  `json:"completed_steps"`
}

// ProgressResponse reports the recomputed funding and progress totals
type ProgressResponse struct {
	CompletedSteps       []int `json:"completed_steps"`
	TotalFundingReceived int   `json:"total_funding_received"`
	ProgressPct          int   `json:"progress_pct"`
	TotalSteps           int   `json:"total_steps"`
}

// QuizSubmitRequest carries one month's answers plus the practical task
type QuizSubmitRequest struct {
	UserEmail      string `json:"user_email"`
	Month          int    `json:"month"`
	Answers        []int  `json:"answers"`
	TaskSubmission string `json:"task_submission,omitempty"`
}

// QuizSubmitResponse is the graded outcome returned to the student
type QuizSubmitResponse struct {
	Score          int    `json:"score"`
	Total          int    `json:"total"`
	PctScore       int    `json:"pct_score"`
	Passed         bool   `json:"passed"`
	CorrectAnswers []int  `json:"correct_answers"`
	Message        string `json:"message"`
}

// FundingLine is one completed step in the repayment breakdown
type FundingLine struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	OrgFunded   int    `json:"org_funded"`
	StudentPaid int    `json:"student_paid"`
}

// JobStatusResponse summarizes placement, debt, and repayment schedule
type JobStatusResponse struct {
	Name                 string        `json:"name"`
	Org                  string        `json:"org"`
	Field                string        `json:"field"`
	Salary               int           `json:"salary"`
	TotalFundingReceived int           `json:"total_funding_received"`
	RepaymentPaid        int           `json:"repayment_paid"`
	RemainingDebt        int           `json:"remaining_debt"`
	MonthlyRepayment     int           `json:"monthly_repayment"`
	MonthsRepaid         int           `json:"months_repaid"`
	MonthsRemaining      int           `json:"months_remaining"`
	NetThisMonth         int           `json:"net_this_month"`
	FundingBreakdown     []FundingLine `json:"funding_breakdown"`
	CompletedSteps       []int         `json:"completed_steps"`
	ProgressPct          int           `json:"progress_pct"`
}

// RepaymentRequest records one month's repayment for a student
type RepaymentRequest struct {
	UserEmail string `json:"user_email"`
}

// RepaymentResponse reports the repayment just applied
type RepaymentResponse struct {
	PaidThisMonth int    `json:"paid_this_month"`
	TotalPaid     int    `json:"total_paid"`
	RemainingDebt int    `json:"remaining_debt"`
	Message       string `json:"message"`
}
