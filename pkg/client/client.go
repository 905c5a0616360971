// Package client is a Go SDK for the EquiBridge API. Authenticate once
// with Login or Register; the client injects the session token on every
// subsequent call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

// Client is a Go SDK for the EquiBridge API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken sets an existing session token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new EquiBridge client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token returns the current session token
func (c *Client) Token() string {
	return c.token
}

// Register creates an account and stores the session token
func (c *Client) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.call(ctx, "POST", "/auth/register", models.RegisterRequest{Email: email, Password: password}, &auth)
	if err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

// Login signs in and stores the session token
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.call(ctx, "POST", "/auth/login", models.LoginRequest{Email: email, Password: password}, &auth)
	if err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

// GoogleSignIn exchanges a Google ID token for a session
func (c *Client) GoogleSignIn(ctx context.Context, credential string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	err := c.call(ctx, "POST", "/auth/google", models.GoogleAuthRequest{Credential: credential}, &auth)
	if err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

// Logout destroys the session and clears the stored token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, "POST", "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Workflow fetches the cross-page workflow state
func (c *Client) Workflow(ctx context.Context) (*models.WorkflowState, error) {
	var state models.WorkflowState
	if err := c.call(ctx, "GET", "/session/workflow", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveWorkflow replaces the cross-page workflow state
func (c *Client) SaveWorkflow(ctx context.Context, state *models.WorkflowState) error {
	return c.call(ctx, "PUT", "/session/workflow", state, nil)
}

// RegisterStudent creates or fetches the student profile
func (c *Client) RegisterStudent(ctx context.Context, req models.StudentRegisterRequest) (*models.Student, error) {
	var result struct {
		Message string          `json:"message"`
		Student *models.Student `json:"student"`
	}
	if err := c.call(ctx, "POST", "/student/register", req, &result); err != nil {
		return nil, err
	}
	return result.Student, nil
}

// Student fetches a student profile by email
func (c *Client) Student(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	if err := c.call(ctx, "GET", "/student/me/"+url.PathEscape(email), nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Organizations lists career organizations, optionally filtered by field
func (c *Client) Organizations(ctx context.Context, field string) ([]*models.Organization, error) {
	path := "/student/organizations"
	if field != "" {
		path += "?field=" + url.QueryEscape(field)
	}
	var result struct {
		Organizations []*models.Organization `json:"organizations"`
		Count         int                    `json:"count"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Organizations, nil
}

// Pipeline fetches an organization with its full roadmap
func (c *Client) Pipeline(ctx context.Context, orgName string) (*models.Organization, error) {
	var org models.Organization
	if err := c.call(ctx, "GET", "/student/pipeline/"+url.PathEscape(orgName), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// SelectOrg joins the student to an organization's pipeline
func (c *Client) SelectOrg(ctx context.Context, email, orgName string) error {
	return c.call(ctx, "POST", "/student/select-org", models.SelectOrgRequest{UserEmail: email, OrgName: orgName}, nil)
}

// UpdateProgress replaces the student's completed roadmap steps
func (c *Client) UpdateProgress(ctx context.Context, req models.ProgressUpdateRequest) (*models.ProgressResponse, error) {
	var progress models.ProgressResponse
	if err := c.call(ctx, "POST", "/student/progress", req, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Curriculum fetches the monthly curriculum for a field, answers stripped
func (c *Client) Curriculum(ctx context.Context, field string) ([]models.SanitizedMonth, error) {
	var result struct {
		Field      string                  `json:"field"`
		Curriculum []models.SanitizedMonth `json:"curriculum"`
	}
	if err := c.call(ctx, "GET", "/student/curriculum/"+url.PathEscape(field), nil, &result); err != nil {
		return nil, err
	}
	return result.Curriculum, nil
}

// SubmitQuiz grades one month's answers server side
func (c *Client) SubmitQuiz(ctx context.Context, req models.QuizSubmitRequest) (*models.QuizSubmitResponse, error) {
	var graded models.QuizSubmitResponse
	if err := c.call(ctx, "POST", "/student/quiz/submit", req, &graded); err != nil {
		return nil, err
	}
	return &graded, nil
}

// JobStatus fetches placement, debt, and the repayment schedule
func (c *Client) JobStatus(ctx context.Context, email string) (*models.JobStatusResponse, error) {
	var status models.JobStatusResponse
	if err := c.call(ctx, "GET", "/student/job-status/"+url.PathEscape(email), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RepayMonth records one month of fund repayment
func (c *Client) RepayMonth(ctx context.Context, email string) (*models.RepaymentResponse, error) {
	var repay models.RepaymentResponse
	if err := c.call(ctx, "POST", "/student/repay-month", models.RepaymentRequest{UserEmail: email}, &repay); err != nil {
		return nil, err
	}
	return &repay, nil
}

// RegisterWorker creates or refreshes a daily worker profile
func (c *Client) RegisterWorker(ctx context.Context, req models.WorkerRegisterRequest) (*models.DailyWorker, error) {
	var result struct {
		Message string              `json:"message"`
		Worker  *models.DailyWorker `json:"worker"`
	}
	if err := c.call(ctx, "POST", "/daily/register", req, &result); err != nil {
		return nil, err
	}
	return result.Worker, nil
}

// PostProblem creates a new work listing
func (c *Client) PostProblem(ctx context.Context, req models.PostProblemRequest) (*models.WorkListing, error) {
	var result struct {
		Message string              `json:"message"`
		Listing *models.WorkListing `json:"listing"`
	}
	if err := c.call(ctx, "POST", "/daily/post-problem", req, &result); err != nil {
		return nil, err
	}
	return result.Listing, nil
}

// OpenWork lists work that is still open to accept
func (c *Client) OpenWork(ctx context.Context) ([]*models.WorkListing, error) {
	var result struct {
		Listings []*models.WorkListing `json:"listings"`
		Count    int                   `json:"count"`
	}
	if err := c.call(ctx, "GET", "/daily/work", nil, &result); err != nil {
		return nil, err
	}
	return result.Listings, nil
}

// NearbyWorkers lists workers around a location
func (c *Client) NearbyWorkers(ctx context.Context, location, problemType string) ([]models.NearbyWorker, error) {
	q := url.Values{}
	if location != "" {
		q.Set("location", location)
	}
	if problemType != "" {
		q.Set("problem_type", problemType)
	}
	path := "/daily/nearby"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result struct {
		Workers []models.NearbyWorker `json:"workers"`
		Count   int                   `json:"count"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Workers, nil
}

// AcceptWork claims an open listing for a worker
func (c *Client) AcceptWork(ctx context.Context, email, jobID string) error {
	return c.call(ctx, "POST", "/daily/accept", models.AcceptJobRequest{UserEmail: email, JobID: jobID}, nil)
}

// CompleteWork marks an accepted listing finished and credits the payout
func (c *Client) CompleteWork(ctx context.Context, req models.CompleteJobRequest) error {
	return c.call(ctx, "POST", "/daily/complete", req, nil)
}

// Withdraw moves money out of the worker's balance
func (c *Client) Withdraw(ctx context.Context, email string, amount float64) error {
	return c.call(ctx, "POST", "/daily/withdraw", models.WithdrawRequest{UserEmail: email, Amount: amount}, nil)
}

// ToggleAutoInvest flips the worker's auto-invest flag
func (c *Client) ToggleAutoInvest(ctx context.Context, email string) error {
	return c.call(ctx, "POST", "/daily/toggle-invest", models.ToggleInvestRequest{UserEmail: email}, nil)
}

// RegisterDisabilityProfile creates or refreshes an inclusive-employment profile
func (c *Client) RegisterDisabilityProfile(ctx context.Context, req models.DisabilityRegisterRequest) (*models.DisabilityProfile, error) {
	var result struct {
		Message string                    `json:"message"`
		Profile *models.DisabilityProfile `json:"profile"`
	}
	if err := c.call(ctx, "POST", "/disability/register", req, &result); err != nil {
		return nil, err
	}
	return result.Profile, nil
}

// DisabilityJobs lists open inclusive jobs ranked by match quality
func (c *Client) DisabilityJobs(ctx context.Context, email string) ([]*models.DisabilityJob, error) {
	path := "/disability/jobs"
	if email != "" {
		path += "?user_email=" + url.QueryEscape(email)
	}
	var result struct {
		Jobs  []*models.DisabilityJob `json:"jobs"`
		Count int                     `json:"count"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// AcceptDisabilityJob claims an open inclusive job
func (c *Client) AcceptDisabilityJob(ctx context.Context, email, jobID string) error {
	return c.call(ctx, "POST", "/disability/accept", models.JobActionRequest{UserEmail: email, JobID: jobID}, nil)
}

// CompleteDisabilityJob marks an accepted inclusive job done, pending approval
func (c *Client) CompleteDisabilityJob(ctx context.Context, email, jobID string) error {
	return c.call(ctx, "POST", "/disability/complete", models.JobActionRequest{UserEmail: email, JobID: jobID}, nil)
}

// ApproveDisabilityJob releases the escrowed payout for a completed job
func (c *Client) ApproveDisabilityJob(ctx context.Context, jobID string) error {
	return c.call(ctx, "POST", "/disability/approve", models.JobActionRequest{JobID: jobID}, nil)
}

// Invest performs one unit gold investment for a worker
func (c *Client) Invest(ctx context.Context, email string) (*models.InvestResponse, error) {
	var result models.InvestResponse
	if err := c.call(ctx, "POST", "/investment/invest", models.InvestRequest{UserEmail: email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvestmentStatus values a user's gold holding
func (c *Client) InvestmentStatus(ctx context.Context, email string) (*models.InvestmentStatus, error) {
	var status models.InvestmentStatus
	if err := c.call(ctx, "GET", "/investment/status/"+url.PathEscape(email), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RecoverInvestment liquidates the holding back to the worker's balance
func (c *Client) RecoverInvestment(ctx context.Context, email string) (*models.RecoverResponse, error) {
	var result models.RecoverResponse
	if err := c.call(ctx, "POST", "/investment/recover", models.RecoverRequest{UserEmail: email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ledger fetches a user's money history, newest first
func (c *Client) Ledger(ctx context.Context, email string, limit int) ([]*models.LedgerEntry, error) {
	path := "/ledger/" + url.PathEscape(email)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var result struct {
		Entries []*models.LedgerEntry `json:"entries"`
		Count   int                   `json:"count"`
	}
	if err := c.call(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// call performs a request and decodes the envelope into out
func (c *Client) call(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
