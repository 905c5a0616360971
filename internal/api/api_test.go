package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subhash2005/equi-bridge/internal/catalog"
	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/platform"
	"github.com/Subhash2005/equi-bridge/internal/session"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

// fakeRepo is an in-memory Repository for handler tests
type fakeRepo struct {
	mu          sync.Mutex
	users       map[string]*models.User
	students    map[string]*models.Student
	orgs        map[string]*models.Organization
	listings    map[string]*models.WorkListing
	workers     map[string]*models.DailyWorker
	profiles    map[string]*models.DisabilityProfile
	disJobs     map[string]*models.DisabilityJob
	investments map[string]*models.Investment
	ledger      []*models.LedgerEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[string]*models.User{},
		students:    map[string]*models.Student{},
		orgs:        map[string]*models.Organization{},
		listings:    map[string]*models.WorkListing{},
		workers:     map[string]*models.DailyWorker{},
		profiles:    map[string]*models.DisabilityProfile{},
		disJobs:     map[string]*models.DisabilityJob{},
		investments: map[string]*models.Investment{},
	}
}

func (f *fakeRepo) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = u
	return nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeRepo) CreateStudent(_ context.Context, s *models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students[s.UserEmail] = s
	return nil
}

func (f *fakeRepo) GetStudent(_ context.Context, email string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[email]
	if !ok {
		return nil, nil
	}
	// Return a snapshot so handler-side mutations via ApplyRepayment are
	// not visible through a previously fetched struct, matching the real
	// repository's row-scan semantics.
	copy := *s
	return &copy, nil
}

func (f *fakeRepo) SetSelectedOrg(_ context.Context, email, orgName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[email]
	if !ok {
		return fmt.Errorf("student not found: %s", email)
	}
	s.SelectedOrg = orgName
	s.CompletedSteps = []int{}
	s.TotalFundingReceived = 0
	s.ProgressPct = 0
	return nil
}

func (f *fakeRepo) UpdateStudentProgress(_ context.Context, email string, steps []int, funding, pct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[email]
	if !ok {
		return fmt.Errorf("student not found: %s", email)
	}
	s.CompletedSteps = steps
	s.TotalFundingReceived = funding
	s.ProgressPct = pct
	return nil
}

func (f *fakeRepo) SaveQuizResult(_ context.Context, email, monthKey string, result models.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[email]
	if !ok {
		return fmt.Errorf("student not found: %s", email)
	}
	if s.QuizResults == nil {
		s.QuizResults = map[string]models.QuizResult{}
	}
	s.QuizResults[monthKey] = result
	return nil
}

func (f *fakeRepo) SetJobPlaced(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[email]; ok {
		s.JobPlaced = true
	}
	return nil
}

func (f *fakeRepo) ApplyRepayment(_ context.Context, email string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[email]
	if !ok {
		return fmt.Errorf("student not found: %s", email)
	}
	s.RepaymentPaid += amount
	s.MonthsRepaid++
	return nil
}

func (f *fakeRepo) CreateOrganization(_ context.Context, org *models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orgs[org.Name]; !ok {
		f.orgs[org.Name] = org
	}
	return nil
}

func (f *fakeRepo) GetOrganization(_ context.Context, name string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orgs[name], nil
}

func (f *fakeRepo) ListOrganizations(_ context.Context, field string) ([]*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Organization
	for _, org := range f.orgs {
		if field == "" || org.Field == field {
			out = append(out, org)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) CountOrganizations(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orgs), nil
}

func (f *fakeRepo) CreateWorkListing(_ context.Context, l *models.WorkListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = l
	return nil
}

func (f *fakeRepo) GetWorkListing(_ context.Context, id string) (*models.WorkListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings[id], nil
}

func (f *fakeRepo) ListOpenWork(_ context.Context) ([]*models.WorkListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.WorkListing
	for _, l := range f.listings {
		if l.Status == models.JobPosted {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CountWorkListings(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listings), nil
}

func (f *fakeRepo) AcceptWorkListing(_ context.Context, id, workerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.Status != models.JobPosted {
		return fmt.Errorf("listing not open: %w", storage.ErrConflict)
	}
	l.Status = models.JobAccepted
	l.AcceptedBy = workerEmail
	return nil
}

func (f *fakeRepo) CompleteWorkListing(_ context.Context, id, videoURL string, aiVerified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.Status != models.JobAccepted {
		return fmt.Errorf("listing not accepted: %w", storage.ErrConflict)
	}
	l.Status = models.JobCompleted
	l.CompletionVideoURL = videoURL
	l.AIVerified = aiVerified
	return nil
}

func (f *fakeRepo) CreateDailyWorker(_ context.Context, w *models.DailyWorker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workers[w.UserEmail] = w
	return nil
}

func (f *fakeRepo) GetDailyWorker(_ context.Context, email string) (*models.DailyWorker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.workers[email]; ok {
		clone := *w
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepo) RefreshDailyWorker(_ context.Context, email, location, problemType, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok {
		return fmt.Errorf("worker not found: %s", email)
	}
	w.Location = location
	w.ProblemType = problemType
	w.PhotoURL = photoURL
	w.LastSeen = time.Now().UTC()
	return nil
}

func (f *fakeRepo) ListNearbyWorkers(_ context.Context, filters models.NearbyFilters) ([]*models.DailyWorker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	area := filters.Location
	if i := strings.Index(area, ","); i >= 0 {
		area = area[:i]
	}
	area = strings.ToLower(strings.TrimSpace(area))

	var out []*models.DailyWorker
	for _, w := range f.workers {
		if filters.ProblemType != "" && w.ProblemType != filters.ProblemType {
			continue
		}
		if area != "" && !strings.Contains(strings.ToLower(w.Location), area) {
			continue
		}
		clone := *w
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserEmail < out[j].UserEmail })
	return out, nil
}

func (f *fakeRepo) AddWorkerEarnings(_ context.Context, email string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok {
		return fmt.Errorf("worker not found: %s", email)
	}
	w.Balance += amount
	w.TotalEarned += amount
	return nil
}

func (f *fakeRepo) AdjustWorkerBalance(_ context.Context, email string, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok {
		return fmt.Errorf("worker not found: %s", email)
	}
	w.Balance += delta
	return nil
}

func (f *fakeRepo) ApplyWorkerInvestment(_ context.Context, email string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok || w.Balance < amount {
		return fmt.Errorf("balance too low: %w", storage.ErrConflict)
	}
	w.Balance -= amount
	w.InvestedAmount += amount
	return nil
}

func (f *fakeRepo) ResetWorkerInvestment(_ context.Context, email string, credit float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok {
		return fmt.Errorf("worker not found: %s", email)
	}
	w.Balance += credit
	w.InvestedAmount = 0
	return nil
}

func (f *fakeRepo) SetAutoInvest(_ context.Context, email string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[email]
	if !ok {
		return fmt.Errorf("worker not found: %s", email)
	}
	w.AutoInvest = on
	return nil
}

func (f *fakeRepo) ListAutoInvestWorkers(_ context.Context, minBalance float64) ([]*models.DailyWorker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DailyWorker
	for _, w := range f.workers {
		if w.AutoInvest && w.Balance >= minBalance {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateDisabilityProfile(_ context.Context, p *models.DisabilityProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserEmail] = p
	return nil
}

func (f *fakeRepo) GetDisabilityProfile(_ context.Context, email string) (*models.DisabilityProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[email]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepo) RefreshDisabilityProfile(_ context.Context, email, name, profession, disabilityType string, skills []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[email]
	if !ok {
		return fmt.Errorf("profile not found: %s", email)
	}
	p.Name = name
	p.Profession = profession
	p.DisabilityType = disabilityType
	p.Skills = skills
	return nil
}

func (f *fakeRepo) AddDisabilityEarnings(_ context.Context, email string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[email]
	if !ok {
		return fmt.Errorf("profile not found: %s", email)
	}
	p.TotalEarnings += amount
	return nil
}

func (f *fakeRepo) CreateDisabilityJob(_ context.Context, j *models.DisabilityJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disJobs[j.ID] = j
	return nil
}

func (f *fakeRepo) GetDisabilityJob(_ context.Context, id string) (*models.DisabilityJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.disJobs[id]; ok {
		clone := *j
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListOpenDisabilityJobs(_ context.Context) ([]*models.DisabilityJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DisabilityJob
	for _, j := range f.disJobs {
		if j.Status == models.JobPosted {
			clone := *j
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CountDisabilityJobs(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.disJobs), nil
}

func (f *fakeRepo) ListWorkerDisabilityJobs(_ context.Context, email string) ([]*models.DisabilityJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DisabilityJob
	for _, j := range f.disJobs {
		if j.AcceptedBy != email {
			continue
		}
		switch j.Status {
		case models.JobAccepted, models.JobCompleted, models.JobPaid:
			clone := *j
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) AcceptDisabilityJob(_ context.Context, id, workerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.disJobs[id]
	if !ok || j.Status != models.JobPosted {
		return fmt.Errorf("job not open: %w", storage.ErrConflict)
	}
	now := time.Now().UTC()
	j.Status = models.JobAccepted
	j.AcceptedBy = workerEmail
	j.AcceptedAt = &now
	return nil
}

func (f *fakeRepo) CompleteDisabilityJob(_ context.Context, id, workerEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.disJobs[id]
	if !ok || j.Status != models.JobAccepted || j.AcceptedBy != workerEmail {
		return fmt.Errorf("job not accepted by worker: %w", storage.ErrConflict)
	}
	now := time.Now().UTC()
	j.Status = models.JobCompleted
	j.CompletedAt = &now
	return nil
}

func (f *fakeRepo) ApproveDisabilityJob(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.disJobs[id]
	if !ok || j.Status != models.JobCompleted {
		return fmt.Errorf("job not completed: %w", storage.ErrConflict)
	}
	now := time.Now().UTC()
	j.Status = models.JobPaid
	j.ApprovedAt = &now
	return nil
}

func (f *fakeRepo) GetInvestment(_ context.Context, email string) (*models.Investment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.investments[email]; ok {
		clone := *inv
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepo) AccrueInvestment(_ context.Context, email string, amount, grams float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.investments[email]
	if !ok {
		inv = &models.Investment{UserEmail: email, CreatedAt: time.Now().UTC()}
		f.investments[email] = inv
	}
	inv.TotalInvested += amount
	inv.GoldGrams += grams
	return nil
}

func (f *fakeRepo) ResetInvestment(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.investments[email]; ok {
		inv.TotalInvested = 0
		inv.GoldGrams = 0
	}
	return nil
}

func (f *fakeRepo) InsertLedger(_ context.Context, e *models.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledger = append(f.ledger, e)
	return nil
}

func (f *fakeRepo) ListLedger(_ context.Context, email string, limit int) ([]*models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []*models.LedgerEntry
	for i := len(f.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if f.ledger[i].UserEmail == email {
			out = append(out, f.ledger[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

// fakeSessions is an in-memory SessionStore
type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]*models.Session
	workflows map[string]*models.WorkflowState
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions:  map[string]*models.Session{},
		workflows: map[string]*models.WorkflowState{},
	}
}

func (f *fakeSessions) Create(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, err := models.GenerateSessionToken()
	if err != nil {
		return "", err
	}
	f.sessions[token] = &models.Session{Token: token, Email: email, CreatedAt: time.Now().UTC()}
	return token, nil
}

func (f *fakeSessions) Get(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, ok := f.sessions[token]; ok {
		delete(f.workflows, sess.Email)
	}
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) Workflow(_ context.Context, email string) (*models.WorkflowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.workflows[email]; ok {
		return state, nil
	}
	return models.NewWorkflowState(), nil
}

func (f *fakeSessions) SaveWorkflow(_ context.Context, email string, state *models.WorkflowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state.SchemaVersion = models.WorkflowSchemaVersion
	f.workflows[email] = state
	return nil
}

func (f *fakeSessions) HealthCheck(_ context.Context) error { return nil }

// testEnv bundles the server under test with its fakes
type testEnv struct {
	server *httptest.Server
	repo   *fakeRepo
	loader *catalog.Loader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	loader := catalog.NewLoader()
	if _, err := os.Stat("../../catalog"); err == nil {
		require.NoError(t, loader.LoadFromDir("../../catalog"))
	}

	repo := newFakeRepo()
	srv := NewServer(repo, newFakeSessions(), loader, platform.NewRegistry(), nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, repo: repo, loader: loader}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	status, env := e.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Data, &auth))
	assert.Equal(t, "Registration successful", auth.Message)
	assert.NotEmpty(t, auth.Token)

	// Duplicate email
	status, resp = env.do(t, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Email:    "asha@example.com",
		Password: "another",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Email already registered", resp.Error.Message)

	// Wrong password
	status, resp = env.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Invalid credentials", resp.Error.Message)

	// Correct password
	status, resp = env.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email:    "asha@example.com",
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &auth))
	assert.Equal(t, "Login successful", auth.Message)

	// Protected route without a token
	status, _ = env.do(t, http.MethodGet, "/student/organizations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Logout invalidates the token
	status, _ = env.do(t, http.MethodPost, "/auth/logout", auth.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/student/organizations", auth.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStudentPipeline(t *testing.T) {
	env := newTestEnv(t)
	if env.loader.Organization("ISRO") == nil {
		t.Skip("catalog data not available")
	}

	token := env.login(t, "ravi@example.com")

	status, resp := env.do(t, http.MethodPost, "/student/register", token, models.StudentRegisterRequest{
		UserEmail:       "ravi@example.com",
		Name:            "Ravi",
		Age:             19,
		FieldOfInterest: "Scientist",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	status, _ = env.do(t, http.MethodPost, "/student/select-org", token, models.SelectOrgRequest{
		UserEmail: "ravi@example.com",
		OrgName:   "ISRO",
	})
	require.Equal(t, http.StatusOK, status)

	org := env.loader.Organization("ISRO")
	wantFunding := org.Roadmap[0].EstimatedFee + org.Roadmap[1].EstimatedFee

	status, resp = env.do(t, http.MethodPost, "/student/progress", token, models.ProgressUpdateRequest{
		UserEmail:      "ravi@example.com",
		OrgName:        "ISRO",
		CompletedSteps: []int{1, 2},
	})
	require.Equal(t, http.StatusOK, status)

	var progress models.ProgressResponse
	require.NoError(t, json.Unmarshal(resp.Data, &progress))
	assert.Equal(t, wantFunding, progress.TotalFundingReceived)
	assert.Equal(t, len(org.Roadmap), progress.TotalSteps)

	// Placement status is available mid-pipeline and locks in the default salary
	status, resp = env.do(t, http.MethodGet, "/student/job-status/ravi@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)

	var early models.JobStatusResponse
	require.NoError(t, json.Unmarshal(resp.Data, &early))
	assert.Equal(t, models.DefaultSalary, early.Salary)
	assert.Equal(t, wantFunding, early.TotalFundingReceived)
	assert.Less(t, early.ProgressPct, 100)

	var all []int
	for _, step := range org.Roadmap {
		all = append(all, step.Step)
	}
	status, _ = env.do(t, http.MethodPost, "/student/progress", token, models.ProgressUpdateRequest{
		UserEmail:      "ravi@example.com",
		OrgName:        "ISRO",
		CompletedSteps: all,
	})
	require.Equal(t, http.StatusOK, status)

	status, resp = env.do(t, http.MethodGet, "/student/job-status/ravi@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)

	var js models.JobStatusResponse
	require.NoError(t, json.Unmarshal(resp.Data, &js))
	assert.Equal(t, models.DefaultSalary, js.Salary)
	assert.Equal(t, 5000, js.MonthlyRepayment)
	assert.Equal(t, js.TotalFundingReceived, js.RemainingDebt)
	assert.Equal(t, models.DefaultSalary-5000, js.NetThisMonth)

	// Every completed step is org funded and the breakdown reconciles
	// with the funding total
	orgFunded := 0
	for _, line := range js.FundingBreakdown {
		assert.Zero(t, line.StudentPaid)
		orgFunded += line.OrgFunded
	}
	assert.Equal(t, js.TotalFundingReceived, orgFunded)

	// One month of repayment
	status, resp = env.do(t, http.MethodPost, "/student/repay-month", token, models.RepaymentRequest{
		UserEmail: "ravi@example.com",
	})
	require.Equal(t, http.StatusOK, status)

	var repay models.RepaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &repay))
	assert.Equal(t, 5000, repay.PaidThisMonth)
	assert.Equal(t, js.RemainingDebt-5000, repay.RemainingDebt)
	assert.Equal(t, "Payment recorded", repay.Message)
}

func TestJobStatusFundingAndNet(t *testing.T) {
	env := newTestEnv(t)
	org := env.loader.Organization("DRDO")
	if org == nil {
		t.Skip("catalog data not available")
	}

	token := env.login(t, "meera@example.com")

	status, _ := env.do(t, http.MethodPost, "/student/register", token, models.StudentRegisterRequest{
		UserEmail:       "meera@example.com",
		Name:            "Meera",
		Age:             21,
		FieldOfInterest: "Scientist",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/student/select-org", token, models.SelectOrgRequest{
		UserEmail: "meera@example.com",
		OrgName:   "DRDO",
	})
	require.Equal(t, http.StatusOK, status)

	var all []int
	wantTotal := 0
	for _, step := range org.Roadmap {
		all = append(all, step.Step)
		wantTotal += step.EstimatedFee
	}
	status, _ = env.do(t, http.MethodPost, "/student/progress", token, models.ProgressUpdateRequest{
		UserEmail:      "meera@example.com",
		OrgName:        "DRDO",
		CompletedSteps: all,
	})
	require.Equal(t, http.StatusOK, status)

	status, resp := env.do(t, http.MethodGet, "/student/job-status/meera@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)

	var js models.JobStatusResponse
	require.NoError(t, json.Unmarshal(resp.Data, &js))
	assert.Equal(t, wantTotal, js.TotalFundingReceived)

	// Steps without an external scholarship are still fronted by the org
	require.Len(t, js.FundingBreakdown, len(org.Roadmap))
	orgFunded := 0
	for _, line := range js.FundingBreakdown {
		assert.Zero(t, line.StudentPaid)
		orgFunded += line.OrgFunded
	}
	assert.Equal(t, js.TotalFundingReceived, orgFunded)

	// With the debt cleared the full salary is take-home
	env.repo.mu.Lock()
	env.repo.students["meera@example.com"].RepaymentPaid = js.TotalFundingReceived
	env.repo.mu.Unlock()

	status, resp = env.do(t, http.MethodGet, "/student/job-status/meera@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &js))
	assert.Zero(t, js.RemainingDebt)
	assert.Zero(t, js.MonthsRemaining)
	assert.Equal(t, models.DefaultSalary, js.NetThisMonth)
}

func TestQuizGrading(t *testing.T) {
	env := newTestEnv(t)
	month := env.loader.Month(catalog.DefaultField, 1)
	if month == nil {
		t.Skip("catalog data not available")
	}

	token := env.login(t, "dev@example.com")

	status, _ := env.do(t, http.MethodPost, "/student/register", token, models.StudentRegisterRequest{
		UserEmail:       "dev@example.com",
		Name:            "Dev",
		FieldOfInterest: catalog.DefaultField,
	})
	require.Equal(t, http.StatusOK, status)

	var answers []int
	for _, q := range month.Quiz {
		answers = append(answers, q.Answer)
	}

	status, resp := env.do(t, http.MethodPost, "/student/quiz/submit", token, models.QuizSubmitRequest{
		UserEmail: "dev@example.com",
		Month:     1,
		Answers:   answers,
	})
	require.Equal(t, http.StatusOK, status)

	var graded models.QuizSubmitResponse
	require.NoError(t, json.Unmarshal(resp.Data, &graded))
	assert.Equal(t, 100, graded.PctScore)
	assert.True(t, graded.Passed)
	assert.Equal(t, "Passed! Great work.", graded.Message)

	// Served curriculum must not leak answers
	status, resp = env.do(t, http.MethodGet, "/student/curriculum/"+strings.ReplaceAll(catalog.DefaultField, " ", "%20"), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(resp.Data), `"answer"`)
}

func TestDailyWorkLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "kumar@example.com")

	status, _ := env.do(t, http.MethodPost, "/daily/register", token, models.WorkerRegisterRequest{
		UserEmail:   "kumar@example.com",
		Name:        "Kumar",
		Location:    "Koramangala, Bangalore",
		ProblemType: "Electrical",
	})
	require.Equal(t, http.StatusOK, status)

	status, resp := env.do(t, http.MethodPost, "/daily/post-problem", token, models.PostProblemRequest{
		UserEmail:   "owner@example.com",
		Title:       "Fan Repair",
		Location:    "Koramangala",
		ProblemType: "Electrical",
		Pay:         600,
	})
	require.Equal(t, http.StatusOK, status)

	var posted struct {
		Listing models.WorkListing `json:"listing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &posted))
	jobID := posted.Listing.ID

	status, resp = env.do(t, http.MethodPost, "/daily/accept", token, models.AcceptJobRequest{
		UserEmail: "kumar@example.com",
		JobID:     jobID,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), "Job 'Fan Repair' accepted!")

	// Second accept hits the guarded transition
	status, _ = env.do(t, http.MethodPost, "/daily/accept", token, models.AcceptJobRequest{
		UserEmail: "kumar@example.com",
		JobID:     jobID,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, resp = env.do(t, http.MethodPost, "/daily/complete", token, models.CompleteJobRequest{
		UserEmail: "kumar@example.com",
		JobID:     jobID,
	})
	require.Equal(t, http.StatusOK, status)

	var completed struct {
		Pay        float64 `json:"pay"`
		NewBalance float64 `json:"new_balance"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &completed))
	assert.Equal(t, 600.0, completed.Pay)
	assert.Equal(t, 600.0, completed.NewBalance)

	// Withdrawing more than the balance fails
	status, resp = env.do(t, http.MethodPost, "/daily/withdraw", token, models.WithdrawRequest{
		UserEmail: "kumar@example.com",
		Amount:    700,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Insufficient balance", resp.Error.Message)

	status, resp = env.do(t, http.MethodPost, "/daily/withdraw", token, models.WithdrawRequest{
		UserEmail: "kumar@example.com",
		Amount:    200,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"new_balance":400`)
}

func TestInvestmentFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "gold@example.com")

	status, _ := env.do(t, http.MethodPost, "/daily/register", token, models.WorkerRegisterRequest{
		UserEmail: "gold@example.com",
		Name:      "Gita",
		Location:  "Indiranagar",
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, env.repo.AddWorkerEarnings(context.Background(), "gold@example.com", 500))

	status, resp := env.do(t, http.MethodPost, "/investment/invest", token, models.InvestRequest{
		UserEmail: "gold@example.com",
	})
	require.Equal(t, http.StatusOK, status)

	var inv models.InvestResponse
	require.NoError(t, json.Unmarshal(resp.Data, &inv))
	assert.Equal(t, 100.0, inv.Invested)
	assert.Equal(t, 0.015385, inv.GoldGrams)
	assert.Equal(t, 400.0, inv.RemainingBalance)

	status, resp = env.do(t, http.MethodGet, "/investment/status/gold@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)

	var st models.InvestmentStatus
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, 100.0, st.TotalInvested)
	assert.Equal(t, 101.5, st.CurrentValue)

	status, resp = env.do(t, http.MethodPost, "/investment/recover", token, models.RecoverRequest{
		UserEmail: "gold@example.com",
	})
	require.Equal(t, http.StatusOK, status)

	var rec models.RecoverResponse
	require.NoError(t, json.Unmarshal(resp.Data, &rec))
	assert.Equal(t, 101.5, rec.RecoveredAmount)
	assert.Equal(t, 501.5, rec.NewBalance)

	// Nothing left to recover
	status, _ = env.do(t, http.MethodPost, "/investment/recover", token, models.RecoverRequest{
		UserEmail: "gold@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDisabilityEscrow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "meera@example.com")

	status, _ := env.do(t, http.MethodPost, "/disability/register", token, models.DisabilityRegisterRequest{
		UserEmail:      "meera@example.com",
		Name:           "Meera",
		Profession:     "Tailor",
		DisabilityType: "Mobility",
		Skills:         []string{"Stitching"},
	})
	require.Equal(t, http.StatusOK, status)

	status, resp := env.do(t, http.MethodPost, "/disability/post-job", token, models.PostDisabilityJobRequest{
		Title:          "Remote Stitching Orders",
		Company:        "FabricHub India",
		RequiredSkills: []string{"Stitching", "Tailoring"},
		Pay:            3000,
		Profession:     "Tailor",
	})
	require.Equal(t, http.StatusOK, status)

	var posted struct {
		Job models.DisabilityJob `json:"job"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &posted))
	jobID := posted.Job.ID

	// Profession match floats the job up and scores it
	status, resp = env.do(t, http.MethodGet, "/disability/jobs?user_email=meera@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)
	var listing struct {
		Jobs []models.DisabilityJob `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listing))
	require.Len(t, listing.Jobs, 1)
	assert.Equal(t, 11, listing.Jobs[0].MatchScore)
	assert.True(t, listing.Jobs[0].IsProfessionMatch)

	status, _ = env.do(t, http.MethodPost, "/disability/accept", token, models.JobActionRequest{
		UserEmail: "meera@example.com",
		JobID:     jobID,
	})
	require.Equal(t, http.StatusOK, status)

	// Approving before completion is rejected
	status, resp = env.do(t, http.MethodPost, "/disability/approve", token, models.JobActionRequest{
		JobID: jobID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Only completed jobs can be approved", resp.Error.Message)

	status, _ = env.do(t, http.MethodPost, "/disability/complete", token, models.JobActionRequest{
		UserEmail: "meera@example.com",
		JobID:     jobID,
	})
	require.Equal(t, http.StatusOK, status)

	// Completed but unapproved pay shows as pending
	status, resp = env.do(t, http.MethodGet, "/disability/revenue/meera@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)
	var revenue models.DisabilityRevenue
	require.NoError(t, json.Unmarshal(resp.Data, &revenue))
	assert.Equal(t, 3000.0, revenue.PendingEarnings)
	assert.Equal(t, 0.0, revenue.TotalEarnings)

	status, _ = env.do(t, http.MethodPost, "/disability/approve", token, models.JobActionRequest{
		JobID: jobID,
	})
	require.Equal(t, http.StatusOK, status)

	status, resp = env.do(t, http.MethodGet, "/disability/revenue/meera@example.com", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &revenue))
	assert.Equal(t, 3000.0, revenue.TotalEarnings)
	assert.Equal(t, 0.0, revenue.PendingEarnings)
}

func TestInterpretEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "voice@example.com")

	status, resp := env.do(t, http.MethodPost, "/assistant/interpret", token, map[string]string{
		"utterance": "Please go home now",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"route":"/"`)
	assert.Contains(t, string(resp.Data), "Navigating to home page")
}
