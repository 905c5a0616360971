package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Users ---

// CreateUser inserts a new user account
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, name, picture, role, provider, google_id, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.Name,
		u.Picture,
		u.Role,
		u.Provider,
		nullString(u.GoogleID),
		u.PasswordHash,
		u.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, picture, role, provider, google_id, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var u models.User
	var googleID sql.NullString

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Picture,
		&u.Role,
		&u.Provider,
		&googleID,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.GoogleID = googleID.String

	return &u, nil
}

// --- Students ---

// CreateStudent inserts a new student profile
func (r *PostgresRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	stepsJSON, err := json.Marshal(stepsOrEmpty(s.CompletedSteps))
	if err != nil {
		return fmt.Errorf("failed to marshal completed steps: %w", err)
	}

	resultsJSON, err := json.Marshal(resultsOrEmpty(s.QuizResults))
	if err != nil {
		return fmt.Errorf("failed to marshal quiz results: %w", err)
	}

	query := `
		INSERT INTO students (id, user_email, name, age, document_id, field_of_interest, selected_org,
			completed_steps, total_funding_received, progress_pct, job_placed, salary,
			repayment_paid, months_repaid, quiz_results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.UserEmail,
		s.Name,
		s.Age,
		s.DocumentID,
		s.FieldOfInterest,
		nullString(s.SelectedOrg),
		stepsJSON,
		s.TotalFundingReceived,
		s.ProgressPct,
		s.JobPlaced,
		s.Salary,
		s.RepaymentPaid,
		s.MonthsRepaid,
		resultsJSON,
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetStudent retrieves a student profile by user email
func (r *PostgresRepository) GetStudent(ctx context.Context, email string) (*models.Student, error) {
	query := `
		SELECT id, user_email, name, age, document_id, field_of_interest, selected_org,
			completed_steps, total_funding_received, progress_pct, job_placed, salary,
			repayment_paid, months_repaid, quiz_results, created_at
		FROM students
		WHERE user_email = $1
	`

	var s models.Student
	var selectedOrg sql.NullString
	var stepsJSON, resultsJSON []byte

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&s.ID,
		&s.UserEmail,
		&s.Name,
		&s.Age,
		&s.DocumentID,
		&s.FieldOfInterest,
		&selectedOrg,
		&stepsJSON,
		&s.TotalFundingReceived,
		&s.ProgressPct,
		&s.JobPlaced,
		&s.Salary,
		&s.RepaymentPaid,
		&s.MonthsRepaid,
		&resultsJSON,
		&s.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	s.SelectedOrg = selectedOrg.String

	if err := json.Unmarshal(stepsJSON, &s.CompletedSteps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed steps: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &s.QuizResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz results: %w", err)
	}

	return &s, nil
}

// SetSelectedOrg joins the student to an organization and resets pipeline progress
func (r *PostgresRepository) SetSelectedOrg(ctx context.Context, email, orgName string) error {
	query := `
		UPDATE students
		SET selected_org = $2, completed_steps = '[]', total_funding_received = 0, progress_pct = 0
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, orgName)
	if err != nil {
		return fmt.Errorf("failed to select org: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", email)
	}

	return nil
}

// UpdateStudentProgress replaces completed steps and the derived totals
func (r *PostgresRepository) UpdateStudentProgress(ctx context.Context, email string, steps []int, funding, pct int) error {
	stepsJSON, err := json.Marshal(stepsOrEmpty(steps))
	if err != nil {
		return fmt.Errorf("failed to marshal completed steps: %w", err)
	}

	query := `
		UPDATE students
		SET completed_steps = $2, total_funding_received = $3, progress_pct = $4
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, stepsJSON, funding, pct)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", email)
	}

	return nil
}

// SaveQuizResult stores one month's graded result under its month key
func (r *PostgresRepository) SaveQuizResult(ctx context.Context, email, monthKey string, result models.QuizResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz result: %w", err)
	}

	query := `
		UPDATE students
		SET quiz_results = jsonb_set(quiz_results, ARRAY[$2], $3::jsonb, true)
		WHERE user_email = $1
	`

	res, err := r.pool.Exec(ctx, query, email, monthKey, resultJSON)
	if err != nil {
		return fmt.Errorf("failed to save quiz result: %w", err)
	}

	if res.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", email)
	}

	return nil
}

// SetJobPlaced marks the student as placed
func (r *PostgresRepository) SetJobPlaced(ctx context.Context, email string) error {
	query := `UPDATE students SET job_placed = TRUE WHERE user_email = $1`

	_, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("failed to set job placed: %w", err)
	}

	return nil
}

// ApplyRepayment records one month of repayment
func (r *PostgresRepository) ApplyRepayment(ctx context.Context, email string, amount int) error {
	query := `
		UPDATE students
		SET repayment_paid = repayment_paid + $2, months_repaid = months_repaid + 1
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("failed to apply repayment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", email)
	}

	return nil
}

// --- Organizations ---

// CreateOrganization inserts an organization with its roadmap
func (r *PostgresRepository) CreateOrganization(ctx context.Context, org *models.Organization) error {
	roadmapJSON, err := json.Marshal(org.Roadmap)
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap: %w", err)
	}

	query := `
		INSERT INTO organizations (id, name, field, description, logo, total_funding, roadmap, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		org.ID,
		org.Name,
		org.Field,
		org.Description,
		org.Logo,
		org.TotalFunding,
		roadmapJSON,
		org.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// GetOrganization retrieves an organization with its full roadmap
func (r *PostgresRepository) GetOrganization(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT id, name, field, description, logo, total_funding, roadmap, created_at
		FROM organizations
		WHERE name = $1
	`

	var org models.Organization
	var roadmapJSON []byte

	err := r.pool.QueryRow(ctx, query, name).Scan(
		&org.ID,
		&org.Name,
		&org.Field,
		&org.Description,
		&org.Logo,
		&org.TotalFunding,
		&roadmapJSON,
		&org.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if err := json.Unmarshal(roadmapJSON, &org.Roadmap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roadmap: %w", err)
	}

	return &org, nil
}

// ListOrganizations returns organizations without roadmaps, optionally by field
func (r *PostgresRepository) ListOrganizations(ctx context.Context, field string) ([]*models.Organization, error) {
	query := `
		SELECT id, name, field, description, logo, total_funding, created_at
		FROM organizations
	`
	args := make([]interface{}, 0, 1)

	if field != "" {
		query += ` WHERE field = $1`
		args = append(args, field)
	}

	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization

	for rows.Next() {
		var org models.Organization

		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Field,
			&org.Description,
			&org.Logo,
			&org.TotalFunding,
			&org.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}

		orgs = append(orgs, &org)
	}

	return orgs, rows.Err()
}

// CountOrganizations returns the number of seeded organizations
func (r *PostgresRepository) CountOrganizations(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}
	return count, nil
}

// --- Work listings ---

// CreateWorkListing inserts a posted work listing
func (r *PostgresRepository) CreateWorkListing(ctx context.Context, l *models.WorkListing) error {
	query := `
		INSERT INTO work_listings (id, user_email, title, location, problem_type, photo_url,
			description, pay, status, accepted_by, completion_video_url, ai_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		l.ID,
		l.UserEmail,
		l.Title,
		l.Location,
		l.ProblemType,
		l.PhotoURL,
		l.Description,
		l.Pay,
		string(l.Status),
		nullString(l.AcceptedBy),
		l.CompletionVideoURL,
		l.AIVerified,
		l.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create work listing: %w", err)
	}

	return nil
}

// GetWorkListing retrieves a work listing by ID
func (r *PostgresRepository) GetWorkListing(ctx context.Context, id string) (*models.WorkListing, error) {
	query := `
		SELECT id, user_email, title, location, problem_type, photo_url, description, pay,
			status, accepted_by, completion_video_url, ai_verified, created_at
		FROM work_listings
		WHERE id = $1
	`

	l, err := scanWorkListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work listing: %w", err)
	}

	return l, nil
}

// ListOpenWork returns all listings still open for acceptance
func (r *PostgresRepository) ListOpenWork(ctx context.Context) ([]*models.WorkListing, error) {
	query := `
		SELECT id, user_email, title, location, problem_type, photo_url, description, pay,
			status, accepted_by, completion_video_url, ai_verified, created_at
		FROM work_listings
		WHERE status = 'posted'
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open work: %w", err)
	}
	defer rows.Close()

	var listings []*models.WorkListing

	for rows.Next() {
		l, err := scanWorkListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// CountWorkListings returns the total number of work listings
func (r *PostgresRepository) CountWorkListings(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM work_listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count work listings: %w", err)
	}
	return count, nil
}

// AcceptWorkListing transitions posted -> accepted, guarding against races
func (r *PostgresRepository) AcceptWorkListing(ctx context.Context, id, workerEmail string) error {
	query := `
		UPDATE work_listings
		SET status = 'accepted', accepted_by = $2
		WHERE id = $1 AND status = 'posted'
	`

	result, err := r.pool.Exec(ctx, query, id, workerEmail)
	if err != nil {
		return fmt.Errorf("failed to accept work listing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("work listing %s is not open: %w", id, ErrConflict)
	}

	return nil
}

// CompleteWorkListing transitions accepted -> completed with proof metadata
func (r *PostgresRepository) CompleteWorkListing(ctx context.Context, id, videoURL string, aiVerified bool) error {
	query := `
		UPDATE work_listings
		SET status = 'completed', completion_video_url = $2, ai_verified = $3
		WHERE id = $1 AND status = 'accepted'
	`

	result, err := r.pool.Exec(ctx, query, id, videoURL, aiVerified)
	if err != nil {
		return fmt.Errorf("failed to complete work listing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("work listing %s is not accepted: %w", id, ErrConflict)
	}

	return nil
}

// --- Daily workers ---

// CreateDailyWorker inserts a worker profile
func (r *PostgresRepository) CreateDailyWorker(ctx context.Context, w *models.DailyWorker) error {
	query := `
		INSERT INTO daily_workers (id, user_email, name, location, problem_type, photo_url,
			balance, total_earned, invested_amount, auto_invest, created_at, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		w.ID,
		w.UserEmail,
		w.Name,
		w.Location,
		w.ProblemType,
		w.PhotoURL,
		w.Balance,
		w.TotalEarned,
		w.InvestedAmount,
		w.AutoInvest,
		w.CreatedAt,
		w.LastSeen,
	)

	if err != nil {
		return fmt.Errorf("failed to create daily worker: %w", err)
	}

	return nil
}

// GetDailyWorker retrieves a worker by user email
func (r *PostgresRepository) GetDailyWorker(ctx context.Context, email string) (*models.DailyWorker, error) {
	query := `
		SELECT id, user_email, name, location, problem_type, photo_url, balance,
			total_earned, invested_amount, auto_invest, created_at, last_seen
		FROM daily_workers
		WHERE user_email = $1
	`

	w, err := scanDailyWorker(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily worker: %w", err)
	}

	return w, nil
}

// RefreshDailyWorker updates location details on re-login and touches last_seen
func (r *PostgresRepository) RefreshDailyWorker(ctx context.Context, email, location, problemType, photoURL string) error {
	query := `
		UPDATE daily_workers
		SET location = $2, problem_type = $3, photo_url = $4, last_seen = NOW()
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, location, problemType, photoURL)
	if err != nil {
		return fmt.Errorf("failed to refresh daily worker: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily worker not found: %s", email)
	}

	return nil
}

// ListNearbyWorkers returns workers matching a problem type and location substring.
// Only the first comma-separated segment of the location is matched, so
// "Koramangala, Bangalore" finds workers listed under "Koramangala".
func (r *PostgresRepository) ListNearbyWorkers(ctx context.Context, filters models.NearbyFilters) ([]*models.DailyWorker, error) {
	query := `
		SELECT id, user_email, name, location, problem_type, photo_url, balance,
			total_earned, invested_amount, auto_invest, created_at, last_seen
		FROM daily_workers
		WHERE 1=1
	`
	args := make([]interface{}, 0, 3)
	argNum := 1

	if filters.ProblemType != "" {
		query += fmt.Sprintf(" AND problem_type = $%d", argNum)
		args = append(args, filters.ProblemType)
		argNum++
	}

	if filters.Location != "" {
		area := strings.TrimSpace(strings.SplitN(filters.Location, ",", 2)[0])
		query += fmt.Sprintf(" AND location ILIKE $%d", argNum)
		args = append(args, "%"+area+"%")
		argNum++
	}

	query += " ORDER BY last_seen DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list nearby workers: %w", err)
	}
	defer rows.Close()

	var workers []*models.DailyWorker

	for rows.Next() {
		w, err := scanDailyWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily worker: %w", err)
		}
		workers = append(workers, w)
	}

	return workers, rows.Err()
}

// AddWorkerEarnings credits completed-job pay to balance and lifetime earnings
func (r *PostgresRepository) AddWorkerEarnings(ctx context.Context, email string, amount float64) error {
	query := `
		UPDATE daily_workers
		SET balance = balance + $2, total_earned = total_earned + $2
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("failed to add worker earnings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily worker not found: %s", email)
	}

	return nil
}

// AdjustWorkerBalance applies a signed delta to the worker's balance
func (r *PostgresRepository) AdjustWorkerBalance(ctx context.Context, email string, delta float64) error {
	query := `UPDATE daily_workers SET balance = balance + $2 WHERE user_email = $1`

	result, err := r.pool.Exec(ctx, query, email, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust worker balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily worker not found: %s", email)
	}

	return nil
}

// ApplyWorkerInvestment moves money from balance into the invested total,
// guarded so the balance can never go negative
func (r *PostgresRepository) ApplyWorkerInvestment(ctx context.Context, email string, amount float64) error {
	query := `
		UPDATE daily_workers
		SET balance = balance - $2, invested_amount = invested_amount + $2
		WHERE user_email = $1 AND balance >= $2
	`

	result, err := r.pool.Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("failed to apply worker investment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("insufficient balance for %s: %w", email, ErrConflict)
	}

	return nil
}

// ResetWorkerInvestment credits a liquidation back and zeroes the invested total
func (r *PostgresRepository) ResetWorkerInvestment(ctx context.Context, email string, credit float64) error {
	query := `
		UPDATE daily_workers
		SET balance = balance + $2, invested_amount = 0
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, credit)
	if err != nil {
		return fmt.Errorf("failed to reset worker investment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily worker not found: %s", email)
	}

	return nil
}

// SetAutoInvest flips the worker's recurring-investment flag
func (r *PostgresRepository) SetAutoInvest(ctx context.Context, email string, on bool) error {
	query := `UPDATE daily_workers SET auto_invest = $2 WHERE user_email = $1`

	result, err := r.pool.Exec(ctx, query, email, on)
	if err != nil {
		return fmt.Errorf("failed to set auto invest: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily worker not found: %s", email)
	}

	return nil
}

// ListAutoInvestWorkers returns workers opted into auto-invest with at least
// minBalance available, oldest sign-ins first
func (r *PostgresRepository) ListAutoInvestWorkers(ctx context.Context, minBalance float64) ([]*models.DailyWorker, error) {
	query := `
		SELECT id, user_email, name, location, problem_type, photo_url, balance,
			total_earned, invested_amount, auto_invest, created_at, last_seen
		FROM daily_workers
		WHERE auto_invest = TRUE AND balance >= $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, minBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-invest workers: %w", err)
	}
	defer rows.Close()

	var workers []*models.DailyWorker

	for rows.Next() {
		w, err := scanDailyWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily worker: %w", err)
		}
		workers = append(workers, w)
	}

	return workers, rows.Err()
}

// --- Disability profiles ---

// CreateDisabilityProfile inserts an inclusive-employment profile
func (r *PostgresRepository) CreateDisabilityProfile(ctx context.Context, p *models.DisabilityProfile) error {
	skillsJSON, err := json.Marshal(skillsOrEmpty(p.Skills))
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	query := `
		INSERT INTO disability_users (id, user_email, name, id_proof, profession,
			disability_type, skills, total_earnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.UserEmail,
		p.Name,
		p.IDProof,
		p.Profession,
		p.DisabilityType,
		skillsJSON,
		p.TotalEarnings,
		p.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create disability profile: %w", err)
	}

	return nil
}

// GetDisabilityProfile retrieves a profile by user email
func (r *PostgresRepository) GetDisabilityProfile(ctx context.Context, email string) (*models.DisabilityProfile, error) {
	query := `
		SELECT id, user_email, name, id_proof, profession, disability_type, skills,
			total_earnings, created_at
		FROM disability_users
		WHERE user_email = $1
	`

	var p models.DisabilityProfile
	var skillsJSON []byte

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.ID,
		&p.UserEmail,
		&p.Name,
		&p.IDProof,
		&p.Profession,
		&p.DisabilityType,
		&skillsJSON,
		&p.TotalEarnings,
		&p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get disability profile: %w", err)
	}

	if err := json.Unmarshal(skillsJSON, &p.Skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}

	return &p, nil
}

// RefreshDisabilityProfile updates the mutable profile fields on re-registration
func (r *PostgresRepository) RefreshDisabilityProfile(ctx context.Context, email, name, profession, disabilityType string, skills []string) error {
	skillsJSON, err := json.Marshal(skillsOrEmpty(skills))
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	query := `
		UPDATE disability_users
		SET name = $2, profession = $3, disability_type = $4, skills = $5
		WHERE user_email = $1
	`

	result, err := r.pool.Exec(ctx, query, email, name, profession, disabilityType, skillsJSON)
	if err != nil {
		return fmt.Errorf("failed to refresh disability profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("disability profile not found: %s", email)
	}

	return nil
}

// AddDisabilityEarnings credits an approved payout to lifetime earnings
func (r *PostgresRepository) AddDisabilityEarnings(ctx context.Context, email string, amount float64) error {
	query := `UPDATE disability_users SET total_earnings = total_earnings + $2 WHERE user_email = $1`

	result, err := r.pool.Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("failed to add disability earnings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("disability profile not found: %s", email)
	}

	return nil
}

// --- Disability jobs ---

// CreateDisabilityJob inserts an inclusive job posting
func (r *PostgresRepository) CreateDisabilityJob(ctx context.Context, j *models.DisabilityJob) error {
	skillsJSON, err := json.Marshal(skillsOrEmpty(j.RequiredSkills))
	if err != nil {
		return fmt.Errorf("failed to marshal required skills: %w", err)
	}

	query := `
		INSERT INTO disability_jobs (id, title, company, description, required_skills, pay,
			profession, status, accepted_by, accepted_at, completed_at, approved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		j.ID,
		j.Title,
		j.Company,
		j.Description,
		skillsJSON,
		j.Pay,
		j.Profession,
		string(j.Status),
		nullString(j.AcceptedBy),
		nullTime(j.AcceptedAt),
		nullTime(j.CompletedAt),
		nullTime(j.ApprovedAt),
		j.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create disability job: %w", err)
	}

	return nil
}

// GetDisabilityJob retrieves an inclusive job by ID
func (r *PostgresRepository) GetDisabilityJob(ctx context.Context, id string) (*models.DisabilityJob, error) {
	query := disabilityJobSelect + ` WHERE id = $1`

	j, err := scanDisabilityJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get disability job: %w", err)
	}

	return j, nil
}

// ListOpenDisabilityJobs returns all postings still open for acceptance
func (r *PostgresRepository) ListOpenDisabilityJobs(ctx context.Context) ([]*models.DisabilityJob, error) {
	query := disabilityJobSelect + ` WHERE status = 'posted' ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open disability jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.DisabilityJob

	for rows.Next() {
		j, err := scanDisabilityJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disability job: %w", err)
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// CountDisabilityJobs returns the total number of inclusive job postings
func (r *PostgresRepository) CountDisabilityJobs(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM disability_jobs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count disability jobs: %w", err)
	}
	return count, nil
}

// ListWorkerDisabilityJobs returns a worker's accepted, completed, and paid jobs
func (r *PostgresRepository) ListWorkerDisabilityJobs(ctx context.Context, email string) ([]*models.DisabilityJob, error) {
	query := disabilityJobSelect + `
		WHERE accepted_by = $1 AND status IN ('accepted', 'completed', 'paid')
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker disability jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.DisabilityJob

	for rows.Next() {
		j, err := scanDisabilityJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disability job: %w", err)
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// AcceptDisabilityJob transitions posted -> accepted
func (r *PostgresRepository) AcceptDisabilityJob(ctx context.Context, id, workerEmail string) error {
	query := `
		UPDATE disability_jobs
		SET status = 'accepted', accepted_by = $2, accepted_at = NOW()
		WHERE id = $1 AND status = 'posted'
	`

	result, err := r.pool.Exec(ctx, query, id, workerEmail)
	if err != nil {
		return fmt.Errorf("failed to accept disability job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("disability job %s is not open: %w", id, ErrConflict)
	}

	return nil
}

// CompleteDisabilityJob transitions accepted -> completed for the assigned worker
func (r *PostgresRepository) CompleteDisabilityJob(ctx context.Context, id, workerEmail string) error {
	query := `
		UPDATE disability_jobs
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND accepted_by = $2 AND status = 'accepted'
	`

	result, err := r.pool.Exec(ctx, query, id, workerEmail)
	if err != nil {
		return fmt.Errorf("failed to complete disability job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("disability job %s is not assigned and accepted: %w", id, ErrConflict)
	}

	return nil
}

// ApproveDisabilityJob releases escrow: completed -> paid
func (r *PostgresRepository) ApproveDisabilityJob(ctx context.Context, id string) error {
	query := `
		UPDATE disability_jobs
		SET status = 'paid', approved_at = NOW()
		WHERE id = $1 AND status = 'completed'
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to approve disability job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("disability job %s is not completed: %w", id, ErrConflict)
	}

	return nil
}

// --- Investments ---

// GetInvestment retrieves a user's gold holding
func (r *PostgresRepository) GetInvestment(ctx context.Context, email string) (*models.Investment, error) {
	query := `
		SELECT id, user_email, total_invested, gold_grams, created_at
		FROM investments
		WHERE user_email = $1
	`

	var inv models.Investment

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&inv.ID,
		&inv.UserEmail,
		&inv.TotalInvested,
		&inv.GoldGrams,
		&inv.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	return &inv, nil
}

// AccrueInvestment adds one investment to the holding, creating it if needed
func (r *PostgresRepository) AccrueInvestment(ctx context.Context, email string, amount, grams float64) error {
	query := `
		INSERT INTO investments (id, user_email, total_invested, gold_grams, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW())
		ON CONFLICT (user_email) DO UPDATE
		SET total_invested = investments.total_invested + EXCLUDED.total_invested,
			gold_grams = investments.gold_grams + EXCLUDED.gold_grams
	`

	_, err := r.pool.Exec(ctx, query, email, amount, grams)
	if err != nil {
		return fmt.Errorf("failed to accrue investment: %w", err)
	}

	return nil
}

// ResetInvestment zeroes the holding after an emergency recovery
func (r *PostgresRepository) ResetInvestment(ctx context.Context, email string) error {
	query := `UPDATE investments SET total_invested = 0, gold_grams = 0 WHERE user_email = $1`

	result, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("failed to reset investment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("investment not found: %s", email)
	}

	return nil
}

// --- Ledger ---

// InsertLedger appends one money-history line
func (r *PostgresRepository) InsertLedger(ctx context.Context, e *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger (id, user_email, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.UserEmail,
		e.Type,
		e.Amount,
		e.Description,
		e.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}

// ListLedger returns recent entries for a user, newest first
func (r *PostgresRepository) ListLedger(ctx context.Context, email string, limit int) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_email, type, amount, description, created_at
		FROM ledger
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry

	for rows.Next() {
		var e models.LedgerEntry

		err := rows.Scan(
			&e.ID,
			&e.UserEmail,
			&e.Type,
			&e.Amount,
			&e.Description,
			&e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// --- Scan helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkListing(row rowScanner) (*models.WorkListing, error) {
	var l models.WorkListing
	var statusStr string
	var acceptedBy sql.NullString

	err := row.Scan(
		&l.ID,
		&l.UserEmail,
		&l.Title,
		&l.Location,
		&l.ProblemType,
		&l.PhotoURL,
		&l.Description,
		&l.Pay,
		&statusStr,
		&acceptedBy,
		&l.CompletionVideoURL,
		&l.AIVerified,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = models.JobStatus(statusStr)
	l.AcceptedBy = acceptedBy.String

	return &l, nil
}

const disabilityJobSelect = `
	SELECT id, title, company, description, required_skills, pay, profession,
		status, accepted_by, accepted_at, completed_at, approved_at, created_at
	FROM disability_jobs
`

func scanDisabilityJob(row rowScanner) (*models.DisabilityJob, error) {
	var j models.DisabilityJob
	var statusStr string
	var acceptedBy sql.NullString
	var acceptedAt, completedAt, approvedAt sql.NullTime
	var skillsJSON []byte

	err := row.Scan(
		&j.ID,
		&j.Title,
		&j.Company,
		&j.Description,
		&skillsJSON,
		&j.Pay,
		&j.Profession,
		&statusStr,
		&acceptedBy,
		&acceptedAt,
		&completedAt,
		&approvedAt,
		&j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	j.Status = models.JobStatus(statusStr)
	j.AcceptedBy = acceptedBy.String

	if acceptedAt.Valid {
		j.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	if approvedAt.Valid {
		j.ApprovedAt = &approvedAt.Time
	}

	if err := json.Unmarshal(skillsJSON, &j.RequiredSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal required skills: %w", err)
	}

	return &j, nil
}

func scanDailyWorker(row rowScanner) (*models.DailyWorker, error) {
	var w models.DailyWorker

	err := row.Scan(
		&w.ID,
		&w.UserEmail,
		&w.Name,
		&w.Location,
		&w.ProblemType,
		&w.PhotoURL,
		&w.Balance,
		&w.TotalEarned,
		&w.InvestedAmount,
		&w.AutoInvest,
		&w.CreatedAt,
		&w.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// Helper functions for nullable and JSON-empty values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stepsOrEmpty(steps []int) []int {
	if steps == nil {
		return []int{}
	}
	return steps
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}

func resultsOrEmpty(results map[string]models.QuizResult) map[string]models.QuizResult {
	if results == nil {
		return map[string]models.QuizResult{}
	}
	return results
}
