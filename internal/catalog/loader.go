package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

// DefaultField is the curriculum used for any field without its own plan
const DefaultField = "Software Developer"

// PassThreshold is the minimum percentage score to pass a monthly quiz
const PassThreshold = 60

// Loader manages the catalog: organizations with funded roadmaps,
// per-field monthly curricula, and seed data for the job boards
type Loader struct {
	mu         sync.RWMutex
	orgs       map[string]*models.Organization
	curricula  map[string][]models.CurriculumMonth
	seedWork   []seedWorkEntry
	seedDisJob []seedDisabilityEntry
}

// NewLoader creates an empty catalog loader
func NewLoader() *Loader {
	return &Loader{
		orgs:      make(map[string]*models.Organization),
		curricula: make(map[string][]models.CurriculumMonth),
	}
}

// LoadFromDir loads the catalog from a directory with the layout:
//
//	organizations/*.yaml  one organization per file
//	curriculum/*.yaml     one field's monthly plan per file
//	seed/*.yaml           seed listings for the job boards
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	if err := l.loadOrganizations(filepath.Join(dir, "organizations")); err != nil {
		return err
	}

	if err := l.loadCurricula(filepath.Join(dir, "curriculum")); err != nil {
		return err
	}

	if err := l.loadSeeds(filepath.Join(dir, "seed")); err != nil {
		return err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	slog.Info("catalog loaded",
		"organizations", len(l.orgs),
		"curricula", len(l.curricula),
		"seed_work", len(l.seedWork),
		"seed_disability_jobs", len(l.seedDisJob))

	return nil
}

func (l *Loader) loadOrganizations(dir string) error {
	files, err := yamlFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("failed to read organization file", "file", file, "error", err)
			continue
		}

		var of organizationFile
		if err := yaml.Unmarshal(data, &of); err != nil {
			slog.Warn("failed to parse organization file", "file", file, "error", err)
			continue
		}

		if of.Name == "" {
			slog.Warn("organization name is required", "file", file)
			continue
		}
		if of.Field == "" {
			slog.Warn("organization field is required", "file", file)
			continue
		}

		org := &models.Organization{
			Name:         of.Name,
			Field:        of.Field,
			Description:  of.Description,
			Logo:         of.Logo,
			TotalFunding: of.TotalFunding,
			Roadmap:      of.Roadmap,
		}

		l.mu.Lock()
		l.orgs[org.Name] = org
		l.mu.Unlock()

		slog.Info("organization loaded", "name", org.Name, "field", org.Field, "steps", len(org.Roadmap))
	}

	return nil
}

func (l *Loader) loadCurricula(dir string) error {
	files, err := yamlFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("failed to read curriculum file", "file", file, "error", err)
			continue
		}

		var cf curriculumFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			slog.Warn("failed to parse curriculum file", "file", file, "error", err)
			continue
		}

		if cf.Field == "" {
			slog.Warn("curriculum field is required", "file", file)
			continue
		}

		sort.Slice(cf.Months, func(i, j int) bool {
			return cf.Months[i].Month < cf.Months[j].Month
		})

		l.mu.Lock()
		l.curricula[cf.Field] = cf.Months
		l.mu.Unlock()

		slog.Info("curriculum loaded", "field", cf.Field, "months", len(cf.Months))
	}

	return nil
}

func (l *Loader) loadSeeds(dir string) error {
	files, err := yamlFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("failed to read seed file", "file", file, "error", err)
			continue
		}

		var sf seedFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			slog.Warn("failed to parse seed file", "file", file, "error", err)
			continue
		}

		l.mu.Lock()
		l.seedWork = append(l.seedWork, sf.WorkListings...)
		l.seedDisJob = append(l.seedDisJob, sf.DisabilityJobs...)
		l.mu.Unlock()
	}

	return nil
}

func yamlFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	return files, nil
}

// --- Accessors ---

// Organizations returns all loaded organizations, sorted by name
func (l *Loader) Organizations() []*models.Organization {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.Organization, 0, len(l.orgs))
	for _, org := range l.orgs {
		result = append(result, org)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Organization returns an organization by name, or nil
func (l *Loader) Organization(name string) *models.Organization {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.orgs[name]
}

// Curriculum returns the monthly plan for a field. Unknown fields fall
// back to the default field's plan.
func (l *Loader) Curriculum(field string) []models.CurriculumMonth {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if months, ok := l.curricula[field]; ok {
		return months
	}
	return l.curricula[DefaultField]
}

// SanitizedCurriculum returns a field's plan with answer keys stripped
func (l *Loader) SanitizedCurriculum(field string) []models.SanitizedMonth {
	months := l.Curriculum(field)

	result := make([]models.SanitizedMonth, 0, len(months))
	for i := range months {
		result = append(result, months[i].Sanitize())
	}
	return result
}

// Month returns one month of a field's plan, or nil if out of range
func (l *Loader) Month(field string, month int) *models.CurriculumMonth {
	for _, m := range l.Curriculum(field) {
		if m.Month == month {
			return &m
		}
	}
	return nil
}

// Grade scores submitted answers against a month's quiz. Extra answers
// are ignored and missing answers count as wrong.
func (l *Loader) Grade(field string, month int, answers []int) (*models.QuizSubmitResponse, error) {
	m := l.Month(field, month)
	if m == nil {
		return nil, fmt.Errorf("month %d not found for field %q", month, field)
	}

	total := len(m.Quiz)
	score := 0
	correct := make([]int, 0, total)

	for i, q := range m.Quiz {
		correct = append(correct, q.Answer)
		if i < len(answers) && answers[i] == q.Answer {
			score++
		}
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(score) / float64(total) * 100))
	}
	passed := pct >= PassThreshold

	message := "Failed. Score 60%+ to pass. Try again next month."
	if passed {
		message = "Passed! Great work."
	}

	return &models.QuizSubmitResponse{
		Score:          score,
		Total:          total,
		PctScore:       pct,
		Passed:         passed,
		CorrectAnswers: correct,
		Message:        message,
	}, nil
}

// --- Seeding ---

// Seed inserts catalog organizations and seed listings into storage.
// Each collection is seeded only when it is empty, so restarting the
// service never duplicates data.
func (l *Loader) Seed(ctx context.Context, repo storage.Repository) error {
	count, err := repo.CountOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("failed to count organizations: %w", err)
	}

	if count == 0 {
		orgs := l.Organizations()
		for _, org := range orgs {
			org.ID = uuid.New().String()
			org.CreatedAt = time.Now().UTC()
			if err := repo.CreateOrganization(ctx, org); err != nil {
				return fmt.Errorf("failed to seed organization %q: %w", org.Name, err)
			}
		}
		slog.Info("seeded organizations", "count", len(orgs))
	}

	count, err = repo.CountWorkListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count work listings: %w", err)
	}

	if count == 0 {
		l.mu.RLock()
		seedWork := l.seedWork
		l.mu.RUnlock()

		for _, w := range seedWork {
			listing := &models.WorkListing{
				ID:          uuid.New().String(),
				Title:       w.Title,
				Location:    w.Location,
				ProblemType: w.ProblemType,
				Description: w.Description,
				Pay:         w.Pay,
				Status:      models.JobPosted,
				CreatedAt:   time.Now().UTC(),
			}
			if err := repo.CreateWorkListing(ctx, listing); err != nil {
				return fmt.Errorf("failed to seed work listing %q: %w", w.Title, err)
			}
		}
		slog.Info("seeded work listings", "count", len(seedWork))
	}

	count, err = repo.CountDisabilityJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to count disability jobs: %w", err)
	}

	if count == 0 {
		l.mu.RLock()
		seedJobs := l.seedDisJob
		l.mu.RUnlock()

		for _, j := range seedJobs {
			job := &models.DisabilityJob{
				ID:             uuid.New().String(),
				Title:          j.Title,
				Company:        j.Company,
				Description:    j.Description,
				RequiredSkills: j.RequiredSkills,
				Pay:            j.Pay,
				Profession:     j.Profession,
				Status:         models.JobPosted,
				CreatedAt:      time.Now().UTC(),
			}
			if err := repo.CreateDisabilityJob(ctx, job); err != nil {
				return fmt.Errorf("failed to seed disability job %q: %w", j.Title, err)
			}
		}
		slog.Info("seeded disability jobs", "count", len(seedJobs))
	}

	return nil
}

// --- YAML file structs ---

// organizationFile represents the YAML structure of an organization file
type organizationFile struct {
	Name         string               `yaml:"name"`
	Field        string               `yaml:"field"`
	Description  string               `yaml:"description"`
	Logo         string               `yaml:"logo"`
	TotalFunding int                  `yaml:"total_funding"`
	Roadmap      []models.RoadmapStep `yaml:"roadmap"`
}

// curriculumFile represents the YAML structure of a curriculum file
type curriculumFile struct {
	Field  string                   `yaml:"field"`
	Months []models.CurriculumMonth `yaml:"months"`
}

// seedFile represents the YAML structure of a seed data file
type seedFile struct {
	WorkListings   []seedWorkEntry       `yaml:"work_listings"`
	DisabilityJobs []seedDisabilityEntry `yaml:"disability_jobs"`
}

type seedWorkEntry struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Location    string  `yaml:"location"`
	ProblemType string  `yaml:"problem_type"`
	Pay         float64 `yaml:"pay"`
}

type seedDisabilityEntry struct {
	Title          string   `yaml:"title"`
	Company        string   `yaml:"company"`
	Description    string   `yaml:"description"`
	Profession     string   `yaml:"profession"`
	RequiredSkills []string `yaml:"required_skills"`
	Pay            float64  `yaml:"pay"`
}
