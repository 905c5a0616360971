package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

// ErrNotFound is returned when a token has no live session
var ErrNotFound = errors.New("session not found")

const (
	sessionKeyPrefix  = "session:"
	workflowKeyPrefix = "workflow:"
)

// Store keeps sessions and their workflow state in Redis. A session is
// created by login or register and destroyed by logout; nothing else
// mutates it. Workflow state shares the session's lifetime and TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis and returns a session store
func NewStore(address, password string, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// Create mints a new opaque token for the given user
func (s *Store) Create(ctx context.Context, email string) (string, error) {
	token, err := models.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	sess := models.Session{
		Token:     token,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("session created", "email", email)
	return token, nil
}

// Get resolves a token to its session, or ErrNotFound
func (s *Store) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// Delete destroys a session and its workflow state in one round trip.
// Both keys go together so a logged-out user never leaves a stale
// selected org or profile behind.
func (s *Store) Delete(ctx context.Context, token string) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.Del(ctx, workflowKeyPrefix+sess.Email)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session destroyed", "email", sess.Email)
	return nil
}

// Workflow returns the user's cross-page workflow state. A missing or
// stale-schema state comes back empty rather than as an error.
func (s *Store) Workflow(ctx context.Context, email string) (*models.WorkflowState, error) {
	data, err := s.client.Get(ctx, workflowKeyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.NewWorkflowState(), nil
		}
		return nil, fmt.Errorf("failed to get workflow state: %w", err)
	}

	var state models.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow state: %w", err)
	}

	if state.SchemaVersion != models.WorkflowSchemaVersion {
		slog.Warn("discarding workflow state with stale schema",
			"email", email, "schema_version", state.SchemaVersion)
		return models.NewWorkflowState(), nil
	}

	return &state, nil
}

// SaveWorkflow persists workflow state with the session TTL
func (s *Store) SaveWorkflow(ctx context.Context, email string, state *models.WorkflowState) error {
	state.SchemaVersion = models.WorkflowSchemaVersion

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow state: %w", err)
	}

	if err := s.client.Set(ctx, workflowKeyPrefix+email, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store workflow state: %w", err)
	}

	return nil
}

// HealthCheck verifies Redis connectivity
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
