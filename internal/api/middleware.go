package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Subhash2005/equi-bridge/internal/models"
	"github.com/Subhash2005/equi-bridge/internal/session"
)

// SessionStore is the session backend the API depends on
type SessionStore interface {
	Create(ctx context.Context, email string) (string, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	Workflow(ctx context.Context, email string) (*models.WorkflowState, error)
	SaveWorkflow(ctx context.Context, email string, state *models.WorkflowState) error
	HealthCheck(ctx context.Context) error
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	sessions SessionStore
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(sessions SessionStore) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the Authorization bearer token to a session
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing_token", "provide Authorization header with Bearer token")
			return
		}

		sess, err := m.sessions.Get(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "invalid_token", "session expired or not found")
				return
			}
			slog.Error("failed to lookup session", "error", err)
			respondError(w, http.StatusInternalServerError, "auth_error", "internal server error")
			return
		}

		ctx := ContextWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the bearer token from the Authorization header.
// Websocket clients cannot set headers, so a token query parameter is
// accepted as a fallback.
func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return auth
	}

	return r.URL.Query().Get("token")
}
