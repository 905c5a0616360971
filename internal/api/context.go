package api

import (
	"context"

	"github.com/Subhash2005/equi-bridge/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "api_session"

// SessionFromContext extracts the authenticated session from context
func SessionFromContext(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// ContextWithSession adds a session to context
func ContextWithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
