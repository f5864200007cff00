// Package http exposes the access evaluator to the browser front-end and provides the
// authentication, guard and rate limit middlewares.
package http

import (
	"context"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	"github.com/allisson/inspecta/internal/access/session"
)

// sessionKey is a context key type for storing the request session.
type sessionKey struct{}

// WithSession stores the request session in the context.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession retrieves the request session. Returns (nil, false) if none was set.
func GetSession(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok && s != nil
}

// WithUser stores a session authenticated as user in the context.
// This is typically called by the authentication middleware after the token is validated.
func WithUser(ctx context.Context, user *accessDomain.CurrentUser) context.Context {
	return WithSession(ctx, session.NewAuthenticated(user))
}

// GetUser retrieves the authenticated user from the request session.
// Returns (user, true) if a user is present, or (nil, false) otherwise.
func GetUser(ctx context.Context) (*accessDomain.CurrentUser, bool) {
	s, ok := GetSession(ctx)
	if !ok {
		return nil, false
	}
	return s.Current()
}
