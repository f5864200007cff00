// Package usecase implements the guard operations consumed by route and render guards.
package usecase

import (
	"context"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
)

// GuardUseCase evaluates requirements for a user. It never returns an error: a denial is
// a normal result.
type GuardUseCase interface {
	// Evaluate resolves a single requirement.
	Evaluate(ctx context.Context, user *accessDomain.CurrentUser, req accessDomain.Requirement) accessDomain.Decision

	// CheckRoute evaluates the requirement of the first route matching path. Paths with no
	// matching route only require authentication.
	CheckRoute(ctx context.Context, user *accessDomain.CurrentUser, path string) (accessDomain.Decision, *Route)

	// Navigation lists the nav routes the user may open, in table order.
	Navigation(ctx context.Context, user *accessDomain.CurrentUser) []Route

	// Routes returns the full table.
	Routes(ctx context.Context) []Route
}
