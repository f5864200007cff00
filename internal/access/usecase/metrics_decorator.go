package usecase

import (
	"context"
	"time"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	"github.com/allisson/inspecta/internal/metrics"
)

// guardUseCaseWithMetrics decorates GuardUseCase with metrics instrumentation.
type guardUseCaseWithMetrics struct {
	next    GuardUseCase
	metrics metrics.BusinessMetrics
}

// NewGuardUseCaseWithMetrics wraps a GuardUseCase with metrics recording.
func NewGuardUseCaseWithMetrics(useCase GuardUseCase, m metrics.BusinessMetrics) GuardUseCase {
	return &guardUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Evaluate records metrics for requirement evaluations.
func (g *guardUseCaseWithMetrics) Evaluate(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	req accessDomain.Requirement,
) accessDomain.Decision {
	start := time.Now()
	decision := g.next.Evaluate(ctx, user, req)
	g.record(ctx, "guard_evaluate", start, decision)
	return decision
}

// CheckRoute records metrics for route checks.
func (g *guardUseCaseWithMetrics) CheckRoute(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	path string,
) (accessDomain.Decision, *Route) {
	start := time.Now()
	decision, route := g.next.CheckRoute(ctx, user, path)
	g.record(ctx, "guard_route", start, decision)
	return decision, route
}

// Navigation records metrics for navigation listing.
func (g *guardUseCaseWithMetrics) Navigation(ctx context.Context, user *accessDomain.CurrentUser) []Route {
	start := time.Now()
	routes := g.next.Navigation(ctx, user)
	g.metrics.RecordOperation(ctx, "access", "navigation", "success")
	g.metrics.RecordDuration(ctx, "access", "navigation", time.Since(start), "success")
	return routes
}

// Routes is not instrumented.
func (g *guardUseCaseWithMetrics) Routes(ctx context.Context) []Route {
	return g.next.Routes(ctx)
}

func (g *guardUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	decision accessDomain.Decision,
) {
	status := "granted"
	if !decision.Allowed {
		status = "denied"
	}
	g.metrics.RecordOperation(ctx, "access", operation, status)
	g.metrics.RecordDuration(ctx, "access", operation, time.Since(start), status)
}
