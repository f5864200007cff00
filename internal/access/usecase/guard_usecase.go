package usecase

import (
	"context"
	"log/slog"
	"slices"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
)

// guardUseCase implements GuardUseCase over a static route table.
type guardUseCase struct {
	table  *RouteTable
	logger *slog.Logger
}

// NewGuardUseCase creates a GuardUseCase. A nil table behaves as an empty one.
func NewGuardUseCase(table *RouteTable, logger *slog.Logger) GuardUseCase {
	if table == nil {
		table = &RouteTable{}
	}
	return &guardUseCase{table: table, logger: logger}
}

func (g *guardUseCase) Evaluate(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	req accessDomain.Requirement,
) accessDomain.Decision {
	decision := accessDomain.EvaluateGuard(user, req)
	if !decision.Allowed {
		g.logger.DebugContext(ctx, "access denied",
			slog.String("user_id", userID(user)),
			slog.String("requirement", req.String()))
	}
	return decision
}

func (g *guardUseCase) CheckRoute(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	path string,
) (accessDomain.Decision, *Route) {
	route, ok := g.table.Match(path)
	if !ok {
		return g.Evaluate(ctx, user, accessDomain.RequireAuthenticated()), nil
	}
	return g.Evaluate(ctx, user, route.Require), &route
}

func (g *guardUseCase) Navigation(ctx context.Context, user *accessDomain.CurrentUser) []Route {
	out := make([]Route, 0, len(g.table.Routes))
	for _, r := range g.table.Routes {
		if !r.Nav {
			continue
		}
		if accessDomain.EvaluateGuard(user, r.Require).Allowed {
			out = append(out, r)
		}
	}
	return out
}

func (g *guardUseCase) Routes(ctx context.Context) []Route {
	return slices.Clone(g.table.Routes)
}

func userID(user *accessDomain.CurrentUser) string {
	if user == nil {
		return ""
	}
	return user.ID
}
