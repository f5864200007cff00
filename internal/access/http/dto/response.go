package dto

import (
	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
)

// DecisionResponse is the outcome of one requirement.
type DecisionResponse struct {
	Allowed     bool   `json:"allowed"`
	Kind        string `json:"kind"`
	Requirement string `json:"requirement"`
}

// EvaluateResponse carries the decisions in request order. Allowed is true only when
// every requirement is allowed.
type EvaluateResponse struct {
	Allowed   bool               `json:"allowed"`
	Decisions []DecisionResponse `json:"decisions"`
}

// RouteResponse describes a guarded front-end route.
type RouteResponse struct {
	Name        string                   `json:"name"`
	Path        string                   `json:"path"`
	Title       string                   `json:"title,omitempty"`
	Nav         bool                     `json:"nav"`
	Require     accessDomain.Requirement `json:"require"`
	Requirement string                   `json:"requirement"`
}

// ListRoutesResponse wraps a page of routes.
type ListRoutesResponse struct {
	Data []RouteResponse `json:"data"`
}

// MeResponse describes the authenticated user and the navigation they may see.
type MeResponse struct {
	ID          string          `json:"id"`
	Roles       []string        `json:"roles"`
	Permissions []string        `json:"permissions"`
	IsAdmin     bool            `json:"is_admin"`
	Navigation  []RouteResponse `json:"navigation"`
}

// MapDecisions builds an EvaluateResponse from parallel requirement and decision slices.
func MapDecisions(reqs []accessDomain.Requirement, decisions []accessDomain.Decision) EvaluateResponse {
	resp := EvaluateResponse{
		Allowed:   len(decisions) > 0,
		Decisions: make([]DecisionResponse, len(decisions)),
	}
	for i, d := range decisions {
		resp.Decisions[i] = DecisionResponse{
			Allowed:     d.Allowed,
			Kind:        string(d.Kind),
			Requirement: reqs[i].String(),
		}
		resp.Allowed = resp.Allowed && d.Allowed
	}
	return resp
}

// MapRouteToResponse converts a route into its response shape.
func MapRouteToResponse(route accessUseCase.Route) RouteResponse {
	return RouteResponse{
		Name:        route.Name,
		Path:        route.Path,
		Title:       route.Title,
		Nav:         route.Nav,
		Require:     route.Require,
		Requirement: route.Require.String(),
	}
}

// MapRoutesToResponse converts routes in order.
func MapRoutesToResponse(routes []accessUseCase.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, MapRouteToResponse(r))
	}
	return out
}

// MapMeResponse describes user together with their navigation.
func MapMeResponse(user *accessDomain.CurrentUser, nav []accessUseCase.Route) MeResponse {
	return MeResponse{
		ID:          user.ID,
		Roles:       user.Roles(),
		Permissions: user.PermissionStrings(),
		IsAdmin:     accessDomain.IsAdmin(user),
		Navigation:  MapRoutesToResponse(nav),
	}
}

// CheckRouteResponse is the route guard outcome for a path. Route is nil when no route
// matched and only authentication was required.
type CheckRouteResponse struct {
	Path    string         `json:"path"`
	Allowed bool           `json:"allowed"`
	Kind    string         `json:"kind"`
	Route   *RouteResponse `json:"route"`
}

// MapCheckRouteResponse builds a CheckRouteResponse.
func MapCheckRouteResponse(
	path string,
	decision accessDomain.Decision,
	route *accessUseCase.Route,
) CheckRouteResponse {
	resp := CheckRouteResponse{
		Path:    path,
		Allowed: decision.Allowed,
		Kind:    string(decision.Kind),
	}
	if route != nil {
		r := MapRouteToResponse(*route)
		resp.Route = &r
	}
	return resp
}
