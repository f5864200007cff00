package domain

import "strings"

// Requirement is the tagged variant consumed by route and render guards.
//
// Only the first populated field, in the order Permission, Permissions, Role, Roles,
// is considered. A nil slice means "not specified" while an empty non-nil slice is an
// explicit requirement that nothing can satisfy. When nothing is specified the user
// merely has to be authenticated.
type Requirement struct {
	Permission  *Permission  `json:"permission,omitempty"  yaml:"permission,omitempty"`
	Permissions []Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	RequireAll  bool         `json:"require_all,omitempty" yaml:"require_all,omitempty"`
	Role        string       `json:"role,omitempty"        yaml:"role,omitempty"`
	Roles       []string     `json:"roles,omitempty"       yaml:"roles,omitempty"`
}

// RequirePermission requires resource:action.
func RequirePermission(resource, action string) Requirement {
	p := NewPermission(resource, action)
	return Requirement{Permission: &p}
}

// RequirePermissions requires all (requireAll) or any of the given permissions.
func RequirePermissions(requireAll bool, permissions ...Permission) Requirement {
	if permissions == nil {
		permissions = []Permission{}
	}
	return Requirement{Permissions: permissions, RequireAll: requireAll}
}

// RequireRole requires a single role.
func RequireRole(role string) Requirement {
	return Requirement{Role: role}
}

// RequireAnyRole requires any of the given roles.
func RequireAnyRole(roles ...string) Requirement {
	if roles == nil {
		roles = []string{}
	}
	return Requirement{Roles: roles}
}

// RequireAuthenticated only requires a logged in user.
func RequireAuthenticated() Requirement {
	return Requirement{}
}

// Kind returns the variant that EvaluateGuard will resolve.
func (r Requirement) Kind() RequirementKind {
	switch {
	case r.Permission != nil:
		return KindPermission
	case r.Permissions != nil:
		return KindPermissions
	case r.Role != "":
		return KindRole
	case r.Roles != nil:
		return KindRoles
	default:
		return KindNone
	}
}

// String renders the resolved variant for logs.
func (r Requirement) String() string {
	switch r.Kind() {
	case KindPermission:
		return "permission " + r.Permission.String()
	case KindPermissions:
		perms := make([]string, len(r.Permissions))
		for i, p := range r.Permissions {
			perms[i] = p.String()
		}
		mode := "any of"
		if r.RequireAll {
			mode = "all of"
		}
		return "permissions " + mode + " [" + strings.Join(perms, " ") + "]"
	case KindRole:
		return "role " + r.Role
	case KindRoles:
		return "roles any of [" + strings.Join(r.Roles, " ") + "]"
	default:
		return "authenticated"
	}
}

// Decision is the result of evaluating a Requirement.
type Decision struct {
	Allowed bool
	Kind    RequirementKind
}
