// Package domain defines the access control model: users, permission tuples, guard
// requirements and the pure evaluator functions consumed by route and render guards.
package domain

// GlobalAdminRole is the distinguished role that marks an administrator.
// Matching is exact and case-sensitive.
const GlobalAdminRole = "Global Admin"

// RequirementKind identifies which variant of a Requirement is populated.
type RequirementKind string

const (
	// KindPermission requires a single permission.
	KindPermission RequirementKind = "permission"

	// KindPermissions requires any (or all, with RequireAll) of several permissions.
	KindPermissions RequirementKind = "permissions"

	// KindRole requires a single role.
	KindRole RequirementKind = "role"

	// KindRoles requires any of several roles.
	KindRoles RequirementKind = "roles"

	// KindNone only requires an authenticated user.
	KindNone RequirementKind = "none"
)
