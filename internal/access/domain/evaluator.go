package domain

// The functions below are the access control evaluator. They are pure: the result
// depends only on the user and the query, they never panic, and a nil user is denied
// every check.

// HasPermission reports whether "resource:action" is among the user's permissions.
func HasPermission(user *CurrentUser, resource, action string) bool {
	if user == nil || resource == "" || action == "" {
		return false
	}
	return user.has(Permission{Resource: resource, Action: action})
}

// HasAnyPermission reports whether at least one check passes. No checks means false.
func HasAnyPermission(user *CurrentUser, checks ...Permission) bool {
	if user == nil {
		return false
	}
	for _, c := range checks {
		if HasPermission(user, c.Resource, c.Action) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every check passes. No checks means false: an
// absent requirement must be expressed by not checking at all.
func HasAllPermissions(user *CurrentUser, checks ...Permission) bool {
	if user == nil || len(checks) == 0 {
		return false
	}
	for _, c := range checks {
		if !HasPermission(user, c.Resource, c.Action) {
			return false
		}
	}
	return true
}

// HasRole reports whether the user holds role.
func HasRole(user *CurrentUser, role string) bool {
	if user == nil || role == "" {
		return false
	}
	return user.hasRole(role)
}

// HasAnyRole reports whether the user holds at least one of roles.
func HasAnyRole(user *CurrentUser, roles ...string) bool {
	for _, role := range roles {
		if HasRole(user, role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds exactly GlobalAdminRole.
func IsAdmin(user *CurrentUser) bool {
	return HasRole(user, GlobalAdminRole)
}

// IsAuthenticated reports whether a user is present.
func IsAuthenticated(user *CurrentUser) bool {
	return user != nil
}

// EvaluateGuard resolves a composite requirement: single permission, then multiple
// permissions (all or any), then single role, then any of several roles, and finally
// plain authentication when nothing is specified.
func EvaluateGuard(user *CurrentUser, req Requirement) Decision {
	kind := req.Kind()

	var allowed bool
	switch kind {
	case KindPermission:
		allowed = HasPermission(user, req.Permission.Resource, req.Permission.Action)
	case KindPermissions:
		if req.RequireAll {
			allowed = HasAllPermissions(user, req.Permissions...)
		} else {
			allowed = HasAnyPermission(user, req.Permissions...)
		}
	case KindRole:
		allowed = HasRole(user, req.Role)
	case KindRoles:
		allowed = HasAnyRole(user, req.Roles...)
	default:
		allowed = IsAuthenticated(user)
	}

	return Decision{Allowed: allowed, Kind: kind}
}
