package domain

import (
	"slices"
	"sort"
	"strings"
)

// CurrentUser is the authenticated principal read by the evaluator.
// It is immutable once built; the session replaces it wholesale on login, token
// refresh or role change.
type CurrentUser struct {
	ID          string
	roles       map[string]struct{}
	permissions map[Permission]struct{}
}

// NewCurrentUser builds a user from raw role names and "resource:action" permission strings.
// Duplicates collapse. Returns ErrInvalidPermission for any malformed permission.
func NewCurrentUser(id string, roles []string, permissions []string) (*CurrentUser, error) {
	parsed, err := ParsePermissions(permissions)
	if err != nil {
		return nil, err
	}
	return NewCurrentUserFromPermissions(id, roles, parsed), nil
}

// NewCurrentUserFromPermissions builds a user from already structured permissions.
// Invalid tuples are dropped since they can never match a check.
func NewCurrentUserFromPermissions(id string, roles []string, permissions []Permission) *CurrentUser {
	u := &CurrentUser{
		ID:          id,
		roles:       make(map[string]struct{}, len(roles)),
		permissions: make(map[Permission]struct{}, len(permissions)),
	}
	for _, r := range roles {
		if r == "" {
			continue
		}
		u.roles[r] = struct{}{}
	}
	for _, p := range permissions {
		if !p.Valid() {
			continue
		}
		u.permissions[p] = struct{}{}
	}
	return u
}

// Roles returns the role names sorted.
func (u *CurrentUser) Roles() []string {
	if u == nil {
		return nil
	}
	out := make([]string, 0, len(u.roles))
	for r := range u.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Permissions returns the permissions sorted by their canonical string.
func (u *CurrentUser) Permissions() []Permission {
	if u == nil {
		return nil
	}
	out := make([]Permission, 0, len(u.permissions))
	for p := range u.permissions {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Permission) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// PermissionStrings returns the canonical strings of Permissions.
func (u *CurrentUser) PermissionStrings() []string {
	perms := u.Permissions()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}
	return out
}

func (u *CurrentUser) has(p Permission) bool {
	_, ok := u.permissions[p]
	return ok
}

func (u *CurrentUser) hasRole(role string) bool {
	_, ok := u.roles[role]
	return ok
}
