package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const permissionSeparator = ":"

// Permission is the structured form of a "resource:action" grant.
type Permission struct {
	Resource string
	Action   string
}

// NewPermission builds a Permission from its parts.
func NewPermission(resource, action string) Permission {
	return Permission{Resource: resource, Action: action}
}

// String joins the permission into its canonical "resource:action" form.
func (p Permission) String() string {
	return p.Resource + permissionSeparator + p.Action
}

// Valid reports whether both parts are non-empty and free of separators and whitespace.
func (p Permission) Valid() bool {
	return validPart(p.Resource) && validPart(p.Action)
}

// MarshalText implements encoding.TextMarshaler.
func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParsePermission.
func (p *Permission) UnmarshalText(text []byte) error {
	parsed, err := ParsePermission(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePermission parses the canonical "resource:action" form. Exactly one separator is
// allowed and both sides must be non-empty without whitespace.
func ParsePermission(s string) (Permission, error) {
	resource, action, found := strings.Cut(s, permissionSeparator)
	if !found {
		return Permission{}, fmt.Errorf("%w: %q is missing %q", ErrInvalidPermission, s, permissionSeparator)
	}
	p := Permission{Resource: resource, Action: action}
	if !p.Valid() {
		return Permission{}, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	return p, nil
}

// ParsePermissions parses every string, failing on the first malformed one.
func ParsePermissions(values []string) ([]Permission, error) {
	out := make([]Permission, 0, len(values))
	for _, v := range values {
		p, err := ParsePermission(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func validPart(s string) bool {
	if s == "" || strings.Contains(s, permissionSeparator) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}
