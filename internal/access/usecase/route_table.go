package usecase

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
)

// Route is a navigable screen of the front-end and the requirement that guards it.
type Route struct {
	Name    string                   `yaml:"name"    json:"name"`
	Path    string                   `yaml:"path"    json:"path"`
	Title   string                   `yaml:"title"   json:"title,omitempty"`
	Nav     bool                     `yaml:"nav"     json:"nav"`
	Require accessDomain.Requirement `yaml:"require" json:"require"`
}

// RouteTable is an ordered list of routes; the first matching route wins.
type RouteTable struct {
	Routes []Route `yaml:"routes"`
}

// ParseRouteTable decodes a YAML route table and validates it.
func ParseRouteTable(data []byte) (*RouteTable, error) {
	var table RouteTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %w", accessDomain.ErrInvalidRequirement, err)
	}
	seen := make(map[string]struct{}, len(table.Routes))
	for i, r := range table.Routes {
		if r.Name == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("%w: route %d needs a name and an absolute path", accessDomain.ErrInvalidRequirement, i)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate route name %q", accessDomain.ErrInvalidRequirement, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return &table, nil
}

// LoadRouteTable reads and parses a YAML route table from disk.
func LoadRouteTable(path string) (*RouteTable, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read route table: %w", err)
	}
	return ParseRouteTable(data)
}

// Match returns the first route whose pattern matches path.
func (t *RouteTable) Match(path string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	for _, r := range t.Routes {
		if matchPath(r.Path, path) {
			return r, true
		}
	}
	return Route{}, false
}

// matchPath checks if the request path matches the route pattern.
//  1. "/psv" matches only "/psv"
//  2. "/psv/*" matches "/psv/12" and "/psv/12/edit" (greedy)
//  3. "/inspections/*/reports" matches "/inspections/1/reports" (one segment per *)
func matchPath(pattern, path string) bool {
	if pattern == "*" {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return pattern == path
	}

	if strings.HasSuffix(pattern, "/*") && !strings.Contains(strings.TrimSuffix(pattern, "/*"), "*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(path, prefix+"/")
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] == "*" {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}
