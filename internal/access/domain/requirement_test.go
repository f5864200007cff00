package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRequirement_DecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RequirementKind
	}{
		{name: "Permission", input: `{"permission":"psv:view"}`, expected: KindPermission},
		{name: "Permissions", input: `{"permissions":["psv:view","ndt:view"],"require_all":true}`, expected: KindPermissions},
		{name: "ExplicitEmptyPermissions", input: `{"permissions":[]}`, expected: KindPermissions},
		{name: "Role", input: `{"role":"Planner"}`, expected: KindRole},
		{name: "Roles", input: `{"roles":["Planner"]}`, expected: KindRoles},
		{name: "None", input: `{}`, expected: KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Requirement
			require.NoError(t, json.Unmarshal([]byte(tt.input), &req))
			assert.Equal(t, tt.expected, req.Kind())
		})
	}
}

func TestRequirement_DecodeYAML(t *testing.T) {
	input := `
permissions:
  - ndt:view
  - ndt:approve
require_all: true
`
	var req Requirement
	require.NoError(t, yaml.Unmarshal([]byte(input), &req))

	assert.Equal(t, KindPermissions, req.Kind())
	assert.True(t, req.RequireAll)
	assert.Equal(t, []Permission{{"ndt", "view"}, {"ndt", "approve"}}, req.Permissions)
}

func TestRequirement_DecodeRejectsMalformedPermission(t *testing.T) {
	var req Requirement
	err := json.Unmarshal([]byte(`{"permission":"psv"}`), &req)
	assert.ErrorIs(t, err, ErrInvalidPermission)
}

func TestRequirement_String(t *testing.T) {
	assert.Equal(t, "permission psv:view", RequirePermission("psv", "view").String())
	assert.Equal(
		t,
		"permissions all of [psv:view ndt:view]",
		RequirePermissions(true, NewPermission("psv", "view"), NewPermission("ndt", "view")).String(),
	)
	assert.Equal(t, "permissions any of []", RequirePermissions(false).String())
	assert.Equal(t, "role Planner", RequireRole("Planner").String())
	assert.Equal(t, "roles any of [A B]", RequireAnyRole("A", "B").String())
	assert.Equal(t, "authenticated", RequireAuthenticated().String())
}
