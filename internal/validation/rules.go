// Package validation provides custom validation rules for the application.
package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	validation "github.com/jellydator/validation"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	apperrors "github.com/allisson/inspecta/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// AbsolutePath validates that a string is an absolute URL path.
var AbsolutePath = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.HasPrefix(s, "/")
	},
	validation.NewError("validation_absolute_path", "must start with /"),
)

// Permission validates the "resource:action" permission form.
var Permission = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := accessDomain.ParsePermission(s)
		return err == nil
	},
	validation.NewError("validation_permission", "must be in resource:action form"),
)

// JSONObject validates that a raw JSON value is an object.
var JSONObject = validation.By(func(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		return validation.NewError("validation_json_object_type", "must be raw JSON")
	}
	if len(data) == 0 {
		return nil // Let Required handle empty values
	}
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
		return validation.NewError("validation_json_object", "must be a JSON object")
	}
	return nil
})
