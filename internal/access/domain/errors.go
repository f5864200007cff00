package domain

import (
	"github.com/allisson/inspecta/internal/errors"
)

// Access control errors.
var (
	// ErrInvalidPermission indicates a permission string that is not in resource:action form.
	ErrInvalidPermission = errors.Wrap(errors.ErrInvalidInput, "invalid permission")

	// ErrInvalidRequirement indicates a malformed guard requirement.
	ErrInvalidRequirement = errors.Wrap(errors.ErrInvalidInput, "invalid requirement")
)
