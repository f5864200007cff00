// Package dto provides data transfer objects for the access HTTP API.
package dto

import (
	"errors"

	validation "github.com/jellydator/validation"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	customValidation "github.com/allisson/inspecta/internal/validation"
)

// maxRequirements bounds a single evaluate batch.
const maxRequirements = 50

// EvaluateRequest asks for the decision of one requirement or of a batch.
// Exactly one of Requirement and Requirements must be set.
type EvaluateRequest struct {
	Requirement  *accessDomain.Requirement  `json:"requirement"`
	Requirements []accessDomain.Requirement `json:"requirements"`
}

// Validate checks if the evaluate request is valid.
func (r *EvaluateRequest) Validate() error {
	if r.Requirement != nil && r.Requirements != nil {
		return errors.New("requirement and requirements are mutually exclusive")
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Requirement,
			validation.When(r.Requirements == nil, validation.NotNil),
			validation.By(validateRequirementPtr),
		),
		validation.Field(&r.Requirements,
			validation.When(r.Requirement == nil, validation.Required),
			validation.Length(0, maxRequirements),
			validation.Each(validation.By(validateRequirement)),
		),
	)
}

// Flatten returns the requirements in request order.
func (r *EvaluateRequest) Flatten() []accessDomain.Requirement {
	if r.Requirement != nil {
		return []accessDomain.Requirement{*r.Requirement}
	}
	return r.Requirements
}

func validateRequirementPtr(value interface{}) error {
	req, ok := value.(*accessDomain.Requirement)
	if !ok || req == nil {
		return nil
	}
	return validateRequirement(*req)
}

// validateRequirement rejects blank role names; permission tuples are checked on decode.
func validateRequirement(value interface{}) error {
	req, ok := value.(accessDomain.Requirement)
	if !ok {
		return validation.NewError("validation_requirement_type", "must be a requirement")
	}
	return validation.ValidateStruct(&req,
		validation.Field(&req.Role, customValidation.NotBlank),
		validation.Field(&req.Roles, validation.Each(validation.Required, customValidation.NotBlank)),
	)
}

// CheckRouteRequest asks whether a front-end path may be opened.
type CheckRouteRequest struct {
	Path string
}

// Validate checks if the check route request is valid.
func (r *CheckRouteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path,
			validation.Required,
			customValidation.AbsolutePath,
			validation.Length(1, 2048),
		),
	)
}
