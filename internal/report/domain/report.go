// Package domain defines inspection reports and the cache keys they live under.
package domain

import (
	"strconv"
	"time"

	validation "github.com/jellydator/validation"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
	customValidation "github.com/allisson/inspecta/internal/validation"
)

// Entity is the cache and metrics name of reports.
const Entity = "report"

// Report is an inspection report as returned by the API.
type Report struct {
	ID           mutationDomain.ID `json:"id"`
	InspectionID int64             `json:"inspection_id"`
	Description  string            `json:"description"`
	Status       string            `json:"status,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// IsProvisional reports whether the report is an optimistic placeholder.
func (r *Report) IsProvisional() bool {
	return r.ID.IsTemporary()
}

// CreateReportInput is the body of a report create.
type CreateReportInput struct {
	InspectionID int64  `json:"inspection_id"`
	Description  string `json:"description"`
	Status       string `json:"status,omitempty"`
}

// Validate checks the create input.
func (i *CreateReportInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.InspectionID, validation.Required, validation.Min(int64(1))),
		validation.Field(&i.Description, validation.Required, customValidation.NotBlank),
		validation.Field(&i.Status, validation.In(StatusDraft, StatusSubmitted, StatusApproved)),
	)
	return customValidation.WrapValidationError(err)
}

// UpdateReportInput is a partial report update; nil fields are left untouched.
type UpdateReportInput struct {
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Validate checks the update input.
func (i *UpdateReportInput) Validate() error {
	err := validation.ValidateStruct(i,
		validation.Field(&i.Description, validation.NilOrNotEmpty, customValidation.NotBlank),
		validation.Field(&i.Status, validation.NilOrNotEmpty,
			validation.In(StatusDraft, StatusSubmitted, StatusApproved)),
	)
	if err != nil {
		return customValidation.WrapValidationError(err)
	}
	if i.Description == nil && i.Status == nil {
		return customValidation.WrapValidationError(validation.NewError("validation_empty_update", "nothing to update"))
	}
	return nil
}

// Report statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
)

// ListKey is the cache key of the reports of an inspection.
func ListKey(inspectionID int64) cacheDomain.Key {
	return cacheDomain.NewKey(Entity, "inspection_id", strconv.FormatInt(inspectionID, 10))
}

// InspectionPattern selects the inspection views that summarize its reports.
func InspectionPattern(inspectionID int64) cacheDomain.Pattern {
	return cacheDomain.NewKey("inspection", "id", strconv.FormatInt(inspectionID, 10)).Pattern()
}
