package domain

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	customValidation "github.com/allisson/inspecta/internal/validation"
)

// Descriptor describes one write and the cache entries it affects.
type Descriptor struct {
	// Entity is the entity type, e.g. "report".
	Entity string
	// Operation is create, update or delete.
	Operation Operation
	// ID targets update and delete.
	ID string
	// Payload is the create body or the update patch, as a JSON object.
	Payload json.RawMessage
	// Keys are the cache entries written directly: the entity's own lists and any
	// related views holding the entity.
	Keys []cacheDomain.Key
	// Invalidates are dependent queries refetched after success (counts, summaries).
	Invalidates []cacheDomain.Pattern
	// Optimistic enables the immediate local projection.
	Optimistic bool
	// IDField overrides DefaultIDField.
	IDField string
}

// IDFieldOrDefault returns the id field name.
func (d *Descriptor) IDFieldOrDefault() string {
	if d.IDField == "" {
		return DefaultIDField
	}
	return d.IDField
}

// Validate checks the descriptor is complete for its operation.
func (d *Descriptor) Validate() error {
	needsID := d.Operation == OperationUpdate || d.Operation == OperationDelete
	needsPayload := d.Operation == OperationCreate || d.Operation == OperationUpdate

	err := validation.ValidateStruct(d,
		validation.Field(&d.Entity, validation.Required, customValidation.NotBlank),
		validation.Field(&d.Operation,
			validation.Required,
			validation.In(OperationCreate, OperationUpdate, OperationDelete),
		),
		validation.Field(&d.ID, validation.When(needsID, validation.Required, customValidation.NotBlank)),
		validation.Field(&d.Payload, validation.When(needsPayload, validation.Required, customValidation.JSONObject)),
		validation.Field(&d.Keys, validation.Required),
	)
	return customValidation.WrapValidationError(err)
}

// Result is the outcome of a successful mutation.
type Result struct {
	MutationID string
	TempID     string
	Value      json.RawMessage
}
