// Package dto provides data transfer objects for the report HTTP API.
package dto

import (
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
)

// CreateReportRequest is the body of POST /v1/inspections/:inspection_id/reports.
type CreateReportRequest struct {
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

// ToInput scopes the request to an inspection.
func (r *CreateReportRequest) ToInput(inspectionID int64) *reportDomain.CreateReportInput {
	return &reportDomain.CreateReportInput{
		InspectionID: inspectionID,
		Description:  r.Description,
		Status:       r.Status,
	}
}

// UpdateReportRequest is the body of PATCH /v1/inspections/:inspection_id/reports/:id.
type UpdateReportRequest struct {
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ToInput converts the request into a partial update.
func (r *UpdateReportRequest) ToInput() *reportDomain.UpdateReportInput {
	return &reportDomain.UpdateReportInput{
		Description: r.Description,
		Status:      r.Status,
	}
}
