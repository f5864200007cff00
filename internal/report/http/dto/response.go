package dto

import (
	"time"

	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

// ReportResponse is a report as shown to the front-end. Provisional is true for
// optimistic placeholders that the API has not confirmed yet.
type ReportResponse struct {
	ID           string    `json:"id"`
	InspectionID int64     `json:"inspection_id"`
	Description  string    `json:"description"`
	Status       string    `json:"status,omitempty"`
	Provisional  bool      `json:"provisional"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListReportsResponse is the cached report list of an inspection.
type ListReportsResponse struct {
	Data        []ReportResponse `json:"data"`
	CacheStatus string           `json:"cache_status"`
	Version     uint64           `json:"version"`
}

// MutationResponse acknowledges an issued mutation that has not settled yet.
type MutationResponse struct {
	MutationID string `json:"mutation_id"`
	TempID     string `json:"temp_id,omitempty"`
	State      string `json:"state"`
}

// MapReportToResponse converts a report into its response shape.
func MapReportToResponse(report reportDomain.Report) ReportResponse {
	return ReportResponse{
		ID:           report.ID.String(),
		InspectionID: report.InspectionID,
		Description:  report.Description,
		Status:       report.Status,
		Provisional:  report.IsProvisional(),
		CreatedAt:    report.CreatedAt,
		UpdatedAt:    report.UpdatedAt,
	}
}

// MapListToResponse converts a cached list into its response shape.
func MapListToResponse(list *reportUseCase.ReportList) ListReportsResponse {
	data := make([]ReportResponse, 0, len(list.Reports))
	for _, r := range list.Reports {
		data = append(data, MapReportToResponse(r))
	}
	return ListReportsResponse{
		Data:        data,
		CacheStatus: string(list.Status),
		Version:     list.Version,
	}
}
