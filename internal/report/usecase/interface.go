// Package usecase implements cached, optimistic report operations.
package usecase

import (
	"context"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
)

// ReportList is a cached report list with its cache status.
type ReportList struct {
	Reports []reportDomain.Report
	Status  cacheDomain.Status
	Version uint64
}

// ReportUseCase defines the report operations used by the CLI.
type ReportUseCase interface {
	// List returns the cached reports of an inspection, loading them when missing or stale.
	List(ctx context.Context, inspectionID int64) (*ReportList, error)

	// Refresh reloads the reports of an inspection from the API.
	Refresh(ctx context.Context, inspectionID int64) (*ReportList, error)

	// Create issues an optimistic create. Input errors are returned before anything is issued.
	Create(ctx context.Context, input *reportDomain.CreateReportInput) (*mutationUsecase.Pending, error)

	// Update issues an optimistic partial update.
	Update(
		ctx context.Context,
		inspectionID int64,
		id string,
		input *reportDomain.UpdateReportInput,
	) (*mutationUsecase.Pending, error)

	// Delete issues an optimistic delete.
	Delete(ctx context.Context, inspectionID int64, id string) (*mutationUsecase.Pending, error)
}
