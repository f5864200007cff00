package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	reportDomain "github.com/allisson/inspecta/internal/report/domain"
	reportUseCase "github.com/allisson/inspecta/internal/report/usecase"
)

// listOutput is the JSON shape of a report list.
type listOutput struct {
	InspectionID int64                 `json:"inspection_id"`
	CacheStatus  string                `json:"cache_status"`
	Version      uint64                `json:"version"`
	Reports      []reportDomain.Report `json:"reports"`
}

// RunListReports prints the reports of an inspection through the cache.
func RunListReports(
	ctx context.Context,
	uc reportUseCase.ReportUseCase,
	writer io.Writer,
	inspectionID int64,
	refresh bool,
	format string,
) error {
	var (
		list *reportUseCase.ReportList
		err  error
	)
	if refresh {
		list, err = uc.Refresh(ctx, inspectionID)
	} else {
		list, err = uc.List(ctx, inspectionID)
	}
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if format == "json" {
		reports := list.Reports
		if reports == nil {
			reports = []reportDomain.Report{}
		}
		return writeJSON(writer, listOutput{
			InspectionID: inspectionID,
			CacheStatus:  string(list.Status),
			Version:      list.Version,
			Reports:      reports,
		})
	}

	_, _ = fmt.Fprintf(writer, "Inspection %d (%s, version %d)\n", inspectionID, list.Status, list.Version)
	if len(list.Reports) == 0 {
		_, _ = fmt.Fprintln(writer, "No reports")
		return nil
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tDESCRIPTION")
	for _, r := range list.Reports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Status, r.Description)
	}
	return tw.Flush()
}

// RunCreateReport issues a report create and waits until the API confirms or rejects it.
func RunCreateReport(
	ctx context.Context,
	uc reportUseCase.ReportUseCase,
	logger *slog.Logger,
	writer io.Writer,
	inspectionID int64,
	description, status string,
	wait time.Duration,
	format string,
) error {
	input := &reportDomain.CreateReportInput{
		InspectionID: inspectionID,
		Description:  description,
		Status:       status,
	}

	pending, err := uc.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	logger.Info("report create issued",
		slog.String("mutation_id", pending.ID()),
		slog.String("temp_id", pending.TempID()),
	)

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	result, err := pending.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("report create was not confirmed: %w", err)
	}

	if result == nil || len(result.Value) == 0 {
		return fmt.Errorf("report create returned no report")
	}

	var report reportDomain.Report
	if err := json.Unmarshal(result.Value, &report); err != nil {
		return fmt.Errorf("failed to decode created report: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, report)
	}

	_, _ = fmt.Fprintf(writer, "Report created\n")
	_, _ = fmt.Fprintf(writer, "ID:          %s\n", report.ID)
	_, _ = fmt.Fprintf(writer, "Inspection:  %d\n", report.InspectionID)
	_, _ = fmt.Fprintf(writer, "Status:      %s\n", report.Status)
	_, _ = fmt.Fprintf(writer, "Description: %s\n", report.Description)
	return nil
}

// RunDeleteReport issues a report delete and waits until the API confirms or rejects it.
func RunDeleteReport(
	ctx context.Context,
	uc reportUseCase.ReportUseCase,
	logger *slog.Logger,
	writer io.Writer,
	inspectionID int64,
	id string,
	wait time.Duration,
) error {
	pending, err := uc.Delete(ctx, inspectionID, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	logger.Info("report delete issued", slog.String("mutation_id", pending.ID()))

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if _, err := pending.Wait(waitCtx); err != nil {
		return fmt.Errorf("report delete was not confirmed: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Report %s deleted\n", id)
	return nil
}
