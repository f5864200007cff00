package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	apperrors "github.com/allisson/inspecta/internal/errors"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
	mutationUsecase "github.com/allisson/inspecta/internal/mutation/usecase"
	reportDomain "github.com/allisson/inspecta/internal/report/domain"
)

// Config controls how report mutations are issued.
type Config struct {
	Optimistic           bool
	RetryMax             uint64
	RetryInitialInterval time.Duration
}

type reportUseCase struct {
	sync   mutationUsecase.SynchronizerUseCase
	api    mutationUsecase.EntityAPI[reportDomain.Report]
	logger *slog.Logger

	create *mutationUsecase.Mutation[reportDomain.Report]
	update *mutationUsecase.Mutation[reportDomain.Report]
	remove *mutationUsecase.Mutation[reportDomain.Report]
}

// NewReportUseCase creates a ReportUseCase.
func NewReportUseCase(
	synchronizer mutationUsecase.SynchronizerUseCase,
	api mutationUsecase.EntityAPI[reportDomain.Report],
	cfg Config,
	logger *slog.Logger,
) ReportUseCase {
	mutation := func(op mutationDomain.Operation) *mutationUsecase.Mutation[reportDomain.Report] {
		return mutationUsecase.NewMutation(synchronizer, api, mutationUsecase.MutationConfig{
			Entity:               reportDomain.Entity,
			Operation:            op,
			Keys:                 listKeys,
			Invalidates:          dependents,
			Optimistic:           cfg.Optimistic,
			RetryMax:             cfg.RetryMax,
			RetryInitialInterval: cfg.RetryInitialInterval,
		})
	}

	return &reportUseCase{
		sync:   synchronizer,
		api:    api,
		logger: logger,
		create: mutation(mutationDomain.OperationCreate),
		update: mutation(mutationDomain.OperationUpdate),
		remove: mutation(mutationDomain.OperationDelete),
	}
}

func (r *reportUseCase) List(ctx context.Context, inspectionID int64) (*ReportList, error) {
	entry, err := r.sync.Get(ctx, reportDomain.ListKey(inspectionID), r.loader(inspectionID))
	if err != nil {
		return nil, err
	}
	return toReportList(entry)
}

func (r *reportUseCase) Refresh(ctx context.Context, inspectionID int64) (*ReportList, error) {
	entry, err := r.sync.Fetch(ctx, reportDomain.ListKey(inspectionID), r.loader(inspectionID))
	if err != nil {
		return nil, err
	}
	return toReportList(entry)
}

func (r *reportUseCase) Create(
	ctx context.Context,
	input *reportDomain.CreateReportInput,
) (*mutationUsecase.Pending, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p := r.create.Submit(ctx, mutationUsecase.Input{
		Payload: input,
		Params:  scope(input.InspectionID),
	})
	r.logger.Debug("report create issued",
		slog.String("mutation_id", p.ID()),
		slog.String("temp_id", p.TempID()),
		slog.Int64("inspection_id", input.InspectionID),
	)
	return p, nil
}

func (r *reportUseCase) Update(
	ctx context.Context,
	inspectionID int64,
	id string,
	input *reportDomain.UpdateReportInput,
) (*mutationUsecase.Pending, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "report id is required")
	}

	return r.update.Submit(ctx, mutationUsecase.Input{
		ID:      id,
		Payload: input,
		Params:  scope(inspectionID),
	}), nil
}

func (r *reportUseCase) Delete(ctx context.Context, inspectionID int64, id string) (*mutationUsecase.Pending, error) {
	if id == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "report id is required")
	}

	return r.remove.Submit(ctx, mutationUsecase.Input{
		ID:     id,
		Params: scope(inspectionID),
	}), nil
}

func (r *reportUseCase) loader(inspectionID int64) mutationUsecase.LoaderFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		reports, err := r.api.List(ctx, scope(inspectionID))
		if err != nil {
			return nil, err
		}
		if reports == nil {
			reports = []reportDomain.Report{}
		}
		return json.Marshal(reports)
	}
}

func scope(inspectionID int64) map[string]string {
	return map[string]string{"inspection_id": strconv.FormatInt(inspectionID, 10)}
}

func inspectionID(in mutationUsecase.Input) int64 {
	id, _ := strconv.ParseInt(in.Params["inspection_id"], 10, 64)
	return id
}

func listKeys(in mutationUsecase.Input) []cacheDomain.Key {
	return []cacheDomain.Key{reportDomain.ListKey(inspectionID(in))}
}

func dependents(in mutationUsecase.Input) []cacheDomain.Pattern {
	return []cacheDomain.Pattern{reportDomain.InspectionPattern(inspectionID(in))}
}

func toReportList(entry *cacheDomain.Entry) (*ReportList, error) {
	var reports []reportDomain.Report
	if err := entry.Decode(&reports); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrConflict, "cached reports: %v", err)
	}
	return &ReportList{Reports: reports, Status: entry.Status, Version: entry.Version}, nil
}
