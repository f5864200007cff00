package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	"github.com/allisson/inspecta/internal/metrics"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

const metricsDomain = "mutation"

// synchronizerWithMetrics decorates SynchronizerUseCase with metrics instrumentation.
type synchronizerWithMetrics struct {
	next    SynchronizerUseCase
	metrics metrics.BusinessMetrics
}

// NewSynchronizerWithMetrics wraps a SynchronizerUseCase with metrics recording.
func NewSynchronizerWithMetrics(useCase SynchronizerUseCase, m metrics.BusinessMetrics) SynchronizerUseCase {
	return &synchronizerWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Start records metrics when the mutation settles, so the duration covers the remote
// round trip and the reconciliation.
func (s *synchronizerWithMetrics) Start(
	ctx context.Context,
	descriptor mutationDomain.Descriptor,
	dispatch DispatchFunc,
	opts ...StartOption,
) *Pending {
	start := time.Now()
	operation := fmt.Sprintf("%s_%s", descriptor.Entity, descriptor.Operation)
	s.metrics.AddInFlight(ctx, metricsDomain, operation, 1)

	record := OnSettled(func(_ *mutationDomain.Result, err error) {
		s.metrics.AddInFlight(ctx, metricsDomain, operation, -1)
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
		s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
	})

	return s.next.Start(ctx, descriptor, dispatch, append(slices.Clip(opts), record)...)
}

// Execute routes through Start so it is recorded once.
func (s *synchronizerWithMetrics) Execute(
	ctx context.Context,
	descriptor mutationDomain.Descriptor,
	dispatch DispatchFunc,
) (*mutationDomain.Result, error) {
	return s.Start(ctx, descriptor, dispatch).Wait(ctx)
}

// Fetch records metrics for query loads.
func (s *synchronizerWithMetrics) Fetch(
	ctx context.Context,
	key cacheDomain.Key,
	loader LoaderFunc,
) (*cacheDomain.Entry, error) {
	start := time.Now()
	entry, err := s.next.Fetch(ctx, key, loader)

	status := "success"
	if err != nil {
		status = "error"
	}

	operation := key.Entity + "_fetch"
	s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)

	return entry, err
}

// Get is not recorded; cache hits would drown the fetch metrics.
func (s *synchronizerWithMetrics) Get(
	ctx context.Context,
	key cacheDomain.Key,
	loader LoaderFunc,
) (*cacheDomain.Entry, error) {
	return s.next.Get(ctx, key, loader)
}

// Drain delegates to the wrapped synchronizer.
func (s *synchronizerWithMetrics) Drain(ctx context.Context) error {
	return s.next.Drain(ctx)
}
