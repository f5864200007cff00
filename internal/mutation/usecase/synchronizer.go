package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	apperrors "github.com/allisson/inspecta/internal/errors"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// Synchronizer applies optimistic projections to a cache handle, dispatches the remote
// write and reconciles or rolls back when it settles.
//
// Writes to one key reconcile in issue order: every pending projection is replayed
// over the authoritative base, and each settled server result is folded into that base
// by entity id. A late settlement therefore never drops the effect of an earlier or
// concurrent one. Keys are locked in sorted order, so mutations over disjoint keys do
// not contend.
type Synchronizer struct {
	handle cacheDomain.Handle
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	ledgers map[string]*lockedLedger
	flights singleflight.Group
	wg      sync.WaitGroup
}

// NewSynchronizer creates a Synchronizer over handle.
func NewSynchronizer(handle cacheDomain.Handle, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		handle:  handle,
		logger:  logger,
		now:     time.Now,
		ledgers: make(map[string]*lockedLedger),
	}
}

// Start implements SynchronizerUseCase.
func (s *Synchronizer) Start(
	ctx context.Context,
	descriptor mutationDomain.Descriptor,
	dispatch DispatchFunc,
	opts ...StartOption,
) *Pending {
	var options startOptions
	for _, opt := range opts {
		opt(&options)
	}

	o := &op{
		id:      uuid.Must(uuid.NewV7()).String(),
		idField: descriptor.IDFieldOrDefault(),
		desc:    descriptor,
	}
	p := newPending(o.id)

	if err := descriptor.Validate(); err != nil {
		p.settle(options, nil, s.failure(o, err))
		return p
	}

	if descriptor.Operation == mutationDomain.OperationCreate {
		o.tempID = mutationDomain.TempIDPrefix + uuid.Must(uuid.NewV7()).String()
		p.tempID = o.tempID
	}

	if descriptor.Optimistic {
		if err := s.apply(ctx, o); err != nil {
			p.settle(options, nil, s.failure(o, err))
			return p
		}
	}

	s.wg.Add(1)
	go s.run(ctx, o, dispatch, p, options)

	return p
}

// Execute implements SynchronizerUseCase.
func (s *Synchronizer) Execute(
	ctx context.Context,
	descriptor mutationDomain.Descriptor,
	dispatch DispatchFunc,
) (*mutationDomain.Result, error) {
	return s.Start(ctx, descriptor, dispatch).Wait(ctx)
}

// Drain implements SynchronizerUseCase.
func (s *Synchronizer) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply writes the optimistic projection of o to every affected key that is cached.
func (s *Synchronizer) apply(ctx context.Context, o *op) error {
	o.body = o.desc.Payload
	if o.desc.Operation == mutationDomain.OperationCreate {
		body, err := mutationDomain.Provisional(o.desc.Payload, o.idField, o.tempID, s.now())
		if err != nil {
			return err
		}
		o.body = body
	}

	ledgers := s.acquire(o.desc.Keys)
	defer s.release(ledgers)

	for _, l := range ledgers {
		entry, err := s.handle.Read(ctx, l.key)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrNotFound) {
				s.logger.Warn("optimistic read failed",
					slog.String("key", l.name),
					slog.Any("error", err),
				)
			}
			continue
		}

		l.track(o, entry)
		if err := s.store(ctx, l); err != nil {
			l.remove(o)
			s.logger.Warn("optimistic projection skipped",
				slog.String("key", l.name),
				slog.String("mutation_id", o.id),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

func (s *Synchronizer) run(ctx context.Context, o *op, dispatch DispatchFunc, p *Pending, opts startOptions) {
	defer s.wg.Done()

	server, err := dispatch(ctx)

	// Rollback and reconciliation must complete even if the caller gave up.
	settleCtx := context.WithoutCancel(ctx)

	var result *mutationDomain.Result
	if err == nil {
		result, err = s.commit(settleCtx, o, server)
	}
	if err != nil {
		s.rollback(settleCtx, o)
		err = s.failure(o, err)
		s.logger.Debug("mutation rolled back",
			slog.String("mutation_id", o.id),
			slog.String("entity", o.desc.Entity),
			slog.String("operation", string(o.desc.Operation)),
			slog.Any("error", err),
		)
	}

	p.settle(opts, result, err)
}

func (s *Synchronizer) commit(ctx context.Context, o *op, server json.RawMessage) (*mutationDomain.Result, error) {
	if o.desc.Operation != mutationDomain.OperationDelete {
		if _, err := mutationDomain.EntityID(server, o.idField); err != nil {
			return nil, err
		}
	}

	ledgers := s.acquire(o.desc.Keys)
	for _, l := range ledgers {
		s.commitKey(ctx, l, o, server)
	}
	s.release(ledgers)

	for _, pattern := range o.desc.Invalidates {
		if _, err := s.handle.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("dependent invalidation failed",
				slog.String("pattern", pattern.String()),
				slog.Any("error", err),
			)
		}
	}

	return &mutationDomain.Result{MutationID: o.id, TempID: o.tempID, Value: server}, nil
}

func (s *Synchronizer) commitKey(ctx context.Context, l *lockedLedger, o *op, server json.RawMessage) {
	wasActive := l.active()
	entry, err := s.handle.Read(ctx, l.key)
	l.remove(o)
	if err != nil {
		// evicted or never cached; the refetch will carry the server state
		s.logIfUnexpected(err, l, o)
		return
	}
	if wasActive {
		l.observe(entry)
	} else {
		l.base = entry.Value
		l.invalidated = entry.Status == cacheDomain.StatusStale || entry.Status == cacheDomain.StatusPendingWrite
	}

	base, err := mutationDomain.Reconcile(l.base, o.desc.Operation, o.idField, o.desc.ID, server)
	if err != nil {
		s.logger.Warn("reconciliation failed, invalidating entry",
			slog.String("key", l.name),
			slog.String("mutation_id", o.id),
			slog.Any("error", err),
		)
		l.invalidated = true
	} else {
		l.base = base
		l.status = cacheDomain.StatusFresh
	}

	if err := s.store(ctx, l); err != nil {
		s.logger.Warn("reconciled write failed", slog.String("key", l.name), slog.Any("error", err))
	}
}

func (s *Synchronizer) rollback(ctx context.Context, o *op) {
	ledgers := s.acquire(o.desc.Keys)
	defer s.release(ledgers)

	for _, l := range ledgers {
		if !slices.Contains(l.pending, o) {
			continue
		}
		entry, err := s.handle.Read(ctx, l.key)
		l.remove(o)
		if err != nil {
			s.logIfUnexpected(err, l, o)
			continue
		}
		l.observe(entry)
		if err := s.store(ctx, l); err != nil {
			s.logger.Error("rollback write failed",
				slog.String("key", l.name),
				slog.String("mutation_id", o.id),
				slog.Any("error", err),
			)
		}
	}
}

// store writes the ledger snapshot to the handle.
func (s *Synchronizer) store(ctx context.Context, l *lockedLedger) error {
	value, status, err := l.snapshot()
	if err != nil {
		return err
	}
	_, err = s.handle.Write(ctx, l.key, value, status)
	return err
}

// Fetch implements SynchronizerUseCase.
func (s *Synchronizer) Fetch(
	ctx context.Context,
	key cacheDomain.Key,
	loader LoaderFunc,
) (*cacheDomain.Entry, error) {
	v, err, _ := s.flights.Do(key.String(), func() (any, error) {
		value, err := loader(ctx)
		if err == nil && !json.Valid(value) {
			err = apperrors.Wrap(apperrors.ErrInvalidInput, "loader returned invalid json")
		}
		if err != nil {
			s.markError(ctx, key)
			return nil, err
		}

		ledgers := s.acquire([]cacheDomain.Key{key})
		defer s.release(ledgers)

		l := ledgers[0]
		if !l.active() {
			return s.handle.Write(ctx, key, value, cacheDomain.StatusFresh)
		}
		l.refreshed(value)
		visible, status, err := l.snapshot()
		if err != nil {
			return nil, err
		}
		return s.handle.Write(ctx, key, visible, status)
	})
	if err != nil {
		return nil, err
	}
	entry := *v.(*cacheDomain.Entry)
	return &entry, nil
}

// Get implements SynchronizerUseCase. Entries in the error state are returned as the
// last known-good value without refetching; call Fetch to retry.
func (s *Synchronizer) Get(
	ctx context.Context,
	key cacheDomain.Key,
	loader LoaderFunc,
) (*cacheDomain.Entry, error) {
	entry, err := s.handle.Read(ctx, key)
	switch {
	case err == nil && entry.Status != cacheDomain.StatusStale:
		return entry, nil
	case err != nil && !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return s.Fetch(ctx, key, loader)
}

func (s *Synchronizer) markError(ctx context.Context, key cacheDomain.Key) {
	ledgers := s.acquire([]cacheDomain.Key{key})
	defer s.release(ledgers)

	l := ledgers[0]
	if l.active() {
		l.status = cacheDomain.StatusError
		return
	}
	entry, err := s.handle.Read(ctx, key)
	if err != nil {
		return
	}
	if _, err := s.handle.Write(ctx, key, entry.Value, cacheDomain.StatusError); err != nil {
		s.logger.Warn("failed to mark entry as error", slog.String("key", l.name), slog.Any("error", err))
	}
}

// acquire locks the ledgers of keys in sorted order. Every caller holds s.mu only
// briefly and never while waiting on a ledger.
func (s *Synchronizer) acquire(keys []cacheDomain.Key) []*lockedLedger {
	byName := make(map[string]cacheDomain.Key, len(keys))
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := key.String()
		if _, ok := byName[name]; ok {
			continue
		}
		byName[name] = key
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]*lockedLedger, 0, len(names))
	for _, name := range names {
		for {
			s.mu.Lock()
			l, ok := s.ledgers[name]
			if !ok {
				l = &lockedLedger{ledger: ledger{key: byName[name], name: name}}
				s.ledgers[name] = l
			}
			s.mu.Unlock()

			l.mu.Lock()
			if !l.dead {
				out = append(out, l)
				break
			}
			// released and dropped from the map while we waited
			l.mu.Unlock()
		}
	}
	return out
}

// release unlocks ledgers, dropping the ones with nothing pending.
func (s *Synchronizer) release(ledgers []*lockedLedger) {
	for i := len(ledgers) - 1; i >= 0; i-- {
		l := ledgers[i]
		if !l.active() {
			s.mu.Lock()
			if s.ledgers[l.name] == l {
				delete(s.ledgers, l.name)
			}
			s.mu.Unlock()
			l.dead = true
			l.base = nil
		}
		l.mu.Unlock()
	}
}

func (s *Synchronizer) failure(o *op, err error) error {
	return &apperrors.MutationError{
		Entity:     o.desc.Entity,
		Operation:  string(o.desc.Operation),
		MutationID: o.id,
		Message:    apperrors.Message(err),
		Err:        err,
	}
}

func (s *Synchronizer) logIfUnexpected(err error, l *lockedLedger, o *op) {
	if apperrors.Is(err, apperrors.ErrNotFound) {
		s.logger.Debug("cache entry gone, discarding reconciliation",
			slog.String("key", l.name),
			slog.String("mutation_id", o.id),
		)
		return
	}
	s.logger.Warn("cache read failed during reconciliation",
		slog.String("key", l.name),
		slog.String("mutation_id", o.id),
		slog.Any("error", err),
	)
}

// lockedLedger pairs a ledger with its mutex.
type lockedLedger struct {
	mu sync.Mutex
	ledger
}

var _ SynchronizerUseCase = (*Synchronizer)(nil)
