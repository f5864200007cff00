package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	apperrors "github.com/allisson/inspecta/internal/errors"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// Input is the argument of one Submit call.
type Input struct {
	// ID targets update and delete.
	ID string
	// Payload is the create body or the update patch; it must marshal to a JSON object.
	Payload any
	// Params scopes the cache keys, e.g. {"inspection_id": "1"}.
	Params map[string]string
}

// MutationConfig describes a mutation bound to one entity and operation.
type MutationConfig struct {
	Entity    string
	Operation mutationDomain.Operation
	// Keys returns the cache keys written directly for an input.
	Keys func(Input) []cacheDomain.Key
	// Invalidates returns the dependent patterns refetched after success.
	Invalidates func(Input) []cacheDomain.Pattern
	Optimistic  bool
	IDField     string
	// RetryMax retries transient network failures before settling. Zero disables retry.
	RetryMax             uint64
	RetryInitialInterval time.Duration
}

// Mutation is a typed mutation handle exposing the idle/pending/success/error state of
// its most recent submission.
type Mutation[T any] struct {
	sync SynchronizerUseCase
	api  EntityAPI[T]
	cfg  MutationConfig

	mu        sync.Mutex
	seq       uint64
	state     mutationDomain.State
	err       error
	last      *T
	abandoned bool
}

// NewMutation creates a Mutation.
func NewMutation[T any](synchronizer SynchronizerUseCase, api EntityAPI[T], cfg MutationConfig) *Mutation[T] {
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = 200 * time.Millisecond
	}
	return &Mutation[T]{
		sync:  synchronizer,
		api:   api,
		cfg:   cfg,
		state: mutationDomain.StateIdle,
	}
}

// Submit issues the mutation. The optimistic projection is visible when Submit returns.
func (m *Mutation[T]) Submit(ctx context.Context, in Input) *Pending {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.state = mutationDomain.StatePending
	m.err = nil
	m.mu.Unlock()

	descriptor := mutationDomain.Descriptor{
		Entity:     m.cfg.Entity,
		Operation:  m.cfg.Operation,
		ID:         in.ID,
		Optimistic: m.cfg.Optimistic,
		IDField:    m.cfg.IDField,
	}
	if m.cfg.Keys != nil {
		descriptor.Keys = m.cfg.Keys(in)
	}
	if m.cfg.Invalidates != nil {
		descriptor.Invalidates = m.cfg.Invalidates(in)
	}
	if in.Payload != nil {
		payload, err := json.Marshal(in.Payload)
		if err != nil {
			// surfaces through descriptor validation as a missing payload
			payload = nil
		}
		descriptor.Payload = payload
	}

	return m.sync.Start(ctx, descriptor, m.dispatch(in), OnSettled(func(result *mutationDomain.Result, err error) {
		m.settle(seq, result, err)
	}))
}

// Execute submits the mutation and waits for it to settle.
func (m *Mutation[T]) Execute(ctx context.Context, in Input) (*T, error) {
	if _, err := m.Submit(ctx, in).Wait(ctx); err != nil {
		return nil, err
	}
	v, _ := m.Last()
	return v, nil
}

// State returns the current state.
func (m *Mutation[T]) State() mutationDomain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error of the last failed submission.
func (m *Mutation[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Last returns the server value of the last successful submission.
func (m *Mutation[T]) Last() (*T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.last != nil
}

// Reset returns the handle to idle. A submission still in flight keeps settling the
// cache but no longer updates the handle.
func (m *Mutation[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.state = mutationDomain.StateIdle
	m.err = nil
	m.last = nil
}

// Abandon detaches the handle: later settlements are ignored.
func (m *Mutation[T]) Abandon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned = true
}

func (m *Mutation[T]) settle(seq uint64, result *mutationDomain.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.abandoned || seq != m.seq {
		return
	}
	if err != nil {
		m.state = mutationDomain.StateError
		m.err = err
		return
	}
	m.state = mutationDomain.StateSuccess
	m.last = nil
	if result != nil && len(result.Value) > 0 {
		var v T
		if json.Unmarshal(result.Value, &v) == nil {
			m.last = &v
		}
	}
}

func (m *Mutation[T]) dispatch(in Input) DispatchFunc {
	call := func(ctx context.Context) (json.RawMessage, error) {
		var (
			v   *T
			err error
		)
		switch m.cfg.Operation {
		case mutationDomain.OperationCreate:
			v, err = m.api.Create(ctx, in.Payload)
		case mutationDomain.OperationUpdate:
			v, err = m.api.Update(ctx, in.ID, in.Payload)
		case mutationDomain.OperationDelete:
			return nil, m.api.Delete(ctx, in.ID)
		default:
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown operation %q", m.cfg.Operation)
		}
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	if m.cfg.RetryMax == 0 {
		return call
	}

	return func(ctx context.Context) (json.RawMessage, error) {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = m.cfg.RetryInitialInterval
		b := backoff.WithContext(backoff.WithMaxRetries(policy, m.cfg.RetryMax), ctx)

		return backoff.RetryWithData(func() (json.RawMessage, error) {
			value, err := call(ctx)
			if err != nil && !apperrors.Is(err, apperrors.ErrTransientNetwork) {
				return nil, backoff.Permanent(err)
			}
			return value, err
		}, b)
	}
}
