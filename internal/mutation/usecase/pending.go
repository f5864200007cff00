package usecase

import (
	"context"

	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// StartOption configures a single Start call.
type StartOption func(*startOptions)

type startOptions struct {
	onSettled []func(*mutationDomain.Result, error)
}

// OnSettled registers fn to run after reconciliation or rollback and before the
// Pending handle is released to waiters.
func OnSettled(fn func(*mutationDomain.Result, error)) StartOption {
	return func(o *startOptions) {
		o.onSettled = append(o.onSettled, fn)
	}
}

// Pending tracks an issued mutation until it settles.
type Pending struct {
	id     string
	tempID string
	done   chan struct{}
	result *mutationDomain.Result
	err    error
}

func newPending(id string) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

// ID returns the mutation id.
func (p *Pending) ID() string {
	return p.id
}

// TempID returns the temporary entity id of an optimistic create, or "".
func (p *Pending) TempID() string {
	return p.tempID
}

// Done is closed once the mutation settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the mutation settles or ctx is done. A ctx error does not cancel
// the mutation.
func (p *Pending) Wait(ctx context.Context) (*mutationDomain.Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) settle(opts startOptions, result *mutationDomain.Result, err error) {
	p.result = result
	p.err = err
	for _, fn := range opts.onSettled {
		fn(result, err)
	}
	close(p.done)
}
