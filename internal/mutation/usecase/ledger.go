package usecase

import (
	"encoding/json"
	"slices"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// op is an issued mutation as seen by the ledgers it touches.
type op struct {
	id      string
	tempID  string
	idField string
	desc    mutationDomain.Descriptor
	// body is the provisional entity for creates and the patch for updates.
	body json.RawMessage
}

func (o *op) project(value json.RawMessage) (json.RawMessage, error) {
	id := o.desc.ID
	if o.desc.Operation == mutationDomain.OperationCreate {
		id = o.tempID
	}
	return mutationDomain.Project(value, o.desc.Operation, o.idField, id, o.body)
}

// ledger holds the unsettled writes of one cache key. While ops are pending, base is
// the authoritative value and the cached value is base with every pending projection
// applied in issue order. Server results are folded into base as they settle.
//
// invalidated survives settlements: once set, the entry is stored stale when the last
// pending op settles, so the next read refetches it. Only a refetch clears it.
type ledger struct {
	key         cacheDomain.Key
	name        string
	dead        bool
	base        json.RawMessage
	status      cacheDomain.Status
	invalidated bool
	pending     []*op
}

func (l *ledger) active() bool {
	return len(l.pending) > 0
}

// track starts tracking o with entry as the base when no other op is pending.
func (l *ledger) track(o *op, entry *cacheDomain.Entry) {
	if !l.active() {
		l.base = entry.Value
		l.status = entry.Status
		if l.status == cacheDomain.StatusPendingWrite {
			// left behind by a process that never settled its writes
			l.status = cacheDomain.StatusStale
		}
		l.invalidated = l.status == cacheDomain.StatusStale
	} else {
		l.observe(entry)
	}
	l.pending = append(l.pending, o)
}

// observe records an invalidation that reached the stored entry while ops are pending.
// An active ledger only ever stores pending-write, so a stale entry was invalidated
// after the last write.
func (l *ledger) observe(entry *cacheDomain.Entry) {
	if entry.Status == cacheDomain.StatusStale {
		l.invalidated = true
	}
}

// refreshed replaces base with a freshly loaded value.
func (l *ledger) refreshed(value json.RawMessage) {
	l.base = value
	l.status = cacheDomain.StatusFresh
	l.invalidated = false
}

func (l *ledger) remove(o *op) bool {
	i := slices.Index(l.pending, o)
	if i < 0 {
		return false
	}
	l.pending = slices.Delete(l.pending, i, i+1)
	return true
}

// visible folds the pending projections over base.
func (l *ledger) visible() (json.RawMessage, error) {
	value := l.base
	for _, o := range l.pending {
		next, err := o.project(value)
		if err != nil {
			return nil, err
		}
		value = next
	}
	return value, nil
}

// snapshot returns the value and status to store for the current ledger state.
func (l *ledger) snapshot() (json.RawMessage, cacheDomain.Status, error) {
	if !l.active() {
		if l.invalidated {
			return l.base, cacheDomain.StatusStale, nil
		}
		return l.base, l.status, nil
	}
	value, err := l.visible()
	return value, cacheDomain.StatusPendingWrite, err
}
