package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allisson/inspecta/internal/errors"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	// StatusFresh means the value is the last authoritative server value.
	StatusFresh Status = "fresh"

	// StatusPendingWrite means the value includes optimistic projections of unsettled writes.
	StatusPendingWrite Status = "pending-write"

	// StatusStale means the entry was invalidated and must be refetched on next access.
	StatusStale Status = "stale"

	// StatusError means the last refetch failed; the value is the last known-good one.
	StatusError Status = "error"
)

// Cache errors.
var (
	// ErrEntryNotFound indicates there is no entry for the key.
	ErrEntryNotFound = errors.Wrap(errors.ErrNotFound, "cache entry not found")

	// ErrInvalidKey indicates a key string that cannot be parsed.
	ErrInvalidKey = errors.Wrap(errors.ErrInvalidInput, "invalid cache key")
)

// Entry is a cached value. Value is an immutable JSON snapshot: readers decode copies
// and only the synchronizer writes new snapshots.
type Entry struct {
	Key       Key             `json:"-"`
	Value     json.RawMessage `json:"value"`
	Status    Status          `json:"status"`
	Version   uint64          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Decode unmarshals the value into out.
func (e *Entry) Decode(out any) error {
	return json.Unmarshal(e.Value, out)
}

// Handle is the caching backend consumed by the synchronizer. Implementations own
// expiry; Write increments Version.
type Handle interface {
	// Read returns the entry for key or ErrEntryNotFound.
	Read(ctx context.Context, key Key) (*Entry, error)

	// Write stores value under key with the given status.
	Write(ctx context.Context, key Key, value json.RawMessage, status Status) (*Entry, error)

	// Invalidate marks every entry matched by pattern stale and returns how many matched.
	Invalidate(ctx context.Context, pattern Pattern) (int, error)

	// Evict removes the entry for key. Evicting a missing key is not an error.
	Evict(ctx context.Context, key Key) error
}
