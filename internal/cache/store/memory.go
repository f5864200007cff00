// Package store provides cache Handle backends: an in-process TTL cache and redis.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
)

// MemoryStore is an in-process Handle backed by go-cache. Entries expire after the
// configured TTL; a zero TTL never expires.
type MemoryStore struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemoryStore creates a MemoryStore with the given TTL and janitor interval.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{c: gocache.New(ttl, cleanupInterval)}
}

// Read returns a copy of the entry for key.
func (m *MemoryStore) Read(ctx context.Context, key cacheDomain.Key) (*cacheDomain.Entry, error) {
	v, ok := m.c.Get(key.String())
	if !ok {
		return nil, cacheDomain.ErrEntryNotFound
	}
	return cloneEntry(v.(*cacheDomain.Entry)), nil
}

// Write stores value under key, resetting its TTL.
func (m *MemoryStore) Write(
	ctx context.Context,
	key cacheDomain.Key,
	value json.RawMessage,
	status cacheDomain.Status,
) (*cacheDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key.String()
	var version uint64
	if v, ok := m.c.Get(k); ok {
		version = v.(*cacheDomain.Entry).Version
	}

	entry := &cacheDomain.Entry{
		Key:       key,
		Value:     bytes.Clone(value),
		Status:    status,
		Version:   version + 1,
		UpdatedAt: time.Now().UTC(),
	}
	m.c.Set(k, entry, gocache.DefaultExpiration)
	return cloneEntry(entry), nil
}

// Invalidate marks matching entries stale, keeping their remaining TTL.
func (m *MemoryStore) Invalidate(ctx context.Context, pattern cacheDomain.Pattern) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for k, item := range m.c.Items() {
		entry := item.Object.(*cacheDomain.Entry)
		if !pattern.Matches(entry.Key) {
			continue
		}

		ttl := gocache.NoExpiration
		if item.Expiration > 0 {
			ttl = time.Until(time.Unix(0, item.Expiration))
			if ttl <= 0 {
				continue
			}
		}

		stale := cloneEntry(entry)
		stale.Status = cacheDomain.StatusStale
		stale.Version++
		stale.UpdatedAt = time.Now().UTC()
		m.c.Set(k, stale, ttl)
		count++
	}
	return count, nil
}

// Evict removes the entry for key.
func (m *MemoryStore) Evict(ctx context.Context, key cacheDomain.Key) error {
	m.c.Delete(key.String())
	return nil
}

// Ping always succeeds; the store lives in process.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of unexpired entries.
func (m *MemoryStore) Len() int {
	return m.c.ItemCount()
}

func cloneEntry(e *cacheDomain.Entry) *cacheDomain.Entry {
	out := *e
	out.Value = bytes.Clone(e.Value)
	return &out
}
