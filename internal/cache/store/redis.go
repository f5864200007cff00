package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
)

const maxWatchRetries = 10

// stringGetter is satisfied by both the client and a WATCH transaction.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore is a Handle shared across processes through redis. Entries are stored as
// JSON under prefix + canonical key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl keeps entries until evicted.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) redisKey(key cacheDomain.Key) string {
	return r.prefix + key.String()
}

// Read returns the entry for key.
func (r *RedisStore) Read(ctx context.Context, key cacheDomain.Key) (*cacheDomain.Entry, error) {
	entry, err := r.get(ctx, r.client, r.redisKey(key))
	if err != nil {
		return nil, err
	}
	entry.Key = key
	return entry, nil
}

// Write stores value under key inside a WATCH transaction so versions never go backwards.
func (r *RedisStore) Write(
	ctx context.Context,
	key cacheDomain.Key,
	value json.RawMessage,
	status cacheDomain.Status,
) (*cacheDomain.Entry, error) {
	rk := r.redisKey(key)
	var written *cacheDomain.Entry

	err := r.watch(ctx, rk, func(tx *redis.Tx) error {
		var version uint64
		current, err := r.get(ctx, tx, rk)
		switch {
		case err == nil:
			version = current.Version
		case !errors.Is(err, cacheDomain.ErrEntryNotFound):
			return err
		}

		entry := &cacheDomain.Entry{
			Key:       key,
			Value:     value,
			Status:    status,
			Version:   version + 1,
			UpdatedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode cache entry: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, data, r.ttl)
			return nil
		})
		if err == nil {
			written = entry
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// Invalidate marks every matching entry stale, keeping its TTL.
func (r *RedisStore) Invalidate(ctx context.Context, pattern cacheDomain.Pattern) (int, error) {
	match := escapeGlob(r.prefix+cacheDomain.NewKey(pattern.Entity).String()) + "*"
	count := 0

	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		rk := iter.Val()
		key, err := cacheDomain.ParseKey(strings.TrimPrefix(rk, r.prefix))
		if err != nil || !pattern.Matches(key) {
			continue
		}

		matched := false
		err = r.watch(ctx, rk, func(tx *redis.Tx) error {
			entry, err := r.get(ctx, tx, rk)
			if errors.Is(err, cacheDomain.ErrEntryNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			entry.Status = cacheDomain.StatusStale
			entry.Version++
			entry.UpdatedAt = time.Now().UTC()
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to encode cache entry: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.SetArgs(ctx, rk, data, redis.SetArgs{KeepTTL: true})
				return nil
			})
			matched = err == nil
			return err
		})
		if err != nil {
			return count, err
		}
		if matched {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return count, nil
}

// Evict removes the entry for key.
func (r *RedisStore) Evict(ctx context.Context, key cacheDomain.Key) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to evict cache entry: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) get(ctx context.Context, c stringGetter, rk string) (*cacheDomain.Entry, error) {
	data, err := c.Get(ctx, rk).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cacheDomain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	var entry cacheDomain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}

func (r *RedisStore) watch(ctx context.Context, rk string, fn func(*redis.Tx) error) error {
	for range maxWatchRetries {
		err := r.client.Watch(ctx, fn, rk)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update cache entry %q: too much contention", rk)
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
