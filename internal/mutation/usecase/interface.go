// Package usecase implements the optimistic mutation synchronizer and the typed mutation
// handles built on it.
package usecase

import (
	"context"
	"encoding/json"

	cacheDomain "github.com/allisson/inspecta/internal/cache/domain"
	mutationDomain "github.com/allisson/inspecta/internal/mutation/domain"
)

// DispatchFunc performs the remote write and returns the server representation of the
// affected entity (ignored for deletes).
type DispatchFunc func(ctx context.Context) (json.RawMessage, error)

// LoaderFunc fetches the authoritative value for a cache key.
type LoaderFunc func(ctx context.Context) (json.RawMessage, error)

// SynchronizerUseCase coordinates optimistic writes with the cache.
type SynchronizerUseCase interface {
	// Start applies the optimistic projection synchronously, dispatches the write in the
	// background and returns a handle that settles after reconciliation or rollback.
	Start(
		ctx context.Context,
		descriptor mutationDomain.Descriptor,
		dispatch DispatchFunc,
		opts ...StartOption,
	) *Pending

	// Execute is Start followed by Wait.
	Execute(
		ctx context.Context,
		descriptor mutationDomain.Descriptor,
		dispatch DispatchFunc,
	) (*mutationDomain.Result, error)

	// Fetch loads key through loader and stores it as the authoritative base. Concurrent
	// fetches of the same key share one load.
	Fetch(ctx context.Context, key cacheDomain.Key, loader LoaderFunc) (*cacheDomain.Entry, error)

	// Get returns the cached entry, fetching it when missing or stale.
	Get(ctx context.Context, key cacheDomain.Key, loader LoaderFunc) (*cacheDomain.Entry, error)

	// Drain blocks until every in-flight mutation settled or ctx is done.
	Drain(ctx context.Context) error
}

// EntityAPI is the remote CRUD surface of one entity type.
type EntityAPI[T any] interface {
	List(ctx context.Context, filters map[string]string) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, payload any) (*T, error)
	Update(ctx context.Context, id string, patch any) (*T, error)
	Delete(ctx context.Context, id string) error
}
