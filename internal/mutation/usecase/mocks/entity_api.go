// Package mocks provides mock implementations for testing mutation handles.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEntityAPI is a mock implementation of EntityAPI for testing.
type MockEntityAPI[T any] struct {
	mock.Mock
}

// List mocks the List method of EntityAPI.
func (m *MockEntityAPI[T]) List(ctx context.Context, filters map[string]string) ([]T, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

// Get mocks the Get method of EntityAPI.
func (m *MockEntityAPI[T]) Get(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// Create mocks the Create method of EntityAPI.
func (m *MockEntityAPI[T]) Create(ctx context.Context, payload any) (*T, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// Update mocks the Update method of EntityAPI.
func (m *MockEntityAPI[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// Delete mocks the Delete method of EntityAPI.
func (m *MockEntityAPI[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
