// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
	accessUseCase "github.com/allisson/inspecta/internal/access/usecase"
)

// MockGuardUseCase is a mock implementation of GuardUseCase for testing.
type MockGuardUseCase struct {
	mock.Mock
}

// Evaluate mocks the Evaluate method of GuardUseCase.
func (m *MockGuardUseCase) Evaluate(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	req accessDomain.Requirement,
) accessDomain.Decision {
	args := m.Called(ctx, user, req)
	return args.Get(0).(accessDomain.Decision)
}

// CheckRoute mocks the CheckRoute method of GuardUseCase.
func (m *MockGuardUseCase) CheckRoute(
	ctx context.Context,
	user *accessDomain.CurrentUser,
	path string,
) (accessDomain.Decision, *accessUseCase.Route) {
	args := m.Called(ctx, user, path)
	if args.Get(1) == nil {
		return args.Get(0).(accessDomain.Decision), nil
	}
	return args.Get(0).(accessDomain.Decision), args.Get(1).(*accessUseCase.Route)
}

// Navigation mocks the Navigation method of GuardUseCase.
func (m *MockGuardUseCase) Navigation(ctx context.Context, user *accessDomain.CurrentUser) []accessUseCase.Route {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]accessUseCase.Route)
}

// Routes mocks the Routes method of GuardUseCase.
func (m *MockGuardUseCase) Routes(ctx context.Context) []accessUseCase.Route {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]accessUseCase.Route)
}

var _ accessUseCase.GuardUseCase = (*MockGuardUseCase)(nil)
