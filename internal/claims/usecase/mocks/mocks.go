// Package mocks provides mock implementations of the claim registry interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

// MockRegistryUseCase is a mock implementation of RegistryUseCase.
type MockRegistryUseCase struct {
	mock.Mock
}

// Create mocks the Create method of RegistryUseCase.
func (m *MockRegistryUseCase) Create(
	ctx context.Context,
	caller uuid.UUID,
	claim []byte,
) (*claimsDomain.Registration, error) {
	args := m.Called(ctx, caller, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claimsDomain.Registration), args.Error(1)
}

// Revoke mocks the Revoke method of RegistryUseCase.
func (m *MockRegistryUseCase) Revoke(ctx context.Context, caller uuid.UUID, claim []byte) error {
	args := m.Called(ctx, caller, claim)
	return args.Error(0)
}

// Transfer mocks the Transfer method of RegistryUseCase.
func (m *MockRegistryUseCase) Transfer(
	ctx context.Context,
	caller, to uuid.UUID,
	claim []byte,
) (*claimsDomain.Registration, error) {
	args := m.Called(ctx, caller, to, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claimsDomain.Registration), args.Error(1)
}

// Get mocks the Get method of RegistryUseCase.
func (m *MockRegistryUseCase) Get(ctx context.Context, claim []byte) (*claimsDomain.Registration, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claimsDomain.Registration), args.Error(1)
}

// ListByOwner mocks the ListByOwner method of RegistryUseCase.
func (m *MockRegistryUseCase) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*claimsDomain.Registration), args.Error(1)
}

// MockClock is a mock implementation of Clock.
type MockClock struct {
	mock.Mock
}

// Now mocks the Now method of Clock.
func (m *MockClock) Now(ctx context.Context) (claimsDomain.LogicalTime, error) {
	args := m.Called(ctx)
	return args.Get(0).(claimsDomain.LogicalTime), args.Error(1)
}

// MockNotificationSink is a mock implementation of NotificationSink.
type MockNotificationSink struct {
	mock.Mock
}

// Notify mocks the Notify method of NotificationSink.
func (m *MockNotificationSink) Notify(ctx context.Context, notification claimsDomain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
