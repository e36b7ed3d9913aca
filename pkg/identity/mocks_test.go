package identity_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/authflow/pkg/identity"
)

// MockStorage is a mock implementation of identity.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, id *identity.Identity) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStorage) GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockStorage) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockStorage) Activate(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockStorage) UpdateProfile(ctx context.Context, id uuid.UUID, update identity.ProfileUpdate) (*identity.Identity, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockStorage) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}
