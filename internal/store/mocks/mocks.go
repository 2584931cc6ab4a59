// Package mocks provides testify mocks for the store package's
// collaborator interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
)

// CredentialCache is a mock for store.CredentialCache.
type CredentialCache struct {
	mock.Mock
}

func (m *CredentialCache) Load() (string, *crm.User, error) {
	args := m.Called()
	var user *crm.User
	if u, ok := args.Get(1).(*crm.User); ok {
		user = u
	}
	return args.String(0), user, args.Error(2)
}

func (m *CredentialCache) Save(token string, user *crm.User) error {
	args := m.Called(token, user)
	return args.Error(0)
}

func (m *CredentialCache) SaveUser(user *crm.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *CredentialCache) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// AuthAPI is a mock for store.AuthAPI.
type AuthAPI struct {
	mock.Mock
}

func (m *AuthAPI) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*api.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthAPI) Register(ctx context.Context, req api.RegisterRequest) (*crm.User, error) {
	args := m.Called(ctx, req)
	if user, ok := args.Get(0).(*crm.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthAPI) CurrentUser(ctx context.Context) (*crm.User, error) {
	args := m.Called(ctx)
	if user, ok := args.Get(0).(*crm.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthAPI) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*crm.User, error) {
	args := m.Called(ctx, update)
	if user, ok := args.Get(0).(*crm.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthAPI) RefreshToken(ctx context.Context, refresh string) (string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.Error(1)
}
