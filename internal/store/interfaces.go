package store

import (
	"context"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
)

// CredentialCache persists the session's token and user between runs.
// Load seeds the session store at startup; Save runs on successful
// login, SaveUser on profile refresh/update, Clear on logout and on
// global authorization failure. Clear must be idempotent and safe to
// invoke concurrently with session actions.
type CredentialCache interface {
	Load() (token string, user *crm.User, err error)
	Save(token string, user *crm.User) error
	SaveUser(user *crm.User) error
	Clear() error
}

// AuthAPI is the slice of the transport client the session store
// drives.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*crm.User, error)
	CurrentUser(ctx context.Context) (*crm.User, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*crm.User, error)
	RefreshToken(ctx context.Context, refresh string) (string, error)
}
