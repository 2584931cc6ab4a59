package api

import (
	"context"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// AuthService covers the /api/auth/ endpoints.
type AuthService struct {
	client *Client
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the token grant returned on successful login.
type LoginResponse struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh,omitempty"`
	User    crm.User `json:"user"`
}

// RegisterRequest holds new-account fields. Registration does not
// authenticate; a follow-up login is required.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileUpdate is a partial profile change; nil fields are left
// untouched by the server.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.post(ctx, "/api/auth/login/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*crm.User, error) {
	var user crm.User
	if err := s.client.post(ctx, "/api/auth/register/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*crm.User, error) {
	var user crm.User
	if err := s.client.get(ctx, "/api/auth/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*crm.User, error) {
	var user crm.User
	if err := s.client.patch(ctx, "/api/auth/me/", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges a refresh token for a fresh access token.
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (string, error) {
	body := map[string]string{"refresh": refresh}
	var resp struct {
		Access string `json:"access"`
	}
	if err := s.client.post(ctx, "/api/auth/token/refresh/", body, &resp); err != nil {
		return "", err
	}
	return resp.Access, nil
}
