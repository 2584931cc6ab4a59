package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
)

const (
	loginFailedMessage    = "Login failed"
	registerFailedMessage = "Registration failed"
	fetchUserMessage      = "Failed to fetch user"
	updateProfileMessage  = "Failed to update profile"
	refreshFailedMessage  = "Failed to refresh token"
	noRefreshMessage      = "No refresh token"
)

// Session holds the authenticated user's token and profile. A present
// token means the caller is authenticated; the in-memory state is
// seeded from the credential cache at construction and torn down on
// logout or global authorization failure.
type Session struct {
	mu        sync.Mutex
	token     string
	refresh   string
	user      *crm.User
	loading   bool
	lastError string

	auth   AuthAPI
	cache  CredentialCache
	logger *slog.Logger
}

// NewSession creates a session store seeded from the credential
// cache. cache may be nil, in which case nothing persists.
func NewSession(auth AuthAPI, cache CredentialCache, logger *slog.Logger) *Session {
	s := &Session{auth: auth, cache: cache, logger: logger}
	if cache != nil {
		token, user, err := cache.Load()
		if err != nil {
			if logger != nil {
				logger.Warn("failed to restore cached session", "error", err)
			}
		} else {
			s.token = token
			s.user = user
		}
	}
	return s
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsManager reports whether the current user has the manager role.
func (s *Session) IsManager() bool {
	return s.role() == crm.RoleManager
}

// IsAgent reports whether the current user has the agent role.
func (s *Session) IsAgent() bool {
	return s.role() == crm.RoleAgent
}

func (s *Session) role() crm.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// CurrentUser returns a copy of the cached user, nil when anonymous.
func (s *Session) CurrentUser() *crm.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Loading reports whether a session action is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last session action's error message. A stale error
// survives until the next login, register, or profile update begins.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Login authenticates and, on success, persists and publishes the
// token and user atomically. Failures come back as a result, never an
// error, and are not retried.
func (s *Session) Login(ctx context.Context, credentials api.LoginRequest) Result[crm.User] {
	s.begin()

	resp, err := s.auth.Login(ctx, credentials)
	if err != nil {
		return s.fail(err, loginFailedMessage)
	}

	user := resp.User
	s.persist(resp.Access, &user)

	s.mu.Lock()
	s.token = resp.Access
	s.refresh = resp.Refresh
	s.user = &user
	s.loading = false
	s.mu.Unlock()

	return succeeded(&user)
}

// Register creates an account. It does not authenticate: registration
// and login are decoupled.
func (s *Session) Register(ctx context.Context, userData api.RegisterRequest) Result[crm.User] {
	s.begin()

	user, err := s.auth.Register(ctx, userData)
	if err != nil {
		return s.fail(err, registerFailedMessage)
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	return succeeded(user)
}

// FetchCurrentUser refreshes the cached profile from the server. A
// failure is soft: it is logged and reported in the result, but the
// existing session is kept. A stale local user beats a forced logout.
func (s *Session) FetchCurrentUser(ctx context.Context) Result[crm.User] {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to fetch current user", "error", err)
		}
		return failed[crm.User](errorMessage(err, fetchUserMessage))
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persistUser(user)

	return succeeded(user)
}

// UpdateProfile applies a partial update and, on success, replaces
// the cached user wholesale with the server's representation.
func (s *Session) UpdateProfile(ctx context.Context, userData api.ProfileUpdate) Result[crm.User] {
	s.begin()

	user, err := s.auth.UpdateProfile(ctx, userData)
	if err != nil {
		return s.fail(err, updateProfileMessage)
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()
	s.persistUser(user)

	return succeeded(user)
}

// RefreshToken exchanges the refresh token for a fresh access token.
// Like FetchCurrentUser, failure is soft; the 401 handler remains the
// authority on dead sessions.
func (s *Session) RefreshToken(ctx context.Context) Result[crm.User] {
	s.mu.Lock()
	refresh := s.refresh
	user := s.user
	s.mu.Unlock()

	if refresh == "" {
		return failed[crm.User](noRefreshMessage)
	}

	access, err := s.auth.RefreshToken(ctx, refresh)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to refresh token", "error", err)
		}
		return failed[crm.User](errorMessage(err, refreshFailedMessage))
	}

	s.mu.Lock()
	s.token = access
	s.mu.Unlock()
	s.persist(access, user)

	return succeeded[crm.User](nil)
}

// TokenExpiringWithin reports whether the access token's exp claim
// falls inside the window. Tokens without a parseable exp claim
// report false; the server stays authoritative through its 401
// handling.
func (s *Session) TokenExpiringWithin(window time.Duration) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < window
}

// Logout purges the credential cache and clears the session
// synchronously. No network call is made.
func (s *Session) Logout() {
	s.Invalidate()
}

// Invalidate tears the session down: persisted credentials are purged
// and in-memory state is cleared. It is idempotent and safe to call
// concurrently with any session action, which makes it suitable as
// the transport client's authorization-failure hook.
func (s *Session) Invalidate() {
	if s.cache != nil {
		if err := s.cache.Clear(); err != nil && s.logger != nil {
			s.logger.Warn("failed to clear credential cache", "error", err)
		}
	}

	s.mu.Lock()
	s.token = ""
	s.refresh = ""
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Session) fail(err error, fallback string) Result[crm.User] {
	message := errorMessage(err, fallback)
	s.mu.Lock()
	s.lastError = message
	s.loading = false
	s.mu.Unlock()
	return failed[crm.User](message)
}

func (s *Session) persist(token string, user *crm.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(token, user); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}

func (s *Session) persistUser(user *crm.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveUser(user); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist user", "error", err)
	}
}
