// Package api is the HTTP client for the CRM backend. A single Client
// carries the base URL, the bearer token source, and the global
// authorization-failure hook; typed endpoint groups hang off it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer token. An empty string
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource

	// OnUnauthorized runs after any response with status 401, before
	// the error is returned to the caller. It fires for every store's
	// requests alike and must be idempotent.
	OnUnauthorized func()

	// HTTPClient overrides the underlying client. Timeout is ignored
	// when set.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is the configured HTTP client shared by every endpoint group.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	logger         *slog.Logger

	Auth            *AuthService
	Leads           *LeadsService
	Contacts        *ContactsService
	Notes           *NotesService
	Reminders       *RemindersService
	Correspondences *CorrespondencesService
}

// New creates a Client for the given API base URL.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
		logger:         opts.Logger,
	}
	c.Auth = &AuthService{client: c}
	c.Leads = &LeadsService{client: c}
	c.Contacts = &ContactsService{client: c}
	c.Notes = &NotesService{client: c}
	c.Reminders = &RemindersService{client: c}
	c.Correspondences = &CorrespondencesService{client: c}
	return c
}

// SetTokens replaces the token source. Wiring helper for the cycle
// between the client and the session store; call before any request.
func (c *Client) SetTokens(tokens TokenSource) {
	c.tokens = tokens
}

// SetOnUnauthorized replaces the authorization-failure hook.
func (c *Client) SetOnUnauthorized(hook func()) {
	c.onUnauthorized = hook
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.logger != nil {
			c.logger.Warn("authorization failure", "method", method, "path", path)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	if resp.StatusCode >= 400 {
		return newError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
