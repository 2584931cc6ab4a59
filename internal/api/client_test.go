package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token() string { return s.token }

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL, Tokens: &staticTokens{token: "tok1"}})
	require.NoError(t, client.get(context.Background(), "/api/auth/me/", nil, nil))

	require.Equal(t, "Bearer tok1", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestClient_NoTokenSendsUnauthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL, Tokens: &staticTokens{}})
	require.NoError(t, client.get(context.Background(), "/api/leads/", nil, nil))
	require.Empty(t, gotAuth)
}

func TestClient_UnauthorizedHookFiresForAnyRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	}))
	t.Cleanup(server.Close)

	var fired atomic.Int32
	client := New(Options{
		BaseURL:        server.URL,
		Tokens:         &staticTokens{token: "stale"},
		OnUnauthorized: func() { fired.Add(1) },
	})

	err := client.get(context.Background(), "/api/leads/", nil, nil)
	require.True(t, IsUnauthorized(err))
	require.EqualValues(t, 1, fired.Load())

	err = client.delete(context.Background(), "/api/contacts/3/")
	require.True(t, IsUnauthorized(err))
	require.EqualValues(t, 2, fired.Load())
}

func TestClient_ErrorDetailDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Invalid status transition"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL})
	err := client.post(context.Background(), "/api/leads/", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Invalid status transition", apiErr.Message())
}

func TestClient_ErrorFieldDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["Enter a valid email address."],"name":["This field is required."]}`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL})
	err := client.post(context.Background(), "/api/leads/", map[string]string{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, []string{"Enter a valid email address."}, apiErr.Fields["email"])
	require.Equal(t, "email: Enter a valid email address.; name: This field is required.", apiErr.Message())
}

func TestClient_NetworkFailureIsNotAPIError(t *testing.T) {
	client := New(Options{BaseURL: "http://127.0.0.1:0"})
	err := client.get(context.Background(), "/api/leads/", nil, nil)

	require.Error(t, err)
	var apiErr *Error
	require.False(t, IsUnauthorized(err))
	require.NotErrorAs(t, err, &apiErr)
}

func TestClient_QueryParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL})
	params := url.Values{"status": {"new"}, "page": {"2"}}
	_, err := client.Leads.List(context.Background(), params)
	require.NoError(t, err)

	require.Equal(t, "new", gotQuery.Get("status"))
	require.Equal(t, "2", gotQuery.Get("page"))
}

func TestClient_LeadPaths(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{"id":12}`))
	}))
	t.Cleanup(server.Close)

	client := New(Options{BaseURL: server.URL})
	ctx := context.Background()

	_, err := client.Leads.Update(ctx, 12, LeadInput{Name: String("Z")})
	require.NoError(t, err)
	require.Equal(t, "/api/leads/12/", gotPath)
	require.Equal(t, http.MethodPatch, gotMethod)

	_, err = client.Leads.AuditLog(ctx, 12)
	require.NoError(t, err)
	require.Equal(t, "/api/leads/12/audit_log/", gotPath)
	require.Equal(t, http.MethodGet, gotMethod)
}
