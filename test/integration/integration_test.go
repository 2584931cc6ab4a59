package integration_test

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
	"github.com/owuorviny109/crmsync/internal/guard"
	"github.com/owuorviny109/crmsync/internal/sqlite"
	"github.com/owuorviny109/crmsync/internal/store"
	"github.com/owuorviny109/crmsync/internal/testserver"
)

type testEnv struct {
	server *testserver.TestServer
	db     *sqlite.DB
	cache  *sqlite.CredentialCache
	client *api.Client

	session   *store.Session
	leads     *store.Leads
	contacts  *store.Contacts
	reminders *store.Reminders
	guard     *guard.Guard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	server := testserver.New(t)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	cache := sqlite.NewCredentialCache(db)
	client := api.New(api.Options{BaseURL: server.URL()})

	session := store.NewSession(client.Auth, cache, nil)
	client.SetTokens(session)
	client.SetOnUnauthorized(session.Invalidate)

	return &testEnv{
		server:    server,
		db:        db,
		cache:     cache,
		client:    client,
		session:   session,
		leads:     store.NewLeads(client, nil),
		contacts:  store.NewContacts(client, nil),
		reminders: store.NewReminders(client, nil),
		guard:     guard.New(session, "login", "dashboard"),
	}
}

func (env *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	result := env.session.Login(context.Background(), api.LoginRequest{Username: username, Password: password})
	require.True(t, result.Success, "login failed: %s", result.Error)
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result := env.session.Register(ctx, api.RegisterRequest{
		Username: "agent1",
		Email:    "agent1@example.com",
		Password: "pw",
		Role:     "agent",
	})
	require.True(t, result.Success, result.Error)
	require.False(t, env.session.IsAuthenticated(), "registration must not authenticate")

	env.login(t, "agent1", "pw")
	require.True(t, env.session.IsAuthenticated())
	require.True(t, env.session.IsAgent())
	require.Equal(t, "agent1", env.session.CurrentUser().Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	result := env.session.Register(ctx, api.RegisterRequest{Username: "agent1", Password: "other"})

	require.False(t, result.Success)
	require.Contains(t, result.Error, "username")
	require.Equal(t, result.Error, env.session.Err())
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	result := env.session.Login(context.Background(), api.LoginRequest{Username: "agent1", Password: "wrong"})

	require.False(t, result.Success)
	require.Equal(t, "No active account found with the given credentials", result.Error)
	require.False(t, env.session.IsAuthenticated())
}

func TestLeadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("manager1", "pw", crm.RoleManager)
	env.login(t, "manager1", "pw")
	require.True(t, env.session.IsManager())

	created := env.leads.Create(ctx, api.LeadInput{
		Name:    api.String("Acme Corp"),
		Email:   api.String("sales@acme.example.com"),
		Company: api.String("Acme"),
	})
	require.True(t, created.Success, created.Error)
	require.Equal(t, "Acme Corp", created.Data.Name)
	require.Equal(t, crm.LeadStatusNew, created.Data.Status)
	require.Equal(t, 1, env.server.LeadCount())

	second := env.leads.Create(ctx, api.LeadInput{Name: api.String("Globex")})
	require.True(t, second.Success, second.Error)

	// Newest first locally, before any refetch.
	items := env.leads.Items()
	require.Len(t, items, 2)
	require.Equal(t, "Globex", items[0].Name)
	require.Equal(t, "Acme Corp", items[1].Name)

	fetched := env.leads.FetchAll(ctx, url.Values{})
	require.True(t, fetched.Success, fetched.Error)
	require.Len(t, env.leads.Items(), 2)

	pagination := env.leads.Pagination()
	require.NotNil(t, pagination)
	require.Equal(t, 2, pagination.Count)

	leadID := created.Data.ID
	selected := env.leads.FetchOne(ctx, leadID)
	require.True(t, selected.Success, selected.Error)
	require.Equal(t, "Acme Corp", env.leads.Selected().Name)

	updated := env.leads.Update(ctx, leadID, api.LeadInput{
		Status: api.LeadStatus(crm.LeadStatusQualified),
	})
	require.True(t, updated.Success, updated.Error)
	require.Equal(t, crm.LeadStatusQualified, updated.Data.Status)

	// The cached item and the selected record both carry the update.
	for _, item := range env.leads.Items() {
		if item.ID == leadID {
			require.Equal(t, crm.LeadStatusQualified, item.Status)
		}
	}
	require.Equal(t, crm.LeadStatusQualified, env.leads.Selected().Status)

	history, err := env.client.Leads.AuditLog(ctx, leadID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "create", history[0].Action)
	require.Equal(t, "update", history[1].Action)

	deleted := env.leads.Delete(ctx, leadID)
	require.True(t, deleted.Success, deleted.Error)
	require.Len(t, env.leads.Items(), 1)
	require.Equal(t, 1, env.server.LeadCount())
}

func TestLeadValidationError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	result := env.leads.Create(ctx, api.LeadInput{Email: api.String("no-name@example.com")})
	require.False(t, result.Success)
	require.Equal(t, "name: This field is required.", result.Error)
	require.Empty(t, env.leads.Items())
}

func TestContactsAndCorrespondences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	lead := env.leads.Create(ctx, api.LeadInput{Name: api.String("Acme Corp")})
	require.True(t, lead.Success, lead.Error)

	created := env.contacts.Create(ctx, api.ContactInput{
		Lead:  api.Int64(lead.Data.ID),
		Name:  api.String("Jane Doe"),
		Email: api.String("jane@example.com"),
	})
	require.True(t, created.Success, created.Error)
	contactID := created.Data.ID

	entry, err := env.client.Correspondences.Create(ctx, api.CorrespondenceInput{
		Contact: api.Int64(contactID),
		Type:    api.String("call"),
		Subject: api.String("Intro call"),
	})
	require.NoError(t, err)
	require.Equal(t, contactID, entry.Contact)

	logged, err := env.client.Contacts.Correspondences(ctx, contactID)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, "Intro call", logged[0].Subject)

	// Contacts come back as a bare array; no pagination is published.
	fetched := env.contacts.FetchAll(ctx, nil)
	require.True(t, fetched.Success, fetched.Error)
	require.Nil(t, env.contacts.Pagination())
}

func TestRemindersPendingView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	due := env.reminders.Create(ctx, api.ReminderInput{
		Title:        api.String("Call Acme"),
		ReminderDate: api.Time(time.Now().Add(time.Hour)),
	})
	require.True(t, due.Success, due.Error)

	done := env.reminders.Create(ctx, api.ReminderInput{
		Title:        api.String("Send quote"),
		ReminderDate: api.Time(time.Now().Add(time.Hour)),
		Status:       api.ReminderStatus(crm.ReminderCompleted),
	})
	require.True(t, done.Success, done.Error)

	pending := store.PendingReminders(env.reminders)
	require.Len(t, pending, 1)
	require.Equal(t, "Call Acme", pending[0].Title)

	completed := env.reminders.Update(ctx, due.Data.ID, api.ReminderInput{
		Status: api.ReminderStatus(crm.ReminderCompleted),
	})
	require.True(t, completed.Success, completed.Error)
	require.Empty(t, store.PendingReminders(env.reminders))
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")
	require.Equal(t, guard.Decision{Allow: true}, env.guard.Resolve(guard.Route{Name: "leads", RequiresAuth: true}))

	// Simulate server-side token revocation: the next request carries a
	// token the server rejects.
	env.client.SetTokens(staticToken("revoked"))

	result := env.leads.FetchAll(ctx, nil)
	require.False(t, result.Success)
	require.Equal(t, "Given token not valid for any token type", result.Error)

	// The 401 hook tore the session down globally.
	require.False(t, env.session.IsAuthenticated())
	require.Nil(t, env.session.CurrentUser())
	require.Equal(t, guard.Decision{RedirectTo: "login"}, env.guard.Resolve(guard.Route{Name: "leads", RequiresAuth: true}))

	// The credential cache is purged as well.
	token, user, err := env.cache.Load()
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, user)
}

func TestSessionPersistsAcrossRestart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	// A fresh session over the same cache restores the credentials.
	restored := store.NewSession(env.client.Auth, env.cache, nil)
	require.True(t, restored.IsAuthenticated())
	require.Equal(t, "agent1", restored.CurrentUser().Username)
	require.Equal(t, env.session.Token(), restored.Token())

	// And the restored token is accepted by the server.
	restoredClient := api.New(api.Options{BaseURL: env.server.URL(), Tokens: restored})
	me, err := restoredClient.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "agent1", me.Username)
}

func TestTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	result := env.session.RefreshToken(ctx)
	require.True(t, result.Success, result.Error)
	require.NotEmpty(t, env.session.Token())

	// The fresh token is accepted by the server.
	me, err := env.client.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "agent1", me.Username)
}

func TestProfileUpdateFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.server.AddUser("agent1", "pw", crm.RoleAgent)
	env.login(t, "agent1", "pw")

	result := env.session.UpdateProfile(ctx, api.ProfileUpdate{
		FirstName: api.String("Ada"),
		Phone:     api.String("+1555000"),
	})
	require.True(t, result.Success, result.Error)
	require.Equal(t, "Ada", env.session.CurrentUser().FirstName)

	// The wholesale replacement is persisted for the next run.
	_, user, err := env.cache.Load()
	require.NoError(t, err)
	require.Equal(t, "Ada", user.FirstName)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
