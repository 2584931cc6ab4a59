// Package cli wires the crmsync command tree. It is the stand-in for
// the original application's views and router: commands resolve the
// route guard, drive store actions, and render store state.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/config"
	"github.com/owuorviny109/crmsync/internal/guard"
	"github.com/owuorviny109/crmsync/internal/sqlite"
	"github.com/owuorviny109/crmsync/internal/store"
)

// refreshWindow is how close to expiry the access token may get
// before commands proactively refresh it.
const refreshWindow = 2 * time.Minute

// App carries the wired client state shared by all commands.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	DB      *sqlite.DB
	Session *store.Session
	Guard   *guard.Guard

	Client    *api.Client
	Leads     *store.Leads
	Contacts  *store.Contacts
	Reminders *store.Reminders
}

// ErrNotAuthenticated is returned when a protected command runs
// without a session.
var ErrNotAuthenticated = errors.New("not authenticated: run 'crmsync login' first")

// ErrGuestOnly is returned when a guest-only command runs with an
// active session.
var ErrGuestOnly = errors.New("already authenticated: run 'crmsync logout' first")

// NewRootCommand creates the root command for the crmsync CLI.
func NewRootCommand() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "crmsync",
		Short:         "CRM API client",
		Long:          "crmsync keeps a local session against a CRM backend and drives lead, contact, and reminder workflows from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}

	cmd.AddCommand(NewLoginCommand(app))
	cmd.AddCommand(NewLogoutCommand(app))
	cmd.AddCommand(NewRegisterCommand(app))
	cmd.AddCommand(NewWhoamiCommand(app))
	cmd.AddCommand(NewProfileCommand(app))
	cmd.AddCommand(NewLeadsCommand(app))
	cmd.AddCommand(NewContactsCommand(app))
	cmd.AddCommand(NewRemindersCommand(app))
	cmd.AddCommand(NewNotesCommand(app))
	cmd.AddCommand(NewCorrespondencesCommand(app))

	return cmd
}

func (a *App) init(logWriter io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	a.Config = cfg

	a.Logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureCacheDir(cfg.Cache.Path); err != nil {
		return fmt.Errorf("prepare credential cache: %w", err)
	}
	db, err := sqlite.New(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open credential cache: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return fmt.Errorf("migrate credential cache: %w", err)
	}
	a.DB = db

	cache := sqlite.NewCredentialCache(db)
	client := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  a.Logger,
	})

	session := store.NewSession(client.Auth, cache, a.Logger)
	client.SetTokens(session)
	client.SetOnUnauthorized(func() {
		session.Invalidate()
		a.Logger.Warn("session expired, log in again")
	})

	a.Client = client
	a.Session = session
	a.Guard = guard.New(session, "login", "dashboard")
	a.Leads = store.NewLeads(client, a.Logger)
	a.Contacts = store.NewContacts(client, a.Logger)
	a.Reminders = store.NewReminders(client, a.Logger)

	return nil
}

func (a *App) close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// RequireAuth resolves the route guard for a protected command and
// refreshes a nearly expired token before the command's own calls.
func (a *App) RequireAuth(cmd *cobra.Command) error {
	decision := a.Guard.Resolve(guard.Route{Name: cmd.Name(), RequiresAuth: true})
	if !decision.Allow {
		return ErrNotAuthenticated
	}
	if a.Session.TokenExpiringWithin(refreshWindow) {
		a.Session.RefreshToken(cmd.Context())
	}
	return nil
}

// RequireGuest resolves the route guard for a guest-only command.
func (a *App) RequireGuest(cmd *cobra.Command) error {
	decision := a.Guard.Resolve(guard.Route{Name: cmd.Name(), RequiresGuest: true})
	if !decision.Allow {
		return ErrGuestOnly
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ensureCacheDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
