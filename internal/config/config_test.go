package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CRMSYNC_CONFIG_PATH",
		"CRMSYNC_API_URL",
		"CRMSYNC_API_TIMEOUT",
		"CRMSYNC_CACHE_PATH",
		"CRMSYNC_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.NotEmpty(t, cfg.Cache.Path)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRMSYNC_API_URL", "https://crm.example.com")
	t.Setenv("CRMSYNC_API_TIMEOUT", "5s")
	t.Setenv("CRMSYNC_CACHE_PATH", "/tmp/creds.db")
	t.Setenv("CRMSYNC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://crm.example.com", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, "/tmp/creds.db", cfg.Cache.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRMSYNC_API_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://file.example.com
  timeout: 10s
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CRMSYNC_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://file.example.com", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://file.example.com\n"), 0o644))
	t.Setenv("CRMSYNC_CONFIG_PATH", path)
	t.Setenv("CRMSYNC_API_URL", "https://env.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRMSYNC_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}
