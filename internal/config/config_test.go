package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "msedge", cfg.Family)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 200*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.WriteTimeout)
	assert.Equal(t, time.Second, cfg.ReadBudget)
	assert.Equal(t, 500*time.Millisecond, cfg.SessionIOTimeout)
	assert.Equal(t, 3*time.Second, cfg.SessionBudget)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: chrome\nsession_budget: 5s\nconcurrency: 2\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.Family)
	assert.Equal(t, 5*time.Second, cfg.SessionBudget)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "127.0.0.1", cfg.Host, "unset keys keep defaults")
}

func TestLoadDefaultPath(t *testing.T) {
	isolate(t)
	path := DefaultPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("host: localhost\n"), 0o644))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: chrome\n"), 0o644))
	t.Setenv("TABWITR_FAMILY", "brave")
	t.Setenv("TABWITR_READ_BUDGET", "2s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "brave", cfg.Family)
	assert.Equal(t, 2*time.Second, cfg.ReadBudget)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: \"\"\nconcurrency: 0\nread_timeout: -1s\n"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "family must not be empty")
	assert.Contains(t, err.Error(), "concurrency must be at least 1")
	assert.Contains(t, err.Error(), "read_timeout must be positive")
}

func TestDevtoolsOptions(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	opts := cfg.Devtools()
	assert.Equal(t, cfg.Host, opts.Host)
	assert.Equal(t, cfg.SessionBudget, opts.SessionBudget)
	assert.Equal(t, cfg.ReadBudget, opts.ReadBudget)
}
