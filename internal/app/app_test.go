package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farmkeep/shell/internal/config"
	"github.com/farmkeep/shell/internal/server"
	"github.com/farmkeep/shell/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.LogDir = filepath.Join(dir, "logs")
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.PollInterval = 10 * time.Millisecond
	cfg.PollBudget = 5
	cfg.Debug = true
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runUntilRouted(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		kind, _ := a.screen.Current()
		return kind != server.ScreenNone
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRunWithoutRemoteConfigPresentsNative(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, discardLogger())
	require.NoError(t, err)

	runUntilRouted(t, a)

	kind, _ := a.screen.Current()
	assert.Equal(t, server.ScreenNative, kind)

	store, err := storage.NewStore(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, store.WasChecked())
	assert.Empty(t, store.AcceptedURL())
}

func TestRunReusesPersistedDecision(t *testing.T) {
	cfg := testConfig(t)
	store, err := storage.NewStore(cfg.DataDir)
	require.NoError(t, err)
	require.NoError(t, store.SetDecision("https://dest.example/home"))

	a, err := New(cfg, discardLogger())
	require.NoError(t, err)
	runUntilRouted(t, a)

	kind, url := a.screen.Current()
	assert.Equal(t, server.ScreenWeb, kind)
	assert.Equal(t, "https://dest.example/home", url)
}

func TestRunWithOverrideSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.SettingsPath = filepath.Join(t.TempDir(), "AppSettings.yaml")
	require.NoError(t, os.WriteFile(cfg.SettingsPath, []byte("HardcodedUrl: https://override.example\n"), 0o644))

	a, err := New(cfg, discardLogger())
	require.NoError(t, err)
	runUntilRouted(t, a)

	_, url := a.screen.Current()
	assert.Equal(t, "https://override.example", url)

	store, err := storage.NewStore(cfg.DataDir)
	require.NoError(t, err)
	assert.False(t, store.WasChecked())
}

func TestHTTPSurfaceIsWired(t *testing.T) {
	a, err := New(testConfig(t), discardLogger())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.httpServer.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
