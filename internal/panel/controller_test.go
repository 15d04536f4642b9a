package panel

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/session"
)

func observedLogs() (*logging.Logs, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	sug := zap.New(core).Sugar()
	return &logging.Logs{Detail: sug, Errors: sug}, recorded
}

func testController(t *testing.T, logs *logging.Logs) *Controller {
	t.Helper()
	cfg := config.Default().Panel
	cfg.URL = "https://panel.example.com/servers"
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), logs.Detail)
	return New(cfg, store, logs)
}

func TestRunStartLaunchFailure(t *testing.T) {
	logs, recorded := observedLogs()
	c := testController(t, logs)

	boom := errors.New("no usable chrome binary")
	c.launch = func() (string, error) { return "", boom }

	msg, err := c.RunStart(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "launch browser")
	assert.Empty(t, msg)

	// The failure lands on the error stream, not just the return.
	entries := recorded.FilterMessage("start attempt failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestRunStartConnectFailure(t *testing.T) {
	logs, _ := observedLogs()
	c := testController(t, logs)

	// A launch that "succeeds" but hands back an endpoint nothing
	// listens on.
	c.launch = func() (string, error) { return "ws://127.0.0.1:1", nil }

	_, err := c.RunStart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to browser")
}
