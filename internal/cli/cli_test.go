package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
	"github.com/ThePiemanYT/craftkeeper/internal/registry"
)

// testGlobals creates a Globals struct with captured stdout/stderr
func testGlobals(t *testing.T, format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.Session = filepath.Join(dir, "session.json")
	cfg.Paths.Registry = filepath.Join(dir, "subscribers.json")
	cfg.Paths.DetailLog = filepath.Join(dir, "detail.log")
	cfg.Paths.ErrorLog = filepath.Join(dir, "error.log")

	return &Globals{
		Format: format,
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
	}, stdout, stderr
}

// --- Address Command Tests ---

func TestAddressCmd_Run(t *testing.T) {
	t.Run("prints configured address", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Config.Address = "mc.example.com"

		err := (&AddressCmd{}).Run(globals)
		require.NoError(t, err)
		assert.Equal(t, "mc.example.com\n", stdout.String())
	})

	t.Run("falls back to the query endpoint", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Config.Query.Host = "play.example.com"
		globals.Config.Query.Port = 25566

		err := (&AddressCmd{}).Run(globals)
		require.NoError(t, err)
		assert.Equal(t, "play.example.com:25566\n", stdout.String())
	})

	t.Run("outputs json", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "json")
		globals.Config.Address = "mc.example.com"

		err := (&AddressCmd{}).Run(globals)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "address", result["type"])
		assert.Equal(t, "mc.example.com", result["address"])
	})

	t.Run("errors when nothing is configured", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")

		err := (&AddressCmd{}).Run(globals)
		assert.Error(t, err)
		assert.Contains(t, stderr.String(), "NO_ADDRESS")
	})
}

// --- Status Command Tests ---

func TestStatusCmd_Run(t *testing.T) {
	t.Run("reports offline for an unreachable server", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "json")
		globals.Config.Query.Timeout = 200 * time.Millisecond

		// A port nothing listens on.
		cmd := &StatusCmd{Host: "127.0.0.1", Port: 1}
		err := cmd.Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, false, result["reachable"])
		assert.NotEmpty(t, result["error"])
	})

	t.Run("errors without a host", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")

		err := (&StatusCmd{}).Run(globals)
		assert.Error(t, err)
		assert.Contains(t, stderr.String(), "NO_QUERY_HOST")
	})
}

// --- Config Command Tests ---

func TestConfigShowCmd_Run(t *testing.T) {
	t.Run("outputs config in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")

		err := (&ConfigShowCmd{}).Run(globals)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "Current Configuration:")
		assert.Contains(t, output, "panel:")
		assert.Contains(t, output, "query:")
		assert.Contains(t, output, "cooldown:")
	})

	t.Run("outputs config in json format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "json")

		err := (&ConfigShowCmd{}).Run(globals)
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
		assert.Equal(t, "config", result["type"])
		assert.Contains(t, result, "panel")
		assert.Contains(t, result, "query")
	})
}

// --- Subscribers Command Tests ---

func TestSubscribersCmds(t *testing.T) {
	globals, stdout, _ := testGlobals(t, "text")

	require.NoError(t, (&SubscribersAddCmd{ID: "1001", Name: "alice"}).Run(globals))
	require.NoError(t, (&SubscribersAddCmd{ID: "1002", Name: "bob"}).Run(globals))
	require.NoError(t, (&SubscribersDisableCmd{ID: "1002"}).Run(globals))

	stdout.Reset()
	require.NoError(t, (&SubscribersListCmd{}).Run(globals))
	output := stdout.String()
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "bob")

	// registry file reflects the disable
	reg := registry.New(globals.Config.Paths.Registry)
	enabled, err := reg.Enabled()
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "1001", enabled[0].ID)

	t.Run("list json", func(t *testing.T) {
		globals.Format = "json"
		stdout.Reset()
		require.NoError(t, (&SubscribersListCmd{}).Run(globals))

		var subs []registry.Subscriber
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &subs))
		assert.Len(t, subs, 2)
	})

	t.Run("unknown id errors", func(t *testing.T) {
		globals.Format = "text"
		err := (&SubscribersEnableCmd{ID: "nope"}).Run(globals)
		assert.Error(t, err)
	})
}

// --- Run Command Tests ---

func TestRunCmd_CommandLoop(t *testing.T) {
	globals, stdout, _ := testGlobals(t, "text")
	globals.Quiet = true
	globals.Config.Panel.URL = "https://panel.example.com/servers"
	globals.Config.Query.Host = "127.0.0.1"
	globals.Config.Query.Port = 1
	globals.Config.Query.Timeout = 200 * time.Millisecond

	cmd := &RunCmd{Input: strings.NewReader("help\nunlock\naddress\n")}
	err := cmd.Run(globals)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Commands:")
	assert.Contains(t, output, "Sticky lock cleared.")
	assert.Contains(t, output, "127.0.0.1:1")
}

func TestRunCmd_RequiresConfig(t *testing.T) {
	globals, _, stderr := testGlobals(t, "text")

	err := (&RunCmd{}).Run(globals)
	assert.Error(t, err)
	assert.Contains(t, stderr.String(), "NO_PANEL_URL")
}
