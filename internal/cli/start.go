package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/ThePiemanYT/craftkeeper/internal/coordinator"
	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/panel"
	"github.com/ThePiemanYT/craftkeeper/internal/session"
)

// StartCmd triggers one start attempt through the hosting panel
type StartCmd struct{}

// Run executes the start command
func (c *StartCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg.Panel.URL == "" {
		return outputError(globals, "NO_PANEL_URL", "hosting panel URL not configured (set panel.url)")
	}

	logs, sync, err := logging.Open(cfg.Paths.DetailLog, cfg.Paths.ErrorLog, globals.Verbose)
	if err != nil {
		return outputError(globals, "LOG_OPEN_FAILED", err.Error())
	}
	defer sync()

	store := session.NewStore(cfg.Paths.Session, logs.Detail)
	controller := panel.New(cfg.Panel, store, logs)
	coord := coordinator.New(controller, cfg.Cooldown, clock.New(), logs)

	res := coord.RequestStart(context.Background())

	if globals.Format == "json" {
		b, _ := json.Marshal(map[string]string{
			"type":    "start_result",
			"status":  res.Status.String(),
			"message": res.Message,
		})
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	fmt.Fprintln(globals.Stdout, res.Message)
	return nil
}
