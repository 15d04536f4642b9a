package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ThePiemanYT/craftkeeper/internal/cli"
	"github.com/ThePiemanYT/craftkeeper/internal/config"
)

const quickStart = `craftkeeper - keeps a panel-hosted Minecraft server running

Quick start:
  craftkeeper run                       Run the bot daemon
  craftkeeper status                    Query the server's status
  craftkeeper start                     Press start on the hosting panel
  craftkeeper subscribers add ID NAME   Register a notification target

For help:
  craftkeeper --help                    All commands and flags
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format": cfg.Format,
	}

	ctx := kong.Parse(&c,
		kong.Name("craftkeeper"),
		kong.Description("craftkeeper: start a panel-hosted game server and tell subscribers when it changes state"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
