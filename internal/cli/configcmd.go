package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
)

// ConfigCmd shows configuration information
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Show current configuration"`
	Path ConfigPathCmd `cmd:"" help:"Show the config file path"`
}

// ConfigShowCmd prints the effective configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config

	if globals.Format == "json" {
		out := map[string]interface{}{
			"type":    "config",
			"format":  cfg.Format,
			"address": cfg.Address,
			"panel":   cfg.Panel,
			"query":   cfg.Query,
			"notify":  cfg.Notify,
			"paths":   cfg.Paths,
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format: %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  address: %s\n", cfg.Address)
	fmt.Fprintf(globals.Stdout, "  cooldown: %s\n", cfg.Cooldown)
	fmt.Fprintln(globals.Stdout, "  panel:")
	fmt.Fprintf(globals.Stdout, "    url: %s\n", cfg.Panel.URL)
	fmt.Fprintf(globals.Stdout, "    server_selector: %s\n", cfg.Panel.ServerSelector)
	fmt.Fprintf(globals.Stdout, "    start_selector: %s\n", cfg.Panel.StartSelector)
	fmt.Fprintf(globals.Stdout, "    nav_timeout: %s\n", cfg.Panel.NavTimeout)
	fmt.Fprintf(globals.Stdout, "    settle: %s\n", cfg.Panel.Settle)
	fmt.Fprintln(globals.Stdout, "  query:")
	fmt.Fprintf(globals.Stdout, "    host: %s\n", cfg.Query.Host)
	fmt.Fprintf(globals.Stdout, "    port: %d\n", cfg.Query.Port)
	fmt.Fprintf(globals.Stdout, "    timeout: %s\n", cfg.Query.Timeout)
	fmt.Fprintf(globals.Stdout, "    retries: %d\n", cfg.Query.Retries)
	fmt.Fprintf(globals.Stdout, "  notify.interval: %s\n", cfg.Notify.Interval)
	return nil
}

// ConfigPathCmd prints which config file is in use
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "json" {
		b, _ := json.Marshal(map[string]string{"type": "config_path", "path": path})
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found (using defaults)")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}
