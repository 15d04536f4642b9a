package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ThePiemanYT/craftkeeper/internal/bot"
	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
)

// StatusCmd queries the game server once and prints the result
type StatusCmd struct {
	Host string `short:"H" help:"Query host (overrides config)"`
	Port uint16 `short:"P" help:"Query port (overrides config)"`
}

var (
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Run executes the status command
func (c *StatusCmd) Run(globals *Globals) error {
	cfg := globals.Config

	host := c.Host
	if host == "" {
		host = cfg.Query.Host
	}
	if host == "" {
		return outputError(globals, "NO_QUERY_HOST", "query host not configured (set query.host or pass --host)")
	}
	port := c.Port
	if port == 0 {
		port = cfg.Query.Port
	}

	globals.Debug("probing %s:%d", host, port)
	client := mcquery.New(host, port, cfg.Query.Timeout)
	st := client.Probe(context.Background(), cfg.Query.Retries)

	if globals.Format == "json" {
		b, err := json.Marshal(st)
		if err != nil {
			return err
		}
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	marker := onlineStyle.Render("online")
	if !st.Reachable {
		marker = offlineStyle.Render("offline")
	}
	fmt.Fprintf(globals.Stdout, "%s  %s\n", marker, bot.RenderStatus(st))
	return nil
}
