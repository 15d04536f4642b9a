// Package cli defines the command tree and shared command plumbing.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
)

// CLI is the root command structure parsed by kong.
type CLI struct {
	Format  string `help:"Output format: text or json" enum:"text,json" default:"${config_format}"`
	Quiet   bool   `short:"q" help:"Suppress non-essential output"`
	Verbose bool   `short:"v" help:"Verbose debug output"`

	Run         RunCmd         `cmd:"" help:"Run the bot daemon (chat gateway + status notifier)"`
	Start       StartCmd       `cmd:"" help:"Trigger one start attempt through the hosting panel"`
	Status      StatusCmd      `cmd:"" help:"Query the game server's status"`
	Address     AddressCmd     `cmd:"" help:"Print the server address"`
	Subscribers SubscribersCmd `cmd:"" help:"Manage notification subscribers"`
	Config      ConfigCmd      `cmd:"" help:"Show configuration"`
}

// Globals carries per-invocation state into every command.
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
}

// NewGlobalsWithConfig creates globals from parsed flags with config
// fallbacks applied.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	return &Globals{
		Format:  c.Format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
}

// Debug prints to stderr when verbose is enabled.
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[debug] "+format+"\n", args...)
	}
}
