package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"

	"github.com/ThePiemanYT/craftkeeper/internal/bot"
	"github.com/ThePiemanYT/craftkeeper/internal/coordinator"
	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
	"github.com/ThePiemanYT/craftkeeper/internal/notify"
	"github.com/ThePiemanYT/craftkeeper/internal/panel"
	"github.com/ThePiemanYT/craftkeeper/internal/registry"
	"github.com/ThePiemanYT/craftkeeper/internal/session"
)

// RunCmd runs the bot daemon: the chat command loop plus the periodic
// status notifier
type RunCmd struct {
	Input io.Reader `kong:"-"` // command source, stdin unless a test injects one
}

// consoleMessenger delivers notifications to the terminal. A real chat
// frontend replaces this with its own transport.
type consoleMessenger struct {
	w io.Writer
}

func (m *consoleMessenger) Send(id, text string) error {
	_, err := fmt.Fprintf(m.w, "[notify %s] %s\n", id, text)
	return err
}

// Run executes the daemon
func (c *RunCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg.Panel.URL == "" {
		return outputError(globals, "NO_PANEL_URL", "hosting panel URL not configured (set panel.url)")
	}
	if cfg.Query.Host == "" {
		return outputError(globals, "NO_QUERY_HOST", "query host not configured (set query.host)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logs, sync, err := logging.Open(cfg.Paths.DetailLog, cfg.Paths.ErrorLog, globals.Verbose)
	if err != nil {
		return outputError(globals, "LOG_OPEN_FAILED", err.Error())
	}
	defer sync()

	clk := clock.New()
	store := session.NewStore(cfg.Paths.Session, logs.Detail)
	controller := panel.New(cfg.Panel, store, logs)
	coord := coordinator.New(controller, cfg.Cooldown, clk, logs)
	reg := registry.New(cfg.Paths.Registry)
	prober := mcquery.New(cfg.Query.Host, cfg.Query.Port, cfg.Query.Timeout)
	messenger := &consoleMessenger{w: globals.Stdout}

	// When the cooldown ends, tell everyone the command works again.
	coord.OnCooldownExpired(func() {
		subs, err := reg.Enabled()
		if err != nil {
			logs.Errors.Errorf("subscriber list unavailable: %v", err)
			return
		}
		lo.ForEach(subs, func(s registry.Subscriber, _ int) {
			if err := messenger.Send(s.ID, "The start command is available again."); err != nil {
				logs.Errors.Errorf("notify %s: %v", s.ID, err)
			}
		})
	})

	notifier := notify.New(prober, cfg.Query.Retries, reg, messenger, cfg.Notify.Interval, clk, logs)
	go notifier.Run(ctx)

	handler := bot.NewHandler(coord, prober, cfg.Query.Retries, publicAddress(cfg))

	if !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "craftkeeper daemon up (panel: %s, query: %s:%d)\n",
			cfg.Panel.URL, cfg.Query.Host, cfg.Query.Port)
		fmt.Fprintln(globals.Stderr, "Commands: start, status, address, help. Ctrl+C to stop.")
	}
	logs.Detail.Info("daemon started")

	input := c.Input
	if input == nil {
		input = os.Stdin
	}
	lines := readLines(ctx, input)

	for {
		select {
		case <-ctx.Done():
			logs.Detail.Info("daemon stopping")
			return nil
		case line, ok := <-lines:
			if !ok {
				logs.Detail.Info("command stream closed")
				return nil
			}
			if line == "" {
				continue
			}
			// unlock is the operator's manual reset for the sticky
			// lock, deliberately outside the chat command surface.
			if line == "unlock" {
				coord.Unlock()
				fmt.Fprintln(globals.Stdout, "Sticky lock cleared.")
				continue
			}
			fmt.Fprintln(globals.Stdout, handler.Handle(ctx, line))
		}
	}
}

// readLines pumps trimmed lines from r until EOF or cancellation.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case out <- scanner.Text():
			}
		}
	}()
	return out
}
