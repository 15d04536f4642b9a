// Package notify polls the game server on a fixed period and fans out
// a message to enabled subscribers whenever reachability flips. It
// runs independently of the start coordinator and shares no state with
// it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
	"github.com/ThePiemanYT/craftkeeper/internal/registry"
)

// Prober produces a fresh server status.
type Prober interface {
	Probe(ctx context.Context, maxRetries int) mcquery.ServerStatus
}

// Messenger delivers one message to one subscriber. The chat transport
// behind it is an external collaborator.
type Messenger interface {
	Send(id, text string) error
}

// SubscriberSource yields the subscribers to notify. Consumed
// read-only; reloaded on every poll so edits take effect without a
// restart.
type SubscriberSource interface {
	Enabled() ([]registry.Subscriber, error)
}

// Notifier owns the poll-diff-notify loop.
type Notifier struct {
	prober    Prober
	retries   int
	subs      SubscriberSource
	messenger Messenger
	tracker   *Tracker
	interval  time.Duration
	clock     clock.Clock
	logs      *logging.Logs
}

// New creates a notifier. interval is the poll period.
func New(prober Prober, retries int, subs SubscriberSource, messenger Messenger, interval time.Duration, clk clock.Clock, logs *logging.Logs) *Notifier {
	return &Notifier{
		prober:    prober,
		retries:   retries,
		subs:      subs,
		messenger: messenger,
		tracker:   NewTracker(),
		interval:  interval,
		clock:     clk,
		logs:      logs,
	}
}

// Run drives the poll loop until the context is cancelled. A single
// ticker triggers polls, so no two polls ever interleave.
func (n *Notifier) Run(ctx context.Context) {
	ticker := n.clock.Ticker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.PollOnce(ctx)
		}
	}
}

// PollOnce performs one poll-diff-notify cycle and reports how many
// subscribers were messaged (0 on a repeat observation).
func (n *Notifier) PollOnce(ctx context.Context) int {
	status := n.prober.Probe(ctx, n.retries)

	// Load subscribers before committing the observation: an
	// unreadable registry must leave the tracker untouched so the
	// pending edge is announced once the registry recovers.
	subs, err := n.subs.Enabled()
	if err != nil {
		n.logs.Errors.Errorf("subscriber list unavailable: %v", err)
		return 0
	}

	change := n.tracker.Check(status)
	if change == nil {
		return 0
	}

	n.logs.Detail.Infof("reachability changed: online=%v players=%d/%d",
		status.Reachable, status.Players, status.MaxPlayers)

	text := FormatChange(status)
	sent := 0
	for _, sub := range subs {
		if err := n.messenger.Send(sub.ID, text); err != nil {
			n.logs.Errors.Errorf("notify %s: %v", sub.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// FormatChange renders the status-change message.
func FormatChange(st mcquery.ServerStatus) string {
	if !st.Reachable {
		if st.Err != "" {
			return fmt.Sprintf("Server is now offline (%s).", st.Err)
		}
		return "Server is now offline."
	}
	msg := fmt.Sprintf("Server is now online: %d/%d players", st.Players, st.MaxPlayers)
	if st.Version != "" {
		msg += fmt.Sprintf(", version %s", st.Version)
	}
	if st.MOTD != "" {
		msg += fmt.Sprintf(" (%q)", st.MOTD)
	}
	return msg + "."
}
