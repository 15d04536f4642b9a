// Package coordinator guards start attempts with single-flight and
// cooldown semantics. It is the sole mutator of its state; the panel
// controller and the status notifier share nothing with it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/panel"
)

// Starter runs one automation attempt.
type Starter interface {
	RunStart(ctx context.Context) (string, error)
}

// Status classifies the outcome of a start request.
type Status int

const (
	// StatusStarted means the automation run completed its sequence.
	StatusStarted Status = iota
	// StatusFailed means the run errored (anything but a challenge).
	StatusFailed
	// StatusChallenge means a bot challenge aborted the run and the
	// coordinator is now locked.
	StatusChallenge
	// StatusLocked rejects a request while the sticky lock is set.
	StatusLocked
	// StatusCooldown rejects a request during the cooldown window.
	StatusCooldown
	// StatusBusy rejects a request while another run is in flight.
	StatusBusy
)

// String names the status for machine-readable output.
func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusFailed:
		return "failed"
	case StatusChallenge:
		return "challenge"
	case StatusLocked:
		return "locked"
	case StatusCooldown:
		return "cooldown"
	case StatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result is what a start request always yields: a status plus text the
// chat layer can hand straight back to the user.
type Result struct {
	Status  Status
	Message string
}

// State is a snapshot of the coordinator for status replies and tests.
type State struct {
	Locked        bool
	Running       bool
	CooldownUntil time.Time
}

// Coordinator enforces at most one automation run in flight, a sticky
// lock after challenge detection, and a fixed cooldown after every
// completed attempt.
type Coordinator struct {
	starter  Starter
	cooldown time.Duration
	clock    clock.Clock
	logs     *logging.Logs

	mu            sync.Mutex
	locked        bool
	running       bool
	cooldownUntil time.Time

	onCooldownExpired func()
}

// New creates a coordinator in the Idle state.
func New(starter Starter, cooldown time.Duration, clk clock.Clock, logs *logging.Logs) *Coordinator {
	return &Coordinator{
		starter:  starter,
		cooldown: cooldown,
		clock:    clk,
		logs:     logs,
	}
}

// OnCooldownExpired registers a callback fired once each time a
// cooldown window ends. The timer always runs to completion; there is
// no cancellation path.
func (c *Coordinator) OnCooldownExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCooldownExpired = fn
}

// RequestStart admits at most one caller into the automation run.
// Admission is decided under the lock before anything blocks, which is
// what makes the single-flight property hold: everyone who loses the
// race gets an immediate rejection.
func (c *Coordinator) RequestStart(ctx context.Context) Result {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return Result{StatusLocked, "Starting is locked after a bot challenge. Try again later."}
	}
	if c.running {
		c.mu.Unlock()
		return Result{StatusBusy, "A start attempt is already in progress."}
	}
	if remaining := c.cooldownUntil.Sub(c.clock.Now()); remaining > 0 {
		c.mu.Unlock()
		return Result{StatusCooldown, fmt.Sprintf("The server was started recently. Try again in %s.", remaining.Round(time.Second))}
	}
	c.running = true
	c.mu.Unlock()

	c.logs.Detail.Info("start request admitted")
	msg, err := c.starter.RunStart(ctx)

	c.mu.Lock()
	c.running = false

	if errors.Is(err, panel.ErrChallengeDetected) {
		// Sticky: nothing clears this except an explicit Unlock.
		c.locked = true
		c.mu.Unlock()
		c.logs.Errors.Error("challenge detected, start command locked")
		return Result{StatusChallenge, "The panel presented a bot challenge. Starting is locked for now."}
	}

	c.cooldownUntil = c.clock.Now().Add(c.cooldown)
	expired := c.onCooldownExpired
	c.mu.Unlock()

	c.clock.AfterFunc(c.cooldown, func() {
		c.logs.Detail.Info("cooldown expired, start command available")
		if expired != nil {
			expired()
		}
	})

	if err != nil {
		return Result{StatusFailed, fmt.Sprintf("Start attempt failed: %v", err)}
	}
	return Result{StatusStarted, msg}
}

// Unlock clears the sticky lock. This is the operator's manual reset;
// no timer does it automatically.
func (c *Coordinator) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		c.locked = false
		c.logs.Detail.Info("sticky lock cleared")
	}
}

// Snapshot returns the current coordinator state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Locked:        c.locked,
		Running:       c.running,
		CooldownUntil: c.cooldownUntil,
	}
}
