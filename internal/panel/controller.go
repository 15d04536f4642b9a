// Package panel drives a scripted Chrome session through the hosting
// panel's web UI to press the start button. The selectors it depends on
// are the only coupling to the panel's markup.
package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
	"github.com/ThePiemanYT/craftkeeper/internal/logging"
	"github.com/ThePiemanYT/craftkeeper/internal/session"
)

// Automation failures, converted to reply text at the command boundary.
// ErrChallengeDetected is the only one with a durable consequence: the
// coordinator turns it into a sticky lock.
var (
	ErrNavigationTimeout = errors.New("panel did not render the server list in time")
	ErrChallengeDetected = errors.New("panel presented a bot challenge")
	ErrElementNotFound   = errors.New("start control not found on panel")
)

// Controller performs one start attempt per call. No internal retry.
type Controller struct {
	cfg   config.PanelConfig
	store *session.Store
	logs  *logging.Logs

	// launch is swappable in tests to avoid spawning Chrome.
	launch func() (string, error)
}

// New creates a controller for the configured panel.
func New(cfg config.PanelConfig, store *session.Store, logs *logging.Logs) *Controller {
	c := &Controller{cfg: cfg, store: store, logs: logs}
	c.launch = func() (string, error) {
		return launcher.New().
			Headless(true).
			Set("user-agent", randomUserAgent()).
			Launch()
	}
	return c
}

// RunStart walks the login/start sequence once: launch an isolated
// browser with a fresh client identity, attach any stored session,
// open the server panel, bail out on a challenge page, press start,
// wait the settle delay, and persist captured cookies. The browser is
// released on every exit path. Errors come back as values; nothing
// here is fatal to the process.
func (p *Controller) RunStart(ctx context.Context) (msg string, err error) {
	runID := uuid.NewString()[:8]
	log := p.logs.Detail.With("run", runID)
	log.Infof("start attempt against %s", p.cfg.URL)

	defer func() {
		if err != nil {
			p.logs.Errors.Errorw("start attempt failed", "run", runID, "error", err)
		}
	}()

	controlURL, err := p.launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to browser: %w", err)
	}
	defer browser.Close()

	if cookies, ok := p.store.Load(); ok {
		if err := browser.SetCookies(session.Params(cookies)); err != nil {
			return "", fmt.Errorf("attach session: %w", err)
		}
		log.Infof("attached stored session (%d cookies)", len(cookies))
	} else {
		log.Info("no stored session, starting unauthenticated")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}

	if err := page.Timeout(p.cfg.NavTimeout).Navigate(p.cfg.URL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	serverEntry, err := page.Timeout(p.cfg.NavTimeout).Element(p.cfg.ServerSelector)
	if err != nil {
		return "", ErrNavigationTimeout
	}
	log.Info("server list rendered")

	if err := serverEntry.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("open server panel: %w", err)
	}

	if sel, found := p.challengePresent(page); found {
		log.Infof("challenge marker %q present, aborting", sel)
		return "", ErrChallengeDetected
	}

	start, err := page.Timeout(p.cfg.NavTimeout).Element(p.cfg.StartSelector)
	if err != nil {
		return "", ErrElementNotFound
	}
	if err := start.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("press start: %w", err)
	}
	log.Infof("start pressed, settling for %s", p.cfg.Settle)

	// The settle delay gives the panel time to run its own transition.
	// It is a heuristic: nothing confirms the game server came up.
	time.Sleep(p.cfg.Settle)

	p.captureSession(browser, log)

	log.Info("start attempt complete")
	return "Server start triggered. Give it a minute to come up.", nil
}

// challengePresent scans the rendered page for known bot-check markers.
func (p *Controller) challengePresent(page *rod.Page) (string, bool) {
	for _, sel := range p.cfg.ChallengeSelectors {
		has, _, err := page.Has(sel)
		if err == nil && has {
			return sel, true
		}
	}
	return "", false
}

// captureSession persists the current cookie set. Runs even when the
// outcome upstream is ambiguous; a write failure is logged and ignored.
func (p *Controller) captureSession(browser *rod.Browser, log *zap.SugaredLogger) {
	cookies, err := browser.GetCookies()
	if err != nil {
		log.Debugf("cookie capture failed: %v", err)
		return
	}
	if err := p.store.Save(session.FromNetwork(cookies)); err != nil {
		log.Debugf("session save failed: %v", err)
		return
	}
	log.Infof("session persisted (%d cookies)", len(cookies))
}
