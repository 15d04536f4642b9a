// Package bot maps the chat command surface onto the core: start the
// server, report status, print the address, and list help. The chat
// transport itself lives behind the daemon's gateway; this package
// only turns a command into reply text.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThePiemanYT/craftkeeper/internal/coordinator"
	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
)

// StartRequester admits start requests (the coordinator).
type StartRequester interface {
	RequestStart(ctx context.Context) coordinator.Result
}

// Prober produces a fresh server status.
type Prober interface {
	Probe(ctx context.Context, maxRetries int) mcquery.ServerStatus
}

const helpText = `Commands:
  start    Start the server through the hosting panel
  status   Query the server's current status
  address  Show the server address
  help     Show this message`

// Handler answers chat commands. Every command yields a reply; there
// is no silent failure path.
type Handler struct {
	coord   StartRequester
	prober  Prober
	retries int
	address string
}

// NewHandler wires the command surface to the core.
func NewHandler(coord StartRequester, prober Prober, retries int, address string) *Handler {
	return &Handler{coord: coord, prober: prober, retries: retries, address: address}
}

// Handle executes one command and returns the reply text.
func (h *Handler) Handle(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(command, "/"))) {
	case "start":
		return h.coord.RequestStart(ctx).Message
	case "status":
		return RenderStatus(h.prober.Probe(ctx, h.retries))
	case "address":
		if h.address == "" {
			return "No address configured."
		}
		return h.address
	case "help", "":
		return helpText
	default:
		return fmt.Sprintf("Unknown command %q. Send \"help\" for the list.", command)
	}
}

// RenderStatus formats a probe result as a status reply.
func RenderStatus(st mcquery.ServerStatus) string {
	if !st.Reachable {
		if st.Err != "" {
			return fmt.Sprintf("Server is offline (%s).", st.Err)
		}
		return "Server is offline."
	}
	msg := fmt.Sprintf("Server is online: %d/%d players", st.Players, st.MaxPlayers)
	if st.Version != "" {
		msg += fmt.Sprintf(", version %s", st.Version)
	}
	if st.MOTD != "" {
		msg += fmt.Sprintf(" (%q)", st.MOTD)
	}
	return msg + "."
}
