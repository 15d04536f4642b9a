package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/ThePiemanYT/craftkeeper/internal/config"
)

// AddressCmd prints the game server's public address
type AddressCmd struct{}

// publicAddress resolves the address handed to users: the configured
// one, or the query endpoint as a fallback.
func publicAddress(cfg *config.Config) string {
	if cfg.Address != "" {
		return cfg.Address
	}
	if cfg.Query.Host != "" {
		return net.JoinHostPort(cfg.Query.Host, strconv.Itoa(int(cfg.Query.Port)))
	}
	return ""
}

// Run executes the address command
func (c *AddressCmd) Run(globals *Globals) error {
	address := publicAddress(globals.Config)
	if address == "" {
		return outputError(globals, "NO_ADDRESS", "no address configured (set address or query.host)")
	}

	if globals.Format == "json" {
		b, _ := json.Marshal(map[string]string{"type": "address", "address": address})
		fmt.Fprintln(globals.Stdout, string(b))
		return nil
	}

	fmt.Fprintln(globals.Stdout, address)
	return nil
}
