// Package mcquery implements the client side of the Minecraft
// server-list-ping protocol: a VarInt-framed handshake followed by a
// status request whose response carries player counts, the server
// version, and the message of the day as JSON.
package mcquery

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerStatus is the result of a single status query. Player counts,
// Version, and MOTD are meaningful only when Reachable is true; Err
// carries the failure text otherwise.
type ServerStatus struct {
	Reachable  bool   `json:"reachable"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Version    string `json:"version,omitempty"`
	MOTD       string `json:"motd,omitempty"`
	Err        string `json:"error,omitempty"`
}

// Client queries one game server. It keeps no state between calls and
// is safe for concurrent use.
type Client struct {
	Host    string
	Port    uint16
	Timeout time.Duration
}

// New creates a client for the given server.
func New(host string, port uint16, timeout time.Duration) *Client {
	return &Client{Host: host, Port: port, Timeout: timeout}
}

// Probe performs a status query with up to maxRetries extra attempts
// after a transport failure. A malformed response is not retried. The
// returned status always has Reachable set; on final failure Err holds
// the last transport error.
func (c *Client) Probe(ctx context.Context, maxRetries int) ServerStatus {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		st, err := c.queryOnce(ctx)
		if err == nil {
			return st
		}
		lastErr = err
	}
	return ServerStatus{Err: lastErr.Error()}
}

func (c *Client) queryOnce(ctx context.Context) (ServerStatus, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return ServerStatus{}, err
	}
	defer conn.Close()

	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	if err := c.sendHandshake(conn); err != nil {
		return ServerStatus{}, fmt.Errorf("handshake: %w", err)
	}
	if err := writeFrame(conn, []byte{0x00}); err != nil {
		return ServerStatus{}, fmt.Errorf("status request: %w", err)
	}

	payload, err := readStatusResponse(bufio.NewReader(conn))
	if err != nil {
		return ServerStatus{}, fmt.Errorf("status response: %w", err)
	}

	return parseStatus(payload), nil
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.Timeout}
	addr := net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
	return d.DialContext(ctx, "tcp", addr)
}

// sendHandshake writes the state=1 handshake packet: protocol version,
// server address, port, and the requested next state.
func (c *Client) sendHandshake(conn net.Conn) error {
	var body []byte
	body = append(body, 0x00)                  // packet id
	body = appendVarInt(body, -1)              // protocol version: unspecified
	body = appendVarInt(body, int32(len(c.Host)))
	body = append(body, c.Host...)
	body = append(body, byte(c.Port>>8), byte(c.Port)) // unsigned short, big endian
	body = appendVarInt(body, 1)               // next state: status
	return writeFrame(conn, body)
}

// parseStatus decodes the JSON status payload. A response without a
// players section counts as unreachable with a protocol error, per the
// observed behavior of servers mid-startup.
func parseStatus(payload []byte) ServerStatus {
	var raw struct {
		Version *struct {
			Name string `json:"name"`
		} `json:"version"`
		Players *struct {
			Online int `json:"online"`
			Max    int `json:"max"`
		} `json:"players"`
		Description json.RawMessage `json:"description"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil || raw.Players == nil {
		return ServerStatus{Err: "malformed status response"}
	}

	st := ServerStatus{
		Reachable:  true,
		Players:    raw.Players.Online,
		MaxPlayers: raw.Players.Max,
		MOTD:       motdText(raw.Description),
	}
	if raw.Version != nil {
		st.Version = raw.Version.Name
	}
	return st
}

// motdText flattens a chat-component description. Servers send either
// a bare string or an object with text plus optional extra segments.
func motdText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text  string `json:"text"`
		Extra []struct {
			Text string `json:"text"`
		} `json:"extra"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	out := obj.Text
	for _, e := range obj.Extra {
		out += e.Text
	}
	return out
}
