package mcquery

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer speaks the server side of the list ping. The first
// failFirst connections are dropped before the handshake completes to
// simulate transport failures.
type fakeServer struct {
	listener net.Listener
	payload  string
	attempts atomic.Int32
	failN    int32
}

func startFakeServer(t *testing.T, payload string, failFirst int) *fakeServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{listener: l, payload: payload, failN: int32(failFirst)}
	go s.serve()
	t.Cleanup(func() { l.Close() })
	return s
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		n := s.attempts.Add(1)
		if n <= s.failN {
			conn.Close()
			continue
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	// handshake frame, then the empty status request
	for i := 0; i < 2; i++ {
		frameLen, err := readVarInt(r)
		if err != nil || frameLen <= 0 {
			return
		}
		if _, err := r.Discard(int(frameLen)); err != nil {
			return
		}
	}
	body := append([]byte{0x00}, appendVarInt(nil, int32(len(s.payload)))...)
	body = append(body, s.payload...)
	writeFrame(conn, body)
}

func (s *fakeServer) client(t *testing.T) *Client {
	t.Helper()
	_, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return New("127.0.0.1", uint16(port), time.Second)
}

const fullStatus = `{"version":{"name":"1.20.4","protocol":765},"players":{"online":2,"max":10},"description":{"text":"hi"}}`

func TestProbeSuccess(t *testing.T) {
	s := startFakeServer(t, fullStatus, 0)
	st := s.client(t).Probe(context.Background(), 1)

	require.True(t, st.Reachable)
	assert.Equal(t, 2, st.Players)
	assert.Equal(t, 10, st.MaxPlayers)
	assert.Equal(t, "1.20.4", st.Version)
	assert.Equal(t, "hi", st.MOTD)
	assert.Empty(t, st.Err)
}

func TestProbeStringDescription(t *testing.T) {
	s := startFakeServer(t, `{"players":{"online":0,"max":20},"description":"plain motd"}`, 0)
	st := s.client(t).Probe(context.Background(), 0)

	require.True(t, st.Reachable)
	assert.Equal(t, "plain motd", st.MOTD)
	assert.Empty(t, st.Version)
}

func TestProbeMalformedResponse(t *testing.T) {
	t.Run("no players section", func(t *testing.T) {
		s := startFakeServer(t, `{"version":{"name":"1.20"}}`, 0)
		st := s.client(t).Probe(context.Background(), 1)

		assert.False(t, st.Reachable)
		assert.Equal(t, "malformed status response", st.Err)
		// a malformed response is final, never retried
		assert.Equal(t, int32(1), s.attempts.Load())
	})

	t.Run("invalid json", func(t *testing.T) {
		s := startFakeServer(t, `{"players":`, 0)
		st := s.client(t).Probe(context.Background(), 1)

		assert.False(t, st.Reachable)
		assert.Equal(t, "malformed status response", st.Err)
	})
}

func TestProbeRetry(t *testing.T) {
	t.Run("transport failure then success", func(t *testing.T) {
		s := startFakeServer(t, fullStatus, 1)
		st := s.client(t).Probe(context.Background(), 1)

		require.True(t, st.Reachable)
		assert.Empty(t, st.Err)
		assert.Equal(t, int32(2), s.attempts.Load())
	})

	t.Run("exhausted retries preserve last error", func(t *testing.T) {
		s := startFakeServer(t, fullStatus, 99)
		st := s.client(t).Probe(context.Background(), 1)

		assert.False(t, st.Reachable)
		assert.NotEmpty(t, st.Err)
		// exactly one retry: two attempts total
		assert.Equal(t, int32(2), s.attempts.Load())
	})

	t.Run("zero retries means a single attempt", func(t *testing.T) {
		s := startFakeServer(t, fullStatus, 99)
		st := s.client(t).Probe(context.Background(), 0)

		assert.False(t, st.Reachable)
		assert.Equal(t, int32(1), s.attempts.Load())
	})
}

func TestProbeConnectionRefused(t *testing.T) {
	// Grab a port and close it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	port, _ := strconv.Atoi(portStr)

	st := New("127.0.0.1", uint16(port), 500*time.Millisecond).Probe(context.Background(), 1)
	assert.False(t, st.Reachable)
	assert.NotEmpty(t, st.Err)
}

func TestVarIntRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, 127, 128, 300, 25565, -1} {
		got, err := readVarInt(bytes.NewReader(appendVarInt(nil, v)))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
