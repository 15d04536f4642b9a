package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThePiemanYT/craftkeeper/internal/coordinator"
	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
)

type fakeCoord struct {
	result coordinator.Result
	calls  int
}

func (f *fakeCoord) RequestStart(ctx context.Context) coordinator.Result {
	f.calls++
	return f.result
}

type fakeProber struct {
	status mcquery.ServerStatus
	calls  int
}

func (f *fakeProber) Probe(ctx context.Context, maxRetries int) mcquery.ServerStatus {
	f.calls++
	return f.status
}

func TestHandleStart(t *testing.T) {
	coord := &fakeCoord{result: coordinator.Result{Status: coordinator.StatusStarted, Message: "started"}}
	h := NewHandler(coord, &fakeProber{}, 1, "mc.example.com")

	assert.Equal(t, "started", h.Handle(context.Background(), "start"))
	assert.Equal(t, 1, coord.calls)
}

func TestHandleStartLocked(t *testing.T) {
	coord := &fakeCoord{result: coordinator.Result{Status: coordinator.StatusLocked, Message: "locked, retry later"}}
	h := NewHandler(coord, &fakeProber{}, 1, "")

	reply := h.Handle(context.Background(), "start")
	assert.Equal(t, "locked, retry later", reply)
}

func TestHandleStatus(t *testing.T) {
	p := &fakeProber{status: mcquery.ServerStatus{Reachable: true, Players: 3, MaxPlayers: 20, Version: "1.20.4", MOTD: "welcome"}}
	h := NewHandler(&fakeCoord{}, p, 1, "")

	reply := h.Handle(context.Background(), "status")
	assert.Contains(t, reply, "online")
	assert.Contains(t, reply, "3/20")
	assert.Contains(t, reply, "1.20.4")
	assert.Contains(t, reply, "welcome")
	assert.Equal(t, 1, p.calls)
}

func TestHandleStatusOffline(t *testing.T) {
	p := &fakeProber{status: mcquery.ServerStatus{Err: "i/o timeout"}}
	h := NewHandler(&fakeCoord{}, p, 1, "")

	reply := h.Handle(context.Background(), "status")
	assert.Contains(t, reply, "offline")
	assert.Contains(t, reply, "i/o timeout")
}

func TestHandleAddress(t *testing.T) {
	h := NewHandler(&fakeCoord{}, &fakeProber{}, 1, "mc.example.com:25565")
	assert.Equal(t, "mc.example.com:25565", h.Handle(context.Background(), "address"))

	h = NewHandler(&fakeCoord{}, &fakeProber{}, 1, "")
	assert.Equal(t, "No address configured.", h.Handle(context.Background(), "address"))
}

func TestHandleHelpAndUnknown(t *testing.T) {
	h := NewHandler(&fakeCoord{}, &fakeProber{}, 1, "")

	help := h.Handle(context.Background(), "help")
	for _, cmd := range []string{"start", "status", "address", "help"} {
		assert.Contains(t, help, cmd)
	}

	assert.Contains(t, h.Handle(context.Background(), "dance"), "Unknown command")
	// slash-prefixed and mixed-case forms are accepted
	assert.Equal(t, help, h.Handle(context.Background(), "/Help"))
}
