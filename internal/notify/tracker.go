package notify

import (
	"sync"

	"github.com/ThePiemanYT/craftkeeper/internal/mcquery"
)

// reachState is the tri-state previous-observation record. unknown is
// distinct from both booleans, so the first poll after startup always
// counts as a change.
type reachState int

const (
	reachUnknown reachState = iota
	reachOnline
	reachOffline
)

func toReachState(reachable bool) reachState {
	if reachable {
		return reachOnline
	}
	return reachOffline
}

// Tracker remembers the last observed reachability and reports edges.
type Tracker struct {
	mu       sync.Mutex
	previous reachState
}

// Change is emitted when reachability flips. FirstObservation marks
// the startup edge where no previous value existed.
type Change struct {
	Status           mcquery.ServerStatus
	FirstObservation bool
}

// NewTracker starts with no previous observation.
func NewTracker() *Tracker {
	return &Tracker{previous: reachUnknown}
}

// Check records an observation and returns a Change if it differs from
// the previous one, nil on a repeat.
func (t *Tracker) Check(status mcquery.ServerStatus) *Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := toReachState(status.Reachable)
	if next == t.previous {
		return nil
	}
	first := t.previous == reachUnknown
	t.previous = next
	return &Change{Status: status, FirstObservation: first}
}
