package stream

import (
	"sync"
	"time"
)

// Gate decides whether an incoming chunk triggers a pipeline run. It
// enforces the exclusivity invariant (at most one run in flight per key)
// together with a minimum buffered-audio threshold and a minimum interval
// between dispatches. A slow run holds the in-flight flag and naturally
// suppresses re-triggering without a timer.
type Gate struct {
	minBytes    int
	minInterval time.Duration

	mu     sync.Mutex
	states map[Key]*gateState

	// Overridable for tests
	now func() time.Time
}

type gateState struct {
	inFlight     bool
	lastDispatch time.Time
}

func NewGate(minBytes int, minInterval time.Duration) *Gate {
	return &Gate{
		minBytes:    minBytes,
		minInterval: minInterval,
		states:      make(map[Key]*gateState),
		now:         time.Now,
	}
}

// ShouldProcess reports whether a run may be dispatched for the key given
// the current buffered byte count.
func (g *Gate) ShouldProcess(key Key, buffered int) bool {
	if buffered < g.minBytes {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.states[key]
	if !ok {
		return true
	}
	if s.inFlight {
		return false
	}
	return g.now().Sub(s.lastDispatch) >= g.minInterval
}

// Begin atomically claims the in-flight flag. It returns false if a run
// is already in flight, upholding exclusivity even when a second chunk is
// dispatched before the previous run's completion fires.
func (g *Gate) Begin(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.states[key]
	if !ok {
		s = &gateState{}
		g.states[key] = s
	}
	if s.inFlight {
		return false
	}
	s.inFlight = true
	s.lastDispatch = g.now()
	return true
}

// End releases the in-flight flag. It must run on every exit path of a
// pipeline run, including failures.
func (g *Gate) End(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.states[key]; ok {
		s.inFlight = false
	}
}

// Remove drops the key's state when the participant leaves.
func (g *Gate) Remove(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, key)
}
