package channel

import (
	"sync"
	"time"
)

// State is the mutable per-channel counter pair consulted by the gate.
// A zero LastMessageTime means no message has been sent since the last reset.
type State struct {
	MessageCount    int
	LastMessageTime time.Time
}

// Never reports whether no delivery was recorded since the last reset.
func (s State) Never() bool {
	return s.LastMessageTime.IsZero()
}

// Status is the gate's view of a channel for the count/interval condition.
type Status string

const (
	StatusReady   Status = "READY"
	StatusLimited Status = "LIMITED"
)

// withinQuota is the count/interval condition: blocked only when the quota is
// used up and the interval since the last message has not yet elapsed.
func withinQuota(cfg *Channel, st State, now time.Time) bool {
	if st.MessageCount < cfg.RateLimit {
		return true
	}
	if st.Never() {
		return true
	}
	return now.Sub(st.LastMessageTime) >= cfg.RateLimitInterval
}

// withinSendWindow is true once the time of day has reached any configured
// send time. There is no closing bound.
func withinSendWindow(cfg *Channel, now time.Time) bool {
	for _, t := range cfg.SendTimes {
		if t.NotAfter(now) {
			return true
		}
	}
	return false
}

// Allowed is the pure gate decision for one channel.
func Allowed(cfg *Channel, st State, now time.Time) bool {
	return withinQuota(cfg, st, now) && withinSendWindow(cfg, now)
}

// StatusOf classifies st against cfg at now.
func StatusOf(cfg *Channel, st State, now time.Time) Status {
	if withinQuota(cfg, st, now) {
		return StatusReady
	}
	return StatusLimited
}

// Gate owns the runtime State of every channel. All reads and writes of a
// channel's pair happen under one mutex, so a reset can never interleave with
// a record and leave the count and timestamp out of step.
type Gate struct {
	mu     sync.Mutex
	states map[ID]State
}

func NewGate() *Gate {
	return &Gate{states: make(map[ID]State)}
}

// Check evaluates the gate for cfg at now without mutating anything.
func (g *Gate) Check(cfg *Channel, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Allowed(cfg, g.states[cfg.ID], now)
}

// Record accounts for one successful delivery.
func (g *Gate) Record(id ID, now time.Time) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.states[id]
	st.MessageCount++
	st.LastMessageTime = now
	g.states[id] = st
	return st
}

// Reset zeroes one channel's counters.
func (g *Gate) Reset(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, id)
}

// ResetAll zeroes every channel's counters and returns how many channels had
// state before the reset.
func (g *Gate) ResetAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.states)
	g.states = make(map[ID]State)
	return n
}

// Forget drops state for a removed channel.
func (g *Gate) Forget(id ID) {
	g.Reset(id)
}

// State returns a snapshot of a channel's counters.
func (g *Gate) State(id ID) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[id]
}

// Status reports READY or LIMITED for cfg at now.
func (g *Gate) Status(cfg *Channel, now time.Time) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return StatusOf(cfg, g.states[cfg.ID], now)
}
