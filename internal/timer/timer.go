// Package timer provides the cancellable countdown the session state
// machine runs questions under. Ticks fire once per second.
package timer

import (
	"sync"
	"time"
)

// Timer is the countdown contract. Start replaces any running
// countdown; Stop clears the pending callbacks unconditionally, so a
// stale tick can never fire after Stop returns a new generation.
type Timer interface {
	Start(durationSec int, onTick func(remainingSec int), onComplete func())
	Stop()
}

// Countdown is the ticker-backed Timer. Callbacks run on the countdown
// goroutine; callers serialize state mutation behind their own lock.
type Countdown struct {
	mu         sync.Mutex
	generation int
	cancel     chan struct{}
}

func NewCountdown() *Countdown {
	return &Countdown{}
}

// Start begins a countdown of durationSec seconds. Any countdown already
// running is cancelled first.
func (c *Countdown) Start(durationSec int, onTick func(remainingSec int), onComplete func()) {
	c.mu.Lock()
	c.stopLocked()
	c.generation++
	gen := c.generation
	cancel := make(chan struct{})
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(gen, durationSec, cancel, onTick, onComplete)
}

// Stop cancels the running countdown, if any. Safe to call repeatedly.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
}

// live reports whether gen is still the active countdown generation.
// Guards against a tick that was already in flight when Stop ran.
func (c *Countdown) live(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation && c.cancel != nil
}

// retire stops the countdown only if gen is still active. Returns false
// when a Stop or a newer Start already superseded it, in which case the
// completion callback must not fire.
func (c *Countdown) retire(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.cancel == nil {
		return false
	}
	c.stopLocked()
	return true
}

func (c *Countdown) run(gen, durationSec int, cancel chan struct{}, onTick func(int), onComplete func()) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := durationSec
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				if c.retire(gen) {
					onComplete()
				}
				return
			}
			if !c.live(gen) {
				return
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}
