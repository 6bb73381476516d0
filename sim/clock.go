// Package sim drives simulation stepping: a pausable simulated clock and a
// fixed-tick loop that feeds per-step snapshots to registered systems.
package sim

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock provides pausable simulated time: a monotonically advancing logical
// clock, expressed as a duration since simulation start. Wall time spent
// paused does not advance it.
type Clock struct {
	mu sync.RWMutex

	start time.Time // wall time at creation

	isPaused    atomic.Bool
	pauseStart  time.Time     // wall time current pause began
	totalPaused time.Duration // cumulative pause duration
}

// NewClock creates a running clock at simulated time zero
func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

// Now returns the current simulated time
func (c *Clock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isPaused.Load() {
		// Frozen at the pause point
		return c.pauseStart.Sub(c.start) - c.totalPaused
	}
	return time.Since(c.start) - c.totalPaused
}

// Pause stops simulated time advancement
func (c *Clock) Pause() {
	if c.isPaused.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.pauseStart = time.Now()
		c.mu.Unlock()
	}
}

// Resume continues simulated time advancement
func (c *Clock) Resume() {
	if c.isPaused.CompareAndSwap(true, false) {
		c.mu.Lock()
		if !c.pauseStart.IsZero() {
			c.totalPaused += time.Since(c.pauseStart)
			c.pauseStart = time.Time{}
		}
		c.mu.Unlock()
	}
}

// IsPaused returns the current pause state
func (c *Clock) IsPaused() bool {
	return c.isPaused.Load()
}
