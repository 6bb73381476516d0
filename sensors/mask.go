package sensors

import (
	"sync"
	"time"
)

// maskFactor keeps masked sensors eligible slightly before their nominal
// period elapses, so step jitter does not make a sensor perpetually miss
// its deadline.
const maskFactor = 0.9

// UpdateMask suppresses re-queuing of sensors that were part of a recent
// render pass. Each entry is a one-shot simulated-time deadline; entries
// are evicted lazily when the deadline is reached.
//
// The mask has its own lock, independent of the render gate, so the due
// scan never contends with gate synchronization.
type UpdateMask struct {
	mu        sync.Mutex
	deadlines map[ID]time.Duration
}

// NewUpdateMask creates an empty mask
func NewUpdateMask() *UpdateMask {
	return &UpdateMask{
		deadlines: make(map[ID]time.Duration),
	}
}

// Mask suppresses the sensor until now + 0.9/rate. Called by the render
// worker for every sensor included in a pass.
func (m *UpdateMask) Mask(id ID, now time.Duration, rate float64) {
	if rate <= 0 {
		return
	}
	delta := time.Duration(maskFactor / rate * float64(time.Second))

	m.mu.Lock()
	m.deadlines[id] = now + delta
	m.mu.Unlock()
}

// Suppressed reports whether the sensor must be excluded from the active
// set at simulated time now. An entry whose deadline has been reached is
// evicted and no longer suppresses.
func (m *UpdateMask) Suppressed(id ID, now time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline, ok := m.deadlines[id]
	if !ok {
		return false
	}
	if now >= deadline {
		delete(m.deadlines, id)
		return false
	}
	return true
}

// Deadline returns the suppression deadline for a sensor, if any
func (m *UpdateMask) Deadline(id ID) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deadlines[id]
	return d, ok
}

// Len returns the number of currently masked sensors
func (m *UpdateMask) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deadlines)
}
