package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/addy1997/ign-gazebo/core"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/world"
)

// StepInfo describes one simulation step
type StepInfo struct {
	SimTime   time.Duration
	DT        time.Duration
	Paused    bool
	Iteration uint64
}

// System receives each step after the world snapshot is taken. A system may
// block (the sensor system does, under render back-pressure); the loop
// stalls rather than skip it.
type System interface {
	PostUpdate(info StepInfo, snap *world.Snapshot)
}

// SnapshotSource produces the per-step world snapshot
type SnapshotSource interface {
	Snapshot(simTime time.Duration) *world.Snapshot
}

// Loop advances simulation at a fixed tick on its own goroutine.
// Handles pause-aware scheduling without busy-wait; drift is corrected by
// re-anchoring the deadline when the loop falls more than two ticks behind.
type Loop struct {
	clock   *Clock
	tick    time.Duration
	source  SnapshotSource
	systems []System

	nextDeadline time.Duration // simulated-time deadline of the next step

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	iteration atomic.Uint64
	statSteps *atomic.Int64
}

// NewLoop creates a stopped loop. Systems are registered before Start and
// stepped in registration order.
func NewLoop(clock *Clock, tick time.Duration, source SnapshotSource, statusReg *status.Registry) *Loop {
	l := &Loop{
		clock:    clock,
		tick:     tick,
		source:   source,
		stopChan: make(chan struct{}),
	}
	if statusReg != nil {
		l.statSteps = statusReg.Ints.Get("sim.steps")
	}
	return l
}

// AddSystem registers a system, must be called before Start
func (l *Loop) AddSystem(s System) {
	l.systems = append(l.systems, s)
}

// Start begins the stepping loop
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		core.Go(l.run)
	}
}

// Stop halts the loop and waits for the current step to finish
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		if l.running.CompareAndSwap(true, false) {
			close(l.stopChan)
			l.wg.Wait()
		}
	})
}

// Iterations returns the number of completed steps
func (l *Loop) Iterations() uint64 {
	return l.iteration.Load()
}

func (l *Loop) run() {
	defer l.wg.Done()

	l.nextDeadline = l.clock.Now() + l.tick

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		default:
		}

		var sleep time.Duration

		if l.clock.IsPaused() {
			// Longer sleep while paused to save CPU
			sleep = l.tick * 2
		} else {
			now := l.clock.Now()
			if now >= l.nextDeadline {
				l.step(now)

				l.nextDeadline += l.tick
				if now-l.nextDeadline > l.tick*2 {
					// Fell behind, re-anchor instead of bursting
					l.nextDeadline = now + l.tick
				}
				sleep = l.nextDeadline - l.clock.Now()
			} else {
				sleep = l.nextDeadline - now
			}
		}

		if sleep > 0 {
			timer.Reset(sleep)
			select {
			case <-timer.C:
			case <-l.stopChan:
				return
			}
		}
	}
}

func (l *Loop) step(now time.Duration) {
	info := StepInfo{
		SimTime:   now,
		DT:        l.tick,
		Paused:    false,
		Iteration: l.iteration.Load(),
	}

	var snap *world.Snapshot
	if l.source != nil {
		snap = l.source.Snapshot(now)
	}

	for _, s := range l.systems {
		s.PostUpdate(info, snap)
	}

	n := l.iteration.Add(1)
	if l.statSteps != nil {
		l.statSteps.Store(int64(n))
	}
}
