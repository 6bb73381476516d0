package systems

import (
	"errors"
	"sync"
	"time"

	"github.com/addy1997/ign-gazebo/sensors"
)

var (
	// ErrShutdown is a control value, not a failure: gate operations return
	// it when they were unblocked by Stop rather than by work.
	ErrShutdown = errors.New("sensor system shutting down")

	// ErrAlreadyRunning is returned on a second Start while running
	ErrAlreadyRunning = errors.New("sensor system already running")
)

// passRequest is one unit of render work: the sensors due this step and the
// simulated time to render them at
type passRequest struct {
	active  []sensors.RenderingSensor
	simTime time.Duration
}

// renderGate is the single-flight handoff between the simulation thread and
// the render thread. At most one passRequest is outstanding; the slot stays
// occupied from publish until complete, so a publisher never overwrites an
// in-flight pass and never reorders work. It is a bounded channel of
// capacity one with back-pressure on the producer, realized as one mutex
// and a condition variable pair, plus the deferred-init latch the render
// thread parks on before the first rendering sensor exists.
type renderGate struct {
	mu       sync.Mutex
	workCond *sync.Cond // signaled when work or an init request arrives, and on shutdown
	slotCond *sync.Cond // signaled when the slot frees, and on shutdown

	pending *passRequest
	running bool
	doInit  bool
}

func newRenderGate() *renderGate {
	g := &renderGate{running: true}
	g.workCond = sync.NewCond(&g.mu)
	g.slotCond = sync.NewCond(&g.mu)
	return g
}

// publish hands a request to the render thread. Blocks while a previous
// request has not completed. Returns ErrShutdown if the gate shut down
// before the request could be placed; the caller must then assume the pass
// never happened.
func (g *renderGate) publish(req *passRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.pending != nil && g.running {
		g.slotCond.Wait()
	}
	if !g.running {
		return ErrShutdown
	}

	g.pending = req
	g.workCond.Signal()
	return nil
}

// claim blocks until a request is available or shutdown. The slot remains
// occupied until complete.
func (g *renderGate) claim() (*passRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for g.pending == nil && g.running {
		g.workCond.Wait()
	}
	if !g.running {
		return nil, ErrShutdown
	}
	return g.pending, nil
}

// complete frees the slot and wakes one waiting publisher
func (g *renderGate) complete() {
	g.mu.Lock()
	g.pending = nil
	g.mu.Unlock()
	g.slotCond.Signal()
}

// requestInit asks the render thread to create the render context
func (g *renderGate) requestInit() {
	g.mu.Lock()
	g.doInit = true
	g.mu.Unlock()
	g.workCond.Signal()
}

// waitInit blocks until an init request or shutdown arrives. Returns false
// on shutdown. The init latch is cleared so a failed init can be re-armed
// by a later requestInit.
func (g *renderGate) waitInit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for !g.doInit && g.running {
		g.workCond.Wait()
	}
	if !g.running {
		return false
	}
	g.doInit = false
	return true
}

// isRunning reports whether the gate has not been shut down
func (g *renderGate) isRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// shutdown latches the gate closed and wakes every waiter, publishers and
// claimer alike. One-way: the gate is not reusable.
func (g *renderGate) shutdown() {
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	g.workCond.Broadcast()
	g.slotCond.Broadcast()
}
