// Package systems contains simulation systems. Sensors is the
// sensor-rendering scheduler: it decouples the stepping loop from a
// dedicated render thread through a single-flight gate, so the simulation
// never performs rendering work and never waits for a pass to finish, only
// for the handoff slot to free.
package systems

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/addy1997/ign-gazebo/core"
	"github.com/addy1997/ign-gazebo/rendering"
	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/sim"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/world"
)

// Sensors schedules sensor rendering. The simulation thread drives
// PostUpdate; one render goroutine owns context creation, scene sync and
// sensor publish. Render-context creation is deferred until the first
// sensor needing one appears, so sensorless simulations never pay for it.
type Sensors struct {
	registry *sensors.Registry
	mask     *sensors.UpdateMask
	util     *rendering.Util
	gate     *renderGate

	initialized atomic.Bool
	running     atomic.Bool
	needInit    atomic.Bool // a sensor requiring a render context has appeared
	wg          sync.WaitGroup

	statPasses      *atomic.Int64
	statPublished   *atomic.Int64
	statErrors      *atomic.Int64
	statMasked      *atomic.Int64
	statSensorCount *atomic.Int64
	statInitialized *atomic.Bool
}

var _ sim.System = (*Sensors)(nil)

// NewSensors creates a stopped sensor system. statusReg may be nil.
func NewSensors(statusReg *status.Registry) *Sensors {
	if statusReg == nil {
		statusReg = status.NewRegistry()
	}
	s := &Sensors{
		registry: sensors.NewRegistry(),
		mask:     sensors.NewUpdateMask(),
		util:     rendering.NewUtil(),
		gate:     newRenderGate(),

		statPasses:      statusReg.Ints.Get("sensors.passes"),
		statPublished:   statusReg.Ints.Get("sensors.published"),
		statErrors:      statusReg.Ints.Get("sensors.errors"),
		statMasked:      statusReg.Ints.Get("sensors.masked"),
		statSensorCount: statusReg.Ints.Get("sensors.count"),
		statInitialized: statusReg.Bools.Get("sensors.initialized"),
	}
	s.util.SetSensorCreation(s.createSensor)
	return s
}

// Registry exposes the sensor registry for factory registration and lookup
func (s *Sensors) Registry() *sensors.Registry { return s.registry }

// Mask exposes the update-rate mask, read-only use intended
func (s *Sensors) Mask() *sensors.UpdateMask { return s.mask }

// Configure selects the render engine and, optionally, overrides the
// sensor-creation callback (the default instantiates through the registry).
// Must be called before Start.
func (s *Sensors) Configure(engineName string, createSensor rendering.CreateSensorFn) {
	s.util.SetEngineName(engineName)
	if createSensor != nil {
		s.util.SetSensorCreation(createSensor)
	}
}

// Start spawns the render worker. Calling Start while running is a
// programming error and returns ErrAlreadyRunning. The system is not
// restartable after Stop.
func (s *Sensors) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if !s.gate.isRunning() {
		// Stopped earlier; the shutdown latch is one-way
		s.running.Store(false)
		return ErrShutdown
	}

	s.wg.Add(1)
	core.Go(s.renderThread)
	return nil
}

// Stop shuts the gate, wakes every waiter and joins the render worker.
// Idempotent; safe from teardown paths even mid-render. A request that was
// published but never rendered is abandoned without side effects.
func (s *Sensors) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.gate.shutdown()
		s.wg.Wait()
	}
}

// Running reports whether Start has been called and Stop has not
func (s *Sensors) Running() bool { return s.running.Load() }

// Initialized reports whether the render context exists
func (s *Sensors) Initialized() bool { return s.initialized.Load() }

// PostUpdate implements sim.System. It queues the world snapshot for the
// render thread, requests deferred init once sensor descriptors exist,
// scans the registry for due, unmasked sensors and publishes the active
// set. It blocks only when the previous pass has not completed.
func (s *Sensors) PostUpdate(info sim.StepInfo, snap *world.Snapshot) {
	if info.Paused {
		return
	}

	// Snapshots are queued even before init so descriptors of the very
	// first sensors are retained for the render thread to create
	s.util.QueueSnapshot(snap)

	if !s.initialized.Load() {
		// Context creation is armed only by kinds that render; a stray
		// kind-less descriptor must not pay for a render context
		if !s.needInit.Load() && snap != nil {
			for _, desc := range snap.NewSensors {
				if desc.Kind != sensors.KindNone {
					s.needInit.Store(true)
					break
				}
			}
		}
		if s.needInit.Load() {
			s.gate.requestInit()
		}
		return
	}
	if !s.running.Load() {
		return
	}

	t := info.SimTime
	var active []sensors.RenderingSensor
	for sensor := range s.registry.Sensors() {
		if s.mask.Suppressed(sensor.ID(), t) {
			s.statMasked.Add(1)
			continue
		}
		if sensor.NextUpdateDue() <= t {
			active = append(active, sensor)
		}
	}

	// Pending sensors force a pass even with nothing due, so creation is
	// not starved while every live sensor is masked
	if len(active) == 0 && s.util.PendingSensors() == 0 {
		return
	}

	if err := s.gate.publish(&passRequest{active: active, simTime: t}); err != nil {
		// Shut down while waiting for the slot; the pass never happened
		return
	}
}

// renderThread is the top-level render worker loop
func (s *Sensors) renderThread() {
	defer s.wg.Done()

	log.Printf("systems: render thread started")
	s.waitForInit()

	for s.gate.isRunning() {
		s.runOnce()
	}
	log.Printf("systems: render thread stopped")
}

// waitForInit parks until the first rendering sensor appears, then performs
// the one-time render context creation. Init failure leaves the system
// uninitialized; the next step with pending sensors re-arms the request.
func (s *Sensors) waitForInit() {
	for !s.initialized.Load() && s.gate.isRunning() {
		if !s.gate.waitInit() {
			return
		}

		log.Printf("systems: initializing render context")
		if err := s.util.Init(); err != nil {
			log.Printf("systems: render context init failed, staying uninitialized: %v", err)
			continue
		}
		s.initialized.Store(true)
		s.statInitialized.Store(true)
	}
}

// runOnce executes one pass: claim, scene sync, batched pre-render, sensor
// publish, mask update, complete.
func (s *Sensors) runOnce() {
	req, err := s.gate.claim()
	if err != nil {
		return
	}

	s.util.Apply()

	if len(req.active) > 0 {
		// One scene graph traversal per pass, regardless of sensor count
		s.util.Scene().PreRender()

		for _, sensor := range req.active {
			if err := sensor.Update(req.simTime); err != nil {
				// Isolate the failing sensor, the batch continues
				s.statErrors.Add(1)
				log.Printf("systems: sensor %q update failed: %v", sensor.Name(), err)
				continue
			}
			s.statPublished.Add(1)
		}

		for _, sensor := range req.active {
			s.mask.Mask(sensor.ID(), req.simTime, sensor.UpdateRate())
		}
	}

	s.statPasses.Add(1)
	s.gate.complete()
}

// createSensor instantiates a sensor through the registry on the render
// thread and reports its display name
func (s *Sensors) createSensor(desc sensors.Descriptor, scene rendering.Scene) (string, error) {
	sensor, err := s.registry.Create(desc, scene)
	if err != nil {
		return "", err
	}
	s.statSensorCount.Store(int64(s.registry.Len()))
	return sensor.Name(), nil
}
