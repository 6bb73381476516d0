package rendering

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/world"
)

var (
	// ErrNotInitialized is returned when the render context does not exist yet
	ErrNotInitialized = errors.New("render context not initialized")

	// ErrUnknownEngine is returned when no factory matches the configured name
	ErrUnknownEngine = errors.New("unknown render engine")
)

// CreateSensorFn instantiates a sensor from a descriptor on the render
// thread, once the scene exists, and returns the sensor's display name.
type CreateSensorFn func(desc sensors.Descriptor, scene Scene) (string, error)

// Util is the render-side state holder: it resolves the configured engine,
// performs the one-time context creation, buffers world snapshots queued by
// the simulation thread, and applies them to the scene on the render
// thread. Apply also creates any sensors whose descriptors arrived since
// the last pass.
type Util struct {
	mu sync.Mutex

	engineName   string
	engine       Engine
	scene        Scene
	createSensor CreateSensorFn

	// latest queued world state, written by the simulation thread
	poses   map[string]world.Pose
	pending []sensors.Descriptor
}

// NewUtil creates a Util with no engine selected
func NewUtil() *Util {
	return &Util{
		engineName: HeadlessEngineName,
	}
}

// SetEngineName selects the render engine to initialize. Must be called
// before Init.
func (u *Util) SetEngineName(name string) {
	u.mu.Lock()
	u.engineName = name
	u.mu.Unlock()
}

// SetSensorCreation installs the callback used to instantiate sensors on
// the render thread
func (u *Util) SetSensorCreation(fn CreateSensorFn) {
	u.mu.Lock()
	u.createSensor = fn
	u.mu.Unlock()
}

// Init creates the render context and acquires the scene. Runs on the
// render thread, once. Failure leaves the Util uninitialized; callers may
// retry when conditions change.
func (u *Util) Init() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.scene != nil {
		return nil
	}

	factory, ok := GetEngine(u.engineName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, u.engineName)
	}

	engine := factory()
	if err := engine.Init(); err != nil {
		return fmt.Errorf("render engine %q init failed: %w", u.engineName, err)
	}
	scene, err := engine.Scene()
	if err != nil {
		engine.Destroy()
		return fmt.Errorf("render engine %q scene acquisition failed: %w", u.engineName, err)
	}

	u.engine = engine
	u.scene = scene
	return nil
}

// SceneReady reports whether the render context and scene exist
func (u *Util) SceneReady() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.scene != nil
}

// Scene returns the acquired scene, nil before Init succeeds
func (u *Util) Scene() Scene {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.scene
}

// QueueSnapshot records the latest world state for the next pass. Called
// from the simulation thread; cheap, never blocks on render work. Poses
// overwrite the previous queued set; sensor descriptors accumulate until
// created.
func (u *Util) QueueSnapshot(snap *world.Snapshot) {
	if snap == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	u.poses = snap.Poses
	if len(snap.NewSensors) > 0 {
		u.pending = append(u.pending, snap.NewSensors...)
	}
}

// PendingSensors returns the number of descriptors awaiting creation
func (u *Util) PendingSensors() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Apply synchronizes the scene with the latest queued snapshot: creates
// pending sensors, then updates node transforms. Runs on the render thread
// at the start of each pass.
func (u *Util) Apply() {
	u.mu.Lock()
	if u.scene == nil {
		u.mu.Unlock()
		return
	}
	scene := u.scene
	createSensor := u.createSensor
	pending := u.pending
	u.pending = nil
	poses := u.poses
	u.poses = nil
	u.mu.Unlock()

	for _, desc := range pending {
		if createSensor == nil {
			log.Printf("rendering: dropping sensor %q, no creation callback installed", desc.Name)
			continue
		}
		name, err := createSensor(desc, scene)
		if err != nil {
			// Creation failures skip the one sensor; the pass proceeds
			log.Printf("rendering: sensor %q creation failed: %v", desc.Name, err)
			continue
		}
		log.Printf("rendering: created sensor %q", name)
	}

	for name, pose := range poses {
		scene.SetNodePose(name, pose)
	}
}
