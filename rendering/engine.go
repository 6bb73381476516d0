// Package rendering provides the render-side collaborators of the sensor
// pipeline: pluggable render engines resolved by name, the scene interface,
// and Util, which owns deferred context creation and scene synchronization
// on the render thread.
package rendering

import (
	"sync"

	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/world"
)

// Scene is the render-thread view of the scene graph. PreRender is the
// batched graph traversal executed once per pass.
type Scene interface {
	sensors.Scene

	// SetNodePose creates or moves a scene node
	SetNodePose(name string, pose world.Pose)

	// NodePose returns a node transform, false if the node is unknown
	NodePose(name string) (world.Pose, bool)

	// NodeCount returns the number of scene nodes
	NodeCount() int
}

// Engine is a rendering backend. Init and Scene run on the render thread;
// backends are generally not safe to drive from more than one thread.
type Engine interface {
	Name() string

	// Init creates the render context. Expensive; called once.
	Init() error

	// Scene returns the engine's scene after Init succeeded
	Scene() (Scene, error)

	// Destroy releases the render context
	Destroy()
}

// EngineFactory builds an engine instance
type EngineFactory func() Engine

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]EngineFactory)
)

// RegisterEngine adds an engine factory by name
func RegisterEngine(name string, factory EngineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = factory
}

// GetEngine retrieves an engine factory by name
func GetEngine(name string) (EngineFactory, bool) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	f, ok := engines[name]
	return f, ok
}

// EngineNames returns all registered engine names
func EngineNames() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	return names
}
