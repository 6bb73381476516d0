// Package world defines the narrow view of simulation state the sensor
// pipeline consumes each step: newly discovered sensor descriptors and the
// latest scene-node poses. The entity-component storage producing it lives
// outside this module.
package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/addy1997/ign-gazebo/sensors"
)

// Pose is a scene-node transform
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// IdentityPose returns a zero translation, identity rotation pose
func IdentityPose() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// Snapshot is the per-step state handed to systems. It is immutable once
// published; producers allocate a fresh one per step.
type Snapshot struct {
	SimTime time.Duration

	// NewSensors are descriptors discovered since the previous step,
	// each announced exactly once
	NewSensors []sensors.Descriptor

	// Poses holds the current transform of every tracked scene node
	Poses map[string]Pose
}
