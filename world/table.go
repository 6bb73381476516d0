package world

import (
	"sync"
	"time"

	"github.com/addy1997/ign-gazebo/sensors"
)

// Table is a minimal snapshot source backed by plain maps, for demos and
// tests. Sensor descriptors added to it appear in exactly one snapshot.
type Table struct {
	mu          sync.Mutex
	poses       map[string]Pose
	unannounced []sensors.Descriptor
}

// NewTable creates an empty world table
func NewTable() *Table {
	return &Table{
		poses: make(map[string]Pose),
	}
}

// AddSensor queues a sensor descriptor for announcement in the next snapshot
func (t *Table) AddSensor(desc sensors.Descriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unannounced = append(t.unannounced, desc)
	if desc.Parent != "" {
		if _, ok := t.poses[desc.Parent]; !ok {
			t.poses[desc.Parent] = IdentityPose()
		}
	}
}

// SetPose updates a scene-node transform
func (t *Table) SetPose(name string, p Pose) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.poses[name] = p
}

// Snapshot implements sim.SnapshotSource. Pending descriptors are drained
// into the returned snapshot; poses are copied.
func (t *Table) Snapshot(simTime time.Duration) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := &Snapshot{
		SimTime: simTime,
		Poses:   make(map[string]Pose, len(t.poses)),
	}
	for name, p := range t.poses {
		snap.Poses[name] = p
	}
	if len(t.unannounced) > 0 {
		snap.NewSensors = t.unannounced
		t.unannounced = nil
	}
	return snap
}
