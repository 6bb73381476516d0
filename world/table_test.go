package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/addy1997/ign-gazebo/sensors"
)

func TestTableAnnouncesSensorsOnce(t *testing.T) {
	table := NewTable()
	table.AddSensor(sensors.Descriptor{Name: "cam", Kind: sensors.KindCamera, Parent: "chassis"})

	first := table.Snapshot(0)
	if len(first.NewSensors) != 1 || first.NewSensors[0].Name != "cam" {
		t.Fatalf("first snapshot NewSensors = %v", first.NewSensors)
	}

	second := table.Snapshot(1)
	if len(second.NewSensors) != 0 {
		t.Errorf("descriptor announced twice: %v", second.NewSensors)
	}

	// Parent node exists with an identity pose
	if _, ok := first.Poses["chassis"]; !ok {
		t.Error("parent node missing from snapshot")
	}
}

func TestTableSnapshotCopiesPoses(t *testing.T) {
	table := NewTable()
	table.SetPose("mast", Pose{Position: mgl32.Vec3{1, 0, 0}})

	snap := table.Snapshot(0)
	table.SetPose("mast", Pose{Position: mgl32.Vec3{9, 0, 0}})

	if snap.Poses["mast"].Position.X() != 1 {
		t.Error("snapshot poses are not isolated from later writes")
	}
}
