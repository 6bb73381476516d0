package rendering

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/world"
)

func TestUtilInitUnknownEngine(t *testing.T) {
	u := NewUtil()
	u.SetEngineName("ogre2") // not registered in this build

	err := u.Init()
	if !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	if u.SceneReady() {
		t.Error("scene reported ready after failed init")
	}
}

func TestUtilInitHeadless(t *testing.T) {
	u := NewUtil()
	u.SetEngineName(HeadlessEngineName)

	if u.SceneReady() {
		t.Fatal("scene ready before init")
	}
	if err := u.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !u.SceneReady() {
		t.Fatal("scene not ready after init")
	}
	if u.Scene() == nil {
		t.Fatal("nil scene after init")
	}

	// Init is one-time; repeating it is a no-op
	scene := u.Scene()
	if err := u.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if u.Scene() != scene {
		t.Error("second init replaced the scene")
	}
}

func TestUtilAppliesQueuedPoses(t *testing.T) {
	u := NewUtil()
	if err := u.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	pose := world.Pose{Position: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.QuatIdent()}
	u.QueueSnapshot(&world.Snapshot{
		Poses: map[string]world.Pose{"mast": pose},
	})
	u.Apply()

	got, ok := u.Scene().NodePose("mast")
	if !ok {
		t.Fatal("node missing after apply")
	}
	if got.Position != pose.Position {
		t.Errorf("pose position = %v, want %v", got.Position, pose.Position)
	}
}

func TestUtilLatestPosesWin(t *testing.T) {
	u := NewUtil()
	if err := u.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	u.QueueSnapshot(&world.Snapshot{Poses: map[string]world.Pose{
		"mast": {Position: mgl32.Vec3{1, 0, 0}},
	}})
	u.QueueSnapshot(&world.Snapshot{Poses: map[string]world.Pose{
		"mast": {Position: mgl32.Vec3{2, 0, 0}},
	}})
	u.Apply()

	got, _ := u.Scene().NodePose("mast")
	if got.Position.X() != 2 {
		t.Errorf("stale pose applied: %v", got.Position)
	}
}

func TestUtilCreatesPendingSensors(t *testing.T) {
	u := NewUtil()

	var mu sync.Mutex
	var created []string
	u.SetSensorCreation(func(desc sensors.Descriptor, scene Scene) (string, error) {
		if scene == nil {
			t.Error("creation callback received nil scene")
		}
		mu.Lock()
		created = append(created, desc.Name)
		mu.Unlock()
		return desc.Name, nil
	})

	// Descriptors queued before init must survive until the first apply
	u.QueueSnapshot(&world.Snapshot{NewSensors: []sensors.Descriptor{
		{Name: "early", Kind: sensors.KindCamera},
	}})
	if got := u.PendingSensors(); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}

	if err := u.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	u.QueueSnapshot(&world.Snapshot{NewSensors: []sensors.Descriptor{
		{Name: "late", Kind: sensors.KindGpuLidar},
	}})

	u.Apply()

	mu.Lock()
	defer mu.Unlock()
	if len(created) != 2 || created[0] != "early" || created[1] != "late" {
		t.Errorf("created = %v, want [early late]", created)
	}
	if u.PendingSensors() != 0 {
		t.Error("pending descriptors not drained by apply")
	}
}

func TestUtilCreationFailureSkipsSensorOnly(t *testing.T) {
	u := NewUtil()
	if err := u.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	var created []string
	u.SetSensorCreation(func(desc sensors.Descriptor, _ Scene) (string, error) {
		if desc.Kind == sensors.KindNone {
			return "", fmt.Errorf("%w: %s", sensors.ErrUnsupportedKind, desc.Name)
		}
		created = append(created, desc.Name)
		return desc.Name, nil
	})

	u.QueueSnapshot(&world.Snapshot{NewSensors: []sensors.Descriptor{
		{Name: "broken", Kind: sensors.KindNone},
		{Name: "ok", Kind: sensors.KindCamera},
	}})
	u.Apply()

	if len(created) != 1 || created[0] != "ok" {
		t.Errorf("created = %v, want [ok]", created)
	}
}

func TestEngineRegistry(t *testing.T) {
	name := "test-engine"
	RegisterEngine(name, func() Engine { return &headlessEngine{} })

	if _, ok := GetEngine(name); !ok {
		t.Fatal("registered engine not found")
	}
	if _, ok := GetEngine("nonexistent"); ok {
		t.Fatal("lookup of unregistered engine succeeded")
	}

	found := false
	for _, n := range EngineNames() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Error("engine missing from name listing")
	}
}
