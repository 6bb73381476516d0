package sensors

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubScene struct{ preRenders int }

func (s *stubScene) PreRender() { s.preRenders++ }

type stubSensor struct {
	Base
}

func (s *stubSensor) Update(t time.Duration) error {
	s.Advance(t)
	return nil
}

func stubFactory(desc Descriptor, _ Scene) (RenderingSensor, error) {
	return &stubSensor{Base: NewBase(desc)}, nil
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFactory(KindCamera, stubFactory)
	r.RegisterFactory(KindGpuLidar, stubFactory)
	return r
}

func TestCreateRejectsKindNone(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Create(Descriptor{Name: "broken"}, &stubScene{})
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("failed creation registered a sensor")
	}
}

func TestCreateRejectsUnknownFactory(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Create(Descriptor{Name: "depth", Kind: KindDepthCamera}, &stubScene{})
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestCreateAttachesScene(t *testing.T) {
	r := newTestRegistry()
	scene := &stubScene{}

	s, err := r.Create(Descriptor{Name: "cam", Kind: KindCamera, UpdateRate: 30}, scene)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s.(*stubSensor).Scene() != Scene(scene) {
		t.Error("scene was not attached on creation")
	}
	if s.Name() != "cam" || s.Kind() != KindCamera || s.UpdateRate() != 30 {
		t.Errorf("descriptor not carried over: %s %s %v", s.Name(), s.Kind(), s.UpdateRate())
	}
}

func TestLookupUnregistered(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Sensor(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupRegistered(t *testing.T) {
	r := newTestRegistry()

	created, err := r.Create(Descriptor{Name: "cam", Kind: KindCamera}, &stubScene{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := r.Sensor(created.ID())
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found != created {
		t.Error("lookup returned a different sensor")
	}
}

func TestIterationFollowsRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	scene := &stubScene{}

	names := []string{"a", "b", "c", "d"}
	for _, name := range names {
		if _, err := r.Create(Descriptor{Name: name, Kind: KindCamera}, scene); err != nil {
			t.Fatalf("create %q failed: %v", name, err)
		}
	}

	var got []string
	for s := range r.Sensors() {
		got = append(got, s.Name())
	}
	if len(got) != len(names) {
		t.Fatalf("iterated %d sensors, want %d", len(got), len(names))
	}
	for i, name := range names {
		if got[i] != name {
			t.Fatalf("position %d: got %q, want %q", i, got[i], name)
		}
	}
}

func TestIterationIsRestartable(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"a", "b", "c"} {
		r.Create(Descriptor{Name: name, Kind: KindCamera}, &stubScene{})
	}

	seq := r.Sensors()

	// Partial first traversal, then a full restart
	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}

	count = 0
	for range seq {
		count++
	}
	if count != 3 {
		t.Errorf("restarted traversal saw %d sensors, want 3", count)
	}
}

func TestRemove(t *testing.T) {
	r := newTestRegistry()

	a, _ := r.Create(Descriptor{Name: "a", Kind: KindCamera}, &stubScene{})
	b, _ := r.Create(Descriptor{Name: "b", Kind: KindCamera}, &stubScene{})

	r.Remove(a.ID())

	if _, err := r.Sensor(a.ID()); !errors.Is(err, ErrNotFound) {
		t.Error("removed sensor still resolvable")
	}
	if _, err := r.Sensor(b.ID()); err != nil {
		t.Errorf("unrelated sensor lost: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}

	// Removing twice is a no-op
	r.Remove(a.ID())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"camera", KindCamera, false},
		{"depth_camera", KindDepthCamera, false},
		{"gpu_lidar", KindGpuLidar, false},
		{"rgbd_camera", KindRgbdCamera, false},
		{" Camera ", KindCamera, false},
		{"", KindNone, true},
		{"sonar", KindNone, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedKind) {
				t.Errorf("ParseKind(%q): expected ErrUnsupportedKind, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
