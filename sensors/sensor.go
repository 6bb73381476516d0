// Package sensors owns sensor handles and their update scheduling state:
// the registry of live rendering sensors and the update-rate mask that
// throttles how often each one is re-queued for a render pass.
package sensors

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedKind is returned when a descriptor names no usable sensor kind
	ErrUnsupportedKind = errors.New("unsupported sensor kind")

	// ErrNotFound is returned on lookup of an unregistered sensor id
	ErrNotFound = errors.New("sensor not found")
)

// ID uniquely identifies a registered sensor
type ID = uuid.UUID

// Kind enumerates the sensor types that require a render context
type Kind int

const (
	KindNone Kind = iota
	KindCamera
	KindDepthCamera
	KindGpuLidar
	KindRgbdCamera
)

// String returns the config-file name of the kind
func (k Kind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindDepthCamera:
		return "depth_camera"
	case KindGpuLidar:
		return "gpu_lidar"
	case KindRgbdCamera:
		return "rgbd_camera"
	default:
		return "none"
	}
}

// ParseKind resolves a config-file kind name
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "camera":
		return KindCamera, nil
	case "depth_camera":
		return KindDepthCamera, nil
	case "gpu_lidar":
		return KindGpuLidar, nil
	case "rgbd_camera":
		return KindRgbdCamera, nil
	default:
		return KindNone, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// Descriptor is the creation request for a sensor, produced by the world
// scan and consumed on the render thread when the sensor is instantiated
type Descriptor struct {
	Name       string
	Kind       Kind
	UpdateRate float64 // Hz
	Parent     string  // name of the scene node the sensor is attached to
}

// Scene is the sensor-facing view of the rendering scene. Sensors treat it
// as opaque; the render worker owns the batched pre-render pass, so sensor
// implementations must not traverse the scene graph themselves.
type Scene interface {
	PreRender()
}

// RenderingSensor is a sensor that generates its data from the rendering
// scene. All methods except UpdateRate and NextUpdateDue are called only on
// the render thread.
type RenderingSensor interface {
	ID() ID
	Name() string
	Kind() Kind

	// UpdateRate is the nominal data generation rate in Hz
	UpdateRate() float64

	// NextUpdateDue is the simulated time at which the sensor wants its
	// next update. A sensor is due when this is <= the current step time.
	NextUpdateDue() time.Duration

	// Update generates and publishes sensor data for the given simulated
	// time. A non-nil error skips this sensor only; the rest of the pass
	// proceeds.
	Update(t time.Duration) error

	// SetScene attaches the rendering scene the sensor draws from
	SetScene(scene Scene)
}

// Base carries the bookkeeping shared by RenderingSensor implementations.
// Embed it and implement Update, calling Advance from there.
// nextDue is atomic: the simulation thread polls it during the due scan
// while the render thread advances it mid-pass.
type Base struct {
	id      ID
	name    string
	kind    Kind
	rate    float64
	nextDue int64 // simulated nanoseconds, atomic access only
	scene   Scene
}

// NewBase initializes sensor bookkeeping from a descriptor.
// The sensor is due immediately (nextDue zero).
func NewBase(desc Descriptor) Base {
	return Base{
		id:   uuid.New(),
		name: desc.Name,
		kind: desc.Kind,
		rate: desc.UpdateRate,
	}
}

func (b *Base) ID() ID                       { return b.id }
func (b *Base) Name() string                 { return b.name }
func (b *Base) Kind() Kind                   { return b.kind }
func (b *Base) UpdateRate() float64          { return b.rate }
func (b *Base) NextUpdateDue() time.Duration { return time.Duration(atomic.LoadInt64(&b.nextDue)) }
func (b *Base) SetScene(scene Scene)         { b.scene = scene }

// Scene returns the attached rendering scene, nil before attachment
func (b *Base) Scene() Scene { return b.scene }

// Advance schedules the next update one nominal period after t.
// Call from Update after data generation.
func (b *Base) Advance(t time.Duration) {
	if b.rate <= 0 {
		atomic.StoreInt64(&b.nextDue, int64(t))
		return
	}
	atomic.StoreInt64(&b.nextDue, int64(t+time.Duration(float64(time.Second)/b.rate)))
}
