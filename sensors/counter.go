package sensors

import (
	"sync/atomic"
	"time"
)

// PublishFn receives generated sensor data. Transport and encoding are the
// caller's concern.
type PublishFn func(name string, t time.Duration)

// Counter is a minimal RenderingSensor for demos and wiring tests: each
// update increments a frame counter and invokes an optional publish hook.
// Real deployments register factories for concrete camera/lidar sensors.
type Counter struct {
	Base
	publish PublishFn

	frames  atomic.Uint64
	lastRun atomic.Int64 // simulated nanoseconds of last update
}

// NewCounter creates a counter sensor. publish may be nil.
func NewCounter(desc Descriptor, publish PublishFn) *Counter {
	return &Counter{
		Base:    NewBase(desc),
		publish: publish,
	}
}

// CounterFactory adapts NewCounter to the registry Factory signature
func CounterFactory(publish PublishFn) Factory {
	return func(desc Descriptor, scene Scene) (RenderingSensor, error) {
		return NewCounter(desc, publish), nil
	}
}

// Update implements RenderingSensor
func (c *Counter) Update(t time.Duration) error {
	c.frames.Add(1)
	c.lastRun.Store(int64(t))
	if c.publish != nil {
		c.publish(c.Name(), t)
	}
	c.Advance(t)
	return nil
}

// Frames returns the number of updates performed
func (c *Counter) Frames() uint64 { return c.frames.Load() }

// LastUpdate returns the simulated time of the most recent update
func (c *Counter) LastUpdate() time.Duration { return time.Duration(c.lastRun.Load()) }
