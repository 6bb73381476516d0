package sensors

import (
	"fmt"
	"iter"
	"sync"
)

// Factory builds a concrete sensor from its descriptor. The scene is the
// already-acquired rendering scene; factories run on the render thread.
type Factory func(desc Descriptor, scene Scene) (RenderingSensor, error)

// Registry owns sensor instances: creation by descriptor, lookup by id,
// and iteration in registration order for the per-step due scan.
// Creation happens only on the render thread; the scan runs concurrently
// on the simulation thread, so access is guarded.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	byID      map[ID]RenderingSensor
	order     []RenderingSensor
}

// NewRegistry creates an empty sensor registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
		byID:      make(map[ID]RenderingSensor),
	}
}

// RegisterFactory adds a sensor factory for a kind, replacing any previous one
func (r *Registry) RegisterFactory(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Create instantiates and registers a sensor for the descriptor and returns
// the handle. Fails with ErrUnsupportedKind when the descriptor's kind is
// unspecified or no factory covers it.
func (r *Registry) Create(desc Descriptor, scene Scene) (RenderingSensor, error) {
	if desc.Kind == KindNone {
		return nil, fmt.Errorf("%w: sensor %q has no kind", ErrUnsupportedKind, desc.Name)
	}

	r.mu.RLock()
	factory, ok := r.factories[desc.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no factory for %s", ErrUnsupportedKind, desc.Kind)
	}

	s, err := factory(desc, scene)
	if err != nil {
		return nil, fmt.Errorf("sensor %q creation failed: %w", desc.Name, err)
	}
	s.SetScene(scene)

	r.mu.Lock()
	r.byID[s.ID()] = s
	r.order = append(r.order, s)
	r.mu.Unlock()

	return s, nil
}

// Sensor looks up a registered sensor by id
func (r *Registry) Sensor(id ID) (RenderingSensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Remove drops a sensor when its owning entity goes away
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, s := range r.order {
		if s.ID() == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Sensors returns a lazy, restartable sequence of registered sensors in
// registration order, for the periodic due scan.
func (r *Registry) Sensors() iter.Seq[RenderingSensor] {
	return func(yield func(RenderingSensor) bool) {
		r.mu.RLock()
		snapshot := make([]RenderingSensor, len(r.order))
		copy(snapshot, r.order)
		r.mu.RUnlock()

		for _, s := range snapshot {
			if !yield(s) {
				return
			}
		}
	}
}

// Len returns the number of registered sensors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
