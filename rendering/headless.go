package rendering

import (
	"sync"
	"sync/atomic"

	"github.com/addy1997/ign-gazebo/world"
)

// HeadlessEngineName is the default engine used by demos and tests
const HeadlessEngineName = "headless"

func init() {
	RegisterEngine(HeadlessEngineName, func() Engine { return &headlessEngine{} })
}

// headlessEngine is a render backend with no GPU behind it: a node table
// and a pre-render counter. It keeps the pipeline runnable anywhere and
// gives tests something observable.
type headlessEngine struct {
	initialized atomic.Bool
	scene       *HeadlessScene
}

func (e *headlessEngine) Name() string { return HeadlessEngineName }

func (e *headlessEngine) Init() error {
	if e.initialized.CompareAndSwap(false, true) {
		e.scene = NewHeadlessScene()
	}
	return nil
}

func (e *headlessEngine) Scene() (Scene, error) {
	if !e.initialized.Load() {
		return nil, ErrNotInitialized
	}
	return e.scene, nil
}

func (e *headlessEngine) Destroy() {
	e.initialized.Store(false)
	e.scene = nil
}

// HeadlessScene is the scene implementation of the headless engine
type HeadlessScene struct {
	mu         sync.RWMutex
	nodes      map[string]world.Pose
	preRenders atomic.Uint64
}

// NewHeadlessScene creates an empty headless scene
func NewHeadlessScene() *HeadlessScene {
	return &HeadlessScene{
		nodes: make(map[string]world.Pose),
	}
}

// PreRender implements sensors.Scene
func (s *HeadlessScene) PreRender() {
	s.preRenders.Add(1)
}

// PreRenders returns the number of pre-render passes executed
func (s *HeadlessScene) PreRenders() uint64 {
	return s.preRenders.Load()
}

// SetNodePose implements Scene
func (s *HeadlessScene) SetNodePose(name string, pose world.Pose) {
	s.mu.Lock()
	s.nodes[name] = pose
	s.mu.Unlock()
}

// NodePose implements Scene
func (s *HeadlessScene) NodePose(name string) (world.Pose, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.nodes[name]
	return p, ok
}

// NodeCount implements Scene
func (s *HeadlessScene) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
