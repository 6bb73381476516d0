// sensortop runs an embedded simulation and shows live sensor-rendering
// activity in the terminal: per-sensor cadence, mask windows and pass
// counters.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/addy1997/ign-gazebo/core"
	"github.com/addy1997/ign-gazebo/rendering"
	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/sim"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/systems"
	"github.com/addy1997/ign-gazebo/world"
)

var (
	debugFlag = flag.Bool("debug", false, "Log to logs/sensortop.log")
	tickFlag  = flag.Duration("tick", 10*time.Millisecond, "Simulation tick interval")
)

// demo sensor set: mixed rates so mask windows are visible on screen
var demoSensors = []sensors.Descriptor{
	{Name: "front_camera", Kind: sensors.KindCamera, UpdateRate: 30, Parent: "chassis"},
	{Name: "rear_camera", Kind: sensors.KindCamera, UpdateRate: 15, Parent: "chassis"},
	{Name: "depth_camera", Kind: sensors.KindDepthCamera, UpdateRate: 10, Parent: "mast"},
	{Name: "lidar", Kind: sensors.KindGpuLidar, UpdateRate: 5, Parent: "mast"},
	{Name: "rgbd", Kind: sensors.KindRgbdCamera, UpdateRate: 2, Parent: "arm"},
}

func main() {
	// Panic recovery: restore the terminal before the stack trace prints
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n\x1b[31mSENSORTOP CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	// Worker goroutines panic through here; reset the terminal first
	core.SetCrashHandler(func(r any) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mSENSORTOP CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		os.Exit(1)
	})

	statusReg := status.NewRegistry()

	system := systems.NewSensors(statusReg)
	system.Configure(rendering.HeadlessEngineName, nil)

	published := &atomic.Uint64{}
	factory := sensors.CounterFactory(func(string, time.Duration) { published.Add(1) })
	for _, kind := range []sensors.Kind{
		sensors.KindCamera, sensors.KindDepthCamera,
		sensors.KindGpuLidar, sensors.KindRgbdCamera,
	} {
		system.Registry().RegisterFactory(kind, factory)
	}

	table := world.NewTable()
	for _, desc := range demoSensors {
		table.AddSensor(desc)
	}

	clock := sim.NewClock()
	loop := sim.NewLoop(clock, *tickFlag, table, statusReg)
	loop.AddSystem(system)
	loop.AddSystem(&orbitSystem{table: table})

	if err := system.Start(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "sensortop: %v\n", err)
		os.Exit(1)
	}
	loop.Start()
	defer func() {
		system.Stop()
		loop.Stop()
	}()

	eventChan := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	redraw := time.NewTicker(100 * time.Millisecond)
	defer redraw.Stop()

	ui := newDashboard(screen, statusReg, system, clock)
	for {
		select {
		case ev := <-eventChan:
			switch tev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case tev.Key() == tcell.KeyEscape || tev.Rune() == 'q':
					return
				case tev.Rune() == ' ':
					if clock.IsPaused() {
						clock.Resume()
					} else {
						clock.Pause()
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-redraw.C:
			ui.draw()
		}
	}
}

// orbitSystem moves the demo scene nodes so pose sync has something to do
type orbitSystem struct {
	table *world.Table
}

func (o *orbitSystem) PostUpdate(info sim.StepInfo, _ *world.Snapshot) {
	angle := info.SimTime.Seconds()
	o.table.SetPose("chassis", world.Pose{
		Position: mgl32.Vec3{float32(2 * math.Cos(angle)), float32(2 * math.Sin(angle)), 0},
		Rotation: mgl32.QuatRotate(float32(angle), mgl32.Vec3{0, 0, 1}),
	})
}
