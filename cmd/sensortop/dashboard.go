package main

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/sim"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/systems"
)

var (
	styleDefault = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleMasked  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePaused  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorRed)
)

type dashboard struct {
	screen tcell.Screen
	system *systems.Sensors
	clock  *sim.Clock

	// metric pointers cached once, read every frame
	statPasses    *atomic.Int64
	statPublished *atomic.Int64
	statMasked    *atomic.Int64
	statErrors    *atomic.Int64
	statSteps     *atomic.Int64
}

func newDashboard(screen tcell.Screen, statusReg *status.Registry, system *systems.Sensors, clock *sim.Clock) *dashboard {
	return &dashboard{
		screen:        screen,
		system:        system,
		clock:         clock,
		statPasses:    statusReg.Ints.Get("sensors.passes"),
		statPublished: statusReg.Ints.Get("sensors.published"),
		statMasked:    statusReg.Ints.Get("sensors.masked"),
		statErrors:    statusReg.Ints.Get("sensors.errors"),
		statSteps:     statusReg.Ints.Get("sim.steps"),
	}
}

func (d *dashboard) draw() {
	d.screen.Clear()
	now := d.clock.Now()

	header := fmt.Sprintf(" sensortop  sim %8.3fs  steps %-8d passes %-8d published %-8d masked %-8d errors %d",
		now.Seconds(), d.statSteps.Load(), d.statPasses.Load(),
		d.statPublished.Load(), d.statMasked.Load(), d.statErrors.Load())
	d.puts(0, 0, header, styleHeader)

	if d.clock.IsPaused() {
		d.puts(len(header)+2, 0, "[PAUSED]", stylePaused)
	}
	if !d.system.Initialized() {
		d.puts(1, 1, "render context: waiting for first rendering sensor", styleMasked)
	}

	d.puts(1, 2, fmt.Sprintf("%-14s %-13s %6s %9s %12s %12s", "NAME", "KIND", "HZ", "FRAMES", "LAST", "MASKED-UNTIL"), styleHeader)

	row := 3
	for sensor := range d.system.Registry().Sensors() {
		style := styleActive
		maskCol := "-"
		if deadline, ok := d.system.Mask().Deadline(sensor.ID()); ok && now < deadline {
			style = styleMasked
			maskCol = fmt.Sprintf("%.3fs", deadline.Seconds())
		}

		frames := "-"
		last := "-"
		if c, ok := sensor.(*sensors.Counter); ok {
			frames = fmt.Sprintf("%d", c.Frames())
			last = fmt.Sprintf("%.3fs", c.LastUpdate().Seconds())
		}

		d.puts(1, row, fmt.Sprintf("%-14s %-13s %6.1f %9s %12s %12s",
			sensor.Name(), sensor.Kind(), sensor.UpdateRate(), frames, last, maskCol), style)
		row++
	}

	d.puts(1, row+1, "q quit   space pause/resume", styleDefault)
	d.screen.Show()
}

func (d *dashboard) puts(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}
