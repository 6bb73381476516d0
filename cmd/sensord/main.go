// sensord runs a headless simulation with the sensor-rendering scheduler
// and serves metrics and control endpoints over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/addy1997/ign-gazebo/config"
	"github.com/addy1997/ign-gazebo/sensors"
	"github.com/addy1997/ign-gazebo/sim"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/systems"
	"github.com/addy1997/ign-gazebo/world"
)

var (
	configFlag = flag.String("config", "", "Path to yaml configuration")
	addrFlag   = flag.String("addr", "", "Metrics listen address (overrides config)")
	debugFlag  = flag.Bool("debug", false, "Verbose logging")
)

func main() {
	flag.Parse()

	if !*debugFlag {
		log.SetOutput(io.Discard)
	}

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sensord: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addrFlag != "" {
		cfg.MetricsAddr = *addrFlag
	}

	statusReg := status.NewRegistry()

	system := systems.NewSensors(statusReg)
	system.Configure(cfg.RenderEngine, nil)
	registerSensorFactories(system.Registry())

	table := world.NewTable()
	for _, sc := range cfg.Sensors {
		desc, err := sc.Descriptor()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sensord: %v\n", err)
			os.Exit(1)
		}
		table.AddSensor(desc)
	}

	clock := sim.NewClock()
	loop := sim.NewLoop(clock, cfg.Tick.Std(), table, statusReg)
	loop.AddSystem(system)

	if err := system.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "sensord: %v\n", err)
		os.Exit(1)
	}
	loop.Start()

	server := newServer(cfg.MetricsAddr, statusReg, system, clock)
	server.start()

	fmt.Printf("sensord: %d sensors, engine %q, tick %s, metrics on %s\n",
		len(cfg.Sensors), cfg.RenderEngine, cfg.Tick.Std(), cfg.MetricsAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("sensord: shutting down")

	// The sensor system shuts down first so a loop step blocked on the
	// render gate is released before the loop is joined
	system.Stop()
	loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	server.shutdown(ctx)
}

// registerSensorFactories wires the built-in counter sensor for every kind.
// Deployments with real backends register their own factories instead.
func registerSensorFactories(registry *sensors.Registry) {
	factory := sensors.CounterFactory(nil)
	for _, kind := range []sensors.Kind{
		sensors.KindCamera,
		sensors.KindDepthCamera,
		sensors.KindGpuLidar,
		sensors.KindRgbdCamera,
	} {
		registry.RegisterFactory(kind, factory)
	}
}
