package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/addy1997/ign-gazebo/core"
	"github.com/addy1997/ign-gazebo/sim"
	"github.com/addy1997/ign-gazebo/status"
	"github.com/addy1997/ign-gazebo/systems"
)

type server struct {
	httpServer *http.Server
	system     *systems.Sensors
	clock      *sim.Clock
}

func newServer(addr string, statusReg *status.Registry, system *systems.Sensors, clock *sim.Clock) *server {
	s := &server{
		system: system,
		clock:  clock,
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(status.NewCollector(statusReg, "gz"))

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	router.HandleFunc("/sensors", s.handleSensors).Methods("GET")
	router.HandleFunc("/simulation/pause", s.handlePause).Methods("POST")
	router.HandleFunc("/simulation/resume", s.handleResume).Methods("POST")

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *server) start() {
	core.Go(func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("sensord: http server failed: %v", err)
		}
	})
}

func (s *server) shutdown(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("sensord: http shutdown: %v", err)
	}
}

type sensorInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	UpdateRate float64 `json:"update_rate"`
	NextDue    string  `json:"next_due"`
	Masked     bool    `json:"masked"`
}

func (s *server) handleSensors(w http.ResponseWriter, _ *http.Request) {
	now := s.clock.Now()

	infos := make([]sensorInfo, 0)
	for sensor := range s.system.Registry().Sensors() {
		_, masked := s.system.Mask().Deadline(sensor.ID())
		infos = append(infos, sensorInfo{
			ID:         sensor.ID().String(),
			Name:       sensor.Name(),
			Kind:       sensor.Kind().String(),
			UpdateRate: sensor.UpdateRate(),
			NextDue:    sensor.NextUpdateDue().String(),
			Masked:     masked,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"sim_time": now.String(),
		"paused":   s.clock.IsPaused(),
		"sensors":  infos,
	}); err != nil {
		log.Printf("sensord: sensors encode failed: %v", err)
	}
}

func (s *server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.clock.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.clock.Resume()
	w.WriteHeader(http.StatusNoContent)
}
