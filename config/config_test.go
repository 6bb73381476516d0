package config

import (
	"strings"
	"testing"
	"time"

	"github.com/addy1997/ign-gazebo/sensors"
)

const sampleConfig = `
render_engine: headless
tick: 5ms
metrics_addr: ":9999"
sensors:
  - name: front_camera
    kind: camera
    update_rate: 30
    parent: chassis
  - name: lidar
    kind: gpu_lidar
    update_rate: 10
    parent: mast
`

func TestParseSample(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.RenderEngine != "headless" {
		t.Errorf("render_engine = %q", cfg.RenderEngine)
	}
	if cfg.Tick.Std() != 5*time.Millisecond {
		t.Errorf("tick = %s, want 5ms", cfg.Tick.Std())
	}
	if cfg.MetricsAddr != ":9999" {
		t.Errorf("metrics_addr = %q", cfg.MetricsAddr)
	}
	if len(cfg.Sensors) != 2 {
		t.Fatalf("sensors = %d, want 2", len(cfg.Sensors))
	}

	desc, err := cfg.Sensors[1].Descriptor()
	if err != nil {
		t.Fatalf("descriptor conversion failed: %v", err)
	}
	if desc.Kind != sensors.KindGpuLidar || desc.UpdateRate != 10 || desc.Parent != "mast" {
		t.Errorf("unexpected descriptor %+v", desc)
	}
}

func TestParseDefaultsApply(t *testing.T) {
	cfg, err := Parse([]byte("sensors: []"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	def := Default()
	if cfg.RenderEngine != def.RenderEngine || cfg.Tick != def.Tick {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"bad tick", "tick: -5ms", "tick must be positive"},
		{"empty engine", `render_engine: ""`, "render_engine is required"},
		{"missing sensor name", "sensors:\n  - kind: camera\n    update_rate: 5", "name is required"},
		{"bad kind", "sensors:\n  - name: s\n    kind: sonar\n    update_rate: 5", "unsupported sensor kind"},
		{"bad rate", "sensors:\n  - name: s\n    kind: camera\n    update_rate: 0", "update_rate must be positive"},
		{"duplicate name", "sensors:\n  - name: s\n    kind: camera\n    update_rate: 5\n  - name: s\n    kind: camera\n    update_rate: 5", "declared twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseBadDuration(t *testing.T) {
	_, err := Parse([]byte("tick: soon"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected duration error, got %v", err)
	}
}
