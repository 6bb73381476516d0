// Package config loads and validates the simulation configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/addy1997/ign-gazebo/rendering"
	"github.com/addy1997/ign-gazebo/sensors"
)

// Duration wraps time.Duration for yaml decoding of values like "10ms"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SensorConfig declares one sensor the world spawns at startup
type SensorConfig struct {
	Name       string  `yaml:"name"`
	Kind       string  `yaml:"kind"`
	UpdateRate float64 `yaml:"update_rate"`
	Parent     string  `yaml:"parent"`
}

// Descriptor converts the entry to a sensors.Descriptor
func (sc SensorConfig) Descriptor() (sensors.Descriptor, error) {
	kind, err := sensors.ParseKind(sc.Kind)
	if err != nil {
		return sensors.Descriptor{}, err
	}
	return sensors.Descriptor{
		Name:       sc.Name,
		Kind:       kind,
		UpdateRate: sc.UpdateRate,
		Parent:     sc.Parent,
	}, nil
}

// Config is the top-level configuration
type Config struct {
	RenderEngine string         `yaml:"render_engine"`
	Tick         Duration       `yaml:"tick"`
	MetricsAddr  string         `yaml:"metrics_addr"`
	Sensors      []SensorConfig `yaml:"sensors"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		RenderEngine: rendering.HeadlessEngineName,
		Tick:         Duration(10 * time.Millisecond),
		MetricsAddr:  ":9910",
	}
}

// Parse decodes and validates a yaml document
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config read failed: %w", err)
	}
	return Parse(data)
}

// Validate checks the configuration:
// - render engine name is non-empty
// - tick is positive
// - every sensor has a name, a parseable kind and a positive update rate
// - sensor names are unique
func (c *Config) Validate() error {
	if c.RenderEngine == "" {
		return errors.New("render_engine is required")
	}
	if c.Tick <= 0 {
		return errors.New("tick must be positive")
	}

	seen := make(map[string]bool, len(c.Sensors))
	for i, sc := range c.Sensors {
		if sc.Name == "" {
			return fmt.Errorf("sensor %d: name is required", i)
		}
		if seen[sc.Name] {
			return fmt.Errorf("sensor %q declared twice", sc.Name)
		}
		seen[sc.Name] = true
		if _, err := sensors.ParseKind(sc.Kind); err != nil {
			return fmt.Errorf("sensor %q: %w", sc.Name, err)
		}
		if sc.UpdateRate <= 0 {
			return fmt.Errorf("sensor %q: update_rate must be positive", sc.Name)
		}
	}
	return nil
}
