package status

import (
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Registry as Prometheus gauges. Metric keys use dotted
// paths internally ("sensors.passes"); they are exported with dots replaced
// by underscores under the given namespace.
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector wraps a status registry for Prometheus scraping
func NewCollector(registry *Registry, namespace string) *Collector {
	return &Collector{
		registry:  registry,
		namespace: namespace,
	}
}

// Describe implements prometheus.Collector. Descriptors are dynamic (keys
// appear as systems register metrics), so this is an unchecked collector.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.registry.Ints.Range(func(key string, ptr *atomic.Int64) {
		ch <- c.gauge(key, float64(ptr.Load()))
	})
	c.registry.Floats.Range(func(key string, ptr *AtomicFloat) {
		ch <- c.gauge(key, ptr.Get())
	})
	c.registry.Bools.Range(func(key string, ptr *atomic.Bool) {
		v := 0.0
		if ptr.Load() {
			v = 1.0
		}
		ch <- c.gauge(key, v)
	})
}

func (c *Collector) gauge(key string, value float64) prometheus.Metric {
	name := strings.ReplaceAll(key, ".", "_")
	if c.namespace != "" {
		name = c.namespace + "_" + name
	}
	desc := prometheus.NewDesc(name, "status registry metric "+key, nil, nil)
	return prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value)
}
