package status

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricMapCachedPointer(t *testing.T) {
	r := NewRegistry()

	a := r.Ints.Get("sensors.passes")
	b := r.Ints.Get("sensors.passes")
	if a != b {
		t.Fatal("same key returned different pointers")
	}

	a.Store(7)
	if b.Load() != 7 {
		t.Error("write through one pointer not visible through the other")
	}
}

func TestMetricMapRangeSorted(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"c", "a", "b"} {
		r.Ints.Get(k)
	}

	var keys []string
	r.Ints.Range(func(key string, _ *atomic.Int64) {
		keys = append(keys, key)
	})

	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestMetricMapConcurrentGet(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Ints.Get("shared").Add(1)
			}
		}()
	}
	wg.Wait()

	if got := r.Ints.Get("shared").Load(); got != 1600 {
		t.Errorf("counter = %d, want 1600", got)
	}
}

func TestAtomicFloat(t *testing.T) {
	var f AtomicFloat

	f.Set(1.5)
	if f.Get() != 1.5 {
		t.Errorf("get = %v", f.Get())
	}
	if got := f.Add(0.25); got != 1.75 {
		t.Errorf("add returned %v", got)
	}
}

func TestCollectorExportsGauges(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("sensors.passes").Store(3)
	r.Floats.Get("sim.rate").Set(0.5)
	r.Bools.Get("sensors.initialized").Store(true)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(NewCollector(r, "gz"))

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			found[fam.GetName()] = m.GetGauge().GetValue()
		}
	}

	if found["gz_sensors_passes"] != 3 {
		t.Errorf("gz_sensors_passes = %v", found["gz_sensors_passes"])
	}
	if found["gz_sim_rate"] != 0.5 {
		t.Errorf("gz_sim_rate = %v", found["gz_sim_rate"])
	}
	if found["gz_sensors_initialized"] != 1 {
		t.Errorf("gz_sensors_initialized = %v", found["gz_sensors_initialized"])
	}
}
