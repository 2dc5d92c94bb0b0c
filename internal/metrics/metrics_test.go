package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/plexus/internal/sim"
)

func TestConnectivity(t *testing.T) {
	m := NewConnectivity()
	m.Observe(sim.Frame{Points: 10, Lines: 10})
	m.Observe(sim.Frame{Points: 10, Lines: 20})

	if got := m.Value(); math.Abs(got-3) > 1e-9 {
		t.Errorf("expected connectivity 3, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestConnectivity_EmptyFrame(t *testing.T) {
	m := NewConnectivity()
	m.Observe(sim.Frame{})
	if got := m.Value(); got != 0 {
		t.Errorf("expected 0 for an empty frame, got %f", got)
	}
}

func TestOccupancy(t *testing.T) {
	m := NewOccupancy()
	for _, load := range []int{3, 9, 4} {
		m.Observe(sim.Frame{PeakLoad: load})
	}
	if m.Value() != 9 {
		t.Errorf("expected peak 9, got %f", m.Value())
	}
}

func TestMeanLoad(t *testing.T) {
	m := NewMeanLoad()
	m.Observe(sim.Frame{Points: 50, Buckets: 25})
	if m.Value() != 2 {
		t.Errorf("expected mean load 2, got %f", m.Value())
	}
	m.Observe(sim.Frame{Points: 50})
	if m.Value() != 0 {
		t.Errorf("expected 0 without buckets, got %f", m.Value())
	}
}

func TestThroughputAndDropped(t *testing.T) {
	tp, dr := NewThroughput(), NewDropped()
	frames := []sim.Frame{
		{Vertices: 100, Dropped: 0},
		{Vertices: 300, Dropped: 5},
	}
	for _, f := range frames {
		tp.Observe(f)
		dr.Observe(f)
	}
	if tp.Value() != 200 {
		t.Errorf("expected 200 vertices per frame, got %f", tp.Value())
	}
	if dr.Value() != 5 {
		t.Errorf("expected 5 dropped, got %f", dr.Value())
	}
}

func TestStandardNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
