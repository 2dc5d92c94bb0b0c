package metrics

import "github.com/san-kum/plexus/internal/sim"

// Throughput is the mean number of vertices submitted per frame.
type Throughput struct {
	name     string
	samples  int
	vertices int
}

func NewThroughput() *Throughput {
	return &Throughput{name: "vertices_per_frame"}
}

func (t *Throughput) Name() string { return t.name }

func (t *Throughput) Observe(f sim.Frame) {
	t.vertices += f.Vertices
	t.samples++
}

func (t *Throughput) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.vertices) / float64(t.samples)
}

func (t *Throughput) Reset() {
	t.vertices = 0
	t.samples = 0
}

// Dropped counts primitives lost to the render unit cap.
type Dropped struct {
	name  string
	total int
}

func NewDropped() *Dropped {
	return &Dropped{name: "dropped"}
}

func (d *Dropped) Name() string        { return d.name }
func (d *Dropped) Observe(f sim.Frame) { d.total += f.Dropped }
func (d *Dropped) Value() float64      { return float64(d.total) }
func (d *Dropped) Reset()              { d.total = 0 }

// Standard returns the metrics reported by a headless run.
func Standard() []sim.Metric {
	return []sim.Metric{NewConnectivity(), NewOccupancy(), NewMeanLoad(), NewThroughput(), NewDropped()}
}
