package metrics

import "github.com/san-kum/plexus/internal/sim"

// Connectivity is the mean number of lines per point, averaged over frames.
type Connectivity struct {
	name    string
	samples int
	total   float64
}

func NewConnectivity() *Connectivity {
	return &Connectivity{name: "connectivity"}
}

func (c *Connectivity) Name() string { return c.name }

func (c *Connectivity) Observe(f sim.Frame) {
	if f.Points == 0 {
		c.samples++
		return
	}
	c.total += 2 * float64(f.Lines) / float64(f.Points)
	c.samples++
}

func (c *Connectivity) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.total / float64(c.samples)
}

func (c *Connectivity) Reset() {
	c.total = 0
	c.samples = 0
}
