package metrics

import "github.com/san-kum/plexus/internal/sim"

// Occupancy tracks the worst bucket load seen, the quantity that bounds the
// per-cell cost of triple enumeration.
type Occupancy struct {
	name string
	peak int
}

func NewOccupancy() *Occupancy {
	return &Occupancy{name: "peak_bucket_load"}
}

func (o *Occupancy) Name() string { return o.name }

func (o *Occupancy) Observe(f sim.Frame) {
	o.peak = max(o.peak, f.PeakLoad)
}

func (o *Occupancy) Value() float64 { return float64(o.peak) }
func (o *Occupancy) Reset()         { o.peak = 0 }

// MeanLoad is the average number of points per bucket in the last frame.
type MeanLoad struct {
	name  string
	value float64
}

func NewMeanLoad() *MeanLoad {
	return &MeanLoad{name: "mean_bucket_load"}
}

func (m *MeanLoad) Name() string { return m.name }

func (m *MeanLoad) Observe(f sim.Frame) {
	if f.Buckets == 0 {
		m.value = 0
		return
	}
	m.value = float64(f.Points) / float64(f.Buckets)
}

func (m *MeanLoad) Value() float64 { return m.value }
func (m *MeanLoad) Reset()         { m.value = 0 }
