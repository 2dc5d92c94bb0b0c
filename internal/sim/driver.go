package sim

import (
	"image/color"
	"log/slog"

	"github.com/san-kum/plexus/internal/geometry"
	"github.com/san-kum/plexus/internal/grid"
	"github.com/san-kum/plexus/internal/palette"
	"github.com/san-kum/plexus/internal/particles"
	"github.com/san-kum/plexus/internal/proximity"
)

// streamStats is implemented by sinks that can report unit usage.
type streamStats interface {
	Stats() geometry.StreamStats
}

type Option func(*FrameDriver)

func WithLogger(l *slog.Logger) Option {
	return func(d *FrameDriver) { d.logger = l }
}

func WithSeed(seed int64) Option {
	return func(d *FrameDriver) { d.seed = seed }
}

// FrameDriver runs the per-tick pipeline: advance the points, rebucket them,
// enumerate lines and triangles and commit the geometry to the sinks. It is
// single-threaded; every method must be called from the thread that ticks.
type FrameDriver struct {
	params   Params
	viewport Viewport
	seed     int64

	points *particles.Set
	grid   *grid.Grid
	enum   *proximity.Enumerator
	colors *palette.Colorizer
	sinks  Sinks

	pendingCount int
	resize       bool

	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	tick  int
	time  float64
	frame Frame

	// rejectedCell is the last connection distance the grid refused.
	rejectedCell float64
}

func New(p Params, vp Viewport, colors *palette.Colorizer, sinks Sinks, opts ...Option) *FrameDriver {
	d := &FrameDriver{
		params:    p,
		viewport:  vp,
		grid:      grid.New(),
		colors:    colors,
		sinks:     sinks,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.enum = proximity.New(proximity.Params{
		ConnectionDistance: p.ConnectionDistance,
		StrongDistance:     p.StrongDistance,
	})
	d.points = particles.NewSet(d.bound(), d.seed)
	d.points.Resize(p.ParticleCount, p.MinVelocity, p.MaxVelocity)
	return d
}

func (d *FrameDriver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *FrameDriver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *FrameDriver) bound() particles.Bound {
	return particles.BoundFromViewport(d.viewport.HalfWidth, d.viewport.HalfHeight, d.params.BoundMargin, d.params.SquareBound)
}

// Tick advances the scene by dt and submits one frame of geometry.
func (d *FrameDriver) Tick(dt float64) Frame {
	if d.resize {
		d.points.Resize(d.pendingCount, d.params.MinVelocity, d.params.MaxVelocity)
		d.resize = false
		d.logger.Debug("resized point set", "count", d.points.Len())
	}
	if d.colors != nil && d.colors.Cycle != nil {
		d.colors.Cycle.Advance(dt)
	}

	d.points.Advance(dt)
	pts := d.points.Points()
	if d.grid.Configure(d.points.Bound(), d.params.ConnectionDistance, len(pts)) {
		d.logger.Debug("reallocated grid", "cols", d.grid.Cols(), "rows", d.grid.Rows(), "cell", d.params.ConnectionDistance)
	}
	if cell := d.params.ConnectionDistance; d.grid.CellSize() == cell {
		d.rejectedCell = 0
	} else if d.rejectedCell != cell {
		d.rejectedCell = cell
		d.logger.Debug("grid kept previous cell size", "requested", cell, "cell", d.grid.CellSize())
	}
	d.grid.Rebucket(pts)

	d.tick++
	d.time += dt
	f := Frame{
		Tick:     d.tick,
		Time:     d.time,
		Points:   len(pts),
		Buckets:  d.grid.Cols() * d.grid.Rows(),
		PeakLoad: d.grid.PeakLoad(),
	}

	var used []geometry.Sink
	if s := d.active(d.sinks.Background, d.params.ShowBackground); s != nil {
		used = append(used, s)
		s.Reset()
		b := d.points.Bound()
		s.Write(geometry.Quad(0, 0, float32(b.MaxX), float32(b.MaxY), d.shade(0, 1)))
		s.Commit()
		f.Quads++
	}
	if s := d.active(d.sinks.Triangles, d.params.ShowTriangles); s != nil {
		used = append(used, s)
		s.Reset()
		f.Triangles = d.enum.Triangles(d.grid, func(a, b, c int, intensity float64) {
			col := d.tint(intensity, d.params.TriangleOpacity)
			s.Write(geometry.Triangle(vertex(pts[a], col), vertex(pts[b], col), vertex(pts[c], col)))
		})
		s.Commit()
	}
	if s := d.active(d.lineSink(), d.params.ShowLines); s != nil {
		used = append(used, s)
		s.Reset()
		thick := s.Kind() == geometry.KindThickLine
		width := float32(d.params.LineWidth)
		f.Lines = d.enum.Lines(d.grid, func(a, b int, intensity float64) {
			col := d.tint(intensity, 1)
			p, q := pts[a].Pos, pts[b].Pos
			if thick {
				s.Write(geometry.ThickLine(float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), width, col, col))
				return
			}
			s.Write(geometry.Line(float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), col, col))
		})
		s.Commit()
	}
	if s := d.active(d.sinks.Particles, d.params.ShowParticles); s != nil {
		used = append(used, s)
		s.Reset()
		for i := range pts {
			half := float32(d.params.ParticleSize * pts[i].Radius / 2)
			s.Write(geometry.Quad(float32(pts[i].Pos.X), float32(pts[i].Pos.Y), half, half, d.shade(pts[i].Shade, 1)))
		}
		s.Commit()
		f.Quads += len(pts)
	}

	for _, s := range used {
		collect(&f, s)
	}
	d.frame = f

	for _, m := range d.metrics {
		m.Observe(f)
	}
	for _, o := range d.observers {
		o.OnFrame(f)
	}
	return f
}

func (d *FrameDriver) active(s geometry.Sink, show bool) geometry.Sink {
	if !show || s == nil {
		return nil
	}
	return s
}

// lineSink is the sink lines go to at the current width: width quads when
// the width is positive and a thick sink exists, plain segments otherwise.
func (d *FrameDriver) lineSink() geometry.Sink {
	if d.params.LineWidth > 0 && d.sinks.ThickLines != nil {
		return d.sinks.ThickLines
	}
	return d.sinks.Lines
}

func (d *FrameDriver) tint(intensity, opacity float64) color.RGBA {
	if d.colors == nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: uint8(intensity * opacity * 255)}
	}
	return d.colors.RGBA(intensity, opacity)
}

func (d *FrameDriver) shade(shade, opacity float64) color.RGBA {
	if d.colors == nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: uint8(opacity * 255)}
	}
	return d.colors.Shade(shade, opacity)
}

func vertex(p particles.Point, c color.RGBA) geometry.Vertex {
	return geometry.Vertex{X: float32(p.Pos.X), Y: float32(p.Pos.Y), Color: c}
}

func collect(f *Frame, s geometry.Sink) {
	switch s := s.(type) {
	case nil:
	case streamStats:
		st := s.Stats()
		f.Units += st.Units
		f.ActiveUnits += st.Active
		f.Vertices += st.Vertices
		f.Dropped += st.Dropped
	case *geometry.Batch:
		f.Vertices += len(s.Primitives()) * s.Kind().VerticesPerPrimitive()
		f.Dropped += s.Dropped()
	}
}

// SetParticleCount takes effect at the start of the next Tick so the point
// array never changes size while it is being bucketed or enumerated.
func (d *FrameDriver) SetParticleCount(n int) {
	if n < 0 {
		n = 0
	}
	d.params.ParticleCount = n
	d.pendingCount = n
	d.resize = true
}

func (d *FrameDriver) SetVelocityBounds(lo, hi float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	d.params.MinVelocity, d.params.MaxVelocity = lo, hi
	d.points.SetVelocityBounds(lo, hi)
}

func (d *FrameDriver) SetConnectionDistance(v float64) {
	d.params.ConnectionDistance = v
	d.enum.SetConnectionDistance(v)
}

func (d *FrameDriver) SetStrongDistance(v float64) {
	d.params.StrongDistance = v
	d.enum.SetStrongDistance(v)
}

// SetLineWidth switches between plain and thick lines when the width crosses
// zero, releasing the sink that goes out of use.
func (d *FrameDriver) SetLineWidth(v float64) {
	prev := d.lineSink()
	d.params.LineWidth = v
	if next := d.lineSink(); next != prev {
		d.toggled(prev, false)
	}
}

func (d *FrameDriver) SetTriangleOpacity(v float64) { d.params.TriangleOpacity = v }
func (d *FrameDriver) SetParticleSize(v float64)    { d.params.ParticleSize = v }

func (d *FrameDriver) SetBoundMargin(v float64) {
	d.params.BoundMargin = v
	d.points.SetBound(d.bound())
}

func (d *FrameDriver) SetSquareBound(square bool) {
	d.params.SquareBound = square
	d.points.SetBound(d.bound())
}

func (d *FrameDriver) SetViewport(vp Viewport) {
	d.viewport = vp
	d.points.SetBound(d.bound())
}

func (d *FrameDriver) SetShowLines(on bool) {
	d.params.ShowLines = on
	d.toggled(d.sinks.Lines, on)
	d.toggled(d.sinks.ThickLines, on)
}

func (d *FrameDriver) SetShowTriangles(on bool) {
	d.params.ShowTriangles = on
	d.toggled(d.sinks.Triangles, on)
}

func (d *FrameDriver) SetShowParticles(on bool) {
	d.params.ShowParticles = on
	d.toggled(d.sinks.Particles, on)
}

func (d *FrameDriver) SetShowBackground(on bool) {
	d.params.ShowBackground = on
	d.toggled(d.sinks.Background, on)
}

// toggled frees a disabled sink's buffers entirely.
func (d *FrameDriver) toggled(s geometry.Sink, on bool) {
	if on || s == nil {
		return
	}
	if r, ok := s.(geometry.Releaser); ok {
		r.Release()
		d.logger.Debug("released sink", "kind", s.Kind().String())
	}
}

// Release frees the buffers of every sink. A later Tick allocates again.
func (d *FrameDriver) Release() {
	for _, s := range d.sinks.all() {
		if r, ok := s.(geometry.Releaser); ok {
			r.Release()
		}
	}
}

// Restart re-randomizes every point without changing the count.
func (d *FrameDriver) Restart() {
	d.points.Restart(d.params.MinVelocity, d.params.MaxVelocity)
	if d.colors != nil && d.colors.Cycle != nil {
		d.colors.Cycle.Reset()
	}
}

func (d *FrameDriver) Params() Params                 { return d.params }
func (d *FrameDriver) Viewport() Viewport             { return d.viewport }
func (d *FrameDriver) Bound() particles.Bound         { return d.points.Bound() }
func (d *FrameDriver) Points() []particles.Point      { return d.points.Points() }
func (d *FrameDriver) Grid() *grid.Grid               { return d.grid }
func (d *FrameDriver) Derived() proximity.Derived     { return d.enum.Derived() }
func (d *FrameDriver) Intensity(dist float64) float64 { return d.enum.Intensity(dist) }
func (d *FrameDriver) LastFrame() Frame               { return d.frame }
func (d *FrameDriver) Sinks() Sinks                   { return d.sinks }
