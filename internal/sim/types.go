package sim

import "github.com/san-kum/plexus/internal/geometry"

// Params is the typed settings surface of the driver. Each field has a
// setter on FrameDriver that recomputes only what depends on it.
type Params struct {
	ParticleCount      int
	MinVelocity        float64
	MaxVelocity        float64
	ConnectionDistance float64
	StrongDistance     float64
	LineWidth          float64
	TriangleOpacity    float64
	ParticleSize       float64
	BoundMargin        float64
	SquareBound        bool

	ShowLines      bool
	ShowTriangles  bool
	ShowParticles  bool
	ShowBackground bool
}

// Viewport is the visible area in world units, given as half-extents.
type Viewport struct {
	HalfWidth  float64
	HalfHeight float64
}

// Sinks receives the geometry of one tick. Nil sinks are skipped. Lines
// takes plain segments and ThickLines takes width quads; the line width in
// effect picks one of the two each tick.
type Sinks struct {
	Background geometry.Sink
	Triangles  geometry.Sink
	Lines      geometry.Sink
	ThickLines geometry.Sink
	Particles  geometry.Sink
}

func (s Sinks) all() []geometry.Sink {
	return []geometry.Sink{s.Background, s.Triangles, s.Lines, s.ThickLines, s.Particles}
}

// Frame summarizes one committed tick.
type Frame struct {
	Tick      int
	Time      float64
	Points    int
	Lines     int
	Triangles int
	Quads     int

	Units       int
	ActiveUnits int
	Vertices    int
	Dropped     int

	Buckets  int
	PeakLoad int
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	Ticks int
	Dt    float64
}

type Result struct {
	Frames  []Frame
	Metrics map[string]float64
}
