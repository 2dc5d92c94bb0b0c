// Package scene assembles a FrameDriver, its sinks and its colorizer from
// settings for a given render target.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/geometry"
	"github.com/san-kum/plexus/internal/palette"
	"github.com/san-kum/plexus/internal/sim"
)

// Target is a render back-end. Stream sinks upload through Uploader and
// batch sinks draw through Draw.
type Target interface {
	Uploader(kind geometry.Kind) geometry.Uploader
	geometry.Drawer
}

type Scene struct {
	Settings *config.Settings
	Driver   *sim.FrameDriver
	Colors   *palette.Colorizer
}

// FPS is the frame rate the color cycle spring is tuned for.
const FPS = 60

func Params(s *config.Settings) sim.Params {
	return sim.Params{
		ParticleCount:      s.ParticleCount,
		MinVelocity:        s.MinVelocity,
		MaxVelocity:        s.MaxVelocity,
		ConnectionDistance: s.ConnectionDistance,
		StrongDistance:     s.StrongDistance,
		LineWidth:          s.LineWidth,
		TriangleOpacity:    s.TriangleOpacity,
		ParticleSize:       s.ParticleSize,
		BoundMargin:        s.BoundMargin,
		SquareBound:        s.SquareBound,
		ShowLines:          s.ShowLines,
		ShowTriangles:      s.ShowTriangles,
		ShowParticles:      s.ShowParticles,
		ShowBackground:     s.ShowBackground,
	}
}

func Colorizer(s *config.Settings) (*palette.Colorizer, error) {
	g, err := palette.ParseGradient(s.Gradient)
	if err != nil {
		return nil, err
	}
	curve := make(palette.AlphaCurve, len(s.AlphaCurve))
	for i, k := range s.AlphaCurve {
		curve[i] = palette.Key{At: k.At, Alpha: k.Alpha}
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	return &palette.Colorizer{
		Gradient: g,
		Alpha:    curve,
		Cycle:    palette.NewCycler(FPS, s.ColorCycleSpeed),
	}, nil
}

// Sinks builds one sink per layer. A nil target gives sinks that only keep
// their geometry in memory.
func Sinks(s *config.Settings, target Target, logger *slog.Logger) (sim.Sinks, error) {
	build := func(kind geometry.Kind) (geometry.Sink, error) {
		if s.Renderer == config.RendererBatch {
			var d geometry.Drawer
			if target != nil {
				d = target
			}
			return geometry.NewBatch(kind, d), nil
		}
		var up geometry.Uploader
		if target != nil {
			up = target.Uploader(kind)
		}
		return geometry.NewStream(kind, geometry.Options{
			MaxVerticesPerUnit: s.MaxVerticesPerUnit,
			MaxUnits:           s.MaxUnits,
			Ladder:             s.Ladder,
			Uploader:           up,
			Logger:             logger,
		})
	}

	var sinks sim.Sinks
	var err error
	if sinks.Background, err = build(geometry.KindQuad); err != nil {
		return sinks, fmt.Errorf("background sink: %w", err)
	}
	if sinks.Triangles, err = build(geometry.KindTriangle); err != nil {
		return sinks, fmt.Errorf("triangle sink: %w", err)
	}
	if sinks.Lines, err = build(geometry.KindLine); err != nil {
		return sinks, fmt.Errorf("line sink: %w", err)
	}
	if sinks.ThickLines, err = build(geometry.KindThickLine); err != nil {
		return sinks, fmt.Errorf("thick line sink: %w", err)
	}
	if sinks.Particles, err = build(geometry.KindQuad); err != nil {
		return sinks, fmt.Errorf("particle sink: %w", err)
	}
	return sinks, nil
}

func Build(s *config.Settings, vp sim.Viewport, target Target, logger *slog.Logger) (*Scene, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	colors, err := Colorizer(s)
	if err != nil {
		return nil, err
	}
	sinks, err := Sinks(s, target, logger)
	if err != nil {
		return nil, err
	}
	d := sim.New(Params(s), vp, colors, sinks, sim.WithLogger(logger), sim.WithSeed(s.Seed))
	logger.Debug("scene built",
		"points", s.ParticleCount,
		"renderer", s.Renderer,
		"line_width", s.LineWidth,
		"viewport_w", vp.HalfWidth,
		"viewport_h", vp.HalfHeight,
	)
	return &Scene{Settings: s, Driver: d, Colors: colors}, nil
}
