package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultParticleCount      = 400
	DefaultMinVelocity        = 4.0
	DefaultMaxVelocity        = 12.0
	DefaultConnectionDistance = 12.0
	DefaultStrongDistance     = 4.0
	DefaultTriangleOpacity    = 0.25
	DefaultParticleSize       = 1.2
	DefaultMaxUnits           = 32
	DefaultFPS                = 60
)

const (
	RendererStream = "stream"
	RendererBatch  = "batch"
)

var ErrInvalidSetting = errors.New("invalid setting")

type Settings struct {
	ParticleCount      int     `yaml:"particle_count"`
	MinVelocity        float64 `yaml:"min_velocity"`
	MaxVelocity        float64 `yaml:"max_velocity"`
	ConnectionDistance float64 `yaml:"connection_distance"`
	StrongDistance     float64 `yaml:"strong_distance"`
	LineWidth          float64 `yaml:"line_width"`
	TriangleOpacity    float64 `yaml:"triangle_opacity"`
	ParticleSize       float64 `yaml:"particle_size"`
	BoundMargin        float64 `yaml:"bound_margin"`
	SquareBound        bool    `yaml:"square_bound"`

	ShowLines      bool `yaml:"show_lines"`
	ShowTriangles  bool `yaml:"show_triangles"`
	ShowParticles  bool `yaml:"show_particles"`
	ShowBackground bool `yaml:"show_background"`

	Renderer           string    `yaml:"renderer"`
	MaxVerticesPerUnit int       `yaml:"max_vertices_per_unit"`
	MaxUnits           int       `yaml:"max_units"`
	Ladder             []float64 `yaml:"ladder"`

	Gradient        []string   `yaml:"gradient"`
	AlphaCurve      []AlphaKey `yaml:"alpha_curve"`
	ColorCycleSpeed float64    `yaml:"color_cycle_speed"`
	Seed            int64      `yaml:"seed"`
}

type AlphaKey struct {
	At    float64 `yaml:"at"`
	Alpha float64 `yaml:"alpha"`
}

func DefaultSettings() *Settings {
	return &Settings{
		ParticleCount:      DefaultParticleCount,
		MinVelocity:        DefaultMinVelocity,
		MaxVelocity:        DefaultMaxVelocity,
		ConnectionDistance: DefaultConnectionDistance,
		StrongDistance:     DefaultStrongDistance,
		TriangleOpacity:    DefaultTriangleOpacity,
		ParticleSize:       DefaultParticleSize,
		ShowLines:          true,
		ShowTriangles:      true,
		ShowParticles:      true,
		Renderer:           RendererStream,
		MaxUnits:           DefaultMaxUnits,
		Ladder:             []float64{0.10, 0.25, 0.33, 0.50},
		Gradient:           []string{"#1b2a49", "#3f88c5", "#a3e7fc", "#ffffff"},
		AlphaCurve:         []AlphaKey{{At: 0, Alpha: 0}, {At: 0.6, Alpha: 0.5}, {At: 1, Alpha: 1}},
		Seed:               1,
	}
}

func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the renderer cannot start with. Values that are
// only numerically awkward, like a strong distance past the connection
// distance, are left for the driver to clamp.
func (s *Settings) Validate() error {
	switch {
	case s.ParticleCount < 0:
		return fmt.Errorf("%w: particle_count %d", ErrInvalidSetting, s.ParticleCount)
	case s.MinVelocity < 0 || s.MaxVelocity < s.MinVelocity:
		return fmt.Errorf("%w: velocity range [%g, %g]", ErrInvalidSetting, s.MinVelocity, s.MaxVelocity)
	case !(s.ConnectionDistance > 0) || math.IsInf(s.ConnectionDistance, 0):
		return fmt.Errorf("%w: connection_distance %g", ErrInvalidSetting, s.ConnectionDistance)
	case s.StrongDistance < 0:
		return fmt.Errorf("%w: strong_distance %g", ErrInvalidSetting, s.StrongDistance)
	case s.LineWidth < 0:
		return fmt.Errorf("%w: line_width %g", ErrInvalidSetting, s.LineWidth)
	case s.TriangleOpacity < 0 || s.TriangleOpacity > 1:
		return fmt.Errorf("%w: triangle_opacity %g", ErrInvalidSetting, s.TriangleOpacity)
	case s.Renderer != RendererStream && s.Renderer != RendererBatch:
		return fmt.Errorf("%w: renderer %q", ErrInvalidSetting, s.Renderer)
	case s.MaxVerticesPerUnit < 0:
		return fmt.Errorf("%w: max_vertices_per_unit %d", ErrInvalidSetting, s.MaxVerticesPerUnit)
	case s.MaxUnits < 1:
		return fmt.Errorf("%w: max_units %d", ErrInvalidSetting, s.MaxUnits)
	case len(s.Gradient) == 0:
		return fmt.Errorf("%w: gradient needs at least one color", ErrInvalidSetting)
	}
	for i, f := range s.Ladder {
		if !(f > 0 && f <= 1) {
			return fmt.Errorf("%w: ladder[%d] %g", ErrInvalidSetting, i, f)
		}
	}
	for i := 1; i < len(s.AlphaCurve); i++ {
		if s.AlphaCurve[i].At < s.AlphaCurve[i-1].At {
			return fmt.Errorf("%w: alpha_curve keys out of order at %d", ErrInvalidSetting, i)
		}
	}
	return nil
}

func (s *Settings) Clone() *Settings {
	c := *s
	c.Ladder = append([]float64(nil), s.Ladder...)
	c.Gradient = append([]string(nil), s.Gradient...)
	c.AlphaCurve = append([]AlphaKey(nil), s.AlphaCurve...)
	return &c
}

// Tunables are the numeric settings addressable by name, in yaml key form.
var Tunables = []string{
	"particle_count",
	"min_velocity",
	"max_velocity",
	"connection_distance",
	"strong_distance",
	"line_width",
	"triangle_opacity",
	"particle_size",
	"bound_margin",
	"color_cycle_speed",
}

// SetParam assigns a numeric setting by its yaml key. Counts are rounded.
func (s *Settings) SetParam(name string, v float64) error {
	switch name {
	case "particle_count":
		s.ParticleCount = int(math.Round(v))
	case "min_velocity":
		s.MinVelocity = v
	case "max_velocity":
		s.MaxVelocity = v
	case "connection_distance":
		s.ConnectionDistance = v
	case "strong_distance":
		s.StrongDistance = v
	case "line_width":
		s.LineWidth = v
	case "triangle_opacity":
		s.TriangleOpacity = v
	case "particle_size":
		s.ParticleSize = v
	case "bound_margin":
		s.BoundMargin = v
	case "color_cycle_speed":
		s.ColorCycleSpeed = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidSetting, name)
	}
	return nil
}
