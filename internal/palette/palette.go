// Package palette maps proximity intensity to vertex colors.
package palette

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrEmptyGradient = errors.New("palette: gradient needs at least one stop")

type Stop struct {
	Pos   float64
	Color colorful.Color
}

// Gradient is a piecewise color ramp over [0, 1] blended in Lab space.
type Gradient struct {
	stops []Stop
}

func NewGradient(stops ...Stop) (*Gradient, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyGradient
	}
	s := append([]Stop(nil), stops...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Pos < s[j].Pos })
	return &Gradient{stops: s}, nil
}

// ParseGradient spaces hex colors evenly across [0, 1].
func ParseGradient(hex []string) (*Gradient, error) {
	if len(hex) == 0 {
		return nil, ErrEmptyGradient
	}
	stops := make([]Stop, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("gradient stop %d: %w", i, err)
		}
		pos := 0.0
		if len(hex) > 1 {
			pos = float64(i) / float64(len(hex)-1)
		}
		stops[i] = Stop{Pos: pos, Color: c}
	}
	return NewGradient(stops...)
}

func (g *Gradient) Stops() []Stop { return g.stops }

func (g *Gradient) At(t float64) colorful.Color {
	if math.IsNaN(t) || t <= g.stops[0].Pos {
		return g.stops[0].Color
	}
	last := g.stops[len(g.stops)-1]
	if t >= last.Pos {
		return last.Color
	}
	i := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].Pos > t })
	a, b := g.stops[i-1], g.stops[i]
	span := b.Pos - a.Pos
	if span <= 0 {
		return b.Color
	}
	return a.Color.BlendLab(b.Color, (t-a.Pos)/span).Clamped()
}

type Key struct {
	At    float64
	Alpha float64
}

// AlphaCurve is a piecewise-linear alpha over intensity. A nil or empty
// curve is the identity.
type AlphaCurve []Key

func LinearAlpha() AlphaCurve { return AlphaCurve{{0, 0}, {1, 1}} }

func (c AlphaCurve) Eval(t float64) float64 {
	t = clamp01(t)
	if len(c) == 0 {
		return t
	}
	if t <= c[0].At {
		return clamp01(c[0].Alpha)
	}
	for i := 1; i < len(c); i++ {
		if t <= c[i].At {
			a, b := c[i-1], c[i]
			if b.At <= a.At {
				return clamp01(b.Alpha)
			}
			f := (t - a.At) / (b.At - a.At)
			return clamp01(a.Alpha + (b.Alpha-a.Alpha)*f)
		}
	}
	return clamp01(c[len(c)-1].Alpha)
}

func (c AlphaCurve) Validate() error {
	for i := 1; i < len(c); i++ {
		if c[i].At < c[i-1].At {
			return fmt.Errorf("alpha curve key %d at %g is before key %d at %g", i, c[i].At, i-1, c[i-1].At)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
