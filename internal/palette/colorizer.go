package palette

import (
	"image/color"
	"math"
)

// Colorizer turns an intensity into a vertex color: the gradient is sampled
// at the intensity shifted by the cycle phase, and alpha comes from the
// curve scaled by an opacity.
type Colorizer struct {
	Gradient *Gradient
	Alpha    AlphaCurve
	Cycle    *Cycler
}

func (c *Colorizer) phase() float64 {
	if c.Cycle == nil {
		return 0
	}
	return c.Cycle.Phase()
}

// RGBA colors a line or triangle of the given intensity.
func (c *Colorizer) RGBA(intensity, opacity float64) color.RGBA {
	r, g, b := c.Gradient.At(wrap(intensity + c.phase())).RGB255()
	return toRGBA(r, g, b, c.Alpha.Eval(intensity)*opacity)
}

// Shade colors a particle by its fixed gradient position at full alpha.
func (c *Colorizer) Shade(shade, opacity float64) color.RGBA {
	r, g, b := c.Gradient.At(wrap(shade + c.phase())).RGB255()
	return toRGBA(r, g, b, opacity)
}

func toRGBA(r, g, b uint8, alpha float64) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

// wrap folds t into [0, 1]. Exactly 1 stays 1 so full intensity samples the
// last stop when the phase is zero.
func wrap(t float64) float64 {
	if t >= 0 && t <= 1 {
		return t
	}
	t = math.Mod(t, 1)
	if t < 0 {
		t++
	}
	return t
}
