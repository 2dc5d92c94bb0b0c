package palette

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	cycleFrequency = 4.0
	cycleDamping   = 1.0
)

// Cycler is a time accumulator for the gradient phase, advanced once per
// tick. Speed changes are eased by a critically damped spring.
type Cycler struct {
	spring harmonica.Spring
	speed  float64
	vel    float64
	target float64
	phase  float64
}

func NewCycler(fps int, speed float64) *Cycler {
	if fps <= 0 {
		fps = 60
	}
	return &Cycler{
		spring: harmonica.NewSpring(harmonica.FPS(fps), cycleFrequency, cycleDamping),
		speed:  speed,
		target: speed,
	}
}

func (c *Cycler) SetSpeed(speed float64) { c.target = speed }
func (c *Cycler) Speed() float64         { return c.speed }
func (c *Cycler) Phase() float64         { return c.phase }

// Advance steps the spring one frame and moves the phase by dt at the eased
// speed. The phase stays in [0, 1).
func (c *Cycler) Advance(dt float64) {
	c.speed, c.vel = c.spring.Update(c.speed, c.vel, c.target)
	c.phase = math.Mod(c.phase+c.speed*dt, 1)
	if c.phase < 0 {
		c.phase++
	}
}

func (c *Cycler) Reset() {
	c.phase = 0
	c.speed, c.vel = c.target, 0
}
