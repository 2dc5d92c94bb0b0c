package particles

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	minRadius = 0.5
	maxRadius = 1.0
)

// Point is a single moving particle. Radius scales the particle quad and
// Shade is the point's fixed sample position on the color gradient.
type Point struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Shade  float64
}

// Bound is an axis-aligned rectangle centred on the origin, given by its
// half-extents.
type Bound struct {
	MaxX, MaxY float64
}

// BoundFromViewport derives the reflection bound from viewport half-extents
// and a margin. A square bound uses the larger of the two extents on both axes.
func BoundFromViewport(halfWidth, halfHeight, margin float64, square bool) Bound {
	b := Bound{MaxX: math.Max(halfWidth+margin, 0), MaxY: math.Max(halfHeight+margin, 0)}
	if square {
		m := math.Max(b.MaxX, b.MaxY)
		b.MaxX, b.MaxY = m, m
	}
	return b
}

func (b Bound) Contains(p r2.Vec) bool {
	return math.Abs(p.X) <= b.MaxX && math.Abs(p.Y) <= b.MaxY
}

// Set owns every live point. It is not safe for concurrent use.
type Set struct {
	bound  Bound
	points []Point
	rng    *rand.Rand
}

func NewSet(bound Bound, seed int64) *Set {
	return &Set{
		bound:  bound,
		points: make([]Point, 0),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Set) Len() int        { return len(s.points) }
func (s *Set) Bound() Bound    { return s.bound }
func (s *Set) Points() []Point { return s.points }

// SetBound replaces the reflection bound. Points left outside a shrunk bound
// are not moved; they turn back on their next Advance.
func (s *Set) SetBound(b Bound) { s.bound = b }

// Resize grows or shrinks the live point count. New points are placed
// uniformly inside the bound with a random heading and a speed drawn from
// [minSpeed, maxSpeed]; shrinking drops points from the end.
func (s *Set) Resize(n int, minSpeed, maxSpeed float64) {
	if n < 0 {
		n = 0
	}
	if n <= len(s.points) {
		s.points = s.points[:n]
		return
	}
	for len(s.points) < n {
		s.points = append(s.points, s.spawn(minSpeed, maxSpeed))
	}
}

// Restart re-randomizes every point without changing the count.
func (s *Set) Restart(minSpeed, maxSpeed float64) {
	for i := range s.points {
		s.points[i] = s.spawn(minSpeed, maxSpeed)
	}
}

// Advance moves every point by vel*dt. A point that is past an edge and still
// moving outward gets a new heading drawn uniformly from the half circle that
// points back inside; its speed is kept.
func (s *Set) Advance(dt float64) {
	if dt <= 0 || math.IsNaN(dt) {
		return
	}
	for i := range s.points {
		p := &s.points[i]
		p.Pos = r2.Add(p.Pos, r2.Scale(dt, p.Vel))

		if math.Abs(p.Pos.X) > s.bound.MaxX && p.Pos.X*p.Vel.X > 0 {
			if p.Pos.X > 0 {
				p.Vel = s.redirect(p.Vel, math.Pi/2) // [90°, 270°]
			} else {
				p.Vel = s.redirect(p.Vel, -math.Pi/2) // [-90°, 90°]
			}
		}
		if math.Abs(p.Pos.Y) > s.bound.MaxY && p.Pos.Y*p.Vel.Y > 0 {
			if p.Pos.Y > 0 {
				p.Vel = s.redirect(p.Vel, math.Pi) // [180°, 360°]
			} else {
				p.Vel = s.redirect(p.Vel, 0) // [0°, 180°]
			}
		}
	}
}

// SetVelocityBounds rescales every velocity whose magnitude lies outside
// [lo, hi] onto the nearest limit. A stationary point has no direction to
// keep, so it gets a fresh random velocity instead.
func (s *Set) SetVelocityBounds(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := range s.points {
		p := &s.points[i]
		speed := r2.Norm(p.Vel)
		switch {
		case speed == 0:
			p.Vel = s.heading(s.speed(lo, hi))
		case speed < lo:
			p.Vel = r2.Scale(lo/speed, p.Vel)
		case speed > hi:
			p.Vel = r2.Scale(hi/speed, p.Vel)
		}
	}
}

func (s *Set) spawn(minSpeed, maxSpeed float64) Point {
	return Point{
		Pos: r2.Vec{
			X: (s.rng.Float64()*2 - 1) * s.bound.MaxX,
			Y: (s.rng.Float64()*2 - 1) * s.bound.MaxY,
		},
		Vel:    s.heading(s.speed(minSpeed, maxSpeed)),
		Radius: minRadius + s.rng.Float64()*(maxRadius-minRadius),
		Shade:  s.rng.Float64(),
	}
}

func (s *Set) speed(lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Set) heading(speed float64) r2.Vec {
	a := s.rng.Float64() * 2 * math.Pi
	return r2.Vec{X: speed * math.Cos(a), Y: speed * math.Sin(a)}
}

func (s *Set) redirect(v r2.Vec, from float64) r2.Vec {
	speed := r2.Norm(v)
	a := from + s.rng.Float64()*math.Pi
	return r2.Vec{X: speed * math.Cos(a), Y: speed * math.Sin(a)}
}
