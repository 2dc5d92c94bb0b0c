package proximity

import (
	"math"

	"github.com/san-kum/plexus/internal/grid"
)

// minDenominator keeps Intensity finite when the strong distance reaches the
// connection distance.
const minDenominator = 1e-6

type Params struct {
	ConnectionDistance float64
	StrongDistance     float64
}

// Derived holds every value computed from Params. It is rebuilt by
// RecomputeDerived and never edited directly.
type Derived struct {
	ConnectionSq float64
	StrongSq     float64
	Denominator  float64
}

type Enumerator struct {
	params  Params
	derived Derived
}

func New(p Params) *Enumerator {
	e := &Enumerator{params: p}
	e.RecomputeDerived()
	return e
}

func (e *Enumerator) Params() Params   { return e.params }
func (e *Enumerator) Derived() Derived { return e.derived }

func (e *Enumerator) SetConnectionDistance(d float64) {
	e.params.ConnectionDistance = d
	e.RecomputeDerived()
}

func (e *Enumerator) SetStrongDistance(d float64) {
	e.params.StrongDistance = d
	e.RecomputeDerived()
}

func (e *Enumerator) RecomputeDerived() {
	conn := math.Max(e.params.ConnectionDistance, 0)
	strong := math.Min(math.Max(e.params.StrongDistance, 0), conn)
	e.derived = Derived{
		ConnectionSq: conn * conn,
		StrongSq:     strong * strong,
		Denominator:  math.Max(conn-strong, minDenominator),
	}
}

// Intensity maps a distance to [0, 1]: 1 at or below the strong distance,
// falling linearly to 0 at the connection distance.
func (e *Enumerator) Intensity(dist float64) float64 {
	v := (math.Max(e.params.ConnectionDistance, 0) - dist) / e.derived.Denominator
	return math.Min(math.Max(v, 0), 1)
}

// Lines reports every pair within the connection distance together with its
// intensity and returns the number of pairs.
func (e *Enumerator) Lines(g *grid.Grid, fn func(a, b int, intensity float64)) int {
	n := 0
	EmitPairs(g, e.derived.ConnectionSq, func(a, b int, d float64) {
		n++
		fn(a, b, e.Intensity(math.Sqrt(d)))
	})
	return n
}

// Triangles reports every triple whose sides are all within the connection
// distance. Intensity comes from the longest side.
func (e *Enumerator) Triangles(g *grid.Grid, fn func(a, b, c int, intensity float64)) int {
	n := 0
	EmitTriples(g, e.derived.ConnectionSq, func(a, b, c int, longest float64) {
		n++
		fn(a, b, c, e.Intensity(math.Sqrt(longest)))
	})
	return n
}
