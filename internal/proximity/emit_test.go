package proximity

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/san-kum/plexus/internal/grid"
	"github.com/san-kum/plexus/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

func buildGrid(pts []particles.Point, half, cellSize float64) *grid.Grid {
	g := grid.New()
	g.Configure(particles.Bound{MaxX: half, MaxY: half}, cellSize, len(pts))
	g.Rebucket(pts)
	return g
}

func scatter(n int, spread float64, seed int64) []particles.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]particles.Point, n)
	for i := range pts {
		pts[i].Pos = r2.Vec{X: (rng.Float64()*2 - 1) * spread, Y: (rng.Float64()*2 - 1) * spread}
	}
	return pts
}

func pointsAt(xy ...float64) []particles.Point {
	pts := make([]particles.Point, len(xy)/2)
	for i := range pts {
		pts[i].Pos = r2.Vec{X: xy[2*i], Y: xy[2*i+1]}
	}
	return pts
}

type pair [2]int
type triple [3]int

func sortedPair(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

func sortedTriple(a, b, c int) triple {
	t := []int{a, b, c}
	sort.Ints(t)
	return triple{t[0], t[1], t[2]}
}

func bruteForcePairs(pts []particles.Point, thresholdSq float64) map[pair]bool {
	out := make(map[pair]bool)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if distSq(pts[i].Pos, pts[j].Pos) <= thresholdSq {
				out[pair{i, j}] = true
			}
		}
	}
	return out
}

func bruteForceTriples(pts []particles.Point, thresholdSq float64) map[triple]bool {
	out := make(map[triple]bool)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if distSq(pts[i].Pos, pts[j].Pos) > thresholdSq {
				continue
			}
			for k := j + 1; k < len(pts); k++ {
				if distSq(pts[i].Pos, pts[k].Pos) <= thresholdSq && distSq(pts[j].Pos, pts[k].Pos) <= thresholdSq {
					out[triple{i, j, k}] = true
				}
			}
		}
	}
	return out
}

func TestEmitPairsScenario(t *testing.T) {
	pts := pointsAt(0, 0, 1, 0, 5, 5, 5.5, 5)
	g := buildGrid(pts, 10, 1.5)

	got := make(map[pair]int)
	EmitPairs(g, 1.5*1.5, func(a, b int, d float64) {
		got[sortedPair(a, b)]++
	})

	if len(got) != 2 || got[pair{0, 1}] != 1 || got[pair{2, 3}] != 1 {
		t.Errorf("expected pairs {(0,1),(2,3)} once each, got %v", got)
	}
}

func TestEmitPairsMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		spread    float64
		threshold float64
		cellSize  float64
	}{
		{"sparse", 200, 10, 1.5, 1.5},
		{"dense", 300, 5, 1, 1},
		{"coarse cells", 150, 10, 1, 3},
		{"overshoot", 200, 13, 2, 2},
		{"single cell", 60, 2, 5, 5},
	}

	for _, tt := range tests {
		pts := scatter(tt.n, tt.spread, int64(tt.n))
		g := buildGrid(pts, 10, tt.cellSize)
		thrSq := tt.threshold * tt.threshold

		got := make(map[pair]int)
		EmitPairs(g, thrSq, func(a, b int, d float64) {
			got[sortedPair(a, b)]++
			if math.Abs(d-distSq(pts[a].Pos, pts[b].Pos)) > 1e-12 {
				t.Errorf("%s: wrong distance for (%d,%d)", tt.name, a, b)
			}
		})

		want := bruteForcePairs(pts, thrSq)
		if len(got) != len(want) {
			t.Errorf("%s: expected %d pairs, got %d", tt.name, len(want), len(got))
		}
		for p, n := range got {
			if n != 1 {
				t.Errorf("%s: pair %v emitted %d times", tt.name, p, n)
			}
			if !want[p] {
				t.Errorf("%s: unexpected pair %v", tt.name, p)
			}
		}
	}
}

func TestEmitTriplesCollinear(t *testing.T) {
	pts := pointsAt(0, 0, 0.5, 0, 1, 0)
	g := buildGrid(pts, 10, 1.5)

	count := 0
	EmitTriples(g, 1.5*1.5, func(a, b, c int, longest float64) {
		count++
		if math.Abs(longest-1) > 1e-12 {
			t.Errorf("expected longest side 1 (endpoints), got %f", math.Sqrt(longest))
		}
	})
	if count != 1 {
		t.Errorf("expected 1 triple, got %d", count)
	}
}

func TestEmitTriplesMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		spread    float64
		threshold float64
		cellSize  float64
	}{
		{"small", 30, 4, 1.5, 1.5},
		{"medium", 50, 5, 1.2, 1.2},
		{"coarse cells", 50, 5, 1, 2.5},
		{"overshoot", 50, 12, 3, 3},
		{"clustered", 50, 1.5, 1, 1},
	}

	for _, tt := range tests {
		for seed := int64(0); seed < 5; seed++ {
			pts := scatter(tt.n, tt.spread, seed*31+int64(tt.n))
			g := buildGrid(pts, 10, tt.cellSize)
			thrSq := tt.threshold * tt.threshold

			got := make(map[triple]int)
			EmitTriples(g, thrSq, func(a, b, c int, longest float64) {
				got[sortedTriple(a, b, c)]++
				want := max(distSq(pts[a].Pos, pts[b].Pos), distSq(pts[a].Pos, pts[c].Pos), distSq(pts[b].Pos, pts[c].Pos))
				if math.Abs(longest-want) > 1e-12 {
					t.Errorf("%s: wrong longest side for (%d,%d,%d)", tt.name, a, b, c)
				}
			})

			want := bruteForceTriples(pts, thrSq)
			if len(got) != len(want) {
				t.Errorf("%s/%d: expected %d triples, got %d", tt.name, seed, len(want), len(got))
			}
			for tr, n := range got {
				if n != 1 {
					t.Errorf("%s/%d: triple %v emitted %d times", tt.name, seed, tr, n)
				}
				if !want[tr] {
					t.Errorf("%s/%d: unexpected triple %v", tt.name, seed, tr)
				}
			}
		}
	}
}

func TestEmitOnEmptyGrid(t *testing.T) {
	g := buildGrid(nil, 10, 2)
	EmitPairs(g, 4, func(a, b int, d float64) { t.Error("unexpected pair") })
	EmitTriples(g, 4, func(a, b, c int, d float64) { t.Error("unexpected triple") })

	unconfigured := grid.New()
	unconfigured.Rebucket(scatter(10, 1, 1))
	EmitPairs(unconfigured, 4, func(a, b int, d float64) { t.Error("unexpected pair") })
}

func BenchmarkEmitPairs(b *testing.B) {
	pts := scatter(2000, 20, 1)
	g := buildGrid(pts, 20, 1.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EmitPairs(g, 2.25, func(a, b int, d float64) {})
	}
}

func BenchmarkEmitTriples(b *testing.B) {
	pts := scatter(2000, 20, 1)
	g := buildGrid(pts, 20, 1.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EmitTriples(g, 2.25, func(a, b, c int, d float64) {})
	}
}
