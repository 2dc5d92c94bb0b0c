package proximity

import (
	"github.com/san-kum/plexus/internal/grid"
	"gonum.org/v1/gonum/spatial/r2"
)

type PairFunc func(a, b int, distSq float64)

// TripleFunc receives the three point indices and the squared length of the
// longest side.
type TripleFunc func(a, b, c int, longestSq float64)

// stencil holds the forward neighbours of one cell, empty buckets included,
// in the order up-left, up, up-right, right.
type stencil struct {
	cells [4][]int
	n     int
}

func (s *stencil) load(g *grid.Grid, cx, cy int) {
	s.n = 0
	mx, my := g.MaxIndex()
	if cy < my {
		for x := cx - 1; x <= cx+1; x++ {
			if x < 0 || x > mx {
				continue
			}
			s.cells[s.n] = g.Bucket(x, cy+1).Items()
			s.n++
		}
	}
	if cx < mx {
		s.cells[s.n] = g.Bucket(cx+1, cy).Items()
		s.n++
	}
}

// EmitPairs calls fn once for every unordered pair of points whose squared
// distance is at most thresholdSq.
func EmitPairs(g *grid.Grid, thresholdSq float64, fn PairFunc) {
	pts := g.Points()
	var st stencil

	g.ForEachBucket(func(cx, cy int, items []int) {
		for i, a := range items {
			pa := pts[a].Pos
			for _, b := range items[i+1:] {
				if d := distSq(pa, pts[b].Pos); d <= thresholdSq {
					fn(a, b, d)
				}
			}
		}

		st.load(g, cx, cy)
		for k := 0; k < st.n; k++ {
			nb := st.cells[k]
			if len(nb) == 0 {
				continue
			}
			for _, a := range items {
				pa := pts[a].Pos
				for _, b := range nb {
					if d := distSq(pa, pts[b].Pos); d <= thresholdSq {
						fn(a, b, d)
					}
				}
			}
		}
	})
}

// EmitTriples calls fn once for every unordered triple of points whose three
// pairwise squared distances are all at most thresholdSq.
func EmitTriples(g *grid.Grid, thresholdSq float64, fn TripleFunc) {
	pts := g.Points()
	var st stencil

	emit := func(a, b, c int, ab float64) {
		ac := distSq(pts[a].Pos, pts[c].Pos)
		if ac > thresholdSq {
			return
		}
		bc := distSq(pts[b].Pos, pts[c].Pos)
		if bc > thresholdSq {
			return
		}
		fn(a, b, c, max(ab, ac, bc))
	}

	g.ForEachBucket(func(cx, cy int, items []int) {
		st.load(g, cx, cy)

		// all three in this cell
		for i, a := range items {
			for j := i + 1; j < len(items); j++ {
				b := items[j]
				ab := distSq(pts[a].Pos, pts[b].Pos)
				if ab > thresholdSq {
					continue
				}
				for _, c := range items[j+1:] {
					emit(a, b, c, ab)
				}
			}
		}

		// two here, one in a neighbour
		for i, a := range items {
			for _, b := range items[i+1:] {
				ab := distSq(pts[a].Pos, pts[b].Pos)
				if ab > thresholdSq {
					continue
				}
				for k := 0; k < st.n; k++ {
					for _, c := range st.cells[k] {
						emit(a, b, c, ab)
					}
				}
			}
		}

		// one here, two in the same neighbour
		for k := 0; k < st.n; k++ {
			nb := st.cells[k]
			if len(nb) < 2 {
				continue
			}
			for _, a := range items {
				for i, b := range nb {
					ab := distSq(pts[a].Pos, pts[b].Pos)
					if ab > thresholdSq {
						continue
					}
					for _, c := range nb[i+1:] {
						emit(a, b, c, ab)
					}
				}
			}
		}

		// one here, one in each of two different neighbours
		for k1 := 0; k1 < st.n; k1++ {
			if len(st.cells[k1]) == 0 {
				continue
			}
			for k2 := k1 + 1; k2 < st.n; k2++ {
				// up-left is never adjacent to up-right or right
				if st.n == 4 && k1 == 0 && k2 > 1 {
					continue
				}
				if len(st.cells[k2]) == 0 {
					continue
				}
				for _, a := range items {
					for _, b := range st.cells[k1] {
						ab := distSq(pts[a].Pos, pts[b].Pos)
						if ab > thresholdSq {
							continue
						}
						for _, c := range st.cells[k2] {
							emit(a, b, c, ab)
						}
					}
				}
			}
		}
	})
}

func distSq(p, q r2.Vec) float64 {
	return r2.Norm2(r2.Sub(p, q))
}
