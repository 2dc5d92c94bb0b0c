package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/plexus/internal/particles"
	"gonum.org/v1/gonum/spatial/r2"
)

func randomPoints(n int, spread float64, seed int64) []particles.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]particles.Point, n)
	for i := range pts {
		pts[i].Pos = r2.Vec{X: (rng.Float64()*2 - 1) * spread, Y: (rng.Float64()*2 - 1) * spread}
	}
	return pts
}

func TestConfigureDimensions(t *testing.T) {
	g := New()
	if !g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, 5, 100) {
		t.Fatal("expected first configure to allocate")
	}

	ox, oy := g.Offsets()
	if ox != 3 || oy != 3 {
		t.Errorf("expected offsets 3,3, got %d,%d", ox, oy)
	}
	mx, my := g.MaxIndex()
	if mx != 5 || my != 5 {
		t.Errorf("expected max index 5,5, got %d,%d", mx, my)
	}
	if g.Cols() != 6 || g.Rows() != 6 {
		t.Errorf("expected 6x6 buckets, got %dx%d", g.Cols(), g.Rows())
	}

	g.Configure(particles.Bound{MaxX: 20, MaxY: 4}, 5, 100)
	if g.Cols() != 10 || g.Rows() != 2 {
		t.Errorf("expected 10x2 buckets, got %dx%d", g.Cols(), g.Rows())
	}
}

func TestConfigureIsIdempotent(t *testing.T) {
	g := New()
	bound := particles.Bound{MaxX: 10, MaxY: 10}

	g.Configure(bound, 5, 50)
	if g.Configure(bound, 5, 50) {
		t.Error("expected identical configure to be a no-op")
	}
	if g.Configure(bound, 4.9999, 50) {
		t.Error("expected sub-cell change with equal offsets to be a no-op")
	}
	if g.CellSize() != 4.9999 {
		t.Errorf("expected cell size to follow the latest value, got %v", g.CellSize())
	}
	if g.Configure(particles.Bound{MaxX: 10.5, MaxY: 10.2}, 4.9999, 50) {
		t.Error("expected bound jitter inside a cell to be a no-op")
	}
	if g.Allocations() != 1 {
		t.Errorf("expected 1 allocation, got %d", g.Allocations())
	}

	if !g.Configure(bound, 5.0001, 50) {
		t.Error("expected offset change to reallocate")
	}
	if ox, _ := g.Offsets(); ox != 2 {
		t.Errorf("expected offset 2, got %d", ox)
	}
}

func TestConfigureRejectsDegenerateCellSize(t *testing.T) {
	g := New()
	g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, 5, 10)

	for _, cs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, cs, 10) {
			t.Errorf("cell size %v: expected configure to be skipped", cs)
		}
		if g.CellSize() != 5 || g.Cols() != 6 {
			t.Errorf("cell size %v: grid changed to cell %v cols %d", cs, g.CellSize(), g.Cols())
		}
	}
}

func TestRebucketPartition(t *testing.T) {
	tests := []struct {
		name     string
		cellSize float64
		spread   float64
	}{
		{"inside bound", 3, 10},
		{"overshoot", 2.5, 14},
		{"single cell", 50, 10},
		{"fine", 0.7, 10},
	}

	for _, tt := range tests {
		g := New()
		pts := randomPoints(400, tt.spread, 42)
		g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, tt.cellSize, len(pts))
		g.Rebucket(pts)

		seen := make([]int, len(pts))
		ox, oy := g.Offsets()
		mx, my := g.MaxIndex()
		for cy := 0; cy < g.Rows(); cy++ {
			for cx := 0; cx < g.Cols(); cx++ {
				for _, i := range g.Bucket(cx, cy).Items() {
					seen[i]++
					p := pts[i].Pos
					wantX := clamp(int(math.Floor(p.X/tt.cellSize))+ox, 0, mx)
					wantY := clamp(int(math.Floor(p.Y/tt.cellSize))+oy, 0, my)
					if cx != wantX || cy != wantY {
						t.Errorf("%s: point %d in (%d,%d), expected (%d,%d)", tt.name, i, cx, cy, wantX, wantY)
					}
				}
			}
		}
		for i, n := range seen {
			if n != 1 {
				t.Errorf("%s: point %d found in %d buckets", tt.name, i, n)
			}
		}
	}
}

func TestRebucketKeepsStorage(t *testing.T) {
	g := New()
	pts := randomPoints(200, 10, 1)
	g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, 5, len(pts))
	g.Rebucket(pts)

	caps := make([]int, len(g.buckets))
	for i := range g.buckets {
		caps[i] = cap(g.buckets[i].items)
	}

	g.Rebucket(pts[:10])
	total := 0
	for i := range g.buckets {
		if cap(g.buckets[i].items) != caps[i] {
			t.Errorf("bucket %d capacity changed from %d to %d", i, caps[i], cap(g.buckets[i].items))
		}
		total += g.buckets[i].Len()
	}
	if total != 10 {
		t.Errorf("expected 10 bucketed points, got %d", total)
	}
}

func TestGetCellClamps(t *testing.T) {
	g := New()
	g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, 5, 0)

	tests := []struct {
		x, y   float64
		cx, cy int
	}{
		{0, 0, 3, 3},
		{-0.1, -0.1, 2, 2},
		{10, 10, 5, 5},
		{-10, -10, 1, 1},
		{1e9, -1e9, 5, 0},
		{math.Inf(-1), math.Inf(1), 0, 5},
	}
	for _, tt := range tests {
		cx, cy := g.GetCell(tt.x, tt.y)
		if cx != tt.cx || cy != tt.cy {
			t.Errorf("GetCell(%v,%v): expected (%d,%d), got (%d,%d)", tt.x, tt.y, tt.cx, tt.cy, cx, cy)
		}
	}
}

func TestForEachBucketAndPeakLoad(t *testing.T) {
	g := New()
	pts := []particles.Point{
		{Pos: r2.Vec{X: 1, Y: 1}},
		{Pos: r2.Vec{X: 1.5, Y: 1.2}},
		{Pos: r2.Vec{X: -7, Y: 3}},
	}
	g.Configure(particles.Bound{MaxX: 10, MaxY: 10}, 5, len(pts))
	g.Rebucket(pts)

	visited, total := 0, 0
	g.ForEachBucket(func(cx, cy int, items []int) {
		visited++
		total += len(items)
	})
	if visited != 2 || total != 3 {
		t.Errorf("expected 2 occupied buckets with 3 points, got %d and %d", visited, total)
	}
	if g.PeakLoad() != 2 {
		t.Errorf("expected peak load 2, got %d", g.PeakLoad())
	}

	minX, minY, maxX, maxY := g.CellBounds(3, 3)
	if minX != 0 || minY != 0 || maxX != 5 || maxY != 5 {
		t.Errorf("expected cell (3,3) to cover [0,5]x[0,5], got [%v,%v]x[%v,%v]", minX, maxX, minY, maxY)
	}
}
