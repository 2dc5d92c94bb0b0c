package grid

import (
	"math"

	"github.com/san-kum/plexus/internal/particles"
)

// maxCells caps the bucket array; finer grids are rejected like a
// non-positive cell size.
const maxCells = 1 << 22

// Bucket holds indices of the points currently inside one cell. The backing
// slice survives Rebucket; only the count is reset.
type Bucket struct {
	items []int
	count int
}

// Items returns a view of the bucket's point indices. The view is only valid
// until the next Rebucket.
func (b *Bucket) Items() []int { return b.items[:b.count] }
func (b *Bucket) Len() int     { return b.count }

func (b *Bucket) add(i int) {
	if b.count < len(b.items) {
		b.items[b.count] = i
	} else {
		b.items = append(b.items, i)
	}
	b.count++
}

// Grid is a uniform grid over a Bound. Cell (0,0) is the bottom-left guard
// cell; cells are stored row-major.
type Grid struct {
	cellSize float64

	offsetX, offsetY     int
	maxIndexX, maxIndexY int

	buckets []Bucket
	points  []particles.Point

	allocations int
}

func New() *Grid {
	return &Grid{}
}

// Configure sizes the grid for bound and cellSize. Buckets are only
// reallocated when the integer offsets change, so a bound that jitters by
// less than a cell costs nothing. A non-positive cellSize leaves the grid in
// its previous configuration. It reports whether buckets were reallocated.
func (g *Grid) Configure(bound particles.Bound, cellSize float64, pointCount int) bool {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return false
	}
	fx, fy := math.Floor(bound.MaxX/cellSize)+1, math.Floor(bound.MaxY/cellSize)+1
	if !(fx*fy*4 <= maxCells) {
		return false
	}
	g.cellSize = cellSize

	offX, offY := int(fx), int(fy)
	if offX < 1 {
		offX = 1
	}
	if offY < 1 {
		offY = 1
	}
	if g.buckets != nil && offX == g.offsetX && offY == g.offsetY {
		return false
	}

	g.offsetX, g.offsetY = offX, offY
	g.maxIndexX, g.maxIndexY = 2*offX-1, 2*offY-1

	cells := (g.maxIndexX + 1) * (g.maxIndexY + 1)
	perCell := int(math.Ceil(2 * float64(pointCount) / float64(cells)))
	g.buckets = make([]Bucket, cells)
	for i := range g.buckets {
		g.buckets[i].items = make([]int, 0, perCell)
	}
	g.allocations++
	return true
}

// Rebucket empties every bucket and files each point under its cell.
func (g *Grid) Rebucket(points []particles.Point) {
	g.points = points
	for i := range g.buckets {
		g.buckets[i].count = 0
	}
	if len(g.buckets) == 0 {
		return
	}
	for i := range points {
		cx, cy := g.GetCell(points[i].Pos.X, points[i].Pos.Y)
		g.buckets[cy*g.Cols()+cx].add(i)
	}
}

// GetCell maps a position to its cell, clamped into the grid so points on or
// momentarily past the bound still land in an edge cell.
func (g *Grid) GetCell(x, y float64) (int, int) {
	if g.cellSize <= 0 {
		return 0, 0
	}
	cx := clamp(floorInt(x/g.cellSize)+g.offsetX, 0, g.maxIndexX)
	cy := clamp(floorInt(y/g.cellSize)+g.offsetY, 0, g.maxIndexY)
	return cx, cy
}

func (g *Grid) Bucket(cx, cy int) *Bucket {
	if cx < 0 || cx > g.maxIndexX || cy < 0 || cy > g.maxIndexY || g.buckets == nil {
		return nil
	}
	return &g.buckets[cy*g.Cols()+cx]
}

// ForEachBucket visits every occupied bucket in row-major order.
func (g *Grid) ForEachBucket(fn func(cx, cy int, items []int)) {
	cols := g.Cols()
	for i := range g.buckets {
		if g.buckets[i].count == 0 {
			continue
		}
		fn(i%cols, i/cols, g.buckets[i].Items())
	}
}

// CellBounds returns the world-space rectangle covered by cell (cx, cy).
func (g *Grid) CellBounds(cx, cy int) (minX, minY, maxX, maxY float64) {
	minX = float64(cx-g.offsetX) * g.cellSize
	minY = float64(cy-g.offsetY) * g.cellSize
	return minX, minY, minX + g.cellSize, minY + g.cellSize
}

func (g *Grid) Points() []particles.Point { return g.points }
func (g *Grid) CellSize() float64         { return g.cellSize }
func (g *Grid) Offsets() (int, int)       { return g.offsetX, g.offsetY }
func (g *Grid) MaxIndex() (int, int)      { return g.maxIndexX, g.maxIndexY }
func (g *Grid) Allocations() int          { return g.allocations }

func (g *Grid) Cols() int {
	if g.buckets == nil {
		return 0
	}
	return g.maxIndexX + 1
}

func (g *Grid) Rows() int {
	if g.buckets == nil {
		return 0
	}
	return g.maxIndexY + 1
}

// PeakLoad returns the largest bucket count after the last Rebucket.
func (g *Grid) PeakLoad() int {
	peak := 0
	for i := range g.buckets {
		if g.buckets[i].count > peak {
			peak = g.buckets[i].count
		}
	}
	return peak
}

func floorInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Floor(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
