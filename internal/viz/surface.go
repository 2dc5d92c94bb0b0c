package viz

import (
	"image/color"

	"github.com/san-kum/plexus/internal/geometry"
	"github.com/san-kum/plexus/internal/particles"
)

// Surface rasterizes committed geometry onto a Canvas. It is both the
// Drawer for batch sinks and, through Uploader, the upload target for
// stream sinks, so either renderer paints the same picture.
type Surface struct {
	canvas *Canvas
	bound  particles.Bound
	topo   map[geometry.Kind][]uint16
}

func NewSurface(c *Canvas, bound particles.Bound) *Surface {
	s := &Surface{canvas: c, bound: bound, topo: make(map[geometry.Kind][]uint16)}
	for _, k := range []geometry.Kind{geometry.KindQuad, geometry.KindLine, geometry.KindThickLine, geometry.KindTriangle} {
		s.topo[k] = geometry.Topology(k, 1)
	}
	return s
}

func (s *Surface) Canvas() *Canvas            { return s.canvas }
func (s *Surface) SetBound(b particles.Bound) { s.bound = b }

// Resize swaps in a blank canvas of w by h cells.
func (s *Surface) Resize(w, h int) {
	if w == s.canvas.Width && h == s.canvas.Height {
		return
	}
	s.canvas = NewCanvas(max(w, 1), max(h, 1))
}

// Begin clears the canvas for the next frame.
func (s *Surface) Begin() { s.canvas.Clear() }

// Project maps world coordinates to canvas sub-pixels with +Y up.
func (s *Surface) Project(x, y float64) (float64, float64) {
	w, h := float64(s.canvas.PixelWidth()-1), float64(s.canvas.PixelHeight()-1)
	if s.bound.MaxX <= 0 || s.bound.MaxY <= 0 {
		return w / 2, h / 2
	}
	px := (x + s.bound.MaxX) / (2 * s.bound.MaxX) * w
	py := (s.bound.MaxY - y) / (2 * s.bound.MaxY) * h
	return px, py
}

func (s *Surface) Draw(kind geometry.Kind, prims []geometry.Primitive) {
	idx := s.topo[kind]
	for i := range prims {
		s.paint(kind, prims[i].Vertices(), idx)
	}
}

// paint walks an index table: pairs for lines, triples for everything else.
func (s *Surface) paint(kind geometry.Kind, verts []geometry.Vertex, idx []uint16) {
	if kind == geometry.KindLine {
		for i := 0; i+1 < len(idx); i += 2 {
			a, b := verts[idx[i]], verts[idx[i+1]]
			x0, y0 := s.Project(float64(a.X), float64(a.Y))
			x1, y1 := s.Project(float64(b.X), float64(b.Y))
			s.canvas.DrawLine(int(x0), int(y0), int(x1), int(y1), brighter(a, b))
		}
		return
	}
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]
		x0, y0 := s.Project(float64(a.X), float64(a.Y))
		x1, y1 := s.Project(float64(b.X), float64(b.Y))
		x2, y2 := s.Project(float64(c.X), float64(c.Y))
		s.canvas.FillTriangle(x0, y0, x1, y1, x2, y2, a.Color)
	}
}

func brighter(a, b geometry.Vertex) color.RGBA {
	if b.Color.A > a.Color.A {
		return b.Color
	}
	return a.Color
}

// Uploader returns the upload target for a stream of kind.
func (s *Surface) Uploader(kind geometry.Kind) geometry.Uploader {
	return &unitPainter{surface: s, kind: kind}
}

type unitPainter struct {
	surface *Surface
	kind    geometry.Kind
}

// Upload paints the written part of the unit through its own index table.
func (p *unitPainter) Upload(_ int, u *geometry.Unit) {
	vpp := p.kind.VerticesPerPrimitive()
	n := u.Len / vpp * p.kind.IndicesPerPrimitive()
	p.surface.paint(p.kind, u.Vertices, u.Indices[:n])
}

// Hide and Release have nothing to free; the canvas is cleared every frame.
func (p *unitPainter) Hide(int)    {}
func (p *unitPainter) Release(int) {}
