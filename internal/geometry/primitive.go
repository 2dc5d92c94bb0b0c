package geometry

import (
	"image/color"
	"math"
)

type Kind int

const (
	KindQuad Kind = iota
	KindLine
	KindThickLine
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindQuad:
		return "quad"
	case KindLine:
		return "line"
	case KindThickLine:
		return "thick_line"
	case KindTriangle:
		return "triangle"
	}
	return "unknown"
}

func (k Kind) VerticesPerPrimitive() int {
	switch k {
	case KindLine:
		return 2
	case KindTriangle:
		return 3
	case KindQuad, KindThickLine:
		return 4
	}
	return 0
}

// IndicesPerPrimitive is the length of one primitive's entry in the
// topology table. Quads and thick lines are drawn as two triangles.
func (k Kind) IndicesPerPrimitive() int {
	switch k {
	case KindLine:
		return 2
	case KindTriangle:
		return 3
	case KindQuad, KindThickLine:
		return 6
	}
	return 0
}

type Vertex struct {
	X, Y  float32
	Color color.RGBA
}

// Primitive is a fixed-size value so writing one never allocates. Only the
// first Kind.VerticesPerPrimitive() entries of V are meaningful.
type Primitive struct {
	Kind Kind
	V    [4]Vertex
}

func (p *Primitive) Vertices() []Vertex {
	return p.V[:p.Kind.VerticesPerPrimitive()]
}

func Line(x0, y0, x1, y1 float32, c0, c1 color.RGBA) Primitive {
	return Primitive{Kind: KindLine, V: [4]Vertex{{x0, y0, c0}, {x1, y1, c1}}}
}

// ThickLine encodes a segment of the given width as a quad, offset
// perpendicular to the segment by width/2 on each side.
func ThickLine(x0, y0, x1, y1, width float32, c0, c1 color.RGBA) Primitive {
	dx, dy := float64(x1-x0), float64(y1-y0)
	l := math.Hypot(dx, dy)
	half := float64(width) / 2
	nx, ny := 0.0, half
	if l > 0 {
		nx, ny = -dy/l*half, dx/l*half
	}
	ox, oy := float32(nx), float32(ny)
	return Primitive{Kind: KindThickLine, V: [4]Vertex{
		{x0 + ox, y0 + oy, c0},
		{x0 - ox, y0 - oy, c0},
		{x1 - ox, y1 - oy, c1},
		{x1 + ox, y1 + oy, c1},
	}}
}

func Triangle(a, b, c Vertex) Primitive {
	return Primitive{Kind: KindTriangle, V: [4]Vertex{a, b, c}}
}

// Quad is an axis-aligned rectangle around (cx, cy), counter-clockwise from
// the bottom-left corner.
func Quad(cx, cy, halfW, halfH float32, c color.RGBA) Primitive {
	return Primitive{Kind: KindQuad, V: [4]Vertex{
		{cx - halfW, cy - halfH, c},
		{cx + halfW, cy - halfH, c},
		{cx + halfW, cy + halfH, c},
		{cx - halfW, cy + halfH, c},
	}}
}

// Topology builds the index table for n primitives of kind.
func Topology(kind Kind, n int) []uint16 {
	vpp := kind.VerticesPerPrimitive()
	idx := make([]uint16, 0, n*kind.IndicesPerPrimitive())
	for p := 0; p < n; p++ {
		base := uint16(p * vpp)
		switch kind {
		case KindQuad, KindThickLine:
			idx = append(idx, base, base+1, base+2, base, base+2, base+3)
		case KindTriangle:
			idx = append(idx, base, base+1, base+2)
		case KindLine:
			idx = append(idx, base, base+1)
		}
	}
	return idx
}
