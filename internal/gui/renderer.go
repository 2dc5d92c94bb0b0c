package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/plexus/internal/geometry"
)

// Renderer keeps the geometry committed during the last tick and replays it
// through rlgl while the camera is active. Stream layers replay in the order
// their uploaders were created; batch draws replay in call order.
type Renderer struct {
	layers []*layer
	draws  []batchDraw
}

type batchDraw struct {
	kind  geometry.Kind
	prims []geometry.Primitive
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Begin forgets the previous tick's batch draws. Stream units persist until
// hidden or released.
func (r *Renderer) Begin() {
	clear(r.draws)
	r.draws = r.draws[:0]
}

func (r *Renderer) Draw(kind geometry.Kind, prims []geometry.Primitive) {
	if len(prims) == 0 {
		return
	}
	r.draws = append(r.draws, batchDraw{kind: kind, prims: append([]geometry.Primitive(nil), prims...)})
}

func (r *Renderer) Uploader(kind geometry.Kind) geometry.Uploader {
	l := &layer{kind: kind, units: make(map[int]*geometry.Unit)}
	r.layers = append(r.layers, l)
	return l
}

// Visible counts the stream units that will be replayed.
func (r *Renderer) Visible() int {
	n := 0
	for _, l := range r.layers {
		n += len(l.units)
	}
	return n
}

func (r *Renderer) Replay() {
	for _, l := range r.layers {
		for i := 0; i < l.slots; i++ {
			u, ok := l.units[i]
			if !ok {
				continue
			}
			n := u.Len / l.kind.VerticesPerPrimitive() * l.kind.IndicesPerPrimitive()
			emit(l.kind, u.Vertices, u.Indices[:n])
		}
	}

	for _, d := range r.draws {
		// Indices are 16-bit, so large batches go out in chunks.
		chunk := geometry.MaxVertices(d.kind) / d.kind.VerticesPerPrimitive()
		for start := 0; start < len(d.prims); start += chunk {
			prims := d.prims[start:min(start+chunk, len(d.prims))]
			verts := make([]geometry.Vertex, 0, len(prims)*d.kind.VerticesPerPrimitive())
			for i := range prims {
				verts = append(verts, prims[i].Vertices()...)
			}
			emit(d.kind, verts, geometry.Topology(d.kind, len(prims)))
		}
	}
}

// layer is the upload target of one stream. Units are held by reference;
// the stream rewrites them in place before the next upload.
type layer struct {
	kind  geometry.Kind
	units map[int]*geometry.Unit
	slots int
}

func (l *layer) Upload(i int, u *geometry.Unit) {
	l.units[i] = u
	l.slots = max(l.slots, i+1)
}

func (l *layer) Hide(i int)    { delete(l.units, i) }
func (l *layer) Release(i int) { delete(l.units, i) }

// emit sends indexed geometry to rlgl. World Y points up, screen Y down.
func emit(kind geometry.Kind, verts []geometry.Vertex, idx []uint16) {
	if len(idx) == 0 {
		return
	}
	mode := int32(rl.Triangles)
	if kind == geometry.KindLine {
		mode = rl.Lines
	}
	rl.Begin(mode)
	for _, i := range idx {
		v := verts[i]
		rl.Color4ub(v.Color.R, v.Color.G, v.Color.B, v.Color.A)
		rl.Vertex2f(v.X, -v.Y)
	}
	rl.End()
}
