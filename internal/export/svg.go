package export

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/san-kum/plexus/internal/geometry"
	"github.com/san-kum/plexus/internal/particles"
	"github.com/san-kum/plexus/internal/viz"
)

// FrameSVG records one frame of geometry as SVG elements. It accepts both
// batch draws and stream uploads; Begin starts a new frame.
type FrameSVG struct {
	bound      particles.Bound
	width      int
	height     int
	background string

	elems    strings.Builder
	elements int
}

func NewFrameSVG(bound particles.Bound, width, height int) *FrameSVG {
	return &FrameSVG{bound: bound, width: width, height: height, background: "#0a0a0a"}
}

func (f *FrameSVG) SetBound(b particles.Bound) { f.bound = b }
func (f *FrameSVG) Elements() int              { return f.elements }

func (f *FrameSVG) Begin() {
	f.elems.Reset()
	f.elements = 0
}

func (f *FrameSVG) project(v geometry.Vertex) (float64, float64) {
	if f.bound.MaxX <= 0 || f.bound.MaxY <= 0 {
		return float64(f.width) / 2, float64(f.height) / 2
	}
	x := (float64(v.X) + f.bound.MaxX) / (2 * f.bound.MaxX) * float64(f.width)
	y := (f.bound.MaxY - float64(v.Y)) / (2 * f.bound.MaxY) * float64(f.height)
	return x, y
}

func (f *FrameSVG) Draw(kind geometry.Kind, prims []geometry.Primitive) {
	for i := range prims {
		f.write(kind, prims[i].Vertices())
	}
}

func (f *FrameSVG) write(kind geometry.Kind, v []geometry.Vertex) {
	if kind == geometry.KindLine {
		x0, y0 := f.project(v[0])
		x1, y1 := f.project(v[1])
		fmt.Fprintf(&f.elems, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f"/>`+"\n",
			x0, y0, x1, y1, hex(v[0].Color), alpha(v[0].Color))
		f.elements++
		return
	}
	pts := make([]string, len(v))
	for i := range v {
		x, y := f.project(v[i])
		pts[i] = fmt.Sprintf("%.2f,%.2f", x, y)
	}
	fmt.Fprintf(&f.elems, `<polygon points="%s" fill="%s" fill-opacity="%.3f"/>`+"\n",
		strings.Join(pts, " "), hex(v[0].Color), alpha(v[0].Color))
	f.elements++
}

// Uploader returns an upload target that records a stream unit's written
// primitives.
func (f *FrameSVG) Uploader(kind geometry.Kind) geometry.Uploader {
	return unitRecorder{svg: f, kind: kind}
}

type unitRecorder struct {
	svg  *FrameSVG
	kind geometry.Kind
}

func (r unitRecorder) Upload(_ int, u *geometry.Unit) {
	vpp := r.kind.VerticesPerPrimitive()
	for i := 0; i+vpp <= u.Len; i += vpp {
		r.svg.write(r.kind, u.Vertices[i:i+vpp])
	}
}

func (r unitRecorder) Hide(int)    {}
func (r unitRecorder) Release(int) {}

func (f *FrameSVG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, f.width, f.height, f.width, f.height, f.background)
	sb.WriteString(f.elems.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (f *FrameSVG) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(f.String()), 0644); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func alpha(c color.RGBA) float64 { return float64(c.A) / 255 }

// CanvasToSVG vectorizes a braille canvas, one circle per lit dot in the
// color of its cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			c := canvas.ColorAt(x, y)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius, hex(c))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
