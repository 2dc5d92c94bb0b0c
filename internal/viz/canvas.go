package viz

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// bayer is a 2x4 ordered-dither matrix matching the braille cell, scaled to
// alpha thresholds.
var bayer = [4][2]uint8{
	{16, 144},
	{208, 80},
	{48, 176},
	{240, 112},
}

const blank = 0x2800

type cell struct {
	dots  rune
	color color.RGBA
}

// Canvas is a braille pixel canvas with one color per character cell.
// Sub-pixel coordinates run from (0,0) at the top left to
// (Width*2-1, Height*4-1).
type Canvas struct {
	Width, Height int
	cells         []cell
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([]cell, w*h)}
	c.Clear()
	return c
}

func (c *Canvas) PixelWidth() int  { return c.Width * 2 }
func (c *Canvas) PixelHeight() int { return c.Height * 4 }

func (c *Canvas) at(x, y int) *cell {
	if x < 0 || y < 0 {
		return nil
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return nil
	}
	return &c.cells[row*c.Width+col]
}

// Set lights the dot at (x, y) when col's alpha clears the dither threshold
// for that dot. The cell keeps the most opaque color written to it.
func (c *Canvas) Set(x, y int, col color.RGBA) {
	ce := c.at(x, y)
	if ce == nil || col.A == 0 || col.A < bayer[y%4][x%2] {
		return
	}
	ce.dots |= pixelMap[y%4][x%2]
	if col.A >= ce.color.A {
		ce.color = col
	}
}

func (c *Canvas) Unset(x, y int) {
	if ce := c.at(x, y); ce != nil {
		ce.dots &^= pixelMap[y%4][x%2]
	}
}

func (c *Canvas) Lit(x, y int) bool {
	ce := c.at(x, y)
	return ce != nil && ce.dots&pixelMap[y%4][x%2] != 0
}

// ColorAt returns the color of the cell holding dot (x, y).
func (c *Canvas) ColorAt(x, y int) color.RGBA {
	if ce := c.at(x, y); ce != nil {
		return ce.color
	}
	return color.RGBA{}
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{dots: blank}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, col color.RGBA) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillTriangle scan-converts a triangle, testing each dot center against the
// three edges.
func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2 float64, col color.RGBA) {
	minX := int(min(x0, x1, x2))
	maxX := int(max(x0, x1, x2))
	minY := int(min(y0, y1, y2))
	maxY := int(max(y0, y1, y2))
	minX, minY = max(minX, 0), max(minY, 0)
	maxX, maxY = min(maxX, c.PixelWidth()-1), min(maxY, c.PixelHeight()-1)

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		c.DrawLine(int(x0), int(y0), int(x1), int(y1), col)
		c.DrawLine(int(x1), int(y1), int(x2), int(y2), col)
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(x1, y1, x2, y2, px, py)
			w1 := edge(x2, y2, x0, y0, px, py)
			w2 := edge(x0, y0, x1, y1, px, py)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				c.Set(x, y, col)
			}
		}
	}
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(c.cells[row*c.Width+col].dots)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is String with every lit cell colored. Runs of the same color share
// one style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		var run strings.Builder
		var runColor color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor.A == 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(runColor))).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.Width; col++ {
			ce := c.cells[row*c.Width+col]
			cc := ce.color
			if ce.dots == blank {
				cc = color.RGBA{}
			}
			if cc != runColor {
				flush()
				runColor = cc
			}
			run.WriteRune(ce.dots)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func hexColor(c color.RGBA) string {
	const hex = "0123456789abcdef"
	return string([]byte{'#',
		hex[c.R>>4], hex[c.R&0xf],
		hex[c.G>>4], hex[c.G&0xf],
		hex[c.B>>4], hex[c.B&0xf],
	})
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
