// Package tui streams frames to a plain ANSI terminal without taking over
// input, for headless runs that still want to watch the scene.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/plexus/internal/sim"
	"github.com/san-kum/plexus/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that prints the surface at most frameRate
// times per second and clears it after every frame.
type LiveRenderer struct {
	title     string
	frameRate int
	lastFrame time.Time
	surface   *viz.Surface
	out       io.Writer
	now       func() time.Time
}

func NewLiveRenderer(title string, frameRate int, surface *viz.Surface, out io.Writer) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		title:     title,
		frameRate: frameRate,
		surface:   surface,
		out:       out,
		now:       time.Now,
	}
}

func (r *LiveRenderer) OnFrame(f sim.Frame) {
	defer r.surface.Begin()

	now := r.now()
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now
	r.render(f)
}

func (r *LiveRenderer) render(f sim.Frame) {
	c := r.surface.Canvas()
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  tick=%d t=%.2fs\n", r.title, f.Tick, f.Time))
	b.WriteString("  " + strings.Repeat("-", c.Width) + "\n")

	for _, row := range strings.Split(strings.TrimSuffix(c.Render(), "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", c.Width) + "\n")
	b.WriteString(fmt.Sprintf("  points=%d lines=%d triangles=%d units=%d/%d dropped=%d\n",
		f.Points, f.Lines, f.Triangles, f.ActiveUnits, f.Units, f.Dropped))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
