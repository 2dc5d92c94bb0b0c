package viz

import (
	"image/color"
	"strings"
	"testing"
)

var opaque = color.RGBA{255, 255, 255, 255}

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5, opaque)
	if !c.Lit(3, 5) {
		t.Fatal("expected dot to be lit")
	}
	c.Unset(3, 5)
	if c.Lit(3, 5) {
		t.Error("expected dot to be cleared")
	}

	c.Set(-1, 0, opaque)
	c.Set(100, 100, opaque)
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("out of range writes should be ignored")
	}
}

func TestCanvasDither(t *testing.T) {
	c := NewCanvas(1, 1)
	faint := color.RGBA{255, 255, 255, 20}
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			c.Set(x, y, faint)
		}
	}
	lit := 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			if c.Lit(x, y) {
				lit++
			}
		}
	}
	if lit != 1 {
		t.Errorf("expected one dot at low alpha, got %d", lit)
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19, opaque)
	if !c.Lit(0, 0) || !c.Lit(19, 19) || !c.Lit(10, 10) {
		t.Error("expected the diagonal to be lit")
	}
}

func TestFillTriangle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillTriangle(0, 0, 19, 0, 0, 19, opaque)
	if !c.Lit(2, 2) {
		t.Error("expected interior dot to be lit")
	}
	if c.Lit(18, 18) {
		t.Error("expected dot outside the hypotenuse to stay dark")
	}

	// winding must not matter
	d := NewCanvas(10, 5)
	d.FillTriangle(0, 0, 0, 19, 19, 0, opaque)
	if c.String() != d.String() {
		t.Error("expected both windings to fill the same dots")
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 3)
	c.FillTriangle(0, 0, 5, 0, 0, 11, opaque)
	c.Clear()
	for _, r := range strings.ReplaceAll(c.String(), "\n", "") {
		if r != blank {
			t.Fatalf("expected blank canvas, got %q", r)
		}
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(color.RGBA{0x12, 0xab, 0xff, 0xff}); got != "#12abff" {
		t.Errorf("expected #12abff, got %s", got)
	}
}
