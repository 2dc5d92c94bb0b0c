package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/plexus/internal/sim"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Steps   int         `json:"steps"`
	Lines   []int       `json:"lines"`
	Tris    []int       `json:"triangles"`
	Verts   []int       `json:"vertices"`
	Dropped []int       `json:"dropped"`
}

// ExportJSON writes a run's metadata with its per-frame series.
func ExportJSON(out io.Writer, meta RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Run:     meta,
		Steps:   len(frames),
		Lines:   make([]int, len(frames)),
		Tris:    make([]int, len(frames)),
		Verts:   make([]int, len(frames)),
		Dropped: make([]int, len(frames)),
	}
	for i, f := range frames {
		data.Lines[i] = f.Lines
		data.Tris[i] = f.Triangles
		data.Verts[i] = f.Vertices
		data.Dropped[i] = f.Dropped
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
