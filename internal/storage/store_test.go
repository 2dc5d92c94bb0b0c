package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Tick: 1, Time: 0.016, Points: 10, Lines: 7, Triangles: 2, Quads: 11, Units: 4, ActiveUnits: 4, Vertices: 64, PeakLoad: 3},
			{Tick: 2, Time: 0.032, Points: 10, Lines: 9, Triangles: 3, Quads: 11, Units: 4, ActiveUnits: 4, Vertices: 71, Dropped: 1, PeakLoad: 4},
		},
		Metrics: map[string]float64{"mean_lines": 8},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	s := config.DefaultSettings()
	s.Seed = 42
	runID, err := st.Save("default", s, sim.Config{Ticks: 2, Dt: 0.016}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "default" {
		t.Errorf("expected preset 'default', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["mean_lines"] != 8 {
		t.Errorf("expected mean_lines 8, got %f", meta.Metrics["mean_lines"])
	}
	if meta.Settings == nil || meta.Settings.ParticleCount != s.ParticleCount {
		t.Errorf("expected settings to round-trip, got %+v", meta.Settings)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := testResult().Frames
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: expected %+v, got %+v", i, want[i], frames[i])
		}
	}
}

func TestStoreListOrdersByTime(t *testing.T) {
	st := New(t.TempDir())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	st.now = func() time.Time {
		step++
		return base.Add(time.Duration(-step) * time.Minute)
	}

	s := config.DefaultSettings()
	cfg := sim.Config{Ticks: 2, Dt: 0.016}
	first, _ := st.Save("a", s, cfg, testResult())
	second, _ := st.Save("b", s, cfg, testResult())

	if err := os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected %s before %s, got %s, %s", second, first, runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	r := testResult()
	if err := ExportJSON(&buf, RunMetadata{ID: "x"}, r.Frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 2 || data.Lines[1] != 9 || data.Dropped[1] != 1 {
		t.Errorf("unexpected export: %+v", data)
	}
}
