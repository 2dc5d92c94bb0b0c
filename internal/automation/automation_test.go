package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/sim"
)

var testViewport = sim.Viewport{HalfWidth: 40, HalfHeight: 30}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	path := writeScenario(t, `
name: smoke
steps:
  - preset: sparse
    ticks: 5
  - ticks: 3
    seed: 9
    params:
      particle_count: 50
      connection_distance: 8
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, Headless(testViewport, nil), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0].Result.Frames) != 5 || len(results[1].Result.Frames) != 3 {
		t.Errorf("unexpected frame counts %d, %d", len(results[0].Result.Frames), len(results[1].Result.Frames))
	}
	s := results[1].Settings
	if s.ParticleCount != 50 || s.ConnectionDistance != 8 || s.Seed != 9 {
		t.Errorf("overrides not applied: %+v", s)
	}
	if results[1].Result.Frames[2].Points != 50 {
		t.Errorf("expected 50 points, got %d", results[1].Result.Frames[2].Points)
	}
	if _, ok := results[0].Result.Metrics["connectivity"]; !ok {
		t.Error("expected standard metrics in results")
	}
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Ticks: 2},
		{Ticks: 2, Params: map[string]float64{"gravity": 1}},
		{Ticks: 2},
	}}
	results, err := RunScenario(context.Background(), sc, Headless(testViewport, nil), nil)
	if !errors.Is(err, config.ErrInvalidSetting) {
		t.Fatalf("expected ErrInvalidSetting, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the first step's result, got %d", len(results))
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSweepValues(t *testing.T) {
	sw := &ParameterSweep{Min: 2, Max: 10, Steps: 5}
	want := []float64{2, 4, 6, 8, 10}
	got := sw.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if got := (&ParameterSweep{Min: 3, Max: 9, Steps: 1}).Values(); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected [3], got %v", got)
	}
}

func TestRunSweepConnectivityGrows(t *testing.T) {
	base := config.DefaultSettings()
	base.ParticleCount = 120
	sw := &ParameterSweep{
		Base:  base,
		Param: "connection_distance",
		Min:   5,
		Max:   15,
		Steps: 3,
		Ticks: 4,
		Dt:    0.016,
	}

	results, err := RunSweep(context.Background(), sw, Headless(testViewport, nil), nil)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1].Metrics["connectivity"], results[i].Metrics["connectivity"]
		if cur < prev {
			t.Errorf("connectivity fell from %v to %v as distance grew", prev, cur)
		}
		if results[i].Last.Lines < results[i-1].Last.Lines {
			t.Errorf("lines fell from %d to %d", results[i-1].Last.Lines, results[i].Last.Lines)
		}
	}
	if base.ConnectionDistance != config.DefaultConnectionDistance {
		t.Error("sweep must not modify the base settings")
	}
}

func TestRunSweepUnknownParam(t *testing.T) {
	sw := &ParameterSweep{Param: "gravity", Steps: 2, Ticks: 1, Dt: 0.01}
	if _, err := RunSweep(context.Background(), sw, Headless(testViewport, nil), nil); !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("expected ErrInvalidSetting, got %v", err)
	}
}
