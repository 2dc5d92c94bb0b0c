// Package automation scripts headless runs: YAML scenarios of preset steps
// and sweeps of one setting across a range.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/metrics"
	"github.com/san-kum/plexus/internal/scene"
	"github.com/san-kum/plexus/internal/sim"
	"gopkg.in/yaml.v3"
)

// Builder makes a fresh driver for one run.
type Builder func(s *config.Settings) (*sim.FrameDriver, error)

// Headless builds drivers with in-memory sinks and the standard metrics.
func Headless(vp sim.Viewport, logger *slog.Logger) Builder {
	return func(s *config.Settings) (*sim.FrameDriver, error) {
		sc, err := scene.Build(s, vp, nil, logger)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Standard() {
			sc.Driver.AddMetric(m)
		}
		return sc.Driver, nil
	}
}

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Ticks  int                `yaml:"ticks"`
	Dt     float64            `yaml:"dt"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
}

type StepResult struct {
	Step     int
	Preset   string
	Settings *config.Settings
	Result   *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// settings resolves a step's preset and parameter overrides. An empty
// preset means the defaults.
func (st ScenarioStep) settings() (*config.Settings, error) {
	s := config.DefaultSettings()
	if st.Preset != "" {
		if s = config.GetPreset(st.Preset); s == nil {
			return nil, fmt.Errorf("unknown preset %q", st.Preset)
		}
	}
	if st.Seed != 0 {
		s.Seed = st.Seed
	}
	for k, v := range st.Params {
		if err := s.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return s, s.Validate()
}

func (st ScenarioStep) config() sim.Config {
	cfg := sim.Config{Ticks: st.Ticks, Dt: st.Dt}
	if cfg.Dt == 0 {
		cfg.Dt = 1.0 / config.DefaultFPS
	}
	return cfg
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, build Builder, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		s, err := step.settings()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		d, err := build(s)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := d.Run(ctx, step.config())
		d.Release()
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: i + 1, Preset: step.Preset, Settings: s, Result: result})
	}
	return results, nil
}

// ParameterSweep runs one setting across [Min, Max] in Steps even steps.
type ParameterSweep struct {
	Base  *config.Settings
	Param string
	Min   float64
	Max   float64
	Steps int
	Ticks int
	Dt    float64
}

type SweepResult struct {
	Value   float64
	Metrics map[string]float64
	Last    sim.Frame
}

// Values lists the swept values. A single step sweeps Min only.
func (sw *ParameterSweep) Values() []float64 {
	if sw.Steps <= 1 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.Steps-1)
	vals := make([]float64, sw.Steps)
	for i := range vals {
		vals[i] = sw.Min + float64(i)*step
	}
	return vals
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, build Builder, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultSettings()
	}
	if err := base.Clone().SetParam(sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	cfg := sim.Config{Ticks: sweep.Ticks, Dt: sweep.Dt}
	vals := sweep.Values()
	results := make([]SweepResult, 0, len(vals))
	for i, v := range vals {
		s := base.Clone()
		if err := s.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
		if err := s.Validate(); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		d, err := build(s)
		if err != nil {
			return results, err
		}
		result, err := d.Run(ctx, cfg)
		d.Release()
		if err != nil {
			return results, err
		}

		sr := SweepResult{Value: v, Metrics: result.Metrics}
		if n := len(result.Frames); n > 0 {
			sr.Last = result.Frames[n-1]
		}
		results = append(results, sr)
		logger.Debug("sweep step", "step", i+1, "of", len(vals), "param", sweep.Param, "value", v)
	}
	return results, nil
}
