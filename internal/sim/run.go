package sim

import (
	"context"
	"fmt"
)

// Run ticks the driver cfg.Ticks times with a fixed step, resetting its
// metrics first. It stops early with ctx.Err() when ctx is cancelled.
func (d *FrameDriver) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]Frame, 0, cfg.Ticks),
		Metrics: make(map[string]float64),
	}
	for _, m := range d.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			d.collectMetrics(result)
			return result, ctx.Err()
		default:
		}
		result.Frames = append(result.Frames, d.Tick(cfg.Dt))
	}

	d.collectMetrics(result)
	return result, nil
}

func (d *FrameDriver) collectMetrics(r *Result) {
	for _, m := range d.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}
	return nil
}
