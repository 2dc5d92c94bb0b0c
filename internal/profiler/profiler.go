// Package profiler logs frame rate, geometry volume and memory statistics at
// a fixed interval.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/san-kum/plexus/internal/sim"
)

type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	NumGC       uint32
	MaxPauseUs  uint64
}

// Profiler is a sim.Observer. Each observed frame counts toward the FPS
// estimate; the last frame's geometry is logged alongside memory stats.
type Profiler struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	frameCount     int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
	frame          sim.Frame
}

func New(logger *slog.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	p := &Profiler{logger: logger, interval: interval, now: time.Now}
	p.lastTime = p.now()
	return p
}

func (p *Profiler) OnFrame(f sim.Frame) {
	p.frame = f
	p.Tick()
}

func (p *Profiler) Last() Stats { return p.last }

// Tick counts one frame and reports whether stats were logged.
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := p.now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		NumGC:       p.memStats.NumGC,
	}

	// PauseNs is a ring of the last 256 pauses.
	start := p.lastGCCount
	if s.NumGC-start > 256 {
		start = s.NumGC - 256
	}
	for i := start; i < s.NumGC; i++ {
		s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.logger.Info("profile",
		"fps", s.FPS,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.NumGC,
		"max_pause_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
		"points", p.frame.Points,
		"lines", p.frame.Lines,
		"triangles", p.frame.Triangles,
		"active_units", p.frame.ActiveUnits,
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = s.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
