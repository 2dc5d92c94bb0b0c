package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/plexus/internal/automation"
	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/export"
	"github.com/san-kum/plexus/internal/gui"
	"github.com/san-kum/plexus/internal/metrics"
	"github.com/san-kum/plexus/internal/particles"
	"github.com/san-kum/plexus/internal/profiler"
	"github.com/san-kum/plexus/internal/scene"
	"github.com/san-kum/plexus/internal/sim"
	"github.com/san-kum/plexus/internal/storage"
	"github.com/san-kum/plexus/internal/tui"
	"github.com/san-kum/plexus/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string

	// Settings overrides, applied only when set on the command line.
	points    int
	connDist  float64
	strong    float64
	lineWidth float64
	renderer  string
	seed      int64

	runTicks  int
	dt        float64
	runs      int
	live      bool
	frameRate int
	save      bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	sweepTicks int

	snapTicks int
	snapOut   string
	exportOut string
	width     int
	height    int
	scale     float64
	braille   bool
)

const (
	// pixelsPerUnit maps world units to SVG pixels.
	pixelsPerUnit = 15
	// worldPerDot matches the terminal view's braille resolution.
	worldPerDot   = 0.5
	termCols      = 80
	termRows      = 24
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plexus",
		Short: "proximity-graph particle renderer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, args)
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".plexus", "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")
	pf.IntVar(&points, "points", config.DefaultParticleCount, "particle count")
	pf.Float64Var(&connDist, "conn", config.DefaultConnectionDistance, "connection distance")
	pf.Float64Var(&strong, "strong", config.DefaultStrongDistance, "strong distance")
	pf.Float64Var(&lineWidth, "line-width", 0, "line width (0 draws plain lines)")
	pf.StringVar(&renderer, "renderer", config.RendererStream, "renderer (stream or batch)")
	pf.Int64Var(&seed, "seed", 0, "random seed")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the raylib window",
		RunE:  runGUI,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "live terminal view (preset menu without --preset or --config)",
		RunE:  runTUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and summarize frame metrics",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runTicks, "ticks", 600, "number of ticks")
	runCmd.Flags().Float64Var(&dt, "dt", 1.0/config.DefaultFPS, "timestep")
	runCmd.Flags().IntVar(&runs, "runs", 1, "ensemble size (consecutive seeds)")
	runCmd.Flags().BoolVar(&live, "live", false, "print the frame to the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "live view frame rate")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the frame after N ticks to svg",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapTicks, "ticks", 120, "ticks before the snapshot")
	snapshotCmd.Flags().Float64Var(&dt, "dt", 1.0/config.DefaultFPS, "timestep")
	snapshotCmd.Flags().StringVarP(&snapOut, "output", "o", "plexus.svg", "output path")
	snapshotCmd.Flags().IntVar(&width, "width", 1200, "svg width in pixels")
	snapshotCmd.Flags().IntVar(&height, "height", 800, "svg height in pixels")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "vectorize the terminal braille canvas instead")
	snapshotCmd.Flags().Float64Var(&scale, "scale", 4, "dot size for --braille")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved settings to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one setting across a range and compare metrics",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "connection_distance", "setting to sweep ("+strings.Join(config.Tunables, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 4, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepTicks, "ticks", 300, "ticks per value")
	sweepCmd.Flags().Float64Var(&dt, "dt", 1.0/config.DefaultFPS, "timestep")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, snapshotCmd, sweepCmd, scenarioCmd, presetsCmd, configCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger. Interactive views pass quiet so
// that, without --log-file, logs do not draw over the screen.
func newLogger(quiet bool) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	case quiet:
		out = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// resolveSettings layers preset, config file and changed flags, in that
// order, over the defaults.
func resolveSettings(cmd *cobra.Command) (*config.Settings, string, error) {
	s := config.DefaultSettings()
	name := "default"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		s, name = p, preset
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		s, name = loaded, strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("points") {
		s.ParticleCount = points
	}
	if flags.Changed("conn") {
		s.ConnectionDistance = connDist
	}
	if flags.Changed("strong") {
		s.StrongDistance = strong
	}
	if flags.Changed("line-width") {
		s.LineWidth = lineWidth
	}
	if flags.Changed("renderer") {
		s.Renderer = renderer
	}
	if flags.Changed("seed") {
		s.Seed = seed
	}

	if err := s.Validate(); err != nil {
		return nil, "", err
	}
	return s, name, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()
	return gui.Run(s, logger)
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	if preset == "" && configFile == "" {
		return viz.RunMenu(logger)
	}
	s, name, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	return viz.Run(s, name, logger)
}

func terminalViewport() sim.Viewport {
	return sim.Viewport{
		HalfWidth:  float64(termCols*2) / 2 * worldPerDot,
		HalfHeight: float64(termRows*4) / 2 * worldPerDot,
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	s, name, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(live)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := sim.Config{Ticks: runTicks, Dt: dt}
	if runs > 1 {
		return runEnsemble(ctx, s, cfg, logger)
	}

	vp := terminalViewport()
	var target scene.Target
	var surface *viz.Surface
	if live {
		surface = viz.NewSurface(viz.NewCanvas(termCols, termRows), particles.Bound{})
		target = surface
	}

	sc, err := scene.Build(s, vp, target, logger)
	if err != nil {
		return err
	}
	defer sc.Driver.Release()

	for _, m := range metrics.Standard() {
		sc.Driver.AddMetric(m)
	}
	prof := profiler.New(logger, time.Second)
	sc.Driver.AddObserver(prof)
	if live {
		surface.SetBound(sc.Driver.Bound())
		lr := tui.NewLiveRenderer(name, frameRate, surface, os.Stdout)
		lr.Start()
		defer lr.Stop()
		sc.Driver.AddObserver(lr)
	}

	logger.Info("running", "preset", name, "points", s.ParticleCount, "ticks", cfg.Ticks, "renderer", s.Renderer)
	start := time.Now()
	result, err := sc.Driver.Run(ctx, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSummary(os.Stdout, result, elapsed)
	fmt.Println(asciigraph.Plot(series(result.Frames, func(f sim.Frame) int { return f.Lines }),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("lines per tick"),
	))

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, s, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved run %s\n", runID)
	}
	return nil
}

func runEnsemble(ctx context.Context, s *config.Settings, cfg sim.Config, logger *slog.Logger) error {
	factory := func(seed int64) (*sim.FrameDriver, error) {
		member := s.Clone()
		member.Seed = seed
		sc, err := scene.Build(member, terminalViewport(), nil, logger.With("seed", seed))
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Standard() {
			sc.Driver.AddMetric(m)
		}
		return sc.Driver, nil
	}

	start := time.Now()
	results, err := sim.NewEnsemble(factory, runs, s.Seed).Run(ctx, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	names := metricNames(results[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEED\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	means := make([]float64, len(names))
	for i, r := range results {
		row := []string{fmt.Sprint(s.Seed + int64(i))}
		for j, n := range names {
			row = append(row, fmt.Sprintf("%.3f", r.Metrics[n]))
			means[j] += r.Metrics[n] / float64(len(results))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	row := []string{"mean"}
	for _, m := range means {
		row = append(row, fmt.Sprintf("%.3f", m))
	}
	fmt.Fprintln(w, strings.Join(row, "\t"))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs x %d ticks in %s\n", len(results), cfg.Ticks, elapsed.Round(time.Millisecond))
	return nil
}

func metricNames(r *sim.Result) []string {
	names := make([]string, 0, len(r.Metrics))
	for n := range r.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func series(frames []sim.Frame, pick func(sim.Frame) int) []float64 {
	data := make([]float64, len(frames))
	for i, f := range frames {
		data[i] = float64(pick(f))
	}
	return data
}

func printSummary(out io.Writer, r *sim.Result, elapsed time.Duration) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, n := range metricNames(r) {
		fmt.Fprintf(w, "%s\t%.3f\n", n, r.Metrics[n])
	}
	if len(r.Frames) > 0 {
		last := r.Frames[len(r.Frames)-1]
		fmt.Fprintf(w, "ticks\t%d\n", len(r.Frames))
		fmt.Fprintf(w, "units\t%d/%d\n", last.ActiveUnits, last.Units)
		fmt.Fprintf(w, "tick_time\t%s\n", (elapsed / time.Duration(len(r.Frames))).Round(time.Microsecond))
	}
	w.Flush()
	fmt.Fprintln(out)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	s, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if snapTicks < 1 {
		return fmt.Errorf("ticks must be positive, got %d", snapTicks)
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		vp       sim.Viewport
		target   scene.Target
		begin    func()
		setBound func(particles.Bound)
		render   func() string
	)
	if braille {
		vp = terminalViewport()
		canvas := viz.NewCanvas(termCols, termRows)
		surface := viz.NewSurface(canvas, particles.Bound{})
		target, begin, setBound = surface, surface.Begin, surface.SetBound
		render = func() string { return export.CanvasToSVG(canvas, scale) }
	} else {
		vp = sim.Viewport{
			HalfWidth:  float64(width) / 2 / pixelsPerUnit,
			HalfHeight: float64(height) / 2 / pixelsPerUnit,
		}
		frame := export.NewFrameSVG(particles.Bound{}, width, height)
		target, begin, setBound, render = frame, frame.Begin, frame.SetBound, frame.String
	}

	sc, err := scene.Build(s, vp, target, logger)
	if err != nil {
		return err
	}
	defer sc.Driver.Release()
	setBound(sc.Driver.Bound())

	// Only the last tick's geometry survives.
	var f sim.Frame
	for i := 0; i < snapTicks; i++ {
		begin()
		f = sc.Driver.Tick(dt)
	}

	if err := os.WriteFile(snapOut, []byte(render()), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("snapshot written", "path", snapOut, "tick", f.Tick, "lines", f.Lines, "triangles", f.Triangles)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:  s,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
		Ticks: sweepTicks,
		Dt:    dt,
	}
	results, err := automation.RunSweep(ctx, sweep, automation.Headless(terminalViewport(), logger), logger)
	if err != nil {
		return err
	}

	names := metricNames(&sim.Result{Metrics: results[0].Metrics})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tLINES\tTRIANGLES\t%s\n", strings.ToUpper(sweepParam), strings.ToUpper(strings.Join(names, "\t")))
	conn := make([]float64, len(results))
	for i, r := range results {
		row := []string{fmt.Sprintf("%.3f", r.Value), fmt.Sprint(r.Last.Lines), fmt.Sprint(r.Last.Triangles)}
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.3f", r.Metrics[n]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
		conn[i] = r.Metrics["connectivity"]
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(conn) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(conn,
			asciigraph.Height(8),
			asciigraph.Caption("connectivity vs "+sweepParam),
		))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := automation.RunScenario(ctx, sc, automation.Headless(terminalViewport(), logger), logger)

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tPOINTS\tTICKS\tCONNECTIVITY\tVERTICES/FRAME\tDROPPED")
	for _, r := range results {
		preset := r.Preset
		if preset == "" {
			preset = "default"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.3f\t%.1f\t%.0f\n",
			r.Step, preset, r.Settings.ParticleCount, len(r.Result.Frames),
			r.Result.Metrics["connectivity"], r.Result.Metrics["vertices_per_frame"], r.Result.Metrics["dropped"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOINTS\tCONN\tSTRONG\tRENDERER\tLINE WIDTH")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\t%.1f\n",
			name, p.ParticleCount, p.ConnectionDistance, p.StrongDistance, p.Renderer, p.LineWidth)
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	s, _, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	path := "plexus.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.Save(path, s); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	saved, err := st.List()
	if err != nil {
		return err
	}

	if len(saved) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tDT\tPOINTS\tRENDERER")
	for _, run := range saved {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Dt,
			run.Points,
			run.Renderer,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", len(frames))

	fmt.Println(asciigraph.PlotMany(
		[][]float64{
			series(frames, func(f sim.Frame) int { return f.Lines }),
			series(frames, func(f sim.Frame) int { return f.Triangles }),
		},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
		asciigraph.Caption("lines (cyan) and triangles (magenta) per tick"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(series(frames, func(f sim.Frame) int { return f.Vertices }),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("vertices per tick"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return storage.ExportJSON(out, *meta, frames)
}
