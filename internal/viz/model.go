package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/palette"
	"github.com/san-kum/plexus/internal/particles"
	"github.com/san-kum/plexus/internal/scene"
	"github.com/san-kum/plexus/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 46
	historyCapacity = 240
	// worldPerDot converts braille dots to world units.
	worldPerDot = 0.5
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/scene.FPS, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// tunable is one adjustable setting bound to its driver setter.
type tunable struct {
	name string
	step float64
	get  func(p sim.Params) float64
	set  func(d *sim.FrameDriver, v float64)
}

var tunables = []tunable{
	{"particles", 25,
		func(p sim.Params) float64 { return float64(p.ParticleCount) },
		func(d *sim.FrameDriver, v float64) { d.SetParticleCount(int(v)) }},
	{"connect", 0.5,
		func(p sim.Params) float64 { return p.ConnectionDistance },
		func(d *sim.FrameDriver, v float64) { d.SetConnectionDistance(v) }},
	{"strong", 0.5,
		func(p sim.Params) float64 { return p.StrongDistance },
		func(d *sim.FrameDriver, v float64) { d.SetStrongDistance(v) }},
	{"max speed", 1,
		func(p sim.Params) float64 { return p.MaxVelocity },
		func(d *sim.FrameDriver, v float64) { d.SetVelocityBounds(d.Params().MinVelocity, v) }},
	{"tri alpha", 0.05,
		func(p sim.Params) float64 { return p.TriangleOpacity },
		func(d *sim.FrameDriver, v float64) { d.SetTriangleOpacity(min(v, 1)) }},
	{"width", 0.25,
		func(p sim.Params) float64 { return p.LineWidth },
		func(d *sim.FrameDriver, v float64) { d.SetLineWidth(v) }},
	{"size", 0.2,
		func(p sim.Params) float64 { return p.ParticleSize },
		func(d *sim.FrameDriver, v float64) { d.SetParticleSize(v) }},
	{"margin", 1,
		func(p sim.Params) float64 { return p.BoundMargin },
		func(d *sim.FrameDriver, v float64) { d.SetBoundMargin(v) }},
}

// Model is the live terminal view of one scene.
type Model struct {
	scene    *scene.Scene
	surface  *Surface
	theme    Theme
	title    string
	running  bool
	showHelp bool
	selected int

	frame       sim.Frame
	lineHistory []float64
	triHistory  []float64
	lastTick    time.Time
	fps         float64
}

func viewportFor(c *Canvas) sim.Viewport {
	return sim.Viewport{
		HalfWidth:  float64(c.PixelWidth()) / 2 * worldPerDot,
		HalfHeight: float64(c.PixelHeight()) / 2 * worldPerDot,
	}
}

// NewModel builds the scene for s against a fresh canvas.
func NewModel(s *config.Settings, title string, logger *slog.Logger) (Model, error) {
	canvas := NewCanvas(width, height)
	surface := NewSurface(canvas, particles.Bound{})
	sc, err := scene.Build(s, viewportFor(canvas), surface, logger)
	if err != nil {
		return Model{}, err
	}
	surface.SetBound(sc.Driver.Bound())
	return Model{
		scene:       sc,
		surface:     surface,
		theme:       ThemeOcean,
		title:       title,
		running:     true,
		lineHistory: make([]float64, 0, historyCapacity),
		triHistory:  make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width-statsWidth-4, msg.Height-2)
	case TickMsg:
		if m.running {
			m.step(time.Time(msg))
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.scene.Driver
	p := d.Params()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		d.Restart()
	case "tab":
		m.selected = (m.selected + 1) % len(tunables)
	case "up", "k":
		m.adjust(1)
	case "down", "j":
		m.adjust(-1)
	case "l":
		d.SetShowLines(!p.ShowLines)
	case "t":
		d.SetShowTriangles(!p.ShowTriangles)
	case "p":
		d.SetShowParticles(!p.ShowParticles)
	case "b":
		d.SetShowBackground(!p.ShowBackground)
	case "s":
		d.SetSquareBound(!p.SquareBound)
		m.surface.SetBound(d.Bound())
	case "c":
		m.theme = NextTheme(m.theme.Name)
		if g, err := palette.ParseGradient(m.theme.Gradient); err == nil {
			m.scene.Colors.Gradient = g
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) adjust(dir float64) {
	t := tunables[m.selected]
	d := m.scene.Driver
	v := max(t.get(d.Params())+dir*t.step, 0)
	t.set(d, v)
	if t.name == "margin" {
		m.surface.SetBound(d.Bound())
	}
}

func (m *Model) resize(w, h int) {
	if w < 10 || h < 4 {
		return
	}
	m.surface.Resize(w, h)
	m.scene.Driver.SetViewport(viewportFor(m.surface.Canvas()))
	m.surface.SetBound(m.scene.Driver.Bound())
}

func (m *Model) step(now time.Time) {
	if !m.lastTick.IsZero() {
		if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
			m.fps = 0.9*m.fps + 0.1/dt
		}
	}
	m.lastTick = now

	m.surface.Begin()
	m.frame = m.scene.Driver.Tick(1.0 / scene.FPS)
	m.lineHistory = pushHistory(m.lineHistory, float64(m.frame.Lines))
	m.triHistory = pushHistory(m.triHistory, float64(m.frame.Triangles))
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.surface.Canvas().Render())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), m.theme.Gradient[0], m.theme.Gradient[len(m.theme.Gradient)-1]) + "\n\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(status) + "\n")

	if len(m.lineHistory) > 1 {
		chart := asciigraph.Plot(m.lineHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Lines"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Triangles") + SparklineChart(m.triHistory, 28) + "\n\n")

	f := m.frame
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("FPS", fmt.Sprintf("%.0f", m.fps))
	row("Points", fmt.Sprintf("%d", f.Points))
	row("Lines", fmt.Sprintf("%d", f.Lines))
	row("Triangles", fmt.Sprintf("%d", f.Triangles))
	row("Grid", fmt.Sprintf("%dx%d peak %d", m.scene.Driver.Grid().Cols(), m.scene.Driver.Grid().Rows(), f.PeakLoad))
	row("Vertices", fmt.Sprintf("%d", f.Vertices))
	if f.Units > 0 {
		s.WriteString(labelStyle.Render("Units") + ProgressBar(float64(f.ActiveUnits)/float64(f.Units), 16) +
			valueStyle.Render(fmt.Sprintf(" %d/%d", f.ActiveUnits, f.Units)) + "\n")
	}
	if f.Dropped > 0 {
		row("Dropped", lipgloss.NewStyle().Foreground(m.theme.Warning).Render(fmt.Sprintf("%d", f.Dropped)))
	}

	s.WriteString("\nPARAMETERS\n")
	p := m.scene.Driver.Params()
	for i, t := range tunables {
		line := fmt.Sprintf("%-10s %.2f", t.name, t.get(p))
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\nL/T/P/B:Layers C:Theme ?:Help\nTab ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart points           ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  L T P B  - Lines/Triangles/Points/  ║
║             Background               ║
║  S        - Square bound             ║
║  C        - Cycle color theme        ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run opens the live view for s.
func Run(s *config.Settings, title string, logger *slog.Logger) error {
	m, err := NewModel(s, title, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
