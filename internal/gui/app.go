package gui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/plexus/internal/config"
	"github.com/san-kum/plexus/internal/geometry"
	"github.com/san-kum/plexus/internal/scene"
	"github.com/san-kum/plexus/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(40, 40, 40, 255)
	ColVector  = rl.NewColor(255, 136, 0, 160)
)

const (
	screenWidth   = 1280
	screenHeight  = 720
	// pixelsPerUnit is the camera zoom from world units to screen pixels.
	pixelsPerUnit = 15
	countStep     = 50
	distanceStep  = 0.5
	widthStep     = 0.25
)

type App struct {
	Scene    *scene.Scene
	Renderer *Renderer
	Camera   rl.Camera2D
	Running  bool

	ShowGrid    bool
	ShowVectors bool

	Telemetry    []float64
	MaxTelemetry int

	logger *slog.Logger
}

func initWindow() {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(screenWidth, screenHeight, "plexus")
	rl.SetTargetFPS(config.DefaultFPS)
	rl.SetExitKey(0)
	rl.DisableBackfaceCulling()
}

func viewportFor(w, h int32) sim.Viewport {
	return sim.Viewport{
		HalfWidth:  float64(w) / 2 / pixelsPerUnit,
		HalfHeight: float64(h) / 2 / pixelsPerUnit,
	}
}

// NewApp builds the scene against a raylib renderer. The window must already
// be open.
func NewApp(s *config.Settings, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := NewRenderer()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	sc, err := scene.Build(s, viewportFor(w, h), r, logger)
	if err != nil {
		return nil, err
	}
	app := &App{
		Scene:        sc,
		Renderer:     r,
		Running:      true,
		MaxTelemetry: 200,
		Telemetry:    make([]float64, 0, 200),
		logger:       logger,
	}
	app.resize(w, h)
	return app, nil
}

// Run opens a window and blocks until it is closed.
func Run(s *config.Settings, logger *slog.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(s, logger)
	if err != nil {
		return err
	}
	defer app.Scene.Driver.Release()
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) resize(w, h int32) {
	a.Camera = rl.Camera2D{
		Offset: rl.NewVector2(float32(w)/2, float32(h)/2),
		Target: rl.NewVector2(0, 0),
		Zoom:   pixelsPerUnit,
	}
	a.Scene.Driver.SetViewport(viewportFor(w, h))
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		a.resize(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
		a.logger.Debug("window resized", "w", rl.GetScreenWidth(), "h", rl.GetScreenHeight())
	}
	a.handleInput()

	if !a.Running {
		return
	}
	a.Renderer.Begin()
	f := a.Scene.Driver.Tick(float64(rl.GetFrameTime()))
	a.Telemetry = append(a.Telemetry, float64(f.Lines))
	if len(a.Telemetry) > a.MaxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) handleInput() {
	d := a.Scene.Driver
	p := d.Params()
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		d.Restart()
	case rl.IsKeyPressed(rl.KeyL):
		d.SetShowLines(!p.ShowLines)
	case rl.IsKeyPressed(rl.KeyT):
		d.SetShowTriangles(!p.ShowTriangles)
	case rl.IsKeyPressed(rl.KeyP):
		d.SetShowParticles(!p.ShowParticles)
	case rl.IsKeyPressed(rl.KeyB):
		d.SetShowBackground(!p.ShowBackground)
	case rl.IsKeyPressed(rl.KeyS):
		d.SetSquareBound(!p.SquareBound)
	case rl.IsKeyPressed(rl.KeyG):
		a.ShowGrid = !a.ShowGrid
	case rl.IsKeyPressed(rl.KeyV):
		a.ShowVectors = !a.ShowVectors
	case rl.IsKeyPressed(rl.KeyUp):
		d.SetParticleCount(p.ParticleCount + countStep)
	case rl.IsKeyPressed(rl.KeyDown):
		d.SetParticleCount(max(p.ParticleCount-countStep, 0))
	case rl.IsKeyPressed(rl.KeyRight):
		d.SetConnectionDistance(p.ConnectionDistance + distanceStep)
	case rl.IsKeyPressed(rl.KeyLeft):
		if p.ConnectionDistance-distanceStep > p.StrongDistance {
			d.SetConnectionDistance(p.ConnectionDistance - distanceStep)
		}
	case rl.IsKeyPressed(rl.KeyRightBracket):
		d.SetLineWidth(p.LineWidth + widthStep)
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		d.SetLineWidth(max(p.LineWidth-widthStep, 0))
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode2D(a.Camera)
	a.Renderer.Replay()
	if a.ShowGrid {
		a.drawGrid()
	}
	if a.ShowVectors {
		a.drawVectors()
	}
	rl.EndMode2D()

	a.DrawHUD()
	rl.EndDrawing()
}

// drawGrid outlines every occupied bucket, shaded by its share of the peak
// load.
func (a *App) drawGrid() {
	g := a.Scene.Driver.Grid()
	peak := g.PeakLoad()
	if peak == 0 {
		return
	}
	g.ForEachBucket(func(cx, cy int, items []int) {
		minX, minY, maxX, maxY := g.CellBounds(cx, cy)
		rect := rl.NewRectangle(float32(minX), float32(-maxY), float32(maxX-minX), float32(maxY-minY))
		load := float32(len(items)) / float32(peak)
		rl.DrawRectangleRec(rect, rl.Fade(ColSelect, 0.15*load))
		rl.DrawRectangleLinesEx(rect, 1/float32(pixelsPerUnit), ColGrid)
	})
}

func (a *App) drawVectors() {
	for _, p := range a.Scene.Driver.Points() {
		tip := r2.Add(p.Pos, r2.Scale(0.25, p.Vel))
		rl.DrawLineV(rl.NewVector2(float32(p.Pos.X), float32(-p.Pos.Y)), rl.NewVector2(float32(tip.X), float32(-tip.Y)), ColVector)
	}
}

func (a *App) DrawHUD() {
	d := a.Scene.Driver
	f := d.LastFrame()
	p := d.Params()

	a.drawText("plexus", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Scene.Settings.Renderer), 130, 34, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	a.drawText(status, w-130, 30, 16, col)

	stats := []string{
		fmt.Sprintf("points     %d", f.Points),
		fmt.Sprintf("lines      %d", f.Lines),
		fmt.Sprintf("triangles  %d", f.Triangles),
		fmt.Sprintf("units      %d/%d", f.ActiveUnits, f.Units),
		fmt.Sprintf("vertices   %d", f.Vertices),
		fmt.Sprintf("dropped    %d", f.Dropped),
		fmt.Sprintf("peak load  %d", f.PeakLoad),
		fmt.Sprintf("conn       %.1f", p.ConnectionDistance),
	}
	for i, s := range stats {
		a.drawText(s, 30, 70+int32(i)*18, 14, ColText)
	}

	a.DrawTelemetry(30, h-130)
	a.drawText("[SPACE] PAUSE  [R] RESTART  [L/T/P/B] LAYERS  [G] GRID  [V] VECTORS  [ARROWS] TUNE  [BRACKETS] WIDTH  [Q] QUIT", 30, h-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), w-130, h-30, 14, ColTextDim)
}

// DrawTelemetry plots the recent line counts as a strip.
func (a *App) DrawTelemetry(x, y int32) {
	if len(a.Telemetry) < 2 {
		return
	}
	const width, height = 400, 60

	lo, hi := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, v := range a.Telemetry {
		px := float32(x) + float32(i)/float32(len(a.Telemetry))*width
		py := float32(y+height) - float32((v-lo)/(hi-lo))*height
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColText)
	a.drawText(fmt.Sprintf("lines %.0f", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 14, ColText)
}

func (a *App) drawText(text string, x, y int32, size int32, color rl.Color) {
	rl.DrawText(text, x, y, size, color)
}

var _ scene.Target = (*Renderer)(nil)
var _ geometry.Drawer = (*Renderer)(nil)
