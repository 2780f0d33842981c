// Package viewer shows a running simulation in an ebiten window.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/internal/render"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/ui"
)

const panelWidth = 240

// Game drives the world from ebiten's Update loop: one tick per update while
// running, so ticks never overlap with drawing.
type Game struct {
	ctx      context.Context
	world    *simulation.World
	maxTicks int
	size     int // square view size in pixels
	log      *zap.SugaredLogger

	basemap *ebiten.Image

	last   simulation.Snapshot
	paused bool
	done   bool
	status string

	panel            *ui.Panel
	widgetRepulsion  *ui.Slider
	widgetAttraction *ui.Slider
	widgetNoise      *ui.Slider
	widgetMap        *ui.Checkbox
	widgetGrid       *ui.Checkbox
	widgetZones      *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // rolling average in ms
}

// NewGame wraps a fully set up world.
func NewGame(ctx context.Context, world *simulation.World, maxTicks, size int, log *zap.SugaredLogger) *Game {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Game{
		ctx:      ctx,
		world:    world,
		maxTicks: maxTicks,
		size:     size,
		log:      log,
		last:     world.Snapshot(),
		status:   "running",
	}
	world.AddObserver(simulation.ObserverFunc(func(s simulation.Snapshot) error {
		g.last = s
		return nil
	}))

	forces := world.Forces()
	panel := ui.NewPanel(float64(size)+10, 10, panelWidth-20, float64(size)-20, "Crisis flight")
	panel.AddSection("Forces")
	g.widgetRepulsion = panel.AddSlider("Repulsion", 0, 1, forces.RepulsionStrength)
	g.widgetAttraction = panel.AddSlider("Attraction", 0, 0.5, forces.AttractionStrength)
	g.widgetNoise = panel.AddSlider("Noise", 0, 0.2, world.Noise())
	panel.AddSection("Visualization")
	g.widgetMap = panel.AddCheckbox("Show map", true)
	g.widgetGrid = panel.AddCheckbox("Show grid", true)
	g.widgetZones = panel.AddCheckbox("Show zones", true)
	panel.AddSection("Run")
	panel.AddButton("Pause / Resume", func() { g.paused = !g.paused })
	g.panel = panel
	return g
}

// SetBasemap draws b under the zones, pre-rendered at the view size.
func (g *Game) SetBasemap(b *render.Basemap) {
	g.basemap = nil
	if b != nil {
		g.basemap = ebiten.NewImageFromImage(b.Image(g.size))
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	g.panel.Update()

	if g.paused || g.done {
		return nil
	}

	g.world.SetForces(behavior.Settings{
		RepulsionStrength:  g.widgetRepulsion.Value,
		AttractionStrength: g.widgetAttraction.Value,
	})
	g.world.SetNoise(g.widgetNoise.Value)

	res, err := g.world.Tick()
	if err != nil {
		return fmt.Errorf("tick %d: %w", g.world.TickCount()+1, err)
	}
	switch {
	case res.AllBelowThreshold:
		g.done, g.status = true, "converged"
		g.log.Infof("converged at tick %d", res.Tick)
	case res.Tick >= g.maxTicks:
		g.done, g.status = true, "max ticks reached"
		g.log.Infof("stopped at tick %d without convergence", res.Tick)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(render.ColorBackground)
	if g.basemap != nil && g.widgetMap.Value {
		screen.DrawImage(g.basemap, nil)
	}

	s := g.last
	scale := float32(float64(g.size) / s.GridSize)
	toScreen := func(x, y float64) (float32, float32) {
		return float32(x) * scale, float32(g.size) - float32(y)*scale
	}

	if g.widgetGrid.Value {
		step := float32(g.size) / 10
		for i := 1; i < 10; i++ {
			p := float32(i) * step
			vector.StrokeLine(screen, p, 0, p, float32(g.size), 1, render.ColorGrid, false)
			vector.StrokeLine(screen, 0, p, float32(g.size), p, 1, render.ColorGrid, false)
		}
	}

	if g.widgetZones.Value {
		for _, z := range s.CrisisZones {
			x, y := toScreen(z.Center.X, z.Center.Y)
			vector.StrokeCircle(screen, x, y, float32(z.Radius)*scale, 2, render.ColorCrisis, true)
		}
		for _, z := range s.SafeZones {
			x, y := toScreen(z.Center.X, z.Center.Y)
			vector.StrokeCircle(screen, x, y, float32(z.Radius)*scale, 2, render.ColorSafe, true)
			if z.Label != "" {
				ebitenutil.DebugPrintAt(screen, z.Label, int(x)+6, int(y)-8)
			}
		}
	}

	for _, a := range s.Agents {
		x, y := toScreen(a.Position.X, a.Position.Y)
		vector.FillCircle(screen, x, y, 2, render.ClassColor(a.Class), true)
	}

	g.panel.Draw(screen)

	status := g.status
	if g.paused {
		status = "paused"
	}
	msg := fmt.Sprintf("Tick: %d (%s)\nMax move: %.5f\nMean move: %.5f\nTPS: %.1f  Update: %.2fms",
		s.Tick, status, s.MaxDisplacement, s.MeanDisplacement, ebiten.ActualTPS(), g.updateAvg)
	vector.FillRect(screen, 4, 4, 230, 70, color.RGBA{R: 40, G: 40, B: 45, A: 180}, true)
	ebitenutil.DebugPrintAt(screen, msg, 10, 8)
}

func (g *Game) Layout(w, h int) (int, int) { return g.size + panelWidth, g.size }

// Run opens the window and blocks until it is closed or the game context is cancelled.
func Run(g *Game, tps int) error {
	ebiten.SetWindowSize(g.size+panelWidth, g.size)
	ebiten.SetWindowTitle("Crisis flight simulation")
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
