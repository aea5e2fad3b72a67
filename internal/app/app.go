//go:build ebiten

package app

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
	"flocksim/internal/render"
)

// chaseTarget is implemented by sims that support an optional attractor,
// driven here by the mouse cursor while a button is held.
type chaseTarget interface {
	SetTarget(r2.Vec)
	ClearTarget()
}

// marginReporter lets the painter outline the containment band when the sim
// exposes one.
type marginReporter interface {
	Margin() float64
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.FlockPainter

	scale    float64
	dt       float64
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation. dt is the fixed
// simulated time per tick, decoupled from wall-clock frame pacing.
func New(sim core.Sim, scale float64, seed int64, dt float64) *Game {
	return &Game{
		sim:     sim,
		painter: render.NewFlockPainter(len(sim.Agents())),
		scale:   scale,
		dt:      dt,
		seed:    seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame input and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	if ct, ok := g.sim.(chaseTarget); ok {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			cx, cy := ebiten.CursorPosition()
			b := g.sim.Bounds()
			ct.SetTarget(r2.Vec{
				X: b.Min.X + float64(cx)/g.scale,
				Y: b.Min.Y + float64(cy)/g.scale,
			})
		} else {
			ct.ClearTarget()
		}
	}

	if (!g.paused) || g.tickOnce {
		if err := g.sim.Step(g.dt); err != nil {
			return err
		}
		g.tickOnce = false
	}
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	margin := 0.0
	if mr, ok := g.sim.(marginReporter); ok {
		margin = mr.Margin()
	}
	g.painter.Draw(screen, g.sim.Agents(), g.sim.Bounds(), margin, g.scale)

	status := fmt.Sprintf("%s  n=%d  [space] pause  [n] step  [r] reset", g.sim.Name(), len(g.sim.Agents()))
	if g.paused {
		status += "  PAUSED"
	}
	ebitenutil.DebugPrint(screen, status)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.sim.Bounds()
	size := r2.Sub(b.Max, b.Min)
	return int(size.X * g.scale), int(size.Y * g.scale)
}
