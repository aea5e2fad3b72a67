// Package flock simulates a flock of autonomous agents steering by the three
// classic local rules (separation, alignment, cohesion) plus soft boundary
// containment. Each tick rebuilds a uniform-grid spatial index over the
// current positions, evaluates one bounded steering acceleration per agent
// against that frozen snapshot, then integrates motion under speed limits.
package flock

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
)

// Timings records how long each phase of the last tick took. The index
// rebuild dominates the per-tick budget, so it is measured rather than
// assumed; cmd/flock-bench reports these across population sizes.
type Timings struct {
	Build     time.Duration
	Evaluate  time.Duration
	Integrate time.Duration
}

// Flock owns the full per-tick pipeline and the agent state it advances.
type Flock struct {
	cfg    Config
	bounds r2.Box

	ps   *PointSet
	grid *Grid

	accel  []r2.Vec
	agents []core.Agent

	target    r2.Vec
	hasTarget bool

	timings Timings
}

// New returns a flock with the default configuration.
func New() *Flock {
	f, err := NewWithConfig(DefaultConfig())
	if err != nil {
		panic(err) // defaults always validate
	}
	return f
}

// NewWithConfig builds a flock from the provided configuration. The config is
// validated up front; no simulation starts from an invalid one. Agents are
// spawned from the config seed and can be respawned with Reset.
func NewWithConfig(cfg Config) (*Flock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		cfg:    cfg,
		bounds: cfg.Bounds(),
		ps:     NewPointSet(cfg.Count),
		grid:   NewGrid(maxRadius(&cfg.Params)),
		accel:  make([]r2.Vec, cfg.Count),
		agents: make([]core.Agent, cfg.Count),
	}
	f.Reset(cfg.Seed)
	return f, nil
}

func maxRadius(p *Params) float64 {
	r := p.RSep
	if p.RAlign > r {
		r = p.RAlign
	}
	if p.RCohesion > r {
		r = p.RCohesion
	}
	return r
}

// Name returns the simulation identifier.
func (f *Flock) Name() string { return "flock" }

// Bounds reports the world region agents are contained in.
func (f *Flock) Bounds() r2.Box { return f.bounds }

// Config returns a copy of the active configuration.
func (f *Flock) Config() Config { return f.cfg }

// Margin reports the width of the soft containment band.
func (f *Flock) Margin() float64 { return f.cfg.Params.Margin }

// Reset respawns the population deterministically from the given seed. A
// zero seed falls back to the configured one. Positions come from a Halton
// low-discrepancy sequence mapped into the bounds; velocities get a random
// direction and a speed within the configured limits.
func (f *Flock) Reset(seed int64) {
	if seed == 0 {
		seed = f.cfg.Seed
	}
	p := &f.cfg.Params
	size := r2.Sub(f.bounds.Max, f.bounds.Min)
	pts := HaltonPoints2(f.cfg.Count, seed)
	rng := core.NewRNG(seed)
	for i, u := range pts {
		pos := r2.Vec{
			X: f.bounds.Min.X + u.X*size.X,
			Y: f.bounds.Min.Y + u.Y*size.Y,
		}
		angle := rng.Range(0, 2*math.Pi)
		speed := rng.Range(p.MinSpeed, p.MaxSpeed)
		vel := r2.Scale(speed, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)})
		f.ps.Place(i, pos, vel)
	}
	f.refreshAgents()
}

// Step advances the simulation by one tick of dt seconds.
//
// The pipeline is: rebuild the spatial index from the current positions,
// evaluate every agent's steering against that frozen snapshot (in parallel
// when configured), then integrate into the staging buffers and publish them.
// Readers of the previous snapshot never observe a mix of old and new state.
func (f *Flock) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("flock: dt must be a positive finite duration, got %g", dt)
	}

	rMax := maxRadius(&f.cfg.Params)
	if f.grid.CellSize() != rMax {
		f.grid = NewGrid(rMax)
	}

	start := time.Now()
	f.grid.Build(f.ps.Positions())
	built := time.Now()

	f.evaluate()
	evaluated := time.Now()

	it := integrator{p: &f.cfg.Params}
	for i := 0; i < f.ps.Len(); i++ {
		it.step(f.ps, i, f.accel[i], dt)
	}
	f.ps.Swap()
	f.refreshAgents()

	f.timings = Timings{
		Build:     built.Sub(start),
		Evaluate:  evaluated.Sub(built),
		Integrate: time.Since(evaluated),
	}
	return nil
}

// evaluate fills f.accel with one steering acceleration per agent. Each
// worker reads only the frozen index and current buffers and writes only its
// own agents' slots, so no synchronization beyond the final barrier is
// needed. Results are identical for any worker count.
func (f *Flock) evaluate() {
	n := f.ps.Len()
	if n == 0 {
		return
	}
	workers := f.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	if workers <= 1 {
		ev := f.newEvaluator()
		for i := 0; i < n; i++ {
			f.accel[i] = ev.steering(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			ev := f.newEvaluator()
			for i := lo; i < hi; i++ {
				f.accel[i] = ev.steering(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

func (f *Flock) newEvaluator() *evaluator {
	q := newNeighborQuery(f.ps, f.grid, &f.cfg.Params)
	return newEvaluator(&f.cfg.Params, f.bounds, q, f.target, f.hasTarget)
}

// Agents returns the read-only post-tick snapshot in stable index order. The
// slice is valid until the next Step or Reset.
func (f *Flock) Agents() []core.Agent { return f.agents }

func (f *Flock) refreshAgents() {
	for i := range f.agents {
		f.agents[i] = core.Agent{
			Pos:     f.ps.Pos(i),
			Vel:     f.ps.Vel(i),
			Heading: f.ps.Heading(i),
		}
	}
}

// LastTimings reports the phase durations of the most recent Step.
func (f *Flock) LastTimings() Timings { return f.timings }

// SetTarget points the optional chase term at p until ClearTarget.
func (f *Flock) SetTarget(p r2.Vec) {
	f.target = p
	f.hasTarget = true
}

// ClearTarget disables the chase term.
func (f *Flock) ClearTarget() {
	f.hasTarget = false
}

// SetFloatParameter updates one tunable between ticks. The change is applied
// only if the resulting configuration still validates. It reports whether the
// key was recognized and the value accepted. Callers must not race this with
// Step; hosts serialize the two.
func (f *Flock) SetFloatParameter(key string, value float64) bool {
	next := f.cfg
	switch key {
	case "r_sep":
		next.Params.RSep = value
	case "r_align":
		next.Params.RAlign = value
	case "r_cohesion":
		next.Params.RCohesion = value
	case "w_sep":
		next.Params.WSep = value
	case "w_align":
		next.Params.WAlign = value
	case "w_cohesion":
		next.Params.WCohesion = value
	case "w_boundary":
		next.Params.WBoundary = value
	case "w_chase":
		next.Params.WChase = value
	case "max_speed":
		next.Params.MaxSpeed = value
	case "min_speed":
		next.Params.MinSpeed = value
	case "max_force":
		next.Params.MaxForce = value
	case "margin":
		next.Params.Margin = value
	case "fov_deg":
		next.Params.FOVDeg = value
	default:
		return false
	}
	if next.Validate() != nil {
		return false
	}
	f.cfg = next
	return true
}

// ParameterControls lists the tunables hosts may expose for live adjustment.
func (f *Flock) ParameterControls() []core.ParameterControl {
	p := f.cfg.Params
	return []core.ParameterControl{
		{Key: "r_sep", Label: "Separation radius", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "r_align", Label: "Alignment radius", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "r_cohesion", Label: "Cohesion radius", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "w_sep", Label: "Separation weight", Type: core.ParamTypeFloat, Step: 50, Min: 0, HasMin: true},
		{Key: "w_align", Label: "Alignment weight", Type: core.ParamTypeFloat, Step: 0.5, Min: 0, HasMin: true},
		{Key: "w_cohesion", Label: "Cohesion weight", Type: core.ParamTypeFloat, Step: 0.5, Min: 0, HasMin: true},
		{Key: "w_boundary", Label: "Boundary weight", Type: core.ParamTypeFloat, Step: 50, Min: 0, HasMin: true},
		{Key: "w_chase", Label: "Chase weight", Type: core.ParamTypeFloat, Step: 0.5, Min: 0, HasMin: true},
		{Key: "max_speed", Label: "Max speed", Type: core.ParamTypeFloat, Step: 10, Min: p.MinSpeed, HasMin: true},
		{Key: "min_speed", Label: "Min speed", Type: core.ParamTypeFloat, Step: 10, Min: 0, HasMin: true, Max: p.MaxSpeed, HasMax: true},
		{Key: "max_force", Label: "Max force", Type: core.ParamTypeFloat, Step: 50, Min: 1, HasMin: true},
		{Key: "fov_deg", Label: "Field of view", Type: core.ParamTypeFloat, Step: 10, Min: 10, HasMin: true, Max: 360, HasMax: true},
	}
}

func init() {
	core.Register("flock", func(cfg map[string]string) (core.Sim, error) {
		c, err := FromMap(cfg)
		if err != nil {
			return nil, err
		}
		f, err := NewWithConfig(c)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}
