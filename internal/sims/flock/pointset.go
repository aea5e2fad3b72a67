package flock

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointSet stores all agent positions, velocities and headings in stable
// index order. State is double buffered: readers of one tick see the current
// buffers while the integrator stages the next tick, which becomes visible
// only at Swap. Exactly one writer per tick touches the staging buffers.
type PointSet struct {
	pos []r2.Vec
	vel []r2.Vec

	nextPos []r2.Vec
	nextVel []r2.Vec

	heading []float64
}

// NewPointSet allocates storage for n agents.
func NewPointSet(n int) *PointSet {
	if n < 0 {
		n = 0
	}
	return &PointSet{
		pos:     make([]r2.Vec, n),
		vel:     make([]r2.Vec, n),
		nextPos: make([]r2.Vec, n),
		nextVel: make([]r2.Vec, n),
		heading: make([]float64, n),
	}
}

// Len returns the agent population.
func (p *PointSet) Len() int { return len(p.pos) }

// Pos returns agent i's current position.
func (p *PointSet) Pos(i int) r2.Vec { return p.pos[i] }

// Vel returns agent i's current velocity.
func (p *PointSet) Vel(i int) r2.Vec { return p.vel[i] }

// Heading returns agent i's heading in radians.
func (p *PointSet) Heading(i int) float64 { return p.heading[i] }

// Positions exposes the current position buffer for spatial index builds.
// The slice is read-only for callers and stale after the next Swap.
func (p *PointSet) Positions() []r2.Vec { return p.pos }

// Place initializes agent i in both buffers. Used at spawn time only.
func (p *PointSet) Place(i int, pos, vel r2.Vec) {
	p.pos[i] = pos
	p.vel[i] = vel
	p.nextPos[i] = pos
	p.nextVel[i] = vel
	if vel.X != 0 || vel.Y != 0 {
		p.heading[i] = math.Atan2(vel.Y, vel.X)
	} else {
		p.heading[i] = 0
	}
}

// SetNext stages agent i's state for the upcoming tick. The heading keeps its
// previous value when the staged velocity is exactly zero.
func (p *PointSet) SetNext(i int, pos, vel r2.Vec) {
	p.nextPos[i] = pos
	p.nextVel[i] = vel
	if vel.X != 0 || vel.Y != 0 {
		p.heading[i] = math.Atan2(vel.Y, vel.X)
	}
}

// Swap publishes the staged buffers as the current tick state.
func (p *PointSet) Swap() {
	p.pos, p.nextPos = p.nextPos, p.pos
	p.vel, p.nextVel = p.nextVel, p.vel
}
