package flock

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// integrator advances velocity and position from the evaluated acceleration
// under the configured speed limits, staging results into the point set's
// next buffers. Enforcing a nonzero minimum speed keeps boids from stalling;
// the maximum bounds both simulation cost and visual plausibility.
type integrator struct {
	p *Params
}

func (it *integrator) step(ps *PointSet, i int, accel r2.Vec, dt float64) {
	p := it.p
	vel := r2.Add(ps.Vel(i), r2.Scale(dt, accel))
	speed := r2.Norm(vel)
	switch {
	case speed == 0:
		if p.MinSpeed > 0 {
			// Acceleration cancelled the motion exactly. Resume along the
			// last known heading rather than normalizing a zero vector.
			h := ps.Heading(i)
			vel = r2.Scale(p.MinSpeed, r2.Vec{X: math.Cos(h), Y: math.Sin(h)})
		}
	case speed < p.MinSpeed:
		vel = r2.Scale(p.MinSpeed/speed, vel)
	case speed > p.MaxSpeed:
		vel = r2.Scale(p.MaxSpeed/speed, vel)
	}
	pos := r2.Add(ps.Pos(i), r2.Scale(dt, vel))
	ps.SetNext(i, pos, vel)
}
