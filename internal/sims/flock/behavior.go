package flock

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// minSeparation floors the distance used for inverse-distance weighting so
// coincident agents produce a large but finite push.
const minSeparation = 1e-6

// evaluator computes one bounded steering acceleration per agent per tick
// from the three flocking rules plus boundary containment and the optional
// chase target. It reads only the frozen tick snapshot through its query and
// keeps its own scratch buffers, so one evaluator per worker runs without
// synchronization.
type evaluator struct {
	p      *Params
	bounds r2.Box
	q      *NeighborQuery
	rMax   float64

	target    r2.Vec
	hasTarget bool

	buf []Neighbor
}

func newEvaluator(p *Params, bounds r2.Box, q *NeighborQuery, target r2.Vec, hasTarget bool) *evaluator {
	rMax := p.RSep
	if p.RAlign > rMax {
		rMax = p.RAlign
	}
	if p.RCohesion > rMax {
		rMax = p.RCohesion
	}
	return &evaluator{p: p, bounds: bounds, q: q, rMax: rMax, target: target, hasTarget: hasTarget}
}

// steering returns the combined acceleration for agent i, clamped to MaxForce.
func (e *evaluator) steering(i int) r2.Vec {
	p := e.p
	pos := e.q.ps.Pos(i)
	vel := e.q.ps.Vel(i)

	e.buf = e.q.Within(i, e.rMax, e.buf[:0])

	var sep, velSum, posSum r2.Vec
	var nSep, nAlign, nCoh int
	for _, n := range e.buf {
		if n.Dist <= p.RSep {
			d := n.Dist
			if d < minSeparation {
				d = minSeparation
			}
			away := r2.Sub(pos, n.Pos)
			if away.X == 0 && away.Y == 0 {
				// Coincident pair: deterministic tie-break instead of a
				// random kick, so identical runs stay identical.
				away = r2.Vec{X: 1}
				if n.ID < i {
					away.X = -1
				}
			}
			sep = r2.Add(sep, r2.Scale(1/(d*d), away))
			nSep++
		}
		if n.Dist <= p.RAlign {
			velSum = r2.Add(velSum, n.Vel)
			nAlign++
		}
		if n.Dist <= p.RCohesion {
			posSum = r2.Add(posSum, n.Pos)
			nCoh++
		}
	}

	var acc r2.Vec
	if nSep > 0 {
		acc = r2.Add(acc, r2.Scale(p.WSep/float64(nSep), sep))
	}
	if nAlign > 0 {
		avgVel := r2.Scale(1/float64(nAlign), velSum)
		acc = r2.Add(acc, r2.Scale(p.WAlign, r2.Sub(avgVel, vel)))
	}
	if nCoh > 0 {
		centroid := r2.Scale(1/float64(nCoh), posSum)
		acc = r2.Add(acc, r2.Scale(p.WCohesion, r2.Sub(centroid, pos)))
	}

	acc = r2.Add(acc, r2.Scale(p.WBoundary, e.containment(pos)))

	if e.hasTarget {
		acc = r2.Add(acc, r2.Scale(p.WChase, r2.Sub(e.target, pos)))
	}

	return clampMag(acc, p.MaxForce)
}

// containment returns the soft boundary push for pos: zero inside the safety
// margin, growing linearly with penetration into the band and beyond the
// bounds. The returned vector is in units of penetration ratio per axis; the
// caller applies the boundary weight.
func (e *evaluator) containment(pos r2.Vec) r2.Vec {
	m := e.p.Margin
	if m <= 0 {
		return r2.Vec{}
	}
	var push r2.Vec
	if lo := e.bounds.Min.X + m; pos.X < lo {
		push.X += (lo - pos.X) / m
	}
	if hi := e.bounds.Max.X - m; pos.X > hi {
		push.X -= (pos.X - hi) / m
	}
	if lo := e.bounds.Min.Y + m; pos.Y < lo {
		push.Y += (lo - pos.Y) / m
	}
	if hi := e.bounds.Max.Y - m; pos.Y > hi {
		push.Y -= (pos.Y - hi) / m
	}
	return push
}

// clampMag scales v down to length max when it is longer. Zero vectors pass
// through untouched.
func clampMag(v r2.Vec, max float64) r2.Vec {
	n := r2.Norm(v)
	if n > max {
		return r2.Scale(max/n, v)
	}
	return v
}
