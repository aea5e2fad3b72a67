package flock

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Neighbor is one entry of a query result: the neighbor's id plus its
// position and velocity as of the tick snapshot the query ran against.
type Neighbor struct {
	ID   int
	Pos  r2.Vec
	Vel  r2.Vec
	Dist float64
}

// NeighborQuery is the read surface the behavior evaluator works against.
// It binds an Index to the point set snapshot it was built from, excludes the
// querying agent from every result, applies the field-of-view filter, and
// returns neighbors sorted by distance (ties broken by id) so that the
// neighbor cap keeps the nearest ones deterministically.
//
// A NeighborQuery is not safe for concurrent use; each evaluate worker owns
// its own instance.
type NeighborQuery struct {
	ps  *PointSet
	idx Index

	fovCos float64 // cos of the half field-of-view angle, -1 disables
	cap    int

	ids []int
}

func newNeighborQuery(ps *PointSet, idx Index, p *Params) *NeighborQuery {
	fovCos := -1.0
	if p.FOVDeg < 360 {
		fovCos = math.Cos(p.FOVDeg / 2 * math.Pi / 180)
	}
	return &NeighborQuery{ps: ps, idx: idx, fovCos: fovCos, cap: p.NeighborCap}
}

// Within appends to out all visible neighbors of agent within radius and
// returns the extended slice, nearest first. Out-of-range agent ids and
// negative radii are caller contract violations and panic.
func (q *NeighborQuery) Within(agent int, radius float64, out []Neighbor) []Neighbor {
	if agent < 0 || agent >= q.ps.Len() {
		panic(fmt.Sprintf("flock: agent id %d out of range [0, %d)", agent, q.ps.Len()))
	}
	if radius < 0 {
		panic(fmt.Sprintf("flock: negative query radius %g", radius))
	}

	pos := q.ps.Pos(agent)
	heading := q.ps.Vel(agent)
	checkFOV := q.fovCos > -1 && (heading.X != 0 || heading.Y != 0)

	q.ids = q.idx.QueryRadius(pos, radius, q.ids[:0])
	base := len(out)
	for _, id := range q.ids {
		if id == agent {
			continue
		}
		npos := q.ps.Pos(id)
		to := r2.Sub(npos, pos)
		dist := r2.Norm(to)
		if checkFOV && dist > 0 {
			cos := r2.Dot(heading, to) / (r2.Norm(heading) * dist)
			if cos < q.fovCos {
				continue
			}
		}
		out = append(out, Neighbor{ID: id, Pos: npos, Vel: q.ps.Vel(id), Dist: dist})
	}

	added := out[base:]
	sort.Slice(added, func(i, j int) bool {
		if added[i].Dist != added[j].Dist {
			return added[i].Dist < added[j].Dist
		}
		return added[i].ID < added[j].ID
	})
	if q.cap > 0 && len(added) > q.cap {
		out = out[:base+q.cap]
	}
	return out
}

// SeparationNeighbors returns the visible neighbors within the separation radius.
func (q *NeighborQuery) SeparationNeighbors(agent int, r float64) []Neighbor {
	return q.Within(agent, r, nil)
}

// AlignmentNeighbors returns the visible neighbors within the alignment radius.
func (q *NeighborQuery) AlignmentNeighbors(agent int, r float64) []Neighbor {
	return q.Within(agent, r, nil)
}

// CohesionNeighbors returns the visible neighbors within the cohesion radius.
func (q *NeighborQuery) CohesionNeighbors(agent int, r float64) []Neighbor {
	return q.Within(agent, r, nil)
}
