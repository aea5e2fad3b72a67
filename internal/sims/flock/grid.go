package flock

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Index answers radius queries over a snapshot of agent positions. The
// snapshot is taken at Build and results always refer to it, so the index
// must be rebuilt after every tick's motion.
type Index interface {
	// Build replaces any prior structure with one over the given positions.
	// Ids in query results are indices into the slice.
	Build(positions []r2.Vec)

	// QueryRadius appends to out the ids of all indexed points within radius
	// of p (closed ball: ties at exactly radius are included) and returns the
	// extended slice. Order is unspecified. A negative radius is a caller
	// contract violation and panics.
	QueryRadius(p r2.Vec, radius float64, out []int) []int
}

type cellKey struct {
	X, Y int
}

// Grid is a uniform-cell spatial index. Cell size should be close to the
// largest interaction radius so that a radius query touches at most the 3x3
// cell block around the query point. Cells are kept in a map keyed by
// world-space cell coordinates, so the grid needs no fixed extent and agents
// overshooting the world bounds stay indexed.
type Grid struct {
	cellSize float64
	invCell  float64

	cells     map[cellKey][]int32
	positions []r2.Vec
}

// NewGrid allocates a grid with the given cell size.
func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) {
		panic(fmt.Sprintf("flock: grid cell size must be positive, got %g", cellSize))
	}
	return &Grid{
		cellSize: cellSize,
		invCell:  1 / cellSize,
		cells:    make(map[cellKey][]int32),
	}
}

// CellSize returns the configured cell edge length.
func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) keyFor(p r2.Vec) cellKey {
	return cellKey{
		X: int(math.Floor(p.X * g.invCell)),
		Y: int(math.Floor(p.Y * g.invCell)),
	}
}

// Build implements Index. Buckets are reused across rebuilds to keep the
// per-tick allocation cost near zero once the flock has settled.
func (g *Grid) Build(positions []r2.Vec) {
	for k, bucket := range g.cells {
		g.cells[k] = bucket[:0]
	}
	for i, p := range positions {
		k := g.keyFor(p)
		g.cells[k] = append(g.cells[k], int32(i))
	}
	g.positions = positions
}

// QueryRadius implements Index.
func (g *Grid) QueryRadius(p r2.Vec, radius float64, out []int) []int {
	if radius < 0 {
		panic(fmt.Sprintf("flock: negative query radius %g", radius))
	}
	rr := radius * radius
	minX := int(math.Floor((p.X - radius) * g.invCell))
	maxX := int(math.Floor((p.X + radius) * g.invCell))
	minY := int(math.Floor((p.Y - radius) * g.invCell))
	maxY := int(math.Floor((p.Y + radius) * g.invCell))
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			for _, id := range g.cells[cellKey{X: cx, Y: cy}] {
				d := r2.Sub(g.positions[id], p)
				if r2.Norm2(d) <= rr {
					out = append(out, int(id))
				}
			}
		}
	}
	return out
}

// BruteIndex is the O(N) reference implementation of Index used to verify the
// grid and as a fallback for tiny populations.
type BruteIndex struct {
	positions []r2.Vec
}

// NewBruteIndex returns an empty brute-force index.
func NewBruteIndex() *BruteIndex { return &BruteIndex{} }

// Build implements Index.
func (b *BruteIndex) Build(positions []r2.Vec) {
	b.positions = positions
}

// QueryRadius implements Index.
func (b *BruteIndex) QueryRadius(p r2.Vec, radius float64, out []int) []int {
	if radius < 0 {
		panic(fmt.Sprintf("flock: negative query radius %g", radius))
	}
	rr := radius * radius
	for i, q := range b.positions {
		if r2.Norm2(r2.Sub(q, p)) <= rr {
			out = append(out, i)
		}
	}
	return out
}
