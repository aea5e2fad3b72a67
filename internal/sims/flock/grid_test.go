package flock

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
)

func randomPositions(n int, seed int64, extent float64) []r2.Vec {
	rng := core.NewRNG(seed)
	pts := make([]r2.Vec, n)
	for i := range pts {
		pts[i] = r2.Vec{
			X: rng.Range(-extent, extent),
			Y: rng.Range(-extent, extent),
		}
	}
	return pts
}

func TestQueryRadiusMatchesBruteForce(t *testing.T) {
	positions := randomPositions(400, 7, 200)

	grid := NewGrid(25)
	grid.Build(positions)
	brute := NewBruteIndex()
	brute.Build(positions)

	radii := []float64{0, 1, 5, 25, 80, 500}
	for qi := 0; qi < 40; qi++ {
		p := positions[qi*10]
		for _, r := range radii {
			got := grid.QueryRadius(p, r, nil)
			want := brute.QueryRadius(p, r, nil)
			slices.Sort(got)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("radius %g at %v: grid returned %v, brute force %v", r, p, got, want)
			}
		}
	}
}

func TestQueryRadiusClosedBall(t *testing.T) {
	positions := []r2.Vec{{X: 0, Y: 0}, {X: 3, Y: 4}}
	grid := NewGrid(5)
	grid.Build(positions)

	// (3,4) is at distance exactly 5; ties at the radius are included.
	got := grid.QueryRadius(r2.Vec{}, 5, nil)
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("expected both points within closed ball of radius 5, got %v", got)
	}

	got = grid.QueryRadius(r2.Vec{}, 4.999, nil)
	if !slices.Equal(got, []int{0}) {
		t.Fatalf("expected only the origin within radius 4.999, got %v", got)
	}
}

func TestQueryRadiusZero(t *testing.T) {
	positions := []r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	grid := NewGrid(1)
	grid.Build(positions)

	got := grid.QueryRadius(r2.Vec{X: 1, Y: 1}, 0, nil)
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("zero radius should return exactly the coincident points, got %v", got)
	}
}

func TestBuildReplacesPriorStructure(t *testing.T) {
	grid := NewGrid(10)
	grid.Build([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	grid.Build([]r2.Vec{{X: 100, Y: 100}})

	if got := grid.QueryRadius(r2.Vec{}, 50, nil); len(got) != 0 {
		t.Fatalf("stale points surfaced after rebuild: %v", got)
	}
	got := grid.QueryRadius(r2.Vec{X: 100, Y: 100}, 1, nil)
	if !slices.Equal(got, []int{0}) {
		t.Fatalf("rebuilt index missing its point, got %v", got)
	}
}

func TestNegativeRadiusPanics(t *testing.T) {
	for _, idx := range []Index{NewGrid(10), NewBruteIndex()} {
		idx.Build([]r2.Vec{{X: 0, Y: 0}})
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%T: negative radius must panic", idx)
				}
			}()
			idx.QueryRadius(r2.Vec{}, -1, nil)
		}()
	}
}
