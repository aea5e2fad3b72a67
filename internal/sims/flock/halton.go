package flock

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// haltonBases are the per-dimension radices of the low-discrepancy sequence.
var haltonBases = [...]int{2, 3, 5, 7, 11, 13}

// haltonAt returns element index of the Halton sequence for the given base
// by radical inversion of index's digits. index is 1-based; element values
// lie in (0, 1).
func haltonAt(index, base int) float64 {
	f := 1.0
	r := 0.0
	for i := index; i > 0; i /= base {
		f /= float64(base)
		r += f * float64(i%base)
	}
	return r
}

// HaltonPoints returns n deterministic, well-distributed points in [0,1)^dim.
// The seed selects the start offset into the sequence, so distinct seeds give
// distinct but equally uniform layouts and equal seeds reproduce exactly.
func HaltonPoints(n, dim int, seed int64) [][]float64 {
	if dim < 1 || dim > len(haltonBases) {
		panic(fmt.Sprintf("flock: halton dimension %d out of range [1, %d]", dim, len(haltonBases)))
	}
	if n < 0 {
		n = 0
	}
	start := int(uint64(seed)%65536) + 1
	pts := make([][]float64, n)
	for i := range pts {
		p := make([]float64, dim)
		for d := 0; d < dim; d++ {
			p[d] = haltonAt(start+i, haltonBases[d])
		}
		pts[i] = p
	}
	return pts
}

// HaltonPoints2 is the 2D convenience form used for spawn positions.
func HaltonPoints2(n int, seed int64) []r2.Vec {
	raw := HaltonPoints(n, 2, seed)
	pts := make([]r2.Vec, len(raw))
	for i, p := range raw {
		pts[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return pts
}
