//go:build ebiten

package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
)

// FlockPainter draws agent snapshots into an ebiten image: one dot plus a
// heading tick per agent, and the containment band outline.
type FlockPainter struct {
	palette []color.RGBA
	band    color.RGBA
}

// NewFlockPainter allocates a painter for a population of n agents.
func NewFlockPainter(n int) *FlockPainter {
	return &FlockPainter{
		palette: AgentPalette(n),
		band:    color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff},
	}
}

// Draw renders the agents into dst. World coordinates are mapped so that
// bounds.Min lands on the top-left corner, scaled by scale pixels per world
// unit. margin is the containment band width used for the outline.
func (fp *FlockPainter) Draw(dst *ebiten.Image, agents []core.Agent, bounds r2.Box, margin float64, scale float64) {
	size := r2.Sub(bounds.Max, bounds.Min)
	vector.StrokeRect(dst,
		float32(margin*scale), float32(margin*scale),
		float32((size.X-2*margin)*scale), float32((size.Y-2*margin)*scale),
		1, fp.band, true)

	const dotRadius = 2.5
	const headingLen = 7.0
	for i, a := range agents {
		x := float32((a.Pos.X - bounds.Min.X) * scale)
		y := float32((a.Pos.Y - bounds.Min.Y) * scale)
		col := fp.band
		if i < len(fp.palette) {
			col = fp.palette[i]
		}
		hx := x + float32(math.Cos(a.Heading)*headingLen)
		hy := y + float32(math.Sin(a.Heading)*headingLen)
		vector.StrokeLine(dst, x, y, hx, hy, 1, col, true)
		vector.DrawFilledCircle(dst, x, y, dotRadius, col, true)
	}
}
