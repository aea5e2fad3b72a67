package render

import (
	"image/color"
	"math"
)

// AgentPalette returns n distinct, stable colors, one per agent index. Hues
// step by the golden-ratio conjugate so nearby indices get far-apart colors
// and the assignment is deterministic across runs.
func AgentPalette(n int) []color.RGBA {
	const step = 0.618033988749895
	pal := make([]color.RGBA, n)
	h := 0.0
	for i := range pal {
		pal[i] = hslToRGBA(h, 0.85, 0.7)
		h += step
		h -= math.Floor(h)
	}
	return pal
}

// hslToRGBA converts a hue in [0,1) with saturation and lightness in [0,1]
// to 8-bit RGBA.
func hslToRGBA(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h * 6
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}
