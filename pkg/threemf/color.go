package threemf

import "strconv"

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var colorWhite = Color{1, 1, 1, 1}

// ParseColor decodes a 3MF display color: "#RRGGBB" or "#RRGGBBAA",
// case-insensitive. Alpha defaults to 1 when absent. The second return is
// false for anything else; callers treat that as "no color" rather than an
// error.
func ParseColor(s string) (Color, bool) {
	if len(s) == 0 || s[0] != '#' {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return Color{}, false
	}

	a := uint64(0xFF)
	if len(hex) == 8 {
		a = v & 0xFF
		v >>= 8
	}
	return Color{
		R: float32(v>>16&0xFF) / 255,
		G: float32(v>>8&0xFF) / 255,
		B: float32(v&0xFF) / 255,
		A: float32(a) / 255,
	}, true
}

// paletteRef points into a material palette: the basematerials id plus an
// index into its color list.
type paletteRef struct {
	pid   string
	index int
}
