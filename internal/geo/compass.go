package geo

import "math"

var compass16 = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var compass8 = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Arrow glyphs in the same order as compass8.
var arrows = [...]string{"⬆️", "↗️", "➡️", "↘️", "⬇️", "↙️", "⬅️", "↖️"}

// Compass16 maps a bearing onto one of 16 compass points.
func Compass16(deg float64) string {
	return compass16[sector(deg, len(compass16))]
}

// Compass8 maps a bearing onto one of 8 compass points.
func Compass8(deg float64) string {
	return compass8[sector(deg, len(compass8))]
}

// Arrow maps a bearing onto an 8-way arrow glyph.
// Sector edges sit at 22.5°, 67.5°, ... so 337.5 ≤ deg < 22.5 points up.
func Arrow(deg float64) string {
	return arrows[sector(deg, len(arrows))]
}

// sector returns the index of the n-way slice centered on deg.
func sector(deg float64, n int) int {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	width := 360 / float64(n)
	return int(math.Floor((deg+width/2)/width)) % n
}
