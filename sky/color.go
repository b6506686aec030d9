package sky

// Color is a linear RGB triple in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ColorFromBV maps a B-V color index onto the seven Harvard spectral
// classes, hot blue O-type stars through red M-type stars. Band edges and
// values follow blackbody radiation curves.
func ColorFromBV(bv float64) Color {
	switch {
	case bv < -0.20: // O: hot blue (Rigel)
		return Color{R: 0.61, G: 0.73, B: 1.00}
	case bv < 0.00: // B: blue-white (Spica)
		return Color{R: 0.78, G: 0.87, B: 1.00}
	case bv < 0.30: // A: white (Vega, Sirius)
		return Color{R: 0.96, G: 0.97, B: 1.00}
	case bv < 0.60: // F: yellow-white (Procyon)
		return Color{R: 1.00, G: 0.98, B: 0.92}
	case bv < 0.80: // G: yellow (the Sun)
		return Color{R: 1.00, G: 0.93, B: 0.74}
	case bv < 1.20: // K: orange (Arcturus)
		return Color{R: 1.00, G: 0.82, B: 0.56}
	default: // M: red (Betelgeuse)
		return Color{R: 1.00, G: 0.65, B: 0.38}
	}
}
