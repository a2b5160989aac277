package emath

import "math"

// Synthetic target masks, for when the user has no image to hand.
// Values are relative brightness in [0,1].

// DiscMask is a centred disc of the given radius (pixels), with a
// linear falloff over `soft` pixels at the edge.
func DiscMask(w, h int, radius, soft float64) FloatGrid {
	fg := NewFloatGrid(w, h)
	cx, cy := float64(w-1)/2, float64(h-1)/2

	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			r := math.Hypot(float64(x)-cx, float64(y)-cy)
			switch {
			case r <= radius:      fg.Set(x, y, 1)
			case r < radius+soft:  fg.Set(x, y, 1 - (r-radius)/soft)
			}
		}
	}
	return fg
}

// GaussianMask is a centred 2-D gaussian with peak 1, roughly what a
// star or a small galaxy core looks like.
func GaussianMask(w, h int, sigma float64) FloatGrid {
	fg := NewFloatGrid(w, h)
	if sigma <= 0 { return fg }
	cx, cy := float64(w-1)/2, float64(h-1)/2

	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			fg.Set(x, y, math.Exp(-(dx*dx + dy*dy) / (2*sigma*sigma)))
		}
	}
	return fg
}

// FlatMask covers the whole frame.
func FlatMask(w, h int) FloatGrid {
	fg := NewFloatGrid(w, h)
	fg.Fill(1)
	return fg
}
