package emath

import "math"

// Some functions that only operate on basic types, that are useful

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
// `f` is assumed to be in the range [0,1]
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

func Clamp(v, min, max float64) float64 {
	if v < min { return min }
	if v > max { return max }
	return v
}

// ToUint16 truncates towards zero after clamping into [0,65535].
func ToUint16(v float64) uint16 {
	if math.IsNaN(v) { return 0 }
	return uint16(Clamp(v, 0, 65535))
}
