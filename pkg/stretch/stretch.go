// Package stretch holds the display transforms applied to 16-bit
// grayscale renderings.
package stretch

import(
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/abworrall/astro-snr/pkg/reject"
)

const(
	White = 65535.0

	// AutostretchTarget is where autostretch puts the mean, as a fraction of white.
	AutostretchTarget = 0.25
)

func mapPixels(img *image.Gray16, f func(v float64) float64) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(b)
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			out.SetGray16(x, y, color.Gray16{toPixel(f(float64(img.Gray16At(x,y).Y)))})
		}
	}
	return out
}

// toPixel truncates towards zero, saturating at the ends of the range.
func toPixel(v float64) uint16 {
	if v != v || v <= 0 { return 0 } // NaN too
	if v >= White { return 0xffff }
	return uint16(v)
}

// ClipLevel linearly maps black->0 and white->65535.
func ClipLevel(img *image.Gray16, black, white float64) (*image.Gray16, error) {
	if black == white {
		return nil, reject.New(reject.DegenerateRange, "black point == white point (%g)", black)
	}
	return mapPixels(img, func(v float64) float64 {
		return White * (v - black) / (white - black)
	}), nil
}

func mtf(v, m float64) float64 {
	return v * (m-1) / ((v/White)*(2*m-1) - m)
}

// Stretch applies the midtones transfer function. m=0.5 leaves the
// image alone, smaller values brighten it.
func Stretch(img *image.Gray16, m float64) (*image.Gray16, error) {
	if !(m > 0 && m < 1) {
		return nil, reject.New(reject.InvalidInput, "midtones parameter must be in (0,1), got %g", m)
	}
	return mapPixels(img, func(v float64) float64 { return mtf(v, m) }), nil
}

// MidtonesForMean is the m that moves a normalized mean to `target`.
func MidtonesForMean(meanNorm, target float64) float64 {
	return meanNorm*(target-1) / (2*target*meanNorm - target - meanNorm)
}

// Autostretch clips to the image's own range and then places the mean
// at 25% gray. A flat image has no range to stretch, and comes back white.
func Autostretch(img *image.Gray16) *image.Gray16 {
	min, max := MinMax(img)
	if min == max {
		out := image.NewGray16(img.Bounds())
		draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		return out
	}

	clipped, _ := ClipLevel(img, float64(min), float64(max))
	m := MidtonesForMean(MeanNorm(clipped), AutostretchTarget)

	return mapPixels(clipped, func(v float64) float64 { return mtf(v, m) })
}

func MinMax(img *image.Gray16) (uint16, uint16) {
	b := img.Bounds()
	min, max := uint16(0xffff), uint16(0)
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			v := img.Gray16At(x,y).Y
			if v < min { min = v }
			if v > max { max = v }
		}
	}
	return min, max
}

// MeanNorm is the mean pixel value, as a fraction of white.
func MeanNorm(img *image.Gray16) float64 {
	b := img.Bounds()
	if b.Empty() { return 0 }
	sum := 0.0
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			sum += float64(img.Gray16At(x,y).Y) / White
		}
	}
	return sum / float64(b.Dx()*b.Dy())
}
