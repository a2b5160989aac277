package emath

import(
	"image"
	"image/color"

	"github.com/mdouchement/hdr/hdrcolor"
)

// HDRGray presents a FloatGrid of linear intensities as an hdr.Image,
// so it can go through the HDR codecs and tone mapping operators.
type HDRGray struct {
	FloatGrid
}

// Implement image.Image
func (h HDRGray)ColorModel() color.Model { return hdrcolor.RGBModel }
func (h HDRGray)Bounds() image.Rectangle { return image.Rect(0, 0, h.Dx(), h.Dy()) }
func (h HDRGray)At(x, y int) color.Color { return h.HDRAt(x,y) }

// Implement hdr.Image
func (h HDRGray)Size() int                     { return h.Len() }
func (h HDRGray)HDRAt(x, y int) hdrcolor.Color {
	v := h.Get(x,y)
	return hdrcolor.RGB{R:v, G:v, B:v}
}
