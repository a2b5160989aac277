// Package imgio reads target masks, and writes renderings of simulated
// stacks in a handful of formats.
package imgio

import(
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/tiff"

	"github.com/abworrall/astro-snr/pkg/emath"
)

func create(filename string, encode func(f *os.File) error) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %w", filename, err)
	}
	if err := encode(writer); err != nil {
		writer.Close()
		return fmt.Errorf("encode '%s': %w", filename, err)
	}
	return writer.Close()
}

func WritePNG(img image.Image, filename string) error {
	return create(filename, func(f *os.File) error { return png.Encode(f, img) })
}

func WriteTIFF16(img *image.Gray16, filename string) error {
	return create(filename, func(f *os.File) error {
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	})
}

// WriteHDR saves linear intensities as a Radiance RGBE file.
func WriteHDR(fg emath.FloatGrid, filename string) error {
	return create(filename, func(f *os.File) error { return rgbe.Encode(f, emath.HDRGray{FloatGrid: fg}) })
}

// WriteFITS saves the grid as 32-bit floats. FITS puts the first row
// at the bottom, so rows are flipped to keep the image upright.
func WriteFITS(fg emath.FloatGrid, filename string, cards ...fitsio.Card) error {
	w, h := fg.Dx(), fg.Dy()
	pix := make([]float32, 0, w*h)
	for y:=h-1; y>=0; y-- {
		for x:=0; x<w; x++ {
			pix = append(pix, float32(fg.Get(x,y)))
		}
	}

	return create(filename, func(f *os.File) error {
		fits, err := fitsio.Create(f)
		if err != nil {
			return err
		}
		defer fits.Close()

		im := fitsio.NewImage(-32, []int{w, h})
		defer im.Close()
		if err := im.Header().Append(cards...); err != nil {
			return err
		}
		if err := im.Write(pix); err != nil {
			return err
		}
		return fits.Write(im)
	})
}

// WriteAnnotatedPNG writes the image with some lines of text in the
// top left corner.
func WriteAnnotatedPNG(img image.Image, filename string, lines ...string) error {
	dc := gg.NewContextForImage(img)

	// A dark box behind the text, so it reads against bright targets
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, float64(img.Bounds().Dx()), 8 + 16*float64(len(lines)))
	dc.Fill()

	dc.SetRGB(1, 1, 0.6)
	for i, l := range lines {
		dc.DrawString(l, 6, 18 + 16*float64(i))
	}

	return create(filename, func(f *os.File) error { return png.Encode(f, dc.Image()) })
}

var(
	heatStops = []string{"#000428", "#2a0a6b", "#b5367a", "#fca636", "#f0f921"}
)

// Heat returns the colour for t in [0,1], blending between the stops
// in HCL space so the gradient looks even.
func Heat(t float64) colorful.Color {
	t = emath.Clamp(t, 0, 1)
	seg := t * float64(len(heatStops)-1)
	i := int(seg)
	if i >= len(heatStops)-1 { i = len(heatStops) - 2 }

	c1, _ := colorful.Hex(heatStops[i])
	c2, _ := colorful.Hex(heatStops[i+1])
	switch f := seg-float64(i); {
	case f <= 0: return c1
	case f >= 1: return c2
	default:     return c1.BlendHcl(c2, f).Clamped()
	}
}

// WriteHeatmap colours each value of the grid, with `max` (or more)
// being the hottest.
func WriteHeatmap(fg emath.FloatGrid, max float64, filename string) error {
	if max <= 0 {
		_, max = fg.MinMax()
	}
	if max <= 0 { max = 1 }

	img := image.NewRGBA(image.Rect(0, 0, fg.Dx(), fg.Dy()))
	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			img.Set(x, y, Heat(fg.Get(x,y) / max))
		}
	}
	return WritePNG(img, filename)
}
