package imgio

import(
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/tiff"

	"github.com/abworrall/astro-snr/pkg/emath"
	"github.com/abworrall/astro-snr/pkg/reject"
)

// LoadImage decodes a PNG, JPEG, TIFF or FITS file, by extension.
func LoadImage(filename string) (image.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %w", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(reader)
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	case ".fit", ".fits", ".fts":
		img, err = decodeFITS(reader)
	case ".jpg", ".jpeg":
		img, _, err = image.Decode(reader)
	default:
		return nil, reject.New(reject.Config, "'%s': unsupported image type, want png, jpeg, tiff or fits", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %w", filename, err)
	}
	return img, nil
}

func decodeFITS(reader io.Reader) (image.Image, error) {
	f, err := fitsio.Open(reader)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdu, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("primary HDU is not an image")
	}
	img := hdu.Image()
	if img == nil {
		return nil, fmt.Errorf("primary HDU has no pixel data")
	}
	return img, nil
}

// LoadMask reads a target mask image, and resamples it onto a w x h
// frame. Pixel brightness becomes the mask value, in [0,1].
func LoadMask(filename string, w, h int, place emath.Placement) (emath.FloatGrid, error) {
	if w <= 0 || h <= 0 {
		return emath.FloatGrid{}, reject.New(reject.InvalidInput, "mask size must be positive, got %dx%d", w, h)
	}

	src, err := LoadImage(filename)
	if err != nil {
		return emath.FloatGrid{}, err
	}
	return MaskFromImage(src, w, h, place), nil
}

func MaskFromImage(src image.Image, w, h int, place emath.Placement) emath.FloatGrid {
	sb := src.Bounds()
	dst := image.NewGray16(image.Rect(0, 0, w, h))

	s2d := place.MaskToFrame(sb.Dx(), sb.Dy(), w, h)
	draw.CatmullRom.Transform(dst, f64.Aff3(s2d), src, sb, draw.Src, nil)

	fg := emath.FloatGridFromGray16(dst, 1.0/65535)
	fg.Clamp(0, 1)
	return fg
}
