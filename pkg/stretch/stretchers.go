package stretch

import(
	"image"
	"sort"

	"github.com/mdouchement/hdr/tmo"
	"golang.org/x/image/draw"

	"github.com/abworrall/astro-snr/pkg/emath"
	"github.com/abworrall/astro-snr/pkg/reject"
)

// A Func turns a linear 16-bit rendering into one for display.
type Func func(img *image.Gray16) (*image.Gray16, error)

var(
	stretchers = map[string]Func{
		"linear":      Linear,
		"autostretch": func(img *image.Gray16) (*image.Gray16, error) { return Autostretch(img), nil },
		"percentile":  func(img *image.Gray16) (*image.Gray16, error) { return PercentileClip(img, 0.5, 99.5) },
		"drago03":     Drago03,
		"reinhard05":  Reinhard05,
	}
)

func List() []string {
	names := []string{}
	for k := range stretchers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Get looks up a stretch by name.
func Get(name string) (Func, error) {
	if f, exists := stretchers[name]; exists {
		return f, nil
	}
	return nil, reject.New(reject.Config, "stretch %q not recognized, wanted one of %v", name, List())
}

func Linear(img *image.Gray16) (*image.Gray16, error) {
	out := image.NewGray16(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

// The tone mapping operators want an hdr.Image, and hand back 8 or 16
// bit RGB; we go via a FloatGrid and come back to gray.

func runTMO(img *image.Gray16, setup func(emath.HDRGray) tmo.ToneMappingOperator) (*image.Gray16, error) {
	if min, max := MinMax(img); min == max {
		return nil, reject.New(reject.DegenerateRange, "flat image (%d) cannot be tone mapped", min)
	}

	in := emath.HDRGray{FloatGrid: emath.FloatGridFromGray16(img, 1.0/White)}
	res := setup(in).Perform()

	out := image.NewGray16(image.Rect(0, 0, in.Dx(), in.Dy()))
	draw.Draw(out, out.Bounds(), res, res.Bounds().Min, draw.Src)
	return out, nil
}

func Drago03(img *image.Gray16) (*image.Gray16, error) {
	return runTMO(img, func(h emath.HDRGray) tmo.ToneMappingOperator {
		op := tmo.NewDefaultDrago03(h)
		op.Bias = 1.0 // the default blows out faint targets against a dark sky
		return op
	})
}

func Reinhard05(img *image.Gray16) (*image.Gray16, error) {
	return runTMO(img, func(h emath.HDRGray) tmo.ToneMappingOperator {
		op := tmo.NewDefaultReinhard05(h)
		op.Chromatic = 0.0
		op.Light     = 0.005
		return op
	})
}
