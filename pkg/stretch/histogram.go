package stretch

import(
	"fmt"
	"image"

	"github.com/codahale/hdrhistogram"
	"github.com/skypies/util/histogram"

	"github.com/abworrall/astro-snr/pkg/reject"
)

// Stats summarizes the pixel values of a rendering, in ADU.
type Stats struct {
	Count   int64
	Min     int64
	Max     int64
	Mean    float64
	StdDev  float64
	Median  int64

	hist   *hdrhistogram.Histogram
}

func (s Stats)String() string {
	return fmt.Sprintf("Stats[n=%d, %d..%d, mean %.1f, sd %.1f, median %d]",
		s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.Median)
}

// Percentile is the pixel value below which `p` percent of pixels fall.
func (s Stats)Percentile(p float64) int64 {
	if s.hist == nil { return 0 }
	return s.hist.ValueAtQuantile(p)
}

// ASCII draws the distribution across the full 16-bit range as a
// one-line bar chart, `width` characters wide, for logging.
func (s Stats)ASCII(width int) string {
	return histogram.HDR2ASCII(s.hist, width, 0, White+1)
}

// Histogram records every pixel. Values come back to within 3
// significant figures, which is plenty for picking clip points.
func Histogram(img *image.Gray16) Stats {
	h := hdrhistogram.New(1, 65535, 3)

	b := img.Bounds()
	for y:=b.Min.Y; y<b.Max.Y; y++ {
		for x:=b.Min.X; x<b.Max.X; x++ {
			h.RecordValue(int64(img.Gray16At(x,y).Y))
		}
	}

	return Stats{
		Count:  h.TotalCount(),
		Min:    h.Min(),
		Max:    h.Max(),
		Mean:   h.Mean(),
		StdDev: h.StdDev(),
		Median: h.ValueAtQuantile(50),
		hist:   h,
	}
}

// PercentileClip is ClipLevel with the black and white points taken
// from the image's own histogram, at percentiles `lo` and `hi`.
func PercentileClip(img *image.Gray16, lo, hi float64) (*image.Gray16, error) {
	if lo < 0 || hi > 100 || lo >= hi {
		return nil, reject.New(reject.InvalidInput, "percentiles must satisfy 0 <= lo < hi <= 100, got %g, %g", lo, hi)
	}

	s := Histogram(img)
	black, white := s.Percentile(lo), s.Percentile(hi)
	if white > 65535 { white = 65535 }

	return ClipLevel(img, float64(black), float64(white))
}
