package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/stat"
)

// A FloatGrid is a grid of floats, with some operations. Synthesized
// frames, target masks and SNR maps are all FloatGrids.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// FloatGridFromGray16 scales each pixel by `scale`, e.g. 1/65535 to get
// back into [0,1].
func FloatGridFromGray16(img *image.Gray16, scale float64) FloatGrid {
	b := img.Bounds()
	fg := NewFloatGrid(b.Dx(), b.Dy())
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			fg.Set(x, y, float64(img.Gray16At(b.Min.X+x, b.Min.Y+y).Y) * scale)
		}
	}
	return fg
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Len() int                { return len(fg.values) }
func (fg *FloatGrid)Values() []float64       { return fg.values }
func (fg *FloatGrid)IsEmpty() bool           { return len(fg.values) == 0 }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 { return 0 }
	return len(fg.values) / fg.stride
}

func (g1 *FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

func (fg *FloatGrid)Fill(v float64) {
	for i := range fg.values { fg.values[i] = v }
}

// Apply replaces every value with f(value).
func (fg *FloatGrid)Apply(f func(float64) float64) {
	for i, v := range fg.values { fg.values[i] = f(v) }
}

// AddScaled accumulates `f*g2` into the grid; the grids must be the same size.
func (fg *FloatGrid)AddScaled(g2 FloatGrid, f float64) {
	for i, v := range g2.values { fg.values[i] += f*v }
}

func (fg *FloatGrid)Clamp(min, max float64) {
	fg.Apply(func(v float64) float64 { return Clamp(v, min, max) })
}

func (g1 FloatGrid)GaussianBlur() FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	g2 := g1.NewFromThis()
	if width < 2 || height < 2 {
		copy(g2.values, g1.values)
		return g2
	}

	T  := g1.NewFromThis()

	//--- X blur, build up in T
	for y:=0; y<height; y++ {
		for x:=1; x<width-1; x++ {
			t := 2.0*g1.Get(x,y)
			t += g1.Get(x-1,y)
			t += g1.Get(x+1,y)
			T.Set(x, y, t/4.0)
		}
		T.Set(0, y,       (3.0*g1.Get(0,      y) + g1.Get(1,      y)) / 4.0)
		T.Set(width-1, y, (3.0*g1.Get(width-1,y) + g1.Get(width-2,y)) / 4.0)
	}

	//--- Y blur, read from T and generate output
	for x:=0; x<width; x++ {
		for y:=1; y<height-1; y++ {
			t := 2.0*T.Get(x,y)
			t += T.Get(x,y-1)
			t += T.Get(x,y+1)
			g2.Set(x, y, t/4.0)
		}
		g2.Set(x, 0,        (3.0*T.Get(x,       0) + T.Get(x,       1)) / 4.0)
		g2.Set(x, height-1, (3.0*T.Get(x,height-1) + T.Get(x,height-2)) / 4.0)
	}

	return g2
}

func (fg *FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0 * min
	for i:=0 ; i<len(fg.values) ; i++ {
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return min, max
}

func (fg *FloatGrid)Mean() float64 {
	if fg.IsEmpty() { return 0 }
	return stat.Mean(fg.values, nil)
}

func (fg *FloatGrid)MeanStdDev() (float64, float64) {
	if len(fg.values) < 2 { return fg.Mean(), 0 }
	return stat.MeanStdDev(fg.values, nil)
}

func (fg *FloatGrid)Stats() string {
	min, max := fg.MinMax()
	mean, stddev := fg.MeanStdDev()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, mean %f, sd %f]", fg.Dx(), fg.Dy(), min, max, mean, stddev)
}

// ToGray16 multiplies each value by `scale`, then clamps and truncates
// into a 16-bit pixel.
func (fg *FloatGrid)ToGray16(scale float64) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, fg.Dx(), fg.Dy()))
	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			img.SetGray16(x, y, color.Gray16{ToUint16(fg.Get(x,y) * scale)})
		}
	}
	return img
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span <= 0 { span = 1 }

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			lum := fg.Get(x,y)
			gray := ToUint16(GammaExpand_F64((lum - min) / span) * 65535.0)
			img.Set(x, y, color.RGBA64{gray, gray, gray, 0xFFFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 10, 20)
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("save '%s': %v", filename, err)
	}
	return nil
}
