// Package synth simulates a stack of subframes, with shot noise on
// every signal and quantized read noise on the bias.
package synth

import(
	"fmt"
	"image"
	"log"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/abworrall/astro-snr/pkg/emath"
	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/stretch"
)

// FrameStack is the result of a simulation.
type FrameStack struct {
	Params
	Seed       uint64

	Mean       emath.FloatGrid // average of the subframes, ADU
	Linear     emath.FloatGrid // Mean / WhiteLevel, in [0,1]

	Linear16   *image.Gray16   // Linear, quantized
	Stretched  *image.Gray16   // Linear16 after an autostretch
}

func (fs FrameStack)String() string {
	return fmt.Sprintf("FrameStack[seed %d, %s, %s]", fs.Seed, fs.Params, fs.Mean.Stats())
}

// Synthesize simulates p.Subframes exposures of the scene, where `mask`
// gives the target's relative brightness per pixel. Subframe i draws
// from its own generator, seeded from (seed, i), so the result does
// not depend on how the work gets scheduled.
func Synthesize(p Params, mask emath.FloatGrid, seed uint64) (*FrameStack, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if mask.IsEmpty() {
		return nil, reject.New(reject.InvalidInput, "target mask is empty")
	}
	if min, max := mask.MinMax(); min < 0 || max > 1 {
		return nil, reject.New(reject.InvalidInput, "target mask values must be in [0,1], got %g..%g", min, max)
	}

	if p.Verbosity > 0 {
		log.Printf("Synthesizing %dx%d: %s\n", mask.Dx(), mask.Dy(), p)
	}

	frames := make([]emath.FloatGrid, p.Subframes)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range frames {
		g.Go(func() error {
			frames[i] = p.subframe(mask, rand.NewPCG(seed, uint64(i)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sum in index order, so floating point gives the same answer every time
	sum := mask.NewFromThis()
	for i := range frames {
		sum.AddScaled(frames[i], 1.0)
		frames[i] = emath.FloatGrid{}
	}

	fs := FrameStack{
		Params: p,
		Seed:   seed,
		Mean:   sum,
	}
	fs.Mean.Apply(func(v float64) float64 { return v / float64(p.Subframes) })

	fs.Linear = *fs.Mean.Copy()
	fs.Linear.Apply(func(v float64) float64 { return v / p.WhiteLevel })

	fs.Linear16  = fs.Linear.ToGray16(65535)
	fs.Stretched = stretch.Autostretch(fs.Linear16)

	if p.Verbosity > 0 {
		log.Printf("Synthesized %s\n", fs)
	}

	return &fs, nil
}

// subframe builds a single exposure, in ADU.
func (p Params)subframe(mask emath.FloatGrid, src rand.Source) emath.FloatGrid {
	dark   := poisson(p.DarkRate * p.Exposure, src)
	sky    := poisson(p.SkyRate * p.Exposure, src)
	target := poisson(p.TargetRate * p.Exposure, src)
	bias   := distuv.Normal{Mu: p.BlackLevel, Sigma: p.ReadNoise / p.Gain, Src: src}

	frame := mask.NewFromThis()
	for y:=0; y<mask.Dy(); y++ {
		for x:=0; x<mask.Dx(); x++ {
			// Read noise is quantized by the ADC, so round the bias before adding electrons
			v := math.Round(bias.Rand())
			v += dark() / p.Gain
			v += sky() / p.Gain
			v += mask.Get(x,y) * target() / p.Gain

			frame.Set(x, y, emath.Clamp(v, 0, p.WhiteLevel))
		}
	}
	return frame
}

// poisson returns a sampler; a zero mean needs no random numbers.
func poisson(mean float64, src rand.Source) func() float64 {
	if mean <= 0 {
		return func() float64 { return 0 }
	}
	d := distuv.Poisson{Lambda: mean, Src: src}
	return d.Rand
}
