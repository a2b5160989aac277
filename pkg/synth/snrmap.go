package synth

import(
	"math"

	"github.com/abworrall/astro-snr/pkg/emath"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

// SNRMap is the expected stacked SNR at each pixel, from the noise
// model rather than from a simulation. Useful to see how much of an
// extended target clears a given SNR.
func SNRMap(p Params, mask emath.FloatGrid) (emath.FloatGrid, error) {
	if err := p.Validate(); err != nil {
		return emath.FloatGrid{}, err
	}

	dark := p.DarkRate * p.Exposure
	sky  := p.SkyRate * p.Exposure
	tbgn := math.Sqrt(p.ReadNoise*p.ReadNoise + dark + sky)
	root := math.Sqrt(float64(p.Subframes))

	out := mask.NewFromThis()
	for y:=0; y<mask.Dy(); y++ {
		for x:=0; x<mask.Dx(); x++ {
			target := mask.Get(x,y) * p.TargetRate * p.Exposure
			out.Set(x, y, sensor.SNR(target, tbgn) * root)
		}
	}
	return out, nil
}
