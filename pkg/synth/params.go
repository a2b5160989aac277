package synth

import(
	"fmt"
	"math"

	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

// MaxSubframes bounds memory: every subframe is a full-size float plane.
const MaxSubframes = 200

// Params describe one simulated exposure sequence. Rates are in e-/s,
// levels in ADU.
type Params struct {
	DarkRate    float64
	SkyRate     float64
	TargetRate  float64 // for a mask value of 1.0
	Exposure    float64 // s
	Subframes   int

	Gain        float64 // e-/ADU
	ReadNoise   float64 // e-
	BlackLevel  float64
	WhiteLevel  float64

	Verbosity   int
}

// ParamsFromSignals takes the rates a SignalNoiseModel calculation
// derived, and the selected camera setting.
func ParamsFromSignals(sig sensor.Signals, sel sensor.Selection, subframes int) Params {
	return Params{
		DarkRate:   sig.DarkRate(),
		SkyRate:    sig.SkyRate(),
		TargetRate: sig.TargetRate(),
		Exposure:   sig.Exposure,
		Subframes:  subframes,
		Gain:       sel.Gain,
		ReadNoise:  sel.ReadNoise,
		BlackLevel: sel.BlackLevel,
		WhiteLevel: sel.WhiteLevel,
	}
}

func (p Params)String() string {
	return fmt.Sprintf("Params[%d x %gs, rates dark %.4g, sky %.4g, target %.4g e-/s; gain %g, rn %g, levels %g..%g]",
		p.Subframes, p.Exposure, p.DarkRate, p.SkyRate, p.TargetRate,
		p.Gain, p.ReadNoise, p.BlackLevel, p.WhiteLevel)
}

// Validate is the precondition for Synthesize; nothing is allocated
// until it passes.
func (p Params)Validate() error {
	if p.Subframes < 1 {
		return reject.New(reject.InvalidInput, "subframe count must be >= 1, got %d", p.Subframes)
	}
	if p.Subframes > MaxSubframes {
		return reject.New(reject.SubframeCeiling, "subframe count %d exceeds the limit of %d", p.Subframes, MaxSubframes)
	}
	if p.Exposure <= 0 {
		return reject.New(reject.InvalidInput, "exposure time must be > 0, got %g", p.Exposure)
	}
	if p.Gain <= 0 {
		return reject.New(reject.InvalidInput, "gain must be > 0, got %g", p.Gain)
	}
	if p.WhiteLevel <= 0 {
		return reject.New(reject.InvalidInput, "white level must be > 0, got %g", p.WhiteLevel)
	}
	if p.ReadNoise < 0 || p.BlackLevel < 0 {
		return reject.New(reject.InvalidInput, "read noise (%g) and black level (%g) must be >= 0", p.ReadNoise, p.BlackLevel)
	}
	for _, r := range []float64{p.DarkRate, p.SkyRate, p.TargetRate} {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return reject.New(reject.InvalidInput, "rates must be finite and >= 0 (dark %g, sky %g, target %g)",
				p.DarkRate, p.SkyRate, p.TargetRate)
		}
	}
	return nil
}
