package sensor

import(
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/astro-snr/pkg/reject"
)

// DecibelsPerStop converts a dynamic range in stops into dB.
const DecibelsPerStop = 10 * math.Ln2 / math.Ln10

type DRUnit int

const(
	Stops DRUnit = iota
	Decibels
)

func (u DRUnit)String() string {
	if u == Decibels {
		return "dB"
	}
	return "stops"
}

func ParseDRUnit(s string) (DRUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stops", "stop", "ev": return Stops, nil
	case "db", "decibels":          return Decibels, nil
	}
	return Stops, reject.New(reject.InvalidInput, "unknown dynamic range unit %q, want stops or db", s)
}

func StopsToDecibels(stops float64) float64 { return stops * DecibelsPerStop }
func DecibelsToStops(db float64) float64    { return db / DecibelsPerStop }

// NoiseReport is the result of a calculation; nothing mutates it.
type NoiseReport struct {
	DarkNoise            float64 // e-
	SkyNoise             float64 // e-
	ReadNoise            float64 // e-
	TotalBackgroundNoise float64 // e-

	TargetSNR            float64 // a single subframe
	StackSNR             float64 // all the subframes, averaged
	DynamicRangeStops    float64 // NaN when there is no background noise to measure against
	Subframes            int

	Saturated            bool    // dark+sky+target exceeds the saturation capacity
	Corrections        []Correction
}

// HasDynamicRange is false when the total background noise is zero,
// as with a noiseless sensor and no dark or sky signal.
func (r NoiseReport)HasDynamicRange() bool { return !math.IsNaN(r.DynamicRangeStops) }

func (r NoiseReport)DynamicRange(unit DRUnit) float64 {
	if unit == Decibels {
		return StopsToDecibels(r.DynamicRangeStops)
	}
	return r.DynamicRangeStops
}

func (r NoiseReport)String() string {
	return fmt.Sprintf("NoiseReport[noise dark %.3g, sky %.3g, read %.3g, total %.3g e-; SNR %.3g, stack(%d) %.3g; DR %.2f stops]",
		r.DarkNoise, r.SkyNoise, r.ReadNoise, r.TotalBackgroundNoise,
		r.TargetSNR, r.Subframes, r.StackSNR, r.DynamicRangeStops)
}

// SNR of a target signal against a background noise, both in electrons.
func SNR(target, tbgn float64) float64 {
	if target == 0 {
		return 0
	}
	return target / math.Sqrt(target+sq(tbgn))
}

// ComputeSNRDR turns derived signals into SNR and dynamic range
// figures. A subframe count below 1 is taken as 1.
func ComputeSNRDR(sig Signals, saturationCapacity float64, subframes int) NoiseReport {
	if subframes < 1 {
		subframes = 1
	}

	snr := SNR(sig.TargetSignal, sig.TotalBackgroundNoise)

	dr := math.NaN()
	if sig.TotalBackgroundNoise > 0 {
		dr = math.Log10(saturationCapacity/sig.TotalBackgroundNoise) / math.Log10(2)
	}

	return NoiseReport{
		DarkNoise:            sig.DarkNoise,
		SkyNoise:             sig.SkyNoise,
		ReadNoise:            sig.ReadNoise,
		TotalBackgroundNoise: sig.TotalBackgroundNoise,
		TargetSNR:            snr,
		StackSNR:             snr * math.Sqrt(float64(subframes)),
		DynamicRangeStops:    dr,
		Subframes:            subframes,
		Saturated:            sig.DarkSignal+sig.SkySignal+sig.TargetSignal > saturationCapacity,
		Corrections:          append([]Correction(nil), sig.Corrections...),
	}
}

// SubframesForSNR is the smallest number of subframes for which the
// stacked SNR reaches desired.
func SubframesForSNR(snr, desired float64) (int, error) {
	if snr <= 0 {
		return 0, reject.New(reject.InvalidInput, "single frame SNR must be > 0, got %g", snr)
	}
	if desired <= snr {
		return 1, nil
	}
	n := int(math.Ceil(sq(desired/snr)))
	for snr*math.Sqrt(float64(n)) < desired {
		n++
	}
	for n > 1 && snr*math.Sqrt(float64(n-1)) >= desired {
		n--
	}
	return n, nil
}

// SkyLimitedExposure is the subframe length at which sky shot noise
// variance is swamp times the read noise variance. Beyond this, longer
// subframes buy very little.
func SkyLimitedExposure(readNoise, skyRate, swamp float64) (float64, error) {
	if skyRate <= 0 {
		return 0, reject.New(reject.InvalidInput, "sky flux must be > 0, got %g", skyRate)
	}
	if swamp <= 0 {
		swamp = 10
	}
	return swamp * sq(readNoise) / skyRate, nil
}
