package sensor

import(
	"fmt"
	"math"

	"github.com/abworrall/astro-snr/pkg/reject"
)

// Measurements are the numbers a user reads off their calibration and
// light frames, in ADU. The meaning of Dark depends on the sensor kind:
// for a DSLR it is the noise (stddev) of a dark frame, for a CCD it is
// the mean level of a dark frame. The two workflows really are different.
type Measurements struct {
	Exposure        float64 // s
	Dark            Reading // DSLR: dark frame noise; CCD: dark frame level
	BackgroundLevel float64
	BackgroundNoise Reading // DSLR only
	TargetLevel     Reading
}

// A Correction records an input the model replaced with the nearest
// valid value, so the caller can tell the user about it.
type Correction struct {
	Field       string
	Message     string
	Substituted float64
}

func (c Correction)String() string { return c.Field + ": " + c.Message }

// Signals are per-exposure quantities in electrons.
type Signals struct {
	Exposure             float64 // s
	DarkSignal           float64
	SkySignal            float64
	TargetSignal         float64

	ReadNoise            float64
	DarkNoise            float64
	SkyNoise             float64
	TotalBackgroundNoise float64

	Corrections        []Correction
}

func (s Signals)DarkRate() float64   { return s.DarkSignal / s.Exposure }
func (s Signals)SkyRate() float64    { return s.SkySignal / s.Exposure }
func (s Signals)TargetRate() float64 { return s.TargetSignal / s.Exposure }

func (s Signals)String() string {
	return fmt.Sprintf("Signals[%gs: dark %.4g, sky %.4g, target %.4g e-; noise rn %.3g, dark %.3g, sky %.3g, total %.3g e-]",
		s.Exposure, s.DarkSignal, s.SkySignal, s.TargetSignal,
		s.ReadNoise, s.DarkNoise, s.SkyNoise, s.TotalBackgroundNoise)
}

func sq(x float64) float64 { return x * x }

// ValidateLevels applies the domain constraints on the measured levels.
// A failure means nothing should be computed from these measurements.
func ValidateLevels(kind SensorKind, sel Selection, m Measurements) error {
	if m.Exposure <= 0 {
		return reject.New(reject.InvalidInput, "exposure time must be > 0, got %g", m.Exposure)
	}

	floor, floorName := sel.BlackLevel, "black level"

	switch kind {
	case DSLR:
		if !m.BackgroundNoise.Provided {
			return reject.New(reject.InvalidInput, "DSLR model needs a background noise measurement")
		}
		if m.BackgroundNoise.Value < 0 {
			return reject.New(reject.InvalidInput, "background noise must be >= 0, got %g", m.BackgroundNoise.Value)
		}
		if m.Dark.Provided && m.Dark.Value < 0 {
			return reject.New(reject.InvalidInput, "dark frame noise must be >= 0, got %g", m.Dark.Value)
		}

	case CCD:
		if m.Dark.Provided {
			if m.Dark.Value < sel.BlackLevel {
				return reject.New(reject.InvalidInput, "dark level %g is below black level %g", m.Dark.Value, sel.BlackLevel)
			}
			floor, floorName = m.Dark.Value, "dark level"
		}
	}

	if m.BackgroundLevel < floor {
		return reject.New(reject.InvalidInput, "background level %g is below %s %g", m.BackgroundLevel, floorName, floor)
	}

	if t := m.TargetLevel; t.Provided && t.Value != 0 {
		if t.Value < m.BackgroundLevel {
			return reject.New(reject.InvalidInput, "target level %g is below background level %g", t.Value, m.BackgroundLevel)
		}
		if t.Value > sel.WhiteLevel {
			return reject.New(reject.InvalidInput, "target level %g is above white level %g", t.Value, sel.WhiteLevel)
		}
	}

	return nil
}

func targetSignal(sel Selection, m Measurements) float64 {
	if !m.TargetLevel.Provided || m.TargetLevel.Value == 0 {
		return 0
	}
	return (m.TargetLevel.Value - m.BackgroundLevel) * sel.Gain
}

// DeriveSignalsDSLR works from a measured background noise; the dark
// signal (if any) is inferred from the noise of a dark frame.
func DeriveSignalsDSLR(sel Selection, m Measurements) (Signals, error) {
	if err := ValidateLevels(DSLR, sel, m); err != nil {
		return Signals{}, err
	}

	g, rn := sel.Gain, sel.ReadNoise
	sig := Signals{Exposure: m.Exposure, ReadNoise: rn}

	if m.Dark.Provided {
		sig.DarkSignal = sq(m.Dark.Value*g) - sq(rn)
		if sig.DarkSignal < 0 {
			sig.DarkSignal = 0
			sig.Corrections = append(sig.Corrections, Correction{
				Field:       "dark",
				Message:     fmt.Sprintf("dark frame noise %g ADU is below the read noise; the minimum valid value is %.4g ADU", m.Dark.Value, rn/g),
				Substituted: rn / g,
			})
		}
	}

	sig.SkySignal    = (m.BackgroundLevel - sel.BlackLevel) * g
	sig.TargetSignal = targetSignal(sel, m)

	tbgn := m.BackgroundNoise.Value * g
	if minTbgn := math.Sqrt(sq(rn) + sig.DarkSignal); sq(tbgn) < sq(minTbgn) {
		sig.SkySignal = 0
		sig.Corrections = append(sig.Corrections, Correction{
			Field:       "backgroundnoise",
			Message:     fmt.Sprintf("background noise %g ADU is below the read+dark noise floor; the minimum valid value is %.4g ADU", m.BackgroundNoise.Value, minTbgn/g),
			Substituted: minTbgn / g,
		})
		tbgn = minTbgn
	}

	sig.TotalBackgroundNoise = tbgn
	sig.SkyNoise  = math.Sqrt(math.Max(0, sq(tbgn)-sq(rn)-sig.DarkSignal))
	sig.DarkNoise = math.Sqrt(sig.DarkSignal)

	return sig, nil
}

// DeriveSignalsCCD works from levels alone; the noise terms follow from
// shot noise adding in quadrature with the read noise.
func DeriveSignalsCCD(sel Selection, m Measurements) (Signals, error) {
	if err := ValidateLevels(CCD, sel, m); err != nil {
		return Signals{}, err
	}

	g, rn := sel.Gain, sel.ReadNoise
	sig := Signals{Exposure: m.Exposure, ReadNoise: rn}

	if m.Dark.Provided {
		sig.DarkSignal = (m.Dark.Value - sel.BlackLevel) * g
		sig.SkySignal  = (m.BackgroundLevel - m.Dark.Value) * g
	} else {
		sig.SkySignal  = (m.BackgroundLevel - sel.BlackLevel) * g
	}
	sig.TargetSignal = targetSignal(sel, m)

	sig.DarkNoise = math.Sqrt(sig.DarkSignal)
	sig.SkyNoise  = math.Sqrt(sig.SkySignal)
	sig.TotalBackgroundNoise = math.Sqrt(sq(rn) + sig.DarkSignal + sig.SkySignal)

	return sig, nil
}

// DeriveSignals picks the DSLR or CCD model.
func DeriveSignals(kind SensorKind, sel Selection, m Measurements) (Signals, error) {
	if kind == CCD {
		return DeriveSignalsCCD(sel, m)
	}
	return DeriveSignalsDSLR(sel, m)
}

// ExposureScenario is the flux-based way of describing an exposure,
// for when the user types rates rather than measuring frames.
type ExposureScenario struct {
	Exposure    float64 // s
	DarkCurrent float64 // e-/s
	SkyFlux     float64 // e-/s
	TargetFlux  float64 // e-/s
	GainIndex   int
	RNIndex     int
	Subframes   int
}

func (sc ExposureScenario)Validate() error {
	if sc.Exposure <= 0 {
		return reject.New(reject.InvalidInput, "exposure time must be > 0, got %g", sc.Exposure)
	}
	if sc.DarkCurrent < 0 || sc.SkyFlux < 0 || sc.TargetFlux < 0 {
		return reject.New(reject.InvalidInput, "fluxes must be >= 0 (dark %g, sky %g, target %g)",
			sc.DarkCurrent, sc.SkyFlux, sc.TargetFlux)
	}
	if sc.Subframes < 1 {
		return reject.New(reject.InvalidInput, "subframe count must be >= 1, got %d", sc.Subframes)
	}
	return nil
}

// SignalsFromScenario turns per-second rates into per-exposure signals.
func SignalsFromScenario(sel Selection, sc ExposureScenario) (Signals, error) {
	if err := sc.Validate(); err != nil {
		return Signals{}, err
	}

	sig := Signals{
		Exposure:     sc.Exposure,
		DarkSignal:   sc.DarkCurrent * sc.Exposure,
		SkySignal:    sc.SkyFlux * sc.Exposure,
		TargetSignal: sc.TargetFlux * sc.Exposure,
		ReadNoise:    sel.ReadNoise,
	}
	sig.DarkNoise = math.Sqrt(sig.DarkSignal)
	sig.SkyNoise  = math.Sqrt(sig.SkySignal)
	sig.TotalBackgroundNoise = math.Sqrt(sq(sel.ReadNoise) + sig.DarkSignal + sig.SkySignal)

	return sig, nil
}
