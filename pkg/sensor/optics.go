package sensor

import(
	"math"

	"github.com/abworrall/astro-snr/pkg/reject"
)

// OpticsProfile describes the telescope (or lens), plus any barlow or
// reducer in the light path.
type OpticsProfile struct {
	Name          string
	FocalLengthMM float64
	ApertureMM    float64
	Multiplier    float64 // barlow/reducer factor; zero means 1.0

	// the user edited these catalog values
	FocalLengthModified bool
	ApertureModified    bool
}

func (o OpticsProfile)multiplier() float64 {
	if o.Multiplier == 0 {
		return 1.0
	}
	return o.Multiplier
}

func (o OpticsProfile)EffectiveFocalLength() float64 { return o.FocalLengthMM * o.multiplier() }

func (o OpticsProfile)FocalRatio() float64 { return o.EffectiveFocalLength() / o.ApertureMM }

func (o OpticsProfile)Validate() error {
	if o.FocalLengthMM <= 0 {
		return reject.New(reject.InvalidInput, "focal length must be > 0, got %g", o.FocalLengthMM)
	}
	if o.ApertureMM <= 0 {
		return reject.New(reject.InvalidInput, "aperture must be > 0, got %g", o.ApertureMM)
	}
	if o.Multiplier < 0 {
		return reject.New(reject.InvalidInput, "focal length multiplier must be > 0, got %g", o.Multiplier)
	}
	return nil
}

// ImageScale is the sky angle covered by one pixel, in arcsec/px.
func (o OpticsProfile)ImageScale(pixelSizeUM float64) float64 {
	return math.Atan2(pixelSizeUM*1e-3, o.EffectiveFocalLength()) * 180 * 3600 / math.Pi
}

// SolidAngle is the solid angle (sr) the aperture subtends, seen from the sensor.
func (o OpticsProfile)SolidAngle() float64 {
	mf := o.EffectiveFocalLength()
	r := o.ApertureMM / 2
	return 2 * math.Pi * mf * (1/mf - 1/math.Sqrt(r*r+mf*mf))
}
