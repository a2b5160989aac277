package sensor

import(
	"math"
	"strings"

	"github.com/abworrall/astro-snr/pkg/reject"
)

const(
	DefaultWavelengthNM     = 555.0 // photopic peak; used as the average photon wavelength
	DefaultTransmissionLoss = 0.1   // fraction of light lost in the optics

	luminousEfficacy = 683.0      // lm/W at 555nm
	hc               = 1.986e-16  // Planck * c, in J.nm; photon energy is hc/lambda
	magZeroPoint     = 108000.0   // cd/m^2 for a surface brightness of 0 mag/arcsec^2
)

type FluxUnit int

const(
	Electrons FluxUnit = iota // e-/s
	Photons                   // photons/s arriving at the pixel
	Magnitude                 // mag/arcsec^2 surface brightness
)

func (u FluxUnit)String() string {
	switch u {
	case Photons:   return "photons/s"
	case Magnitude: return "mag/arcsec^2"
	}
	return "e-/s"
}

func ParseFluxUnit(s string) (FluxUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "electrons", "e-/s", "e": return Electrons, nil
	case "photons":                    return Photons, nil
	case "mag", "magnitude":           return Magnitude, nil
	}
	return Electrons, reject.New(reject.Config, "unknown flux unit %q, want electrons, photons or mag", s)
}

// A FluxConverter maps between electron flux in a pixel and sky
// surface brightness, for a given camera on a given telescope.
type FluxConverter struct {
	Optics           OpticsProfile
	PixelSizeUM      float64
	QE               *Param   // nil if unknown, in which case only e-/s units work
	WavelengthNM     float64  // average photon wavelength
	TransmissionLoss float64  // fraction of light lost in the optics
}

func NewFluxConverter(optics OpticsProfile, cam CameraProfile) FluxConverter {
	return FluxConverter{
		Optics:           optics,
		PixelSizeUM:      cam.PixelSizeUM.Value,
		QE:               cam.QE,
		WavelengthNM:     DefaultWavelengthNM,
		TransmissionLoss: DefaultTransmissionLoss,
	}
}

func (fc FluxConverter)CanConvertLuminance() bool { return fc.QE != nil }

func (fc FluxConverter)wavelength() float64 {
	if fc.WavelengthNM <= 0 {
		return DefaultWavelengthNM
	}
	return fc.WavelengthNM
}

// factor is the e-/s produced per cd/m^2 of surface brightness.
func (fc FluxConverter)factor() (float64, error) {
	if fc.QE == nil {
		return 0, reject.New(reject.UnsupportedConversion, "quantum efficiency unknown; use e-/s units")
	}
	if err := fc.Optics.Validate(); err != nil {
		return 0, err
	}
	if fc.PixelSizeUM <= 0 {
		return 0, reject.New(reject.InvalidInput, "pixel size must be > 0, got %g", fc.PixelSizeUM)
	}
	if fc.TransmissionLoss < 0 || fc.TransmissionLoss >= 1 {
		return 0, reject.New(reject.InvalidInput, "transmission loss must be in [0,1), got %g", fc.TransmissionLoss)
	}

	omega := fc.Optics.SolidAngle()
	area  := math.Pow(fc.PixelSizeUM*1e-6, 2)
	trans := 1 - fc.TransmissionLoss
	E     := hc / fc.wavelength()

	return omega * area * trans * fc.QE.Value / (luminousEfficacy * E), nil
}

// ToElectronFlux converts a surface brightness in mag/arcsec^2 into e-/s per pixel.
func (fc FluxConverter)ToElectronFlux(mag float64) (float64, error) {
	k, err := fc.factor()
	if err != nil {
		return 0, err
	}
	lum := magZeroPoint * math.Pow(10, -0.4*mag)
	return lum * k, nil
}

// ToMagnitude converts e-/s per pixel into a surface brightness in mag/arcsec^2.
func (fc FluxConverter)ToMagnitude(fe float64) (float64, error) {
	k, err := fc.factor()
	if err != nil {
		return 0, err
	}
	if fe <= 0 {
		return 0, reject.New(reject.InvalidInput, "flux must be > 0 to express as a magnitude, got %g", fe)
	}
	lum := fe / k
	return -2.5 * math.Log10(lum/magZeroPoint), nil
}

// Convert goes from e-/s to mag/arcsec^2 if toMag, otherwise the other way.
func (fc FluxConverter)Convert(value float64, toMag bool) (float64, error) {
	if toMag {
		return fc.ToMagnitude(value)
	}
	return fc.ToElectronFlux(value)
}

func (fc FluxConverter)PhotonsToElectrons(photons float64) (float64, error) {
	if fc.QE == nil {
		return 0, reject.New(reject.UnsupportedConversion, "quantum efficiency unknown; use e-/s units")
	}
	return photons * fc.QE.Value, nil
}

func (fc FluxConverter)ElectronsToPhotons(fe float64) (float64, error) {
	if fc.QE == nil {
		return 0, reject.New(reject.UnsupportedConversion, "quantum efficiency unknown; use e-/s units")
	}
	return fe / fc.QE.Value, nil
}

// ToElectrons converts a flux in any unit into e-/s.
func (fc FluxConverter)ToElectrons(value float64, unit FluxUnit) (float64, error) {
	switch unit {
	case Photons:   return fc.PhotonsToElectrons(value)
	case Magnitude: return fc.ToElectronFlux(value)
	}
	return value, nil
}
