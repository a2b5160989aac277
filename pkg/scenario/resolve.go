package scenario

import(
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/astro-snr/pkg/catalog"
	"github.com/abworrall/astro-snr/pkg/emath"
	"github.com/abworrall/astro-snr/pkg/imgio"
	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
	"github.com/abworrall/astro-snr/pkg/synth"
)

// Resolved is a Config with its catalog names turned into profiles,
// and the camera setting picked out.
type Resolved struct {
	Config

	Camera     sensor.CameraProfile
	Optics     sensor.OpticsProfile
	HasOptics  bool
	Selection  sensor.Selection
	Converter  sensor.FluxConverter
}

// Result is everything a calculation produces, ready for a report.
type Result struct {
	Camera             string
	Telescope          string
	Kind               sensor.SensorKind
	Selection          sensor.Selection

	Signals            sensor.Signals
	Report             sensor.NoiseReport
	DRUnit             sensor.DRUnit

	ImageScale         float64 // arcsec/px; 0 without optics
	FocalRatio         float64
	DesiredSNR         float64
	SubframesNeeded    int     // to reach DesiredSNR; 0 if not asked
	SkyLimitedExposure float64 // s; 0 if there is no sky signal
}

func (c Config)loadCamera() (sensor.CameraProfile, error) {
	if c.InlineCamera != "" {
		cams, err := catalog.ParseCameras(strings.NewReader(c.InlineCamera))
		if err != nil {
			return sensor.CameraProfile{}, fmt.Errorf("inline camera: %w", err)
		}
		if len(cams) != 1 {
			return sensor.CameraProfile{}, reject.New(reject.Config, "inline camera: want one record, got %d", len(cams))
		}
		return cams[0], nil
	}

	path := c.CameraCatalog
	if path == "" { path = catalog.DefaultPath(catalog.CameraCatalog) }
	cams, err := catalog.LoadCameras(path)
	if err != nil {
		return sensor.CameraProfile{}, err
	}
	return catalog.FindCamera(cams, c.Camera)
}

func (c Config)loadOptics() (sensor.OpticsProfile, bool, error) {
	var o sensor.OpticsProfile

	switch {
	case c.InlineTelescope != "":
		scopes, err := catalog.ParseTelescopes(strings.NewReader(c.InlineTelescope))
		if err != nil {
			return o, false, fmt.Errorf("inline telescope: %w", err)
		}
		if len(scopes) != 1 {
			return o, false, reject.New(reject.Config, "inline telescope: want one record, got %d", len(scopes))
		}
		o = scopes[0]

	case c.Telescope != "":
		path := c.TelescopeCatalog
		if path == "" { path = catalog.DefaultPath(catalog.TelescopeCatalog) }
		scopes, err := catalog.LoadTelescopes(path)
		if err != nil {
			return o, false, err
		}
		if o, err = catalog.FindTelescope(scopes, c.Telescope); err != nil {
			return o, false, err
		}

	default:
		return o, false, nil
	}

	o.Multiplier = c.Multiplier
	return o, true, nil
}

// Resolve looks up the camera and telescope, and selects the setting.
func (c Config)Resolve() (Resolved, error) {
	r := Resolved{Config: c}

	var err error
	if r.Camera, err = c.loadCamera(); err != nil {
		return r, err
	}
	if r.Optics, r.HasOptics, err = c.loadOptics(); err != nil {
		return r, err
	}
	if r.Selection, err = r.Camera.Select(c.GainIndex, c.RNIndex); err != nil {
		return r, err
	}

	r.Converter = sensor.NewFluxConverter(r.Optics, r.Camera)
	r.Converter.WavelengthNM     = c.Wavelength
	r.Converter.TransmissionLoss = c.TransmissionLoss

	return r, nil
}

func reading(p *float64) sensor.Reading {
	if p == nil {
		return sensor.Absent()
	}
	return sensor.Provided(*p)
}

func (r Resolved)Measurements() sensor.Measurements {
	return sensor.Measurements{
		Exposure:        r.Exposure,
		Dark:            reading(r.Levels.Dark),
		BackgroundLevel: r.Levels.Background,
		BackgroundNoise: reading(r.Levels.BackgroundNoise),
		TargetLevel:     reading(r.Levels.Target),
	}
}

// ExposureScenario converts the flux section into e-/s.
func (r Resolved)ExposureScenario() (sensor.ExposureScenario, error) {
	unit, err := sensor.ParseFluxUnit(r.Flux.Unit)
	if err != nil {
		return sensor.ExposureScenario{}, err
	}
	if unit == sensor.Magnitude && !r.HasOptics {
		return sensor.ExposureScenario{}, reject.New(reject.UnsupportedConversion, "magnitudes need a telescope")
	}

	sc := sensor.ExposureScenario{
		Exposure:    r.Exposure,
		DarkCurrent: r.Flux.Dark,
		GainIndex:   r.GainIndex,
		RNIndex:     r.RNIndex,
		Subframes:   r.Subframes,
	}
	if sc.SkyFlux, err = r.Converter.ToElectrons(r.Flux.Sky, unit); err != nil {
		return sc, fmt.Errorf("sky flux: %w", err)
	}
	// A zero target magnitude would be very bright; zero means "no target" in every unit.
	if r.Flux.Target != 0 {
		if sc.TargetFlux, err = r.Converter.ToElectrons(r.Flux.Target, unit); err != nil {
			return sc, fmt.Errorf("target flux: %w", err)
		}
	}
	return sc, nil
}

// Signals runs whichever of the two signal models the mode asks for.
func (r Resolved)Signals() (sensor.Signals, error) {
	if r.Mode == ModeFlux {
		sc, err := r.ExposureScenario()
		if err != nil {
			return sensor.Signals{}, err
		}
		return sensor.SignalsFromScenario(r.Selection, sc)
	}
	return sensor.DeriveSignals(r.Camera.Kind, r.Selection, r.Measurements())
}

func (r Resolved)Calculate() (Result, error) {
	sig, err := r.Signals()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Camera:     r.Camera.Name,
		Kind:       r.Camera.Kind,
		Selection:  r.Selection,
		Signals:    sig,
		Report:     sensor.ComputeSNRDR(sig, r.Selection.SaturationCapacity, r.Subframes),
		DRUnit:     r.DRUnit(),
		DesiredSNR: r.DesiredSNR,
	}

	if r.HasOptics {
		res.Telescope  = r.Optics.Name
		res.ImageScale = r.Optics.ImageScale(r.Camera.PixelSizeUM.Value)
		res.FocalRatio = r.Optics.FocalRatio()
	}
	if r.DesiredSNR > 0 && res.Report.TargetSNR > 0 {
		if res.SubframesNeeded, err = sensor.SubframesForSNR(res.Report.TargetSNR, r.DesiredSNR); err != nil {
			return res, err
		}
	}
	if sig.SkySignal > 0 {
		res.SkyLimitedExposure, _ = sensor.SkyLimitedExposure(r.Selection.ReadNoise, sig.SkyRate(), 0)
	}

	return res, nil
}

func (r Resolved)SynthParams(sig sensor.Signals) synth.Params {
	p := synth.ParamsFromSignals(sig, r.Selection, r.Subframes)
	p.Verbosity = r.Verbosity
	return p
}

// Mask loads the mask image, or draws one of the stock shapes, then
// softens it with the seeing blur.
func (r Resolved)Mask() (emath.FloatGrid, error) {
	m, err := r.rawMask()
	if err != nil {
		return m, err
	}
	for i:=0; i<r.Simulation.Seeing; i++ {
		m = m.GaussianBlur()
	}
	return m, nil
}

func (r Resolved)rawMask() (emath.FloatGrid, error) {
	s := r.Simulation
	if s.Mask != "" {
		return imgio.LoadMask(s.Mask, s.Width, s.Height, emath.Placement{Scale: s.MaskScale, Rotate: s.MaskRotate})
	}

	size := s.MaskSize * math.Min(float64(s.Width), float64(s.Height))
	switch s.MaskShape {
	case "disc":     return emath.DiscMask(s.Width, s.Height, size, math.Max(1, size/10)), nil
	case "gaussian": return emath.GaussianMask(s.Width, s.Height, size), nil
	case "flat":     return emath.FlatMask(s.Width, s.Height), nil
	}
	return emath.FloatGrid{}, reject.New(reject.Config, "mask shape %q not recognized", s.MaskShape)
}
