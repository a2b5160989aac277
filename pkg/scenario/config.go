// Package scenario holds the configuration for a calculation: which
// camera and telescope, what was measured, and how to simulate it.
package scenario

import(
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
	"github.com/abworrall/astro-snr/pkg/stretch"
)

const(
	ModeLevels = "levels" // ADU readings off calibration and light frames
	ModeFlux   = "flux"   // rates typed in by the user
)

// Levels are in ADU; nil means "not measured".
type Levels struct {
	Dark            *float64 `yaml:"dark,omitempty"            toml:"dark,omitempty"`
	Background      float64  `yaml:"background"                toml:"background"`
	BackgroundNoise *float64 `yaml:"backgroundnoise,omitempty" toml:"backgroundnoise,omitempty"`
	Target          *float64 `yaml:"target,omitempty"          toml:"target,omitempty"`
}

// Flux rates are per pixel per second. Dark current is always e-/s;
// sky and target are in Unit.
type Flux struct {
	Unit   string  `yaml:"unit"   toml:"unit"`
	Dark   float64 `yaml:"dark"   toml:"dark"`
	Sky    float64 `yaml:"sky"    toml:"sky"`
	Target float64 `yaml:"target" toml:"target"`
}

type Simulation struct {
	Seed         uint64   `yaml:"seed"         toml:"seed"`
	Width        int      `yaml:"width"        toml:"width"`
	Height       int      `yaml:"height"       toml:"height"`
	Mask         string   `yaml:"mask"         toml:"mask"`       // image file; empty means use MaskShape
	MaskShape    string   `yaml:"maskshape"    toml:"maskshape"`  // disc, gaussian, flat
	MaskSize     float64  `yaml:"masksize"     toml:"masksize"`   // radius or sigma, as a fraction of the shorter side
	MaskScale    float64  `yaml:"maskscale"    toml:"maskscale"`
	MaskRotate   float64  `yaml:"maskrotate"   toml:"maskrotate"`
	Seeing       int      `yaml:"seeing"       toml:"seeing"`      // blur passes over the mask, to soften edges as the atmosphere would
	Tonemapper   string   `yaml:"tonemapper"   toml:"tonemapper"`
	OutputPrefix string   `yaml:"outputprefix" toml:"outputprefix"`
	Formats      []string `yaml:"formats"      toml:"formats"`
}

type Config struct {
	Verbosity        int        `yaml:"verbosity"        toml:"verbosity"`

	CameraCatalog    string     `yaml:"cameracatalog"    toml:"cameracatalog"`
	TelescopeCatalog string     `yaml:"telescopecatalog" toml:"telescopecatalog"`
	Camera           string     `yaml:"camera"           toml:"camera"`
	Telescope        string     `yaml:"telescope"        toml:"telescope"`
	InlineCamera     string     `yaml:"inlinecamera"     toml:"inlinecamera"`     // a catalog record, used instead of a lookup
	InlineTelescope  string     `yaml:"inlinetelescope"  toml:"inlinetelescope"`
	Multiplier       float64    `yaml:"multiplier"       toml:"multiplier"`       // barlow/reducer

	GainIndex        int        `yaml:"gainindex"        toml:"gainindex"`
	RNIndex          int        `yaml:"rnindex"          toml:"rnindex"`

	Exposure         float64    `yaml:"exposure"         toml:"exposure"`         // s
	Subframes        int        `yaml:"subframes"        toml:"subframes"`
	DesiredSNR       float64    `yaml:"desiredsnr"       toml:"desiredsnr"`       // 0 means don't plan

	Mode             string     `yaml:"mode"             toml:"mode"`
	Levels           Levels     `yaml:"levels"           toml:"levels"`
	Flux             Flux       `yaml:"flux"             toml:"flux"`

	Wavelength       float64    `yaml:"wavelength"       toml:"wavelength"`       // nm
	TransmissionLoss float64    `yaml:"transmissionloss" toml:"transmissionloss"`
	DynamicRange     string     `yaml:"dynamicrange"     toml:"dynamicrange"`     // stops, db

	Simulation       Simulation `yaml:"simulation"       toml:"simulation"`
}

func NewConfig() Config {
	return Config{
		Multiplier:       1.0,
		Exposure:         60,
		Subframes:        1,
		Mode:             ModeLevels,
		Flux:             Flux{Unit: "electrons"},
		Wavelength:       sensor.DefaultWavelengthNM,
		TransmissionLoss: sensor.DefaultTransmissionLoss,
		DynamicRange:     "stops",
		Simulation:       Simulation{
			Seed:         1,
			Width:        256,
			Height:       256,
			MaskShape:    "disc",
			MaskSize:     0.25,
			Tonemapper:   "autostretch",
			OutputPrefix: "sim",
			Formats:      []string{"png"},
		},
	}
}

var(
	MaskShapes = []string{"disc", "gaussian", "flat"}
	Formats    = []string{"png", "tiff", "fits", "hdr"}
)

func oneOf(s string, opts []string) bool {
	for _, o := range opts {
		if s == o { return true }
	}
	return false
}

// Finalize checks the config is usable, normalizing names as it goes.
func (c *Config)Finalize() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != ModeLevels && c.Mode != ModeFlux {
		return reject.New(reject.Config, "mode %q not recognized, wanted %s or %s", c.Mode, ModeLevels, ModeFlux)
	}
	if c.Camera == "" && c.InlineCamera == "" {
		return reject.New(reject.Config, "no camera given")
	}
	if c.Exposure <= 0 {
		return reject.New(reject.Config, "exposure must be > 0, got %g", c.Exposure)
	}
	if c.Subframes < 1 {
		return reject.New(reject.Config, "subframes must be >= 1, got %d", c.Subframes)
	}
	if c.Multiplier <= 0 {
		return reject.New(reject.Config, "multiplier must be > 0, got %g", c.Multiplier)
	}
	if c.TransmissionLoss < 0 || c.TransmissionLoss >= 1 {
		return reject.New(reject.Config, "transmission loss must be in [0,1), got %g", c.TransmissionLoss)
	}
	if _, err := sensor.ParseDRUnit(c.DynamicRange); err != nil {
		return reject.New(reject.Config, "%v", err)
	}
	if _, err := sensor.ParseFluxUnit(c.Flux.Unit); err != nil {
		return err
	}

	s := &c.Simulation
	if s.Width <= 0 || s.Height <= 0 {
		return reject.New(reject.Config, "simulation size must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.Seeing < 0 {
		return reject.New(reject.Config, "seeing must be >= 0, got %d", s.Seeing)
	}
	if _, err := stretch.Get(s.Tonemapper); err != nil {
		return err
	}
	s.MaskShape = strings.ToLower(s.MaskShape)
	if s.Mask == "" && !oneOf(s.MaskShape, MaskShapes) {
		return reject.New(reject.Config, "mask shape %q not recognized, wanted one of %v", s.MaskShape, MaskShapes)
	}
	for i, f := range s.Formats {
		s.Formats[i] = strings.ToLower(f)
		if !oneOf(s.Formats[i], Formats) {
			return reject.New(reject.Config, "output format %q not recognized, wanted one of %v", f, Formats)
		}
	}

	return nil
}

func (c Config)DRUnit() sensor.DRUnit {
	u, _ := sensor.ParseDRUnit(c.DynamicRange)
	return u
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config yaml: %v\n", err)
	}
	return string(b)
}
