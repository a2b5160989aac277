package sensor

import(
	"fmt"
	"strings"

	"github.com/abworrall/astro-snr/pkg/reject"
)

// A Param is a camera parameter, plus whether the user edited it (as
// opposed to it being the manufacturer's figure).
type Param struct {
	Value    float64
	Modified bool
}

func P(v float64) Param { return Param{Value: v} }

func (p Param)String() string {
	if p.Modified {
		return fmt.Sprintf("%g*", p.Value)
	}
	return fmt.Sprintf("%g", p.Value)
}

// A Reading is a measurement the user may or may not have supplied,
// e.g. the level of a dark frame.
type Reading struct {
	Value    float64
	Provided bool
}

func Provided(v float64) Reading { return Reading{Value: v, Provided: true} }
func Absent() Reading            { return Reading{} }

func (r Reading)String() string {
	if !r.Provided {
		return "-"
	}
	return fmt.Sprintf("%g", r.Value)
}

type SensorKind int

const(
	DSLR SensorKind = iota // ISO-indexed settings, read noise follows the ISO
	CCD                    // gain and read noise picked independently
)

func (k SensorKind)String() string {
	if k == CCD {
		return "CCD"
	}
	return "DSLR"
}

func ParseSensorKind(s string) (SensorKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DSLR": return DSLR, nil
	case "CCD":  return CCD, nil
	}
	return DSLR, reject.New(reject.Config, "unknown sensor type %q, want DSLR or CCD", s)
}

// A Setting is one selectable ISO (DSLR) or gain mode (CCD).
type Setting struct {
	ISO                int    // DSLR only; 0 if unknown
	Gain               Param  // e-/ADU
	ReadNoise          Param  // e-; DSLR only, CCDs use CameraProfile.ReadNoise
	SaturationCapacity Param  // e-
	BlackLevel         Param  // ADU
	WhiteLevel         Param  // ADU
}

type CameraProfile struct {
	Name        string
	Kind        SensorKind
	PixelSizeUM Param
	QE          *Param     // nil when unknown ("NA" in the catalog)

	Settings    []Setting
	ReadNoise   []Param    // CCD read noise modes, indexed independently of Settings
}

// Selection is the flattened set of numbers for one chosen setting.
type Selection struct {
	Gain               float64
	ReadNoise          float64
	SaturationCapacity float64
	BlackLevel         float64
	WhiteLevel         float64
}

func (s Selection)String() string {
	return fmt.Sprintf("gain %.3g e-/ADU, RN %.3g e-, satcap %.0f e-, levels [%.0f,%.0f] ADU",
		s.Gain, s.ReadNoise, s.SaturationCapacity, s.BlackLevel, s.WhiteLevel)
}

func (c CameraProfile)HasQE() bool { return c.QE != nil }

// Validate checks the profile hangs together; a catalog loader should
// call this before handing the profile to anything else.
func (c CameraProfile)Validate() error {
	if len(c.Settings) == 0 {
		return reject.New(reject.Config, "camera %q has no gain/ISO settings", c.Name)
	}
	if c.PixelSizeUM.Value <= 0 {
		return reject.New(reject.Config, "camera %q pixel size must be > 0, got %g", c.Name, c.PixelSizeUM.Value)
	}
	if c.QE != nil && (c.QE.Value <= 0 || c.QE.Value > 1) {
		return reject.New(reject.Config, "camera %q QE must be in (0,1], got %g", c.Name, c.QE.Value)
	}
	if c.Kind == CCD && len(c.ReadNoise) == 0 {
		return reject.New(reject.Config, "camera %q is a CCD but has no read noise modes", c.Name)
	}

	for i, s := range c.Settings {
		if s.Gain.Value <= 0 {
			return reject.New(reject.Config, "camera %q setting %d: gain must be > 0", c.Name, i)
		}
		if s.SaturationCapacity.Value <= 0 {
			return reject.New(reject.Config, "camera %q setting %d: saturation capacity must be > 0", c.Name, i)
		}
		if s.WhiteLevel.Value <= s.BlackLevel.Value {
			return reject.New(reject.Config, "camera %q setting %d: white level %g not above black level %g",
				c.Name, i, s.WhiteLevel.Value, s.BlackLevel.Value)
		}
		if s.ReadNoise.Value < 0 {
			return reject.New(reject.Config, "camera %q setting %d: read noise must be >= 0", c.Name, i)
		}
	}
	for i, rn := range c.ReadNoise {
		if rn.Value < 0 {
			return reject.New(reject.Config, "camera %q read noise mode %d must be >= 0", c.Name, i)
		}
	}

	return nil
}

// Select picks out the numbers for a gain/ISO setting. For a DSLR the
// read noise comes from the same setting and rnIdx is ignored.
func (c CameraProfile)Select(gainIdx, rnIdx int) (Selection, error) {
	if gainIdx < 0 || gainIdx >= len(c.Settings) {
		return Selection{}, reject.New(reject.InvalidInput, "gain index %d out of range [0,%d)", gainIdx, len(c.Settings))
	}
	s := c.Settings[gainIdx]

	sel := Selection{
		Gain:               s.Gain.Value,
		ReadNoise:          s.ReadNoise.Value,
		SaturationCapacity: s.SaturationCapacity.Value,
		BlackLevel:         s.BlackLevel.Value,
		WhiteLevel:         s.WhiteLevel.Value,
	}

	if c.Kind == CCD {
		if rnIdx < 0 || rnIdx >= len(c.ReadNoise) {
			return Selection{}, reject.New(reject.InvalidInput, "read noise index %d out of range [0,%d)", rnIdx, len(c.ReadNoise))
		}
		sel.ReadNoise = c.ReadNoise[rnIdx].Value
	}

	return sel, nil
}

// ISOs returns the ISO labels for a DSLR, in setting order.
func (c CameraProfile)ISOs() []int {
	isos := make([]int, len(c.Settings))
	for i, s := range c.Settings {
		isos[i] = s.ISO
	}
	return isos
}
