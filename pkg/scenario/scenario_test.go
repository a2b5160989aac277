package scenario

import(
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

const ccdYaml = `
verbosity: 0
inlinecamera: "Test CCD,CCD,3.76,NA,1.0,3,20000,100,65535"
inlinetelescope: "Test Scope,200,1000"
exposure: 30
subframes: 4
desiredsnr: 50
mode: levels
levels:
  background: 150
  target: 250
simulation:
  width: 64
  height: 48
  maskshape: gaussian
  formats: [PNG, fits]
`

const dslrToml = `
inlinecamera = "Test DSLR,DSLR,4.3,0.42,2.0-0.5,5-2.5,20000-7000,512-512,15000-15000,100-400"
exposure = 60
dynamicrange = "db"

[levels]
dark = 3.0
background = 520.0
backgroundnoise = 6.0
target = 600.0

[simulation]
seed = 99
tonemapper = "percentile"
`

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadAndFinalize(t *testing.T, name, contents string) Config {
	t.Helper()
	c, err := Load(writeFile(t, name, contents))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return c
}

func TestLoadYaml(t *testing.T) {
	c := loadAndFinalize(t, "ccd.yaml", ccdYaml)

	if c.Exposure != 30 || c.Subframes != 4 || c.Levels.Background != 150 {
		t.Errorf("values not loaded: %+v", c)
	}
	if c.Levels.Dark != nil || c.Levels.Target == nil || *c.Levels.Target != 250 {
		t.Errorf("optional levels wrong: %+v", c.Levels)
	}
	// Defaults survive where the file is silent
	if c.Simulation.Tonemapper != "autostretch" || c.Wavelength != sensor.DefaultWavelengthNM {
		t.Errorf("defaults lost: %+v", c)
	}
	if c.Simulation.Formats[0] != "png" {
		t.Errorf("formats not normalized: %v", c.Simulation.Formats)
	}
	if !strings.Contains(c.AsYaml(), "exposure: 30") {
		t.Errorf("AsYaml:\n%s", c.AsYaml())
	}
}

func TestCalculateCCD(t *testing.T) {
	c := loadAndFinalize(t, "ccd.yaml", ccdYaml)
	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !r.HasOptics || r.Camera.Name != "Test CCD" {
		t.Errorf("resolved %+v", r)
	}

	res, err := r.Calculate()
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Signals.SkySignal != 50 || res.Signals.TargetSignal != 100 {
		t.Errorf("signals %s", res.Signals)
	}
	wantSNR := 100 / math.Sqrt(100+59)
	if math.Abs(res.Report.TargetSNR-wantSNR) > 1e-12 {
		t.Errorf("snr %g, want %g", res.Report.TargetSNR, wantSNR)
	}
	if math.Abs(res.Report.StackSNR-2*wantSNR) > 1e-12 {
		t.Errorf("stack snr %g", res.Report.StackSNR)
	}
	if math.Abs(res.ImageScale-0.7755) > 0.001 || res.FocalRatio != 5 {
		t.Errorf("optics: scale %g, f/%g", res.ImageScale, res.FocalRatio)
	}
	if want, _ := sensor.SubframesForSNR(wantSNR, 50); res.SubframesNeeded != want {
		t.Errorf("subframes needed %d, want %d", res.SubframesNeeded, want)
	}
	if math.Abs(res.SkyLimitedExposure-10*9/(50.0/30)) > 1e-9 {
		t.Errorf("sky limited exposure %g", res.SkyLimitedExposure)
	}

	p := r.SynthParams(res.Signals)
	if p.Subframes != 4 || p.WhiteLevel != 65535 || math.Abs(p.SkyRate-50.0/30) > 1e-12 {
		t.Errorf("synth params %s", p)
	}

	mask, err := r.Mask()
	if err != nil {
		t.Fatal(err)
	}
	if mask.Dx() != 64 || mask.Dy() != 48 {
		t.Errorf("mask is %dx%d", mask.Dx(), mask.Dy())
	}
}

func TestLoadTomlDSLR(t *testing.T) {
	c := loadAndFinalize(t, "dslr.toml", dslrToml)
	if c.Simulation.Seed != 99 || c.Simulation.Width != 256 || c.DRUnit() != sensor.Decibels {
		t.Errorf("toml values: %+v", c)
	}

	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.HasOptics {
		t.Errorf("no telescope was given")
	}

	res, err := r.Calculate()
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Signals.DarkSignal != 11 || res.Signals.SkySignal != 16 {
		t.Errorf("signals %s", res.Signals)
	}
	if math.Abs(res.Report.TargetSNR-160/math.Sqrt(304)) > 1e-12 {
		t.Errorf("snr %g", res.Report.TargetSNR)
	}
}

func TestFluxMode(t *testing.T) {
	c := NewConfig()
	c.InlineCamera    = "QE Cam,CCD,3.76,0.8,1.0,3,20000,100,65535"
	c.InlineTelescope = "Scope,200,800"
	c.Mode            = ModeFlux
	c.Exposure        = 100
	c.Flux            = Flux{Unit: "photons", Dark: 0.01, Sky: 1.0, Target: 2.5}
	if err := c.Finalize(); err != nil {
		t.Fatal(err)
	}

	r, err := c.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := r.Signals()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sig.SkySignal-80) > 1e-9 || math.Abs(sig.TargetSignal-200) > 1e-9 || math.Abs(sig.DarkSignal-1) > 1e-9 {
		t.Errorf("signals %s", sig)
	}

	// Magnitudes round trip through the converter
	c.Flux = Flux{Unit: "mag", Sky: 20.5}
	r, _ = c.Resolve()
	sc, err := r.ExposureScenario()
	if err != nil {
		t.Fatal(err)
	}
	if back, _ := r.Converter.ToMagnitude(sc.SkyFlux); math.Abs(back-20.5) > 1e-9 {
		t.Errorf("sky magnitude came back as %g", back)
	}

	// No QE, no photons
	c.InlineCamera = "No QE,CCD,3.76,NA,1.0,3,20000,100,65535"
	c.Flux = Flux{Unit: "photons", Sky: 1}
	r, _ = c.Resolve()
	if _, err := r.Signals(); !reject.Is(err, reject.UnsupportedConversion) {
		t.Errorf("expected unsupported conversion, got %v", err)
	}
}

func TestMaskSeeing(t *testing.T) {
	resolved := func(shape string, seeing int) Resolved {
		c := NewConfig()
		c.InlineCamera = "X,CCD,3.76,NA,1.0,3,20000,100,65535"
		c.Simulation.Width, c.Simulation.Height = 40, 30
		c.Simulation.MaskShape = shape
		c.Simulation.Seeing = seeing
		if err := c.Finalize(); err != nil {
			t.Fatal(err)
		}
		r, err := c.Resolve()
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	sum := func(vals []float64) float64 {
		total := 0.0
		for _, v := range vals { total += v }
		return total
	}

	sharp, err := resolved("disc", 0).Mask()
	if err != nil {
		t.Fatal(err)
	}
	soft, err := resolved("disc", 3).Mask()
	if err != nil {
		t.Fatal(err)
	}

	if soft.Dx() != 40 || soft.Dy() != 30 {
		t.Fatalf("soft mask is %dx%d", soft.Dx(), soft.Dy())
	}
	if min, max := soft.MinMax(); min < 0 || max > 1 {
		t.Errorf("soft mask out of range: %g..%g", min, max)
	}
	if math.Abs(sum(soft.Values())-sum(sharp.Values())) > 1e-9 {
		t.Errorf("blur changed the total: %g vs %g", sum(soft.Values()), sum(sharp.Values()))
	}

	changed := false
	for i, v := range soft.Values() {
		if math.Abs(v-sharp.Values()[i]) > 1e-6 { changed = true }
	}
	if !changed {
		t.Errorf("seeing left the disc edge untouched")
	}

	// A flat field has no edges to soften
	flat, err := resolved("flat", 5).Mask()
	if err != nil {
		t.Fatal(err)
	}
	if min, max := flat.MinMax(); math.Abs(min-1) > 1e-12 || math.Abs(max-1) > 1e-12 {
		t.Errorf("flat mask after seeing: %g..%g", min, max)
	}
}

func TestFinalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"no camera", func(c *Config) { c.InlineCamera = "" }},
		{"bad mode", func(c *Config) { c.Mode = "guess" }},
		{"zero exposure", func(c *Config) { c.Exposure = 0 }},
		{"zero subframes", func(c *Config) { c.Subframes = 0 }},
		{"bad dr unit", func(c *Config) { c.DynamicRange = "nepers" }},
		{"bad flux unit", func(c *Config) { c.Flux.Unit = "lux" }},
		{"bad tonemapper", func(c *Config) { c.Simulation.Tonemapper = "fattal02" }},
		{"bad mask shape", func(c *Config) { c.Simulation.MaskShape = "square" }},
		{"bad format", func(c *Config) { c.Simulation.Formats = []string{"gif"} }},
		{"bad size", func(c *Config) { c.Simulation.Width = 0 }},
		{"negative seeing", func(c *Config) { c.Simulation.Seeing = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig()
			c.InlineCamera = "X,CCD,3.76,NA,1.0,3,20000,100,65535"
			tt.edit(&c)
			if err := c.Finalize(); !reject.Is(err, reject.Config) {
				t.Errorf("expected config rejection, got %v", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeFile(t, "x.json", "{}")); !reject.Is(err, reject.Config) {
		t.Errorf("expected config error for .json, got %v", err)
	}
	if _, err := Load(writeFile(t, "x.yaml", "nosuchkey: 1\n")); err == nil {
		t.Errorf("expected strict yaml to reject unknown keys")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestResolveFromCatalogFiles(t *testing.T) {
	dir := t.TempDir()
	cams := filepath.Join(dir, "cameras.csv")
	scopes := filepath.Join(dir, "telescopes.csv")
	os.WriteFile(cams, []byte("Cam A,CCD,5,NA,0.5-1,2.5-3,30000-15000,100-100,16383-16383\n"), 0644)
	os.WriteFile(scopes, []byte("Refractor,80,480\n"), 0644)

	c := NewConfig()
	c.CameraCatalog, c.TelescopeCatalog = cams, scopes
	c.Camera, c.Telescope = "cam a", "refractor"
	c.GainIndex, c.RNIndex = 1, 0
	c.Multiplier = 0.8

	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Selection.Gain != 1 || r.Selection.ReadNoise != 2.5 || r.Selection.SaturationCapacity != 15000 {
		t.Errorf("selection %s", r.Selection)
	}
	if r.Optics.EffectiveFocalLength() != 384 {
		t.Errorf("focal length %g", r.Optics.EffectiveFocalLength())
	}

	c.Camera = "Cam B"
	if _, err := c.Resolve(); !reject.Is(err, reject.Config) {
		t.Errorf("expected config error for unknown camera, got %v", err)
	}
	c.Camera, c.GainIndex = "Cam A", 5
	if _, err := c.Resolve(); !reject.Is(err, reject.InvalidInput) {
		t.Errorf("expected invalid gain index, got %v", err)
	}
}
