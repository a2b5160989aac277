package sensor

import(
	"math"
	"testing"

	"github.com/abworrall/astro-snr/pkg/reject"
)

var dslrSel = Selection{Gain: 2.0, ReadNoise: 5, SaturationCapacity: 20000, BlackLevel: 512, WhiteLevel: 15000}

func TestDeriveSignalsDSLR(t *testing.T) {
	tests := []struct {
		name        string
		dark        Reading
		wantDark    float64
		wantSky     float64
		wantTbgn    float64
		wantSkyN    float64
		corrections int
	}{
		{
			name:     "no dark",
			dark:     Absent(),
			wantDark: 0, wantSky: 16, wantTbgn: 12, wantSkyN: math.Sqrt(144 - 25),
		},
		{
			name:     "dark noise above read noise",
			dark:     Provided(3), // (3*2)^2 - 5^2 = 11
			wantDark: 11, wantSky: 16, wantTbgn: 12, wantSkyN: math.Sqrt(144 - 25 - 11),
		},
		{
			name:        "dark noise below read noise is clamped",
			dark:        Provided(2), // (2*2)^2 - 25 < 0
			wantDark:    0, wantSky: 16, wantTbgn: 12, wantSkyN: math.Sqrt(144 - 25),
			corrections: 1,
		},
		{
			// The dark input of 515 ADU, read as a noise figure, swamps the
			// measured background noise; the floor kicks in and zeroes the sky.
			name:        "dark noise swamps background noise",
			dark:        Provided(515),
			wantDark:    1030*1030 - 25, wantSky: 0, wantTbgn: 1030, wantSkyN: 0,
			corrections: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Measurements{
				Exposure:        60,
				Dark:            tt.dark,
				BackgroundLevel: 520,
				BackgroundNoise: Provided(6),
				TargetLevel:     Provided(600),
			}
			sig, err := DeriveSignalsDSLR(dslrSel, m)
			if err != nil {
				t.Fatalf("DeriveSignalsDSLR: %v", err)
			}
			if sig.DarkSignal != tt.wantDark {
				t.Errorf("dark signal = %g, want %g", sig.DarkSignal, tt.wantDark)
			}
			if sig.SkySignal != tt.wantSky {
				t.Errorf("sky signal = %g, want %g", sig.SkySignal, tt.wantSky)
			}
			if sig.TargetSignal != 160 {
				t.Errorf("target signal = %g, want 160", sig.TargetSignal)
			}
			if !closeTo(sig.TotalBackgroundNoise, tt.wantTbgn, 1e-12) {
				t.Errorf("tbgn = %g, want %g", sig.TotalBackgroundNoise, tt.wantTbgn)
			}
			if math.Abs(sig.SkyNoise-tt.wantSkyN) > 1e-9 {
				t.Errorf("sky noise = %g, want %g", sig.SkyNoise, tt.wantSkyN)
			}
			if !closeTo(sig.DarkNoise, math.Sqrt(tt.wantDark), 1e-12) && tt.wantDark != 0 {
				t.Errorf("dark noise = %g", sig.DarkNoise)
			}
			if len(sig.Corrections) != tt.corrections {
				t.Errorf("corrections = %v, want %d", sig.Corrections, tt.corrections)
			}

			r := ComputeSNRDR(sig, dslrSel.SaturationCapacity, 1)
			want := 160 / math.Sqrt(160+tt.wantTbgn*tt.wantTbgn)
			if !closeTo(r.TargetSNR, want, 1e-12) {
				t.Errorf("snr = %g, want %g", r.TargetSNR, want)
			}
		})
	}
}

func TestDSLRDarkCorrectionReportsMinimum(t *testing.T) {
	m := Measurements{Exposure: 60, Dark: Provided(1), BackgroundLevel: 520, BackgroundNoise: Provided(6)}
	sig, err := DeriveSignalsDSLR(dslrSel, m)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Corrections) != 1 || sig.Corrections[0].Field != "dark" {
		t.Fatalf("corrections = %v", sig.Corrections)
	}
	if sig.Corrections[0].Substituted != 2.5 { // rn/gain
		t.Errorf("minimum dark noise = %g, want 2.5", sig.Corrections[0].Substituted)
	}
}

func TestDSLRBackgroundNoiseFloor(t *testing.T) {
	m := Measurements{Exposure: 60, Dark: Provided(3), BackgroundLevel: 530, BackgroundNoise: Provided(1)}
	sig, err := DeriveSignalsDSLR(dslrSel, m)
	if err != nil {
		t.Fatal(err)
	}
	if sig.SkySignal != 0 {
		t.Errorf("sky signal should be zeroed, got %g", sig.SkySignal)
	}
	if want := 6.0; !closeTo(sig.TotalBackgroundNoise, want, 1e-12) { // sqrt(25+11)
		t.Errorf("tbgn = %g, want %g", sig.TotalBackgroundNoise, want)
	}
	if len(sig.Corrections) != 1 || !closeTo(sig.Corrections[0].Substituted, 3, 1e-12) {
		t.Errorf("corrections = %v", sig.Corrections)
	}
}

func TestDeriveSignalsCCD(t *testing.T) {
	sel := Selection{Gain: 1.0, ReadNoise: 3, SaturationCapacity: 20000, BlackLevel: 100, WhiteLevel: 65535}

	// No dark frame
	sig, err := DeriveSignalsCCD(sel, Measurements{Exposure: 30, BackgroundLevel: 150})
	if err != nil {
		t.Fatalf("DeriveSignalsCCD: %v", err)
	}
	if sig.SkySignal != 50 || sig.DarkSignal != 0 || sig.TargetSignal != 0 {
		t.Errorf("unexpected signals %s", sig)
	}
	if !closeTo(sig.TotalBackgroundNoise, math.Sqrt(59), 1e-12) {
		t.Errorf("tbgn = %g, want sqrt(59)", sig.TotalBackgroundNoise)
	}
	if !closeTo(sig.SkyRate(), 50.0/30, 1e-12) {
		t.Errorf("sky rate = %g", sig.SkyRate())
	}

	r := ComputeSNRDR(sig, 20000, 1)
	wantDR := math.Log10(20000/math.Sqrt(59)) / math.Log10(2)
	if !closeTo(r.DynamicRangeStops, wantDR, 1e-12) {
		t.Errorf("DR = %g, want %g", r.DynamicRangeStops, wantDR)
	}
	if r.TargetSNR != 0 || r.StackSNR != 0 {
		t.Errorf("no target should mean zero SNR, got %g/%g", r.TargetSNR, r.StackSNR)
	}

	// With a dark frame and a target
	sig, err = DeriveSignalsCCD(sel, Measurements{
		Exposure: 30, Dark: Provided(110), BackgroundLevel: 150, TargetLevel: Provided(250),
	})
	if err != nil {
		t.Fatalf("DeriveSignalsCCD: %v", err)
	}
	if sig.DarkSignal != 10 || sig.SkySignal != 40 || sig.TargetSignal != 100 {
		t.Errorf("unexpected signals %s", sig)
	}
	if !closeTo(sig.TotalBackgroundNoise, math.Sqrt(9+10+40), 1e-12) {
		t.Errorf("tbgn = %g", sig.TotalBackgroundNoise)
	}
	if !closeTo(sig.DarkNoise, math.Sqrt(10), 1e-12) || !closeTo(sig.SkyNoise, math.Sqrt(40), 1e-12) {
		t.Errorf("noise terms %s", sig)
	}
}

func TestValidateLevels(t *testing.T) {
	ccdSel := Selection{Gain: 1, ReadNoise: 3, SaturationCapacity: 20000, BlackLevel: 100, WhiteLevel: 4000}

	tests := []struct {
		name string
		kind SensorKind
		sel  Selection
		m    Measurements
	}{
		{"zero exposure", CCD, ccdSel, Measurements{Exposure: 0, BackgroundLevel: 150}},
		{"ccd background below black", CCD, ccdSel, Measurements{Exposure: 1, BackgroundLevel: 90}},
		{"ccd dark below black", CCD, ccdSel, Measurements{Exposure: 1, Dark: Provided(90), BackgroundLevel: 150}},
		{"ccd background below dark", CCD, ccdSel, Measurements{Exposure: 1, Dark: Provided(160), BackgroundLevel: 150}},
		{"target below background", CCD, ccdSel, Measurements{Exposure: 1, BackgroundLevel: 150, TargetLevel: Provided(140)}},
		{"target above white", CCD, ccdSel, Measurements{Exposure: 1, BackgroundLevel: 150, TargetLevel: Provided(5000)}},
		{"dslr background below black", DSLR, dslrSel, Measurements{Exposure: 1, BackgroundLevel: 500, BackgroundNoise: Provided(6)}},
		{"dslr missing background noise", DSLR, dslrSel, Measurements{Exposure: 1, BackgroundLevel: 520}},
		{"dslr negative dark noise", DSLR, dslrSel, Measurements{Exposure: 1, Dark: Provided(-1), BackgroundLevel: 520, BackgroundNoise: Provided(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeriveSignals(tt.kind, tt.sel, tt.m); !reject.Is(err, reject.InvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}

	// A zero target level means "no target", not "target below background"
	m := Measurements{Exposure: 1, BackgroundLevel: 150, TargetLevel: Provided(0)}
	if err := ValidateLevels(CCD, ccdSel, m); err != nil {
		t.Errorf("zero target should be accepted, got %v", err)
	}
}

func TestSignalsFromScenario(t *testing.T) {
	sel := Selection{Gain: 1, ReadNoise: 3, SaturationCapacity: 20000, BlackLevel: 100, WhiteLevel: 4000}
	sc := ExposureScenario{Exposure: 120, DarkCurrent: 0.01, SkyFlux: 0.5, TargetFlux: 2, Subframes: 10}

	sig, err := SignalsFromScenario(sel, sc)
	if err != nil {
		t.Fatal(err)
	}
	if !closeTo(sig.DarkSignal, 1.2, 1e-12) || sig.SkySignal != 60 || sig.TargetSignal != 240 {
		t.Errorf("unexpected signals %s", sig)
	}
	if !closeTo(sig.TotalBackgroundNoise, math.Sqrt(9+1.2+60), 1e-12) {
		t.Errorf("tbgn = %g", sig.TotalBackgroundNoise)
	}

	bad := sc
	bad.Subframes = 0
	if _, err := SignalsFromScenario(sel, bad); !reject.Is(err, reject.InvalidInput) {
		t.Errorf("expected rejection for zero subframes, got %v", err)
	}
	bad = sc
	bad.SkyFlux = -1
	if _, err := SignalsFromScenario(sel, bad); !reject.Is(err, reject.InvalidInput) {
		t.Errorf("expected rejection for negative flux, got %v", err)
	}
}

func TestNoiseNonNegativity(t *testing.T) {
	sel := Selection{Gain: 1.3, ReadNoise: 4.2, SaturationCapacity: 30000, BlackLevel: 256, WhiteLevel: 16383}

	for _, dark := range []float64{0, 1, 3.2, 10, 100} {
		for _, bgNoise := range []float64{0, 1, 3, 5, 20, 200} {
			for _, bg := range []float64{256, 300, 1000} {
				m := Measurements{Exposure: 30, Dark: Provided(dark), BackgroundLevel: bg, BackgroundNoise: Provided(bgNoise)}
				sig, err := DeriveSignalsDSLR(sel, m)
				if err != nil {
					t.Fatalf("%v: %v", m, err)
				}
				if sig.DarkNoise < 0 || sig.SkyNoise < 0 || math.IsNaN(sig.SkyNoise) {
					t.Errorf("%v: negative noise %s", m, sig)
				}
				if sig.TotalBackgroundNoise < sel.ReadNoise-1e-12 {
					t.Errorf("%v: tbgn %g below read noise %g", m, sig.TotalBackgroundNoise, sel.ReadNoise)
				}
			}
		}
	}
}
