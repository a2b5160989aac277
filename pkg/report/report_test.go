package report

import(
	"bytes"
	"strings"
	"testing"

	"github.com/abworrall/astro-snr/pkg/scenario"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

func testResult() scenario.Result {
	sel := sensor.Selection{Gain: 2, ReadNoise: 5, SaturationCapacity: 20000, BlackLevel: 512, WhiteLevel: 15000}
	sig, _ := sensor.DeriveSignalsDSLR(sel, sensor.Measurements{
		Exposure:        60,
		Dark:            sensor.Provided(2),
		BackgroundLevel: 520,
		BackgroundNoise: sensor.Provided(6),
		TargetLevel:     sensor.Provided(600),
	})
	return scenario.Result{
		Camera:          "Test DSLR",
		Telescope:       "Test Scope",
		Kind:            sensor.DSLR,
		Selection:       sel,
		Signals:         sig,
		Report:          sensor.ComputeSNRDR(sig, sel.SaturationCapacity, 16),
		DRUnit:          sensor.Decibels,
		ImageScale:      0.89,
		FocalRatio:      5,
		DesiredSNR:      100,
		SubframesNeeded: 42,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Test DSLR (DSLR)",
		"Test Scope, f/5.0",
		"0.89 arcsec/px",
		"Target signal",
		"160.0 e-",
		"Stack SNR (16 subframes)",
		" dB",
		"Subframes for SNR 100.0",
		"NOTE: dark:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNING") {
		t.Errorf("unexpected saturation warning")
	}
}

func TestWriteTextNoBackgroundNoise(t *testing.T) {
	sel := sensor.Selection{Gain: 1, ReadNoise: 0, SaturationCapacity: 20000, BlackLevel: 100, WhiteLevel: 65535}
	sig, err := sensor.DeriveSignalsCCD(sel, sensor.Measurements{
		Exposure:        30,
		BackgroundLevel: 100,
		TargetLevel:     sensor.Provided(200),
	})
	if err != nil {
		t.Fatal(err)
	}
	r := testResult()
	r.Selection, r.Signals = sel, sig
	r.Report = sensor.ComputeSNRDR(sig, sel.SaturationCapacity, 1)

	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "undefined (no background noise)") || strings.Contains(out, "Inf") {
		t.Errorf("dynamic range not reported as undefined:\n%s", out)
	}
}

func TestWriteMarkdown(t *testing.T) {
	r := testResult()
	r.Report.Saturated = true

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# SNR Report",
		"## Noise",
		"Total background noise",
		"saturation capacity of 20000 e-",
		"## Corrections",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q:\n%s", want, out)
		}
	}
}
