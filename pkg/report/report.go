// Package report renders the result of a calculation for people.
package report

import(
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/abworrall/astro-snr/pkg/scenario"
)

func f(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

// rows are shared between the text and markdown renderings.
func setupRows(r scenario.Result) [][]string {
	rows := [][]string{
		{"Camera", fmt.Sprintf("%s (%s)", r.Camera, r.Kind)},
		{"Setting", r.Selection.String()},
	}
	if r.Telescope != "" {
		rows = append(rows,
			[]string{"Telescope", fmt.Sprintf("%s, f/%s", r.Telescope, f(r.FocalRatio, 1))},
			[]string{"Image scale", f(r.ImageScale, 2) + " arcsec/px"},
		)
	}
	return rows
}

func signalRows(r scenario.Result) [][]string {
	s := r.Signals
	return [][]string{
		{"Exposure", f(s.Exposure, 1) + " s"},
		{"Dark signal", f(s.DarkSignal, 1) + " e-"},
		{"Sky signal", f(s.SkySignal, 1) + " e-"},
		{"Target signal", f(s.TargetSignal, 1) + " e-"},
	}
}

func noiseRows(r scenario.Result) [][]string {
	n := r.Report
	return [][]string{
		{"Read noise", f(n.ReadNoise, 2) + " e-"},
		{"Dark noise", f(n.DarkNoise, 2) + " e-"},
		{"Sky noise", f(n.SkyNoise, 2) + " e-"},
		{"Total background noise", f(n.TotalBackgroundNoise, 2) + " e-"},
	}
}

func resultRows(r scenario.Result) [][]string {
	n := r.Report
	dr := "undefined (no background noise)"
	if n.HasDynamicRange() {
		dr = fmt.Sprintf("%s %s", f(n.DynamicRange(r.DRUnit), 2), r.DRUnit)
	}
	rows := [][]string{
		{"Target SNR (1 subframe)", f(n.TargetSNR, 2)},
		{fmt.Sprintf("Stack SNR (%d subframes)", n.Subframes), f(n.StackSNR, 2)},
		{"Dynamic range", dr},
	}
	if r.SubframesNeeded > 0 {
		rows = append(rows, []string{fmt.Sprintf("Subframes for SNR %s", f(r.DesiredSNR, 1)), strconv.Itoa(r.SubframesNeeded)})
	}
	if r.SkyLimitedExposure > 0 {
		rows = append(rows, []string{"Sky limited exposure", f(r.SkyLimitedExposure, 0) + " s"})
	}
	return rows
}

// WriteText is the plain, aligned rendering.
func WriteText(w io.Writer, r scenario.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	sections := []struct{ title string; rows [][]string }{
		{"Setup", setupRows(r)},
		{"Signals", signalRows(r)},
		{"Noise", noiseRows(r)},
		{"Results", resultRows(r)},
	}
	for i, s := range sections {
		if i > 0 { fmt.Fprintln(tw) }
		fmt.Fprintf(tw, "%s\n", s.title)
		for _, row := range s.rows {
			fmt.Fprintf(tw, "  %s\t%s\n", row[0], row[1])
		}
	}

	if r.Report.Saturated {
		fmt.Fprintf(tw, "\nWARNING: dark+sky+target exceeds the saturation capacity; use shorter subframes\n")
	}
	for _, c := range r.Report.Corrections {
		fmt.Fprintf(tw, "NOTE: %s\n", c)
	}

	return tw.Flush()
}
