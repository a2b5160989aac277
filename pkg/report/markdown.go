package report

import(
	"io"

	"github.com/nao1215/markdown"

	"github.com/abworrall/astro-snr/pkg/scenario"
)

func WriteMarkdown(w io.Writer, r scenario.Result) error {
	md := markdown.NewMarkdown(w)

	md.H1("SNR Report")
	md.PlainText("")

	for _, s := range []struct{ title string; rows [][]string }{
		{"Setup", setupRows(r)},
		{"Signals", signalRows(r)},
		{"Noise", noiseRows(r)},
		{"Results", resultRows(r)},
	} {
		md.H2(s.title)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Quantity", "Value"},
			Rows:   s.rows,
		})
		md.PlainText("")
	}

	if r.Report.Saturated {
		md.Warningf("dark+sky+target exceeds the saturation capacity of %.0f e-; use shorter subframes.",
			r.Selection.SaturationCapacity)
		md.PlainText("")
	}
	if len(r.Report.Corrections) > 0 {
		md.H2("Corrections")
		md.PlainText("")
		notes := []string{}
		for _, c := range r.Report.Corrections {
			notes = append(notes, c.String())
		}
		md.BulletList(notes...)
		md.PlainText("")
	}

	return md.Build()
}
