// Package catalog reads and writes the camera and telescope catalogs.
//
// Each camera is one comma-separated record:
//
//	name,type,pixel_size_um,qe,gain,read_noise,sat_cap,black_level,white_level[,isos]
//
// Fields with one value per setting are hyphen-joined ("1.0*-2.0-4.0").
// A trailing '*' marks a value the user edited. QE may be "NA". For a
// CCD the read_noise field lists the read noise modes, which need not
// line up with the gain settings. Telescopes are name,aperture_mm,focal_length_mm.
// Lines starting with '#' are comments.
package catalog

import(
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"

	"github.com/abworrall/astro-snr/pkg/sensor"
)

const(
	AppName            = "astro-snr"
	CameraCatalog      = "cameras.csv"
	TelescopeCatalog   = "telescopes.csv"

	modifiedMarker     = "*"
	absentMarker       = "NA"
	multiSep           = "-"
)

// DefaultPath finds a catalog file in the XDG data directories,
// falling back to where it would live under $XDG_DATA_HOME.
func DefaultPath(name string) string {
	rel := filepath.Join(AppName, name)
	if p, err := xdg.SearchDataFile(rel); err == nil {
		return p
	}
	return filepath.Join(xdg.DataHome, rel)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comment          = '#'
	cr.FieldsPerRecord  = -1
	cr.TrimLeadingSpace = true
	return cr
}

func parseParam(s string) (sensor.Param, error) {
	s = strings.TrimSpace(s)
	p := sensor.Param{}
	if strings.HasSuffix(s, modifiedMarker) {
		p.Modified = true
		s = strings.TrimSpace(strings.TrimSuffix(s, modifiedMarker))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return p, fmt.Errorf("bad number %q", s)
	}
	p.Value = v
	return p, nil
}

func parseParams(s string) ([]sensor.Param, error) {
	ret := []sensor.Param{}
	for _, f := range strings.Split(s, multiSep) {
		p, err := parseParam(f)
		if err != nil {
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

func formatParam(p sensor.Param) string {
	s := strconv.FormatFloat(p.Value, 'f', -1, 64)
	if p.Modified {
		s += modifiedMarker
	}
	return s
}

func formatParams(ps []sensor.Param) string {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = formatParam(p)
	}
	return strings.Join(strs, multiSep)
}

func writeRecords(w io.Writer, recs [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(recs); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func openAndParse[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open '%s': %w", path, err)
	}
	defer f.Close()

	ret, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse '%s': %w", path, err)
	}
	return ret, nil
}
