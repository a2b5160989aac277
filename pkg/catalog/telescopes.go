package catalog

import(
	"fmt"
	"io"
	"strings"

	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

func ParseTelescopes(r io.Reader) ([]sensor.OpticsProfile, error) {
	recs, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read telescopes: %w", err)
	}

	ret := []sensor.OpticsProfile{}
	for i, rec := range recs {
		if len(rec) != 3 {
			return nil, reject.New(reject.Config, "telescope record %d: want 3 fields, got %d", i+1, len(rec))
		}
		o := sensor.OpticsProfile{Name: strings.TrimSpace(rec[0])}

		ap, err1 := parseParam(rec[1])
		fl, err2 := parseParam(rec[2])
		if err1 != nil || err2 != nil {
			return nil, reject.New(reject.Config, "telescope %q: bad aperture %q or focal length %q", o.Name, rec[1], rec[2])
		}
		o.ApertureMM, o.ApertureModified = ap.Value, ap.Modified
		o.FocalLengthMM, o.FocalLengthModified = fl.Value, fl.Modified

		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("telescope %q: %w", o.Name, err)
		}
		ret = append(ret, o)
	}
	return ret, nil
}

func LoadTelescopes(path string) ([]sensor.OpticsProfile, error) {
	return openAndParse(path, ParseTelescopes)
}

func FormatTelescope(o sensor.OpticsProfile) []string {
	return []string{
		o.Name,
		formatParam(sensor.Param{Value: o.ApertureMM, Modified: o.ApertureModified}),
		formatParam(sensor.Param{Value: o.FocalLengthMM, Modified: o.FocalLengthModified}),
	}
}

func WriteTelescopes(w io.Writer, scopes []sensor.OpticsProfile) error {
	recs := [][]string{}
	for _, o := range scopes {
		recs = append(recs, FormatTelescope(o))
	}
	return writeRecords(w, recs)
}

func FindTelescope(scopes []sensor.OpticsProfile, name string) (sensor.OpticsProfile, error) {
	for _, o := range scopes {
		if strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	return sensor.OpticsProfile{}, reject.New(reject.Config, "telescope %q not in catalog", name)
}
