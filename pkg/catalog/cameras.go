package catalog

import(
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abworrall/astro-snr/pkg/reject"
	"github.com/abworrall/astro-snr/pkg/sensor"
)

const(
	fName = iota
	fType
	fPixelSize
	fQE
	fGain
	fReadNoise
	fSatCap
	fBlackLevel
	fWhiteLevel
	fISOs

	minCameraFields = fISOs
)

// ParseCameras reads every camera record; each profile is validated.
func ParseCameras(r io.Reader) ([]sensor.CameraProfile, error) {
	recs, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cameras: %w", err)
	}

	ret := []sensor.CameraProfile{}
	for i, rec := range recs {
		c, err := parseCamera(rec)
		if err != nil {
			return nil, fmt.Errorf("camera record %d: %w", i+1, err)
		}
		ret = append(ret, c)
	}
	return ret, nil
}

func LoadCameras(path string) ([]sensor.CameraProfile, error) {
	return openAndParse(path, ParseCameras)
}

func parseCamera(rec []string) (sensor.CameraProfile, error) {
	c := sensor.CameraProfile{}
	if len(rec) < minCameraFields {
		return c, reject.New(reject.Config, "want at least %d fields, got %d", minCameraFields, len(rec))
	}

	c.Name = strings.TrimSpace(rec[fName])
	kind, err := sensor.ParseSensorKind(rec[fType])
	if err != nil {
		return c, err
	}
	c.Kind = kind

	if c.PixelSizeUM, err = parseParam(rec[fPixelSize]); err != nil {
		return c, reject.New(reject.Config, "%s: pixel size: %v", c.Name, err)
	}
	if qe := strings.TrimSpace(rec[fQE]); !strings.EqualFold(qe, absentMarker) {
		p, err := parseParam(qe)
		if err != nil {
			return c, reject.New(reject.Config, "%s: QE: %v", c.Name, err)
		}
		c.QE = &p
	}

	cols := map[string][]sensor.Param{}
	for _, col := range []struct{ name string; idx int }{
		{"gain", fGain}, {"read noise", fReadNoise}, {"saturation capacity", fSatCap},
		{"black level", fBlackLevel}, {"white level", fWhiteLevel},
	} {
		if cols[col.name], err = parseParams(rec[col.idx]); err != nil {
			return c, reject.New(reject.Config, "%s: %s: %v", c.Name, col.name, err)
		}
	}

	n := len(cols["gain"])
	for _, name := range []string{"saturation capacity", "black level", "white level"} {
		if len(cols[name]) != n {
			return c, reject.New(reject.Config, "%s: %d gain values but %d %s values", c.Name, n, len(cols[name]), name)
		}
	}

	var isos []int
	if len(rec) > fISOs && strings.TrimSpace(rec[fISOs]) != "" {
		for _, s := range strings.Split(rec[fISOs], multiSep) {
			iso, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), modifiedMarker)))
			if err != nil {
				return c, reject.New(reject.Config, "%s: bad ISO %q", c.Name, s)
			}
			isos = append(isos, iso)
		}
		if len(isos) != n {
			return c, reject.New(reject.Config, "%s: %d gain values but %d ISOs", c.Name, n, len(isos))
		}
	}

	if kind == sensor.DSLR && len(cols["read noise"]) != n {
		return c, reject.New(reject.Config, "%s: %d gain values but %d read noise values", c.Name, n, len(cols["read noise"]))
	}

	for i:=0; i<n; i++ {
		s := sensor.Setting{
			Gain:               cols["gain"][i],
			SaturationCapacity: cols["saturation capacity"][i],
			BlackLevel:         cols["black level"][i],
			WhiteLevel:         cols["white level"][i],
		}
		if kind == sensor.DSLR {
			s.ReadNoise = cols["read noise"][i]
		}
		if isos != nil {
			s.ISO = isos[i]
		}
		c.Settings = append(c.Settings, s)
	}
	if kind == sensor.CCD {
		c.ReadNoise = cols["read noise"]
	}

	return c, c.Validate()
}

// FormatCamera is the inverse of parsing a single record.
func FormatCamera(c sensor.CameraProfile) []string {
	qe := absentMarker
	if c.QE != nil {
		qe = formatParam(*c.QE)
	}

	var gain, rn, sat, black, white []sensor.Param
	isos := []string{}
	hasISO := false
	for _, s := range c.Settings {
		gain  = append(gain, s.Gain)
		rn    = append(rn, s.ReadNoise)
		sat   = append(sat, s.SaturationCapacity)
		black = append(black, s.BlackLevel)
		white = append(white, s.WhiteLevel)
		isos  = append(isos, strconv.Itoa(s.ISO))
		if s.ISO != 0 { hasISO = true }
	}
	if c.Kind == sensor.CCD {
		rn = c.ReadNoise
	}

	rec := []string{
		c.Name, c.Kind.String(), formatParam(c.PixelSizeUM), qe,
		formatParams(gain), formatParams(rn), formatParams(sat), formatParams(black), formatParams(white),
	}
	if hasISO {
		rec = append(rec, strings.Join(isos, multiSep))
	}
	return rec
}

func WriteCameras(w io.Writer, cams []sensor.CameraProfile) error {
	recs := [][]string{}
	for _, c := range cams {
		recs = append(recs, FormatCamera(c))
	}
	return writeRecords(w, recs)
}

// FindCamera looks up a camera by name, ignoring case.
func FindCamera(cams []sensor.CameraProfile, name string) (sensor.CameraProfile, error) {
	for _, c := range cams {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return sensor.CameraProfile{}, reject.New(reject.Config, "camera %q not in catalog", name)
}
