package main

import(
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/abworrall/astro-snr/pkg/report"
	"github.com/abworrall/astro-snr/pkg/scenario"
)

var(
	fVerbosity int
	fCameraCatalog string
	fTelescopeCatalog string
	fCamera string
	fTelescope string
	fGainIndex int
	fRNIndex int
	fExposure float64
	fSubframes int
	fDesiredSNR float64
	fDynamicRange string
	fFormat string
)

func init() {
	flag.IntVarP(&fVerbosity, "verbose", "v", 0, "how verbose to get")
	flag.StringVar(&fCameraCatalog, "cameras", "", "camera catalog file (default: in the XDG data dir)")
	flag.StringVar(&fTelescopeCatalog, "telescopes", "", "telescope catalog file (default: in the XDG data dir)")
	flag.StringVar(&fCamera, "camera", "", "camera name, from the catalog")
	flag.StringVar(&fTelescope, "telescope", "", "telescope name, from the catalog")
	flag.IntVar(&fGainIndex, "gain", 0, "index of the ISO/gain setting")
	flag.IntVar(&fRNIndex, "rn", 0, "index of the read noise mode (CCD only)")
	flag.Float64Var(&fExposure, "exposure", 60, "subframe exposure, in seconds")
	flag.IntVar(&fSubframes, "subframes", 1, "number of subframes in the stack")
	flag.Float64Var(&fDesiredSNR, "snr", 0, "work out how many subframes reach this SNR")
	flag.StringVar(&fDynamicRange, "dr", "stops", "dynamic range unit: stops or db")
	flag.StringVar(&fFormat, "format", "text", "output format: text or markdown")
	flag.Parse()
}

func main() {
	if flag.NArg() != 1 {
		log.Fatalf("usage: snrcalc [flags] scenario.{yaml,toml}")
	}

	cfg, err := scenario.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if they were given
	set := flag.CommandLine.Changed
	if set("verbose")    { cfg.Verbosity = fVerbosity }
	if set("cameras")    { cfg.CameraCatalog = fCameraCatalog }
	if set("telescopes") { cfg.TelescopeCatalog = fTelescopeCatalog }
	if set("camera")     { cfg.Camera, cfg.InlineCamera = fCamera, "" }
	if set("telescope")  { cfg.Telescope, cfg.InlineTelescope = fTelescope, "" }
	if set("gain")       { cfg.GainIndex = fGainIndex }
	if set("rn")         { cfg.RNIndex = fRNIndex }
	if set("exposure")   { cfg.Exposure = fExposure }
	if set("subframes")  { cfg.Subframes = fSubframes }
	if set("snr")        { cfg.DesiredSNR = fDesiredSNR }
	if set("dr")         { cfg.DynamicRange = fDynamicRange }

	if err := cfg.Finalize(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	r, err := cfg.Resolve()
	if err != nil {
		log.Fatal(err)
	}
	res, err := r.Calculate()
	if err != nil {
		log.Fatal(err)
	}

	switch fFormat {
	case "markdown", "md": err = report.WriteMarkdown(os.Stdout, res)
	case "text":           err = report.WriteText(os.Stdout, res)
	default:               log.Fatalf("output format %q not recognized, wanted text or markdown", fFormat)
	}
	if err != nil {
		log.Fatal(err)
	}
}
