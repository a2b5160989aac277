package main

import(
	"fmt"
	"image"
	"log"

	"github.com/astrogo/fitsio"
	flag "github.com/spf13/pflag"

	"github.com/abworrall/astro-snr/pkg/imgio"
	"github.com/abworrall/astro-snr/pkg/scenario"
	"github.com/abworrall/astro-snr/pkg/stretch"
	"github.com/abworrall/astro-snr/pkg/synth"
)

var(
	fVerbosity int
	fSeed uint64
	fSubframes int
	fWidth int
	fHeight int
	fMask string
	fSeeing int
	fTonemapper string
	fOutputPrefix string
	fFormats []string
	fSNRMap bool
)

func init() {
	flag.IntVarP(&fVerbosity, "verbose", "v", 0, "how verbose to get")
	flag.Uint64Var(&fSeed, "seed", 1, "random seed; the same seed gives the same images")
	flag.IntVar(&fSubframes, "subframes", 1, fmt.Sprintf("number of subframes to simulate (at most %d)", synth.MaxSubframes))
	flag.IntVar(&fWidth, "width", 256, "width of the simulated frame, in pixels")
	flag.IntVar(&fHeight, "height", 256, "height of the simulated frame, in pixels")
	flag.StringVar(&fMask, "mask", "", "target mask image (png, jpeg, tiff, fits)")
	flag.IntVar(&fSeeing, "seeing", 0, "number of blur passes over the mask, to mimic atmospheric seeing")
	flag.StringVar(&fTonemapper, "tonemapper", "autostretch", fmt.Sprintf("how to stretch for display: %v", stretch.List()))
	flag.StringVarP(&fOutputPrefix, "output", "o", "sim", "prefix for output filenames")
	flag.StringSliceVar(&fFormats, "formats", []string{"png"}, "output formats: png, tiff, fits, hdr")
	flag.BoolVar(&fSNRMap, "snrmap", false, "also write a heat map of the expected per-pixel SNR")
	flag.Parse()

	log.Printf("imsim starting\n")
}

func main() {
	if flag.NArg() != 1 {
		log.Fatalf("usage: imsim [flags] scenario.{yaml,toml}")
	}

	cfg, err := scenario.Load(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	set := flag.CommandLine.Changed
	if set("verbose")    { cfg.Verbosity = fVerbosity }
	if set("seed")       { cfg.Simulation.Seed = fSeed }
	if set("subframes")  { cfg.Subframes = fSubframes }
	if set("width")      { cfg.Simulation.Width = fWidth }
	if set("height")     { cfg.Simulation.Height = fHeight }
	if set("mask")       { cfg.Simulation.Mask = fMask }
	if set("seeing")     { cfg.Simulation.Seeing = fSeeing }
	if set("tonemapper") { cfg.Simulation.Tonemapper = fTonemapper }
	if set("output")     { cfg.Simulation.OutputPrefix = fOutputPrefix }
	if set("formats")    { cfg.Simulation.Formats = fFormats }

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
	log.Printf("%s\n", res.Report)
	for _, c := range res.Report.Corrections {
		log.Printf("NOTE: %s\n", c)
	}

	mask, err := r.Mask()
	if err != nil {
		log.Fatal(err)
	}

	p := r.SynthParams(res.Signals)
	fs, err := synth.Synthesize(p, mask, cfg.Simulation.Seed)
	if err != nil {
		log.Fatal(err)
	}

	var display *image.Gray16
	if cfg.Simulation.Tonemapper == "autostretch" {
		display = fs.Stretched
	} else {
		tmo, _ := stretch.Get(cfg.Simulation.Tonemapper)
		if display, err = tmo(fs.Linear16); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.Verbosity > 0 {
		log.Printf("linear    %s\n", stretch.Histogram(fs.Linear16).ASCII(64))
		log.Printf("stretched %s\n", stretch.Histogram(display).ASCII(64))
	}

	prefix := cfg.Simulation.OutputPrefix
	caption := []string{
		fmt.Sprintf("%s, %d x %gs", res.Camera, p.Subframes, p.Exposure),
		fmt.Sprintf("SNR %.1f (stack), %s", res.Report.StackSNR, cfg.Simulation.Tonemapper),
	}

	for _, format := range cfg.Simulation.Formats {
		switch format {
		case "png":
			write(imgio.WritePNG(fs.Linear16, prefix+"-linear.png"), prefix+"-linear.png")
			write(imgio.WriteAnnotatedPNG(display, prefix+"-"+cfg.Simulation.Tonemapper+".png", caption...),
				prefix+"-"+cfg.Simulation.Tonemapper+".png")

		case "tiff":
			write(imgio.WriteTIFF16(fs.Linear16, prefix+"-linear.tif"), prefix+"-linear.tif")
			write(imgio.WriteTIFF16(display, prefix+"-stretched.tif"), prefix+"-stretched.tif")

		case "fits":
			cards := []fitsio.Card{
				{Name: "EXPTIME",  Value: p.Exposure,            Comment: "subframe exposure [s]"},
				{Name: "NCOMBINE", Value: p.Subframes,           Comment: "number of subframes averaged"},
				{Name: "EGAIN",    Value: p.Gain,                Comment: "e-/ADU"},
				{Name: "RDNOISE",  Value: p.ReadNoise,           Comment: "read noise [e-]"},
				{Name: "SEED",     Value: int64(fs.Seed),        Comment: "simulation random seed"},
				{Name: "INSTRUME", Value: res.Camera,            Comment: "camera"},
				{Name: "BUNIT",    Value: "ADU",                 Comment: ""},
			}
			write(imgio.WriteFITS(fs.Mean, prefix+"-stack.fits", cards...), prefix+"-stack.fits")

		case "hdr":
			write(imgio.WriteHDR(fs.Linear, prefix+"-linear.hdr"), prefix+"-linear.hdr")
		}
	}

	if fSNRMap {
		snr, err := synth.SNRMap(p, mask)
		if err != nil {
			log.Fatal(err)
		}
		write(imgio.WriteHeatmap(snr, 0, prefix+"-snr.png"), prefix+"-snr.png")
		if cfg.Verbosity > 1 {
			write(snr.ToImg("SNR", prefix+"-snr-gray.png"), prefix+"-snr-gray.png")
		}
	}
}

func write(err error, filename string) {
	if err != nil {
		log.Fatalf("write failed: %v", err)
	}
	log.Printf("output file written '%s'\n", filename)
}
