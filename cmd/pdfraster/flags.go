package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds engine location and timing flags.
type engineFlags struct {
	locators []string
	timeout  string
	reprobe  bool
}

// imageFlags holds image output flags. Zero values defer to config.
type imageFlags struct {
	format    string
	quality   float64
	scale     float64
	maxWidth  int
	maxHeight int
	contrast  bool
	binarize  bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common  commonFlags
	engine  engineFlags
	image   imageFlags
	output  string
	workers int
	strict  bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	engine engineFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addEngineFlags adds engine flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringArrayVar(&f.locators, "locator", nil, "engine location name=uri (repeatable, replaces defaults)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.reprobe, "reprobe", false, "retry degraded documents once after clearing the engine cache")
}

// addImageFlags adds image output flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "image format: png, jpeg")
	fs.Float64Var(&f.quality, "quality", 0, "JPEG quality (0.1-1.0)")
	fs.Float64Var(&f.scale, "scale", 0, "render scale (>= 1.0)")
	fs.IntVar(&f.maxWidth, "max-width", 0, "maximum image width in pixels")
	fs.IntVar(&f.maxHeight, "max-height", 0, "maximum image height in pixels")
	fs.BoolVar(&f.contrast, "contrast", false, "enhance contrast")
	fs.BoolVar(&f.binarize, "binarize", false, "convert to pure black and white")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.strict, "strict", false, "exit with code 5 when any document is degraded")

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addImageFlags(fs, &f.image)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "output JSON")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)

	fs.Usage = func() { printDoctorUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
