package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	pdfraster "github.com/alnah/go-pdfraster"
	"github.com/alnah/go-pdfraster/internal/config"
	"github.com/alnah/go-pdfraster/internal/fileutil"
	"github.com/alnah/go-pdfraster/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidLocatorFlag = errors.New("invalid --locator value")
	ErrConversionFailed   = errors.New("conversion failed")
	ErrDegradedOutput     = errors.New("degraded output")
)

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoInput
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateWorkers(cfg.Workers); err != nil {
		return err
	}

	options := buildOptions(cfg)
	if err := options.Validate(); err != nil {
		return err
	}

	locators, err := buildLocators(cfg)
	if err != nil {
		return err
	}

	outputDir := cfg.Output.Dir
	files, err := discoverFiles(positional, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPDFFiles, strings.Join(positional, ", "))
	}

	logger := newLogger(env.Stderr, flags.common)
	opts := converterOptions(cfg, locators, logger)
	if !flags.common.quiet && len(files) == 1 && env.IsTerminal() {
		progress := newProgressLine(env.Stderr, filepath.Base(files[0].InputPath))
		opts = append(opts, pdfraster.WithProgress(progress.update))
	}

	poolSize := pdfraster.ResolvePoolSize(cfg.Workers)
	logger.Debug("starting conversion", slog.Int("files", len(files)), slog.Int("pool", poolSize))

	pool := env.NewPool(poolSize, opts...)
	defer func() { _ = pool.Close() }()

	results := convertBatch(ctx, pool, files, &conversionParams{
		options: options,
		reprobe: flags.engine.reprobe,
	})

	summary := printResults(results, flags.common, env)
	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d document(s)", ErrConversionFailed, summary.Failed, len(results))
	}
	if summary.Degraded > 0 && flags.strict {
		return fmt.Errorf("%w: %d document(s) rendered as placeholders", ErrDegradedOutput, summary.Degraded)
	}
	return nil
}

// loadConfig loads the config named by the flag, else by PDFRASTER_CONFIG,
// else returns defaults.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	mergeEngineFlags(flags.engine, cfg)

	if flags.image.format != "" {
		cfg.Output.Format = flags.image.format
	}
	if flags.image.quality != 0 {
		cfg.Output.Quality = flags.image.quality
	}
	if flags.image.scale != 0 {
		cfg.Output.Scale = flags.image.scale
	}
	if flags.image.maxWidth != 0 {
		cfg.Output.MaxWidth = flags.image.maxWidth
	}
	if flags.image.maxHeight != 0 {
		cfg.Output.MaxHeight = flags.image.maxHeight
	}
	if flags.image.contrast {
		cfg.Output.EnhanceContrast = true
	}
	if flags.image.binarize {
		cfg.Output.Binarize = true
	}
}

// mergeEngineFlags applies --timeout and --locator. Any --locator replaces
// the configured list.
func mergeEngineFlags(f engineFlags, cfg *config.Config) {
	if f.timeout != "" {
		cfg.Engine.Timeout = f.timeout
	}
	if len(f.locators) > 0 {
		cfg.Engine.Locators = nil
		for _, raw := range f.locators {
			cfg.Engine.Locators = append(cfg.Engine.Locators, parseLocatorFlag(raw))
		}
	}
}

// parseLocatorFlag parses "name=uri" or a bare uri. Anything that is not
// an http(s) URL is a local directory.
func parseLocatorFlag(raw string) config.LocatorConfig {
	var loc config.LocatorConfig
	if name, uri, ok := strings.Cut(raw, "="); ok && !strings.Contains(name, "/") {
		loc.Name, loc.URI = strings.TrimSpace(name), strings.TrimSpace(uri)
	} else {
		loc.URI = strings.TrimSpace(raw)
	}
	loc.Local = !fileutil.IsURL(loc.URI)
	return loc
}

// buildLocators converts configured locators. Local paths are made absolute.
// An empty list selects the library defaults.
func buildLocators(cfg *config.Config) ([]pdfraster.EngineLocator, error) {
	locs := make([]pdfraster.EngineLocator, 0, len(cfg.Engine.Locators))
	for _, lc := range cfg.Engine.Locators {
		uri := lc.URI
		if lc.Local {
			abs, err := filepath.Abs(fileutil.LocalPath(uri))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLocatorFlag, uri, err)
			}
			uri = abs
		}
		loc, err := pdfraster.NewLocator(lc.Name, uri, lc.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLocatorFlag, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// buildOptions maps the output section onto library options.
func buildOptions(cfg *config.Config) pdfraster.ConversionOptions {
	return pdfraster.ConversionOptions{
		Quality:         cfg.Output.Quality,
		Scale:           cfg.Output.Scale,
		Format:          cfg.Output.Format,
		MaxWidth:        cfg.Output.MaxWidth,
		MaxHeight:       cfg.Output.MaxHeight,
		EnhanceContrast: cfg.Output.EnhanceContrast,
		Binarize:        cfg.Output.Binarize,
	}
}

// converterOptions builds the options shared by every pooled converter.
func converterOptions(cfg *config.Config, locators []pdfraster.EngineLocator, logger *slog.Logger) []pdfraster.Option {
	opts := []pdfraster.Option{pdfraster.WithLogger(logger)}
	if len(locators) > 0 {
		opts = append(opts, pdfraster.WithLocators(locators...))
	}
	if d := cfg.Engine.TimeoutDuration(); d > 0 {
		opts = append(opts, pdfraster.WithTimeout(d))
	}
	if d := cfg.Engine.ProbeTimeoutDuration(); d > 0 {
		opts = append(opts, pdfraster.WithProbeTimeout(d))
	}
	if d := cfg.Engine.VerifyTimeoutDuration(); d > 0 {
		opts = append(opts, pdfraster.WithVerifyTimeout(d))
	}
	return opts
}

// newLogger returns a text logger: warn by default, debug with --verbose,
// errors only with --quiet.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// progressLine redraws a single terminal line with rendering progress.
type progressLine struct {
	mu   sync.Mutex
	w    io.Writer
	name string
}

func newProgressLine(w io.Writer, name string) *progressLine {
	return &progressLine{w: w, name: name}
}

func (p *progressLine) update(strategy string, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%%", p.name, strategy, percent)
	if percent >= 100 {
		fmt.Fprintln(p.w)
	}
}

// ResultSummary tallies a batch.
type ResultSummary struct {
	Succeeded int
	Degraded  int
	Failed    int
}

// printResults reports each document and returns the tally.
func printResults(results []ConversionResult, f commonFlags, env *Environment) ResultSummary {
	var summary ResultSummary

	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, errorHint(r.Err))
			continue
		}

		summary.Succeeded++
		if r.Degraded {
			summary.Degraded++
			reason := r.Reason
			if reason == "" {
				reason = "engine unavailable"
			}
			fmt.Fprintf(env.Stderr, "DEGRADED %s: placeholder pages (%s)%s\n", r.InputPath, reason, hints.ForDegraded(r.Offline))
		}

		if f.quiet {
			continue
		}

		if f.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %d page(s) via %s (%v)\n", r.InputPath, len(r.Pages), r.Strategy, r.Duration.Round(time.Millisecond))
			for _, p := range r.Pages {
				fmt.Fprintf(env.Stdout, "  %s\n", p)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %d page(s) from %s\n", len(r.Pages), r.InputPath)
		}
	}

	if !f.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded (%d degraded), %d failed\n", summary.Succeeded, summary.Degraded, summary.Failed)
	}

	return summary
}
