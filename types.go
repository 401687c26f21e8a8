package pdfraster

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Image format constants.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Option defaults and bounds.
const (
	DefaultQuality   = 0.9
	DefaultScale     = 2.0
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1600

	MinQuality = 0.1
	MaxQuality = 1.0
	MinScale   = 1.0
)

// ConversionOptions controls how pages are rasterized.
// A zero value field means "use the default".
type ConversionOptions struct {
	Quality         float64 // 0.1-1.0, JPEG only
	Scale           float64 // >= 1.0, relative to the page's native size
	Format          string  // "png" or "jpeg"
	MaxWidth        int     // pixel cap
	MaxHeight       int     // pixel cap
	EnhanceContrast bool
	Binarize        bool
}

// DefaultOptions returns conversion options with default values.
func DefaultOptions() ConversionOptions {
	return ConversionOptions{
		Quality:   DefaultQuality,
		Scale:     DefaultScale,
		Format:    FormatPNG,
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
	}
}

// withDefaults fills zero fields with defaults. Format is normalized to lowercase.
func (o ConversionOptions) withDefaults() ConversionOptions {
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.Format = normalizeFormat(o.Format)
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.MaxWidth == 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight == 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	return o
}

// Validate checks option bounds. Zero values are valid (they mean default).
func (o ConversionOptions) Validate() error {
	if o.Quality != 0 && (o.Quality < MinQuality || o.Quality > MaxQuality) {
		return fmt.Errorf("%w: %.2f (must be between %.1f and %.1f)", ErrInvalidQuality, o.Quality, MinQuality, MaxQuality)
	}
	if o.Scale != 0 && o.Scale < MinScale {
		return fmt.Errorf("%w: %.2f (must be at least %.1f)", ErrInvalidScale, o.Scale, MinScale)
	}
	switch normalizeFormat(o.Format) {
	case "", FormatPNG, FormatJPEG:
	default:
		return fmt.Errorf("%w: %q (must be png or jpeg)", ErrInvalidFormat, o.Format)
	}
	if o.MaxWidth < 0 || o.MaxHeight < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, o.MaxWidth, o.MaxHeight)
	}
	return nil
}

// normalizeFormat lowercases the format and accepts "jpg" as an alias.
func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpg" {
		return FormatJPEG
	}
	return f
}

// Input contains conversion parameters.
type Input struct {
	Document []byte             // Raw document bytes (PDF)
	Name     string             // File name, shown on placeholder pages
	Options  *ConversionOptions // nil = defaults
}

// PageImage is one rendered page. Ownership passes to the caller.
type PageImage struct {
	Index  int    // zero-based page index
	Data   []byte // encoded image bytes
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// ConversionResult is the outcome of a conversion.
// When Success is true, len(Images) == PageCount and PageCount >= 1.
type ConversionResult struct {
	Success   bool
	Images    []PageImage
	PageCount int
	Strategy  string // "engine:<locator name>" or "degraded"
	Elapsed   time.Duration
	Warnings  []string
	Reason    string // why the engine was abandoned; set on degraded results
	Err       error
}

// ElapsedMs returns the elapsed time in whole milliseconds.
func (r *ConversionResult) ElapsedMs() int64 {
	return r.Elapsed.Milliseconds()
}

// Degraded reports whether the result came from placeholder synthesis.
func (r *ConversionResult) Degraded() bool {
	return r.Strategy == StrategyDegraded
}

// checkInvariant verifies the page-count contract of a successful result.
func (r *ConversionResult) checkInvariant() error {
	if !r.Success {
		return nil
	}
	if r.PageCount < 1 {
		return fmt.Errorf("%w: page count %d", ErrNoPages, r.PageCount)
	}
	if len(r.Images) != r.PageCount {
		return fmt.Errorf("%w: %d images for %d pages", ErrRenderFailed, len(r.Images), r.PageCount)
	}
	return nil
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	probeTimeout  time.Duration
	verifyTimeout time.Duration
	locators      []EngineLocator
}

// Default timeouts.
const (
	defaultTimeout       = 2 * time.Minute
	defaultProbeTimeout  = 5 * time.Second
	defaultVerifyTimeout = 10 * time.Second
)

// WithTimeout sets the request-level deadline used when the caller's
// context has none.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfraster: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithProbeTimeout bounds each reachability probe.
// Panics if d <= 0.
func WithProbeTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfraster: WithProbeTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.probeTimeout = d
	}
}

// WithVerifyTimeout bounds each functional verification.
// Panics if d <= 0.
func WithVerifyTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfraster: WithVerifyTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.verifyTimeout = d
	}
}

// WithLocators replaces the candidate locator list. Local locators are
// tried before remote ones; order is otherwise preserved.
func WithLocators(locators ...EngineLocator) Option {
	return func(c *Converter) {
		c.cfg.locators = append(make([]EngineLocator, 0, len(locators)), locators...)
	}
}

// WithHealthCache injects the health cache. Defaults to SharedHealthCache().
func WithHealthCache(cache HealthCache) Option {
	return func(c *Converter) {
		c.cache = cache
	}
}

// WithEngineSession injects the rendering engine. Defaults to a headless
// Chrome session driving pdf.js.
func WithEngineSession(session EngineSession) Option {
	return func(c *Converter) {
		c.session = session
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgress registers a progress callback invoked while pages render.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Converter) {
		c.progress = fn
	}
}
