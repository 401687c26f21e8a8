package pdfraster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Compile-time interface implementation checks.
var (
	_ HealthCache = (*EngineHealthCache)(nil)
	_ Prober      = (*HTTPProber)(nil)
	_ Verifier    = (*engineVerifier)(nil)
)

const resolveKey = "engine"

// Converter turns documents into page images. It tries the cached engine
// locator first, then probes and verifies candidates in order, and falls
// back to placeholder pages when no engine works.
// Create with NewConverter, use Convert, and Close when done.
type Converter struct {
	cfg      converterConfig
	cache    HealthCache
	session  EngineSession
	prober   Prober
	verifier Verifier
	post     *ImagePostProcessor
	logger   *slog.Logger
	progress ProgressFunc

	// gate serializes session access; pages share one engine.
	gate    sessionGate
	resolve singleflight.Group
}

// resolution is the shared outcome of one locator search.
type resolution struct {
	locator  EngineLocator
	warnings []string
}

// Diagnosis reports probe and verification results for one locator.
type Diagnosis struct {
	Locator  EngineLocator
	Probe    ProbeOutcome
	Verified bool
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithLocators, WithLogger).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:       defaultTimeout,
			probeTimeout:  defaultProbeTimeout,
			verifyTimeout: defaultVerifyTimeout,
		},
		logger: discardLogger(),
		gate:   newSessionGate(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.locators == nil {
		c.cfg.locators = DefaultLocators()
	}
	c.cfg.locators = orderLocators(c.cfg.locators)
	if len(c.cfg.locators) == 0 {
		return nil, ErrNoLocators
	}

	if c.cache == nil {
		c.cache = SharedHealthCache()
	}
	if c.session == nil {
		c.session = NewChromeSession(c.cfg.timeout, c.logger)
	}
	if c.prober == nil {
		c.prober = NewProber(nil)
	}
	if c.verifier == nil {
		c.verifier = newEngineVerifier(c.session, c.gate, c.logger)
	}
	c.post = NewImagePostProcessor(c.logger)

	return c, nil
}

// Convert renders every page of in.Document. Engine and probing failures
// never surface as errors: they become warnings on a degraded result.
// The returned error is non-nil only for invalid options or when even
// placeholder pages could not be produced.
func (c *Converter) Convert(ctx context.Context, in Input) (*ConversionResult, error) {
	start := time.Now()

	opts := DefaultOptions()
	if in.Options != nil {
		if err := in.Options.Validate(); err != nil {
			return nil, err
		}
		opts = in.Options.withDefaults()
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	res, warnings, reason := c.tryEngine(ctx, in, opts)
	if res == nil {
		c.logger.Warn("degrading to placeholder pages",
			slog.String("document", in.Name),
			slog.String("reason", reason))

		var err error
		res, err = runStrategy(ctx, newDegradedStrategy(reason), in, opts, c.progress)
		if err != nil {
			return &ConversionResult{
				Strategy: StrategyDegraded,
				Elapsed:  time.Since(start),
				Warnings: warnings,
				Err:      err,
			}, err
		}
	}

	for i, img := range res.Images {
		res.Images[i] = c.post.Process(img, opts)
	}
	res.Warnings = append(warnings, res.Warnings...)
	res.Elapsed = time.Since(start)

	c.logger.Info("document converted",
		slog.String("document", in.Name),
		slog.String("strategy", res.Strategy),
		slog.Int("pages", res.PageCount),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("elapsed", res.Elapsed))

	return res, nil
}

// tryEngine attempts engine rendering. A nil result comes with the reason
// the engine was abandoned.
func (c *Converter) tryEngine(ctx context.Context, in Input, opts ConversionOptions) (*ConversionResult, []string, string) {
	if len(in.Document) == 0 {
		return nil, nil, "empty document"
	}

	if loc, ok := c.cache.Verified(); ok {
		c.logger.Debug("using cached engine locator", slog.String("locator", loc.Name()))
		res, err := c.renderEngine(ctx, loc, in, opts)
		if err != nil {
			return nil, []string{fmt.Sprintf("%s: %v", loc.Name(), err)}, err.Error()
		}
		return res, nil, ""
	}

	r, err := c.resolveEngine(ctx)
	if err != nil {
		var warnings []string
		if r != nil {
			warnings = append(warnings, r.warnings...)
		}
		return nil, warnings, err.Error()
	}
	warnings := append([]string(nil), r.warnings...)

	res, err := c.renderEngine(ctx, r.locator, in, opts)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("%s: %v", r.locator.Name(), err)), err.Error()
	}
	return res, warnings, ""
}

// renderEngine runs the engine strategy while holding the session.
func (c *Converter) renderEngine(ctx context.Context, loc EngineLocator, in Input, opts ConversionOptions) (*ConversionResult, error) {
	if err := c.gate.acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for engine: %w", err)
	}
	defer c.gate.release()

	res, err := runStrategy(ctx, newEngineStrategy(loc, c.session), in, opts, c.progress)
	if err != nil {
		c.logger.Warn("engine rendering failed",
			slog.String("locator", loc.Name()),
			slog.String("error", err.Error()))
		return nil, err
	}
	return res, nil
}

// resolveEngine finds a working locator. Concurrent callers share one
// search, which runs detached from any single caller and is bounded by the
// converter timeout; each caller stops waiting when its own ctx ends.
func (c *Converter) resolveEngine(ctx context.Context) (*resolution, error) {
	ch := c.resolve.DoChan(resolveKey, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.timeout)
		defer cancel()
		return c.searchLocators(sctx)
	})

	select {
	case res := <-ch:
		r, _ := res.Val.(*resolution)
		return r, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("resolving engine: %w", ctx.Err())
	}
}

// searchLocators probes then verifies each candidate and caches the first
// that passes both.
func (c *Converter) searchLocators(ctx context.Context) (*resolution, error) {
	r := &resolution{}

	for _, loc := range c.cfg.locators {
		if err := ctx.Err(); err != nil {
			return r, fmt.Errorf("resolving engine: %w", err)
		}

		outcome := c.prober.Probe(ctx, loc, capTimeout(ctx, c.cfg.probeTimeout))
		c.cache.RecordAttempt(outcome)
		if !outcome.Reachable {
			c.logger.Debug("locator unreachable",
				slog.String("locator", loc.Name()),
				slog.Any("error", outcome.Err))
			r.warnings = append(r.warnings, fmt.Sprintf("%s: %v", loc.Name(), outcome.Err))
			continue
		}

		if !c.verify(ctx, loc) {
			c.cache.RecordAttempt(ProbeOutcome{Locator: loc, Latency: outcome.Latency, Err: ErrVerificationFailed})
			r.warnings = append(r.warnings, fmt.Sprintf("%s: %v", loc.Name(), ErrVerificationFailed))
			continue
		}

		c.cache.SetVerified(loc)
		c.logger.Info("engine locator verified",
			slog.String("locator", loc.Name()),
			slog.Duration("probe", outcome.Latency))
		r.locator = loc
		return r, nil
	}

	return r, fmt.Errorf("%w: all %d candidates failed", ErrLocatorUnreachable, len(c.cfg.locators))
}

// verify leaves session locking to the verifier: an abandoned check keeps
// the gate until it returns.
func (c *Converter) verify(ctx context.Context, loc EngineLocator) bool {
	return c.verifier.Verify(ctx, loc, capTimeout(ctx, c.cfg.verifyTimeout))
}

// Diagnose probes and verifies every candidate without touching the
// health cache.
func (c *Converter) Diagnose(ctx context.Context) []Diagnosis {
	out := make([]Diagnosis, 0, len(c.cfg.locators))
	for _, loc := range c.cfg.locators {
		d := Diagnosis{Locator: loc, Probe: c.prober.Probe(ctx, loc, capTimeout(ctx, c.cfg.probeTimeout))}
		if d.Probe.Reachable {
			d.Verified = c.verify(ctx, loc)
		}
		out = append(out, d)
	}
	return out
}

// Locators returns the ordered candidate list.
func (c *Converter) Locators() []EngineLocator {
	return append([]EngineLocator(nil), c.cfg.locators...)
}

// Attempts returns the health cache's attempt history.
func (c *Converter) Attempts() []ProbeOutcome {
	return c.cache.Attempts()
}

// ResetEngine clears the verified locator so the next conversion probes
// again. The cache may be shared with other converters.
func (c *Converter) ResetEngine() {
	c.cache.Reset()
	c.resolve.Forget(resolveKey)
}

// Close releases the engine session (headless Chrome browser). It waits up
// to the converter timeout for in-flight engine calls, then closes anyway.
func (c *Converter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.timeout)
	defer cancel()
	if err := c.gate.acquire(ctx); err == nil {
		defer c.gate.release()
	}
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

// requestContext applies the converter timeout when ctx has no deadline.
func (c *Converter) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.timeout)
}

// capTimeout limits d to the time left before ctx's deadline.
func capTimeout(ctx context.Context, d time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			return max(left, time.Millisecond)
		}
	}
	return d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
