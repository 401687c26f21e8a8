package pdfraster

import "errors"

// Sentinel errors for library operations.
var (
	// Locator and probe errors. Recoverable: the chain moves to the next candidate.
	ErrInvalidLocator     = errors.New("invalid engine locator")
	ErrLocatorUnreachable = errors.New("engine locator unreachable")
	ErrProbeTimeout       = errors.New("timeout")
	ErrNoLocators         = errors.New("no engine locators configured")

	// Verification errors.
	ErrVerificationFailed  = errors.New("engine verification failed")
	ErrEngineNotConfigured = errors.New("engine session has no active locator")

	// Rendering errors. Recoverable at the chain level via degraded output.
	ErrRenderFailed   = errors.New("page rendering failed")
	ErrNoPages        = errors.New("engine reported no pages")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// ErrPlaceholderSynthesis is the only error surfaced from Convert:
	// even degraded output could not be produced.
	ErrPlaceholderSynthesis = errors.New("placeholder synthesis failed")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("converter pool closed")

	// Options validation errors.
	ErrInvalidQuality    = errors.New("invalid quality")
	ErrInvalidScale      = errors.New("invalid scale")
	ErrInvalidFormat     = errors.New("invalid image format")
	ErrInvalidDimensions = errors.New("invalid maximum dimensions")
)
