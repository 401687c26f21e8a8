package pdfraster

import (
	"context"
	"image"
)

// EngineSession abstracts the external rendering engine.
//
// The active locator is session-wide state: Configure replaces it for every
// document opened afterwards. Implementations are not required to be safe
// for concurrent use; Converter serializes access.
type EngineSession interface {
	// Configure points the engine at a locator. Configuring the locator
	// that is already active should be cheap.
	Configure(ctx context.Context, loc EngineLocator) error

	// OpenDocument parses raw document bytes.
	OpenDocument(ctx context.Context, data []byte) (EngineDocument, error)

	// Close releases engine resources.
	Close() error
}

// EngineDocument is an opened document. Pages must be accessed sequentially.
type EngineDocument interface {
	PageCount() int
	Page(ctx context.Context, index int) (EnginePage, error)
	Close() error
}

// EnginePage is a handle to a single page.
type EnginePage interface {
	// Size returns the page size in pixels at scale 1.
	Size() (width, height float64)

	// Render rasterizes the page at the given scale.
	Render(ctx context.Context, scale float64) (image.Image, error)
}

// sessionGate serializes EngineSession use. Unlike sync.Mutex, waiting
// honors a context, and the holder may hand release to another goroutine
// that outlives the caller.
type sessionGate chan struct{}

func newSessionGate() sessionGate { return make(sessionGate, 1) }

func (g sessionGate) acquire(ctx context.Context) error {
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g sessionGate) release() { <-g }
