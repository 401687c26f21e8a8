package pdfraster

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// minimalPDF is the smallest well-formed one-page document: a catalog, a
// page tree and one empty 72x72 page, with a correct cross-reference table.
var minimalPDF = []byte("%PDF-1.4\n" +
	"1 0 obj\n<</Type/Catalog/Pages 2 0 R>>\nendobj\n" +
	"2 0 obj\n<</Type/Pages/Kids[3 0 R]/Count 1>>\nendobj\n" +
	"3 0 obj\n<</Type/Page/Parent 2 0 R/MediaBox[0 0 72 72]>>\nendobj\n" +
	"xref\n0 4\n" +
	"0000000000 65535 f \n" +
	"0000000009 00000 n \n" +
	"0000000054 00000 n \n" +
	"0000000105 00000 n \n" +
	"trailer\n<</Size 4/Root 1 0 R>>\nstartxref\n168\n%%EOF\n")

// Verifier proves that a reachable locator actually yields a working engine.
type Verifier interface {
	Verify(ctx context.Context, loc EngineLocator, timeout time.Duration) bool
}

// engineVerifier configures the session with the candidate and opens
// minimalPDF through it.
type engineVerifier struct {
	session EngineSession
	gate    sessionGate
	logger  *slog.Logger
}

func newEngineVerifier(session EngineSession, gate sessionGate, logger *slog.Logger) *engineVerifier {
	return &engineVerifier{session: session, gate: gate, logger: logger}
}

// Verify returns true only if the engine reports at least one page for the
// synthetic document before timeout elapses. The timeout starts once the
// session is free. A session that ignores cancellation keeps running in
// the background and holds the gate until it returns; the verdict is still
// false.
func (v *engineVerifier) Verify(ctx context.Context, loc EngineLocator, timeout time.Duration) bool {
	if err := v.gate.acquire(ctx); err != nil {
		v.logger.Debug("engine busy", slog.String("locator", loc.Name()), slog.String("error", err.Error()))
		return false
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer v.gate.release()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: panic: %v", ErrVerificationFailed, r)
			}
		}()
		done <- v.check(vctx, loc)
	}()

	select {
	case err := <-done:
		if err != nil {
			v.logger.Debug("verification failed", slog.String("locator", loc.Name()), slog.String("error", err.Error()))
			return false
		}
		return true
	case <-vctx.Done():
		v.logger.Debug("verification timed out", slog.String("locator", loc.Name()), slog.Duration("timeout", timeout))
		return false
	}
}

func (v *engineVerifier) check(ctx context.Context, loc EngineLocator) error {
	if err := v.session.Configure(ctx, loc); err != nil {
		return fmt.Errorf("%w: configure: %v", ErrVerificationFailed, err)
	}

	doc, err := v.session.OpenDocument(ctx, minimalPDF)
	if err != nil {
		return fmt.Errorf("%w: open: %v", ErrVerificationFailed, err)
	}
	defer doc.Close()

	if doc.PageCount() < 1 {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, ErrNoPages)
	}
	return nil
}
