//go:build integration

package pdfraster

// Notes:
// - Requires Chrome (or ROD_BROWSER_BIN) and access to at least one pdf.js
//   mirror, or PDFRASTER_PDFJS_DIR pointing at a local build

import (
	"context"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

func TestChromeSession_RendersMinimalPDF(t *testing.T) {
	conv, err := NewConverter(WithHealthCache(NewHealthCache()), WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer conv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	res, err := conv.Convert(ctx, Input{Document: minimalPDF, Name: "minimal.pdf"})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Degraded() {
		t.Fatalf("Convert() degraded: %v", res.Warnings)
	}
	if res.PageCount != 1 || len(res.Images) != 1 {
		t.Fatalf("PageCount = %d, len(Images) = %d, want 1", res.PageCount, len(res.Images))
	}

	// 72pt page at the default scale of 2.
	img := decodeTestImage(t, res.Images[0].Data)
	if b := img.Bounds(); b.Dx() != 144 || b.Dy() != 144 {
		t.Errorf("page size = %v, want 144x144", b)
	}
}

func TestConverter_DiagnoseDefaultLocators(t *testing.T) {
	conv, err := NewConverter(WithHealthCache(NewHealthCache()))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer conv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	verified := 0
	for _, d := range conv.Diagnose(ctx) {
		t.Logf("%s: reachable=%v verified=%v latency=%dms err=%v",
			d.Locator, d.Probe.Reachable, d.Verified, d.Probe.LatencyMs(), d.Probe.Err)
		if d.Verified {
			verified++
		}
	}
	if verified == 0 {
		t.Error("no locator verified")
	}
}
