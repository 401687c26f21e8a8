// Package pdfraster renders PDF pages to images, falling back gracefully
// when the rendering engine is unavailable.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := pdfraster.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, pdfraster.Input{
//	    Document: data,
//	    Name:     "contract.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, page := range result.Images {
//	    os.WriteFile(fmt.Sprintf("page-%03d.png", page.Index+1), page.Data, 0644)
//	}
//
// # Strategy Chain
//
// The engine is pdf.js running in headless Chrome (go-rod). pdf.js needs
// its worker module, which may live in a local directory or on one of
// several CDN mirrors, any of which may be blocked or slow. Convert
// resolves a working location as follows:
//
//  1. If the health cache holds a verified locator, render with it.
//  2. Otherwise probe each candidate (local first, then mirrors), verify
//     reachable ones by opening a minimal document, cache the first that
//     passes, and render with it.
//  3. If no candidate works, or rendering fails, synthesize one
//     placeholder page per estimated page.
//
// A successful result always holds one image per page. Check
// result.Degraded() and result.Warnings to tell users that automatic
// processing may be limited.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := pdfraster.NewConverter(
//	    pdfraster.WithTimeout(time.Minute),
//	    pdfraster.WithLocators(pdfraster.MustLocator("bundled", "/opt/pdfjs/build", true)),
//	    pdfraster.WithLogger(slog.Default()),
//	)
//
// Per-conversion options are passed via Input:
//
//	result, err := conv.Convert(ctx, pdfraster.Input{
//	    Document: data,
//	    Options:  &pdfraster.ConversionOptions{Format: "jpeg", Quality: 0.8, Binarize: true},
//	})
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browser instances:
//
//	pool := pdfraster.NewConverterPool(pdfraster.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// All converters share the process-wide health cache unless WithHealthCache
// injects another one.
package pdfraster
