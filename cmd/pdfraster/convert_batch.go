package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	pdfraster "github.com/alnah/go-pdfraster"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadPDF    = errors.New("failed to read PDF file")
	ErrWriteImage = errors.New("failed to write image file")
)

// conversionParams groups settings shared by every file in a batch.
type conversionParams struct {
	options pdfraster.ConversionOptions
	reprobe bool
}

// ConversionResult holds the outcome of a single document.
type ConversionResult struct {
	InputPath string
	Pages     []string // written image paths
	Strategy  string
	Warnings  []string
	Reason    string // degrade cause
	Degraded  bool
	Offline   bool // degraded because no locator answered
	Err       error
	Duration  time.Duration
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile renders one document and writes its pages.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	start := time.Now()
	result.InputPath = f.InputPath
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadPDF, err)
		return result
	}

	input := pdfraster.Input{
		Document: content,
		Name:     filepath.Base(f.InputPath),
		Options:  &params.options,
	}

	res, err := conv.Convert(ctx, input)
	if err == nil && res.Degraded() && params.reprobe {
		conv.ResetEngine()
		res, err = conv.Convert(ctx, input)
	}
	if err != nil {
		result.Err = err
		return result
	}

	result.Strategy = res.Strategy
	result.Warnings = res.Warnings
	result.Reason = res.Reason
	result.Degraded = res.Degraded()
	if result.Degraded {
		result.Offline = allUnreachable(conv.Attempts())
	}

	if err := os.MkdirAll(f.OutputDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w", err)
		return result
	}

	for _, img := range res.Images {
		path := pagePath(f, img)
		// #nosec G306 -- images are meant to be readable
		if err := os.WriteFile(path, img.Data, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteImage, err)
			return result
		}
		result.Pages = append(result.Pages, path)
	}

	return result
}

// allUnreachable reports whether no recorded locator ever answered a probe.
func allUnreachable(attempts []pdfraster.ProbeOutcome) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if a.Reachable || errors.Is(a.Err, pdfraster.ErrVerificationFailed) {
			return false
		}
	}
	return true
}
