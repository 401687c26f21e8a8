package main

import (
	"errors"
	"os"

	pdfraster "github.com/alnah/go-pdfraster"
	"github.com/alnah/go-pdfraster/internal/config"
)

// Exit codes for the pdfraster CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // All documents converted
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or options
	ExitIO       = 3 // File not found, permission denied
	ExitBrowser  = 4 // Browser/Chrome errors
	ExitDegraded = 5 // Placeholder output under --strict
)

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrDegradedOutput) {
		return ExitDegraded
	}

	// Browser errors (exit 4)
	if errors.Is(err, pdfraster.ErrBrowserConnect) ||
		errors.Is(err, pdfraster.ErrPageCreate) ||
		errors.Is(err, pdfraster.ErrPageLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadPDF) ||
		errors.Is(err, ErrWriteImage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoPDFFiles) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidLocatorFlag) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyInput) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, pdfraster.ErrInvalidQuality) ||
		errors.Is(err, pdfraster.ErrInvalidScale) ||
		errors.Is(err, pdfraster.ErrInvalidFormat) ||
		errors.Is(err, pdfraster.ErrInvalidDimensions) ||
		errors.Is(err, pdfraster.ErrInvalidLocator) ||
		errors.Is(err, pdfraster.ErrNoLocators) {
		return ExitUsage
	}

	return ExitGeneral
}
