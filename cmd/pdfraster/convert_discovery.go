package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pdfraster "github.com/alnah/go-pdfraster"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .pdf extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrNoPDFFiles         = errors.New("no PDF files found")
)

// FileToConvert is one document and where its page images go.
type FileToConvert struct {
	InputPath string
	OutputDir string
	Stem      string // page files are <Stem>-page-NNN.<ext>
}

// discoverFiles expands file and directory arguments into documents.
// Directories are walked for *.pdf; their layout is mirrored under outputDir.
func discoverFiles(inputs []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, input := range inputs {
		found, err := discoverInput(input, outputDir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func discoverInput(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validatePDFExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToConvert{newFileToConvert(inputPath, outputDir, "")}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isPDF(path) {
			return nil
		}
		files = append(files, newFileToConvert(path, outputDir, inputPath))
		return nil
	})

	return files, err
}

// newFileToConvert resolves the output directory for one document.
func newFileToConvert(inputPath, outputDir, baseInputDir string) FileToConvert {
	f := FileToConvert{
		InputPath: inputPath,
		Stem:      strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
	}

	switch {
	case outputDir == "":
		f.OutputDir = filepath.Dir(inputPath)
	case baseInputDir != "":
		f.OutputDir = outputDir
		if rel, err := filepath.Rel(baseInputDir, filepath.Dir(inputPath)); err == nil {
			f.OutputDir = filepath.Join(outputDir, rel)
		}
	default:
		f.OutputDir = outputDir
	}
	return f
}

// pagePath returns the output path for a page image.
func pagePath(f FileToConvert, img pdfraster.PageImage) string {
	ext := ".png"
	if img.Format == pdfraster.FormatJPEG {
		ext = ".jpg"
	}
	return filepath.Join(f.OutputDir, fmt.Sprintf("%s-page-%03d%s", f.Stem, img.Index+1, ext))
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// validatePDFExtension checks that the file has a .pdf extension.
func validatePDFExtension(path string) error {
	if !isPDF(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > pdfraster.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, pdfraster.MaxPoolSize)
	}
	return nil
}
