package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	pdfraster "github.com/alnah/go-pdfraster"
	"github.com/alnah/go-pdfraster/internal/config"
)

func TestRunMain_ExitCodes(t *testing.T) {
	clearPdfrasterEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", []string{"pdfraster"}, ExitUsage},
		{"unknown command", []string{"pdfraster", "frobnicate"}, ExitUsage},
		{"version", []string{"pdfraster", "version"}, ExitSuccess},
		{"version flag", []string{"pdfraster", "--version"}, ExitSuccess},
		{"help", []string{"pdfraster", "help", "convert"}, ExitSuccess},
		{"convert without input", []string{"pdfraster", "convert"}, ExitIO},
		{"implicit convert of missing file", []string{"pdfraster", filepath.Join(dir, "missing.pdf")}, ExitIO},
		{"convert bad flag", []string{"pdfraster", "convert", "--nope", "a.pdf"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := testEnv(&fakePool{conv: &fakeConverter{pages: 1}, size: 1})
			if got := runMain(tt.args, env); got != tt.want {
				t.Errorf("runMain(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunMain_ImplicitConvert(t *testing.T) {
	clearPdfrasterEnv(t)
	dir := t.TempDir()
	in := writePDF(t, dir, "report.pdf")

	conv := &fakeConverter{pages: 2}
	env, stdout, _ := testEnv(&fakePool{conv: conv, size: 1})

	if got := runMain([]string{"pdfraster", in}, env); got != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", got, ExitSuccess)
	}
	if conv.callCount() != 1 {
		t.Errorf("Convert called %d times, want 1", conv.callCount())
	}
	if !strings.Contains(stdout.String(), "Created 2 page(s)") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv(nil)
	runMain([]string{"pdfraster", "version"}, env)

	want := fmt.Sprintf("pdfraster %s (pdf.js %s)\n", Version, pdfraster.PDFJSVersion)
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg, name string
		want      bool
	}{
		{"version", "version", true},
		{"--version", "version", true},
		{"-v", "version", true},
		{"-h", "help", true},
		{"vers", "version", false},
		{"--help", "version", false},
	}

	for _, tt := range tests {
		if got := isCommand(tt.arg, tt.name); got != tt.want {
			t.Errorf("isCommand(%q, %q) = %v, want %v", tt.arg, tt.name, got, tt.want)
		}
	}
}

func TestLooksLikePDF(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"doc.pdf":     true,
		"DOC.PDF":     true,
		"dir/doc.pdf": true,
		"--out.pdf":   false,
		"doc.txt":     false,
		"convert":     false,
	}
	for arg, want := range tests {
		if got := looksLikePDF(arg); got != want {
			t.Errorf("looksLikePDF(%q) = %v, want %v", arg, got, want)
		}
	}
}

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	if !hasVerboseFlag([]string{"convert", "--verbose", "a.pdf"}) {
		t.Error("--verbose not detected")
	}
	if !hasVerboseFlag([]string{"-v"}) {
		t.Error("-v not detected")
	}
	if hasVerboseFlag([]string{"convert", "--quiet"}) {
		t.Error("false positive")
	}
}

func TestErrorHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", context.DeadlineExceeded, "--timeout"},
		{"config", fmt.Errorf("%w: tried a.yaml, b.yaml", config.ErrConfigNotFound), "--config"},
		{"locator flag", ErrInvalidLocatorFlag, "--locator"},
		{"locator", pdfraster.ErrInvalidLocator, "--locator"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := errorHint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("errorHint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("errorHint() = %q, want containing %q", got, tt.want)
			}
		})
	}
}

func TestTriedPaths(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: tried ./a.yaml, /home/u/.config/go-pdfraster/a.yaml", config.ErrConfigNotFound)
	got := triedPaths(err)
	if len(got) != 2 || got[1] != "/home/u/.config/go-pdfraster/a.yaml" {
		t.Errorf("triedPaths() = %v", got)
	}

	if got := triedPaths(config.ErrConfigNotFound); got != nil {
		t.Errorf("triedPaths(no list) = %v, want nil", got)
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	if got := reportError(nil, env); got != ExitSuccess || stderr.Len() != 0 {
		t.Errorf("reportError(nil) = %d, stderr = %q", got, stderr.String())
	}

	if got := reportError(ErrNoInput, env); got != ExitIO {
		t.Errorf("reportError(ErrNoInput) = %d, want %d", got, ExitIO)
	}
	if !strings.HasPrefix(stderr.String(), "error: ") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
