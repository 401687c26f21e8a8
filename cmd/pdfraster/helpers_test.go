package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pdfraster "github.com/alnah/go-pdfraster"
)

// fakeConverter returns canned results and records calls.
type fakeConverter struct {
	mu       sync.Mutex
	pages    int
	strategy string // defaults to an engine strategy
	warnings []string
	reason   string // degrade cause reported with degraded results
	err      error
	attempts []pdfraster.ProbeOutcome

	// healAfterReset makes the next Convert after ResetEngine succeed on the engine.
	healAfterReset bool

	calls  int
	resets int
	inputs []pdfraster.Input
}

func (f *fakeConverter) Convert(_ context.Context, in pdfraster.Input) (*pdfraster.ConversionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return &pdfraster.ConversionResult{Err: f.err, Strategy: pdfraster.StrategyDegraded}, f.err
	}

	strategy := f.strategy
	if strategy == "" || (f.healAfterReset && f.resets > 0) {
		strategy = "engine:test"
	}

	format := pdfraster.FormatPNG
	if in.Options != nil && in.Options.Format == pdfraster.FormatJPEG {
		format = pdfraster.FormatJPEG
	}

	res := &pdfraster.ConversionResult{
		Success:   true,
		PageCount: f.pages,
		Strategy:  strategy,
		Warnings:  f.warnings,
	}
	if strategy == pdfraster.StrategyDegraded {
		res.Reason = f.reason
	}
	for i := 0; i < f.pages; i++ {
		res.Images = append(res.Images, pdfraster.PageImage{
			Index: i, Data: []byte("image"), Format: format, Width: 10, Height: 10,
		})
	}
	return res, nil
}

func (f *fakeConverter) ResetEngine() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeConverter) Attempts() []pdfraster.ProbeOutcome {
	return f.attempts
}

func (f *fakeConverter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePool hands out a single shared converter.
type fakePool struct {
	conv       CLIConverter
	size       int
	acquireErr error
	closed     bool
	acquired   int
	released   int
	mu         sync.Mutex
}

func (p *fakePool) Acquire() (CLIConverter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conv, nil
}

func (p *fakePool) Release(CLIConverter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *fakePool) Size() int {
	if p.size == 0 {
		return 1
	}
	return p.size
}

func (p *fakePool) Close() error {
	p.closed = true
	return nil
}

// fakeDiagnoser returns canned diagnoses.
type fakeDiagnoser struct {
	diagnoses []pdfraster.Diagnosis
	closed    bool
}

func (d *fakeDiagnoser) Diagnose(context.Context) []pdfraster.Diagnosis { return d.diagnoses }

func (d *fakeDiagnoser) Close() error {
	d.closed = true
	return nil
}

// testEnv builds an environment with buffers and the given pool.
func testEnv(pool Pool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:        func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout:     stdout,
		Stderr:     stderr,
		IsTerminal: func() bool { return false },
		NewPool: func(int, ...pdfraster.Option) Pool {
			return pool
		},
		NewDiagnoser: func(...pdfraster.Option) (Diagnoser, error) {
			return &fakeDiagnoser{}, nil
		},
	}
	return env, stdout, stderr
}

// writePDF writes a small fake PDF into dir.
func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4\n<</Type /Page>>\n%%EOF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearPdfrasterEnv unsets PDFRASTER_* variables that would leak into a test.
func clearPdfrasterEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}

func mustLocator(t *testing.T, name, uri string, local bool) pdfraster.EngineLocator {
	t.Helper()
	loc, err := pdfraster.NewLocator(name, uri, local)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}
