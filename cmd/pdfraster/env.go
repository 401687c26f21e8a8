package main

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	pdfraster "github.com/alnah/go-pdfraster"
)

// Diagnoser checks every candidate engine locator.
type Diagnoser interface {
	Diagnose(ctx context.Context) []pdfraster.Diagnosis
	Close() error
}

// Compile-time interface implementation check.
var _ Diagnoser = (*pdfraster.Converter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now          func() time.Time
	Stdout       io.Writer
	Stderr       io.Writer
	IsTerminal   func() bool
	NewPool      func(size int, opts ...pdfraster.Option) Pool
	NewDiagnoser func(opts ...pdfraster.Option) (Diagnoser, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stderr.Fd())) },
		NewPool:    newPool,
		NewDiagnoser: func(opts ...pdfraster.Option) (Diagnoser, error) {
			c, err := pdfraster.NewConverter(opts...)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}
