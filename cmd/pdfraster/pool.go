package main

import (
	"context"
	"fmt"

	pdfraster "github.com/alnah/go-pdfraster"
)

// CLIConverter is the conversion surface the CLI needs.
type CLIConverter interface {
	Convert(ctx context.Context, input pdfraster.Input) (*pdfraster.ConversionResult, error)
	ResetEngine()
	Attempts() []pdfraster.ProbeOutcome
}

// Compile-time interface implementation check.
var _ CLIConverter = (*pdfraster.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// poolAdapter adapts pdfraster.ConverterPool to Pool.
type poolAdapter struct {
	pool *pdfraster.ConverterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func newPool(size int, opts ...pdfraster.Option) Pool {
	return &poolAdapter{pool: pdfraster.NewConverterPool(size, opts...)}
}

func (a *poolAdapter) Acquire() (CLIConverter, error) {
	c, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release panics when given a converter the pool did not hand out.
func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*pdfraster.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

func (a *poolAdapter) Close() error { return a.pool.Close() }
