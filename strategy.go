package pdfraster

import (
	"context"
	"fmt"
)

// StrategyDegraded is the strategy name of placeholder output.
const StrategyDegraded = "degraded"

const strategyEnginePrefix = "engine:"

// StrategyKind tags the strategy variant.
type StrategyKind int

const (
	KindEngine StrategyKind = iota
	KindDegraded
)

// String implements fmt.Stringer.
func (k StrategyKind) String() string {
	switch k {
	case KindEngine:
		return "engine"
	case KindDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// Strategy is one complete way of turning a document into page images.
type Strategy interface {
	Kind() StrategyKind
	Name() string
	Render(ctx context.Context, in Input, opts ConversionOptions, progress ProgressFunc) (*ConversionResult, error)
}

// Compile-time interface checks.
var (
	_ Strategy = (*engineStrategy)(nil)
	_ Strategy = (*degradedStrategy)(nil)
)

// EngineStrategyName returns the strategy name reported for a locator.
func EngineStrategyName(loc EngineLocator) string {
	return strategyEnginePrefix + loc.Name()
}

// engineStrategy renders through the engine session using a verified locator.
type engineStrategy struct {
	locator EngineLocator
	session EngineSession
}

func newEngineStrategy(loc EngineLocator, session EngineSession) *engineStrategy {
	return &engineStrategy{locator: loc, session: session}
}

func (s *engineStrategy) Kind() StrategyKind { return KindEngine }

func (s *engineStrategy) Name() string { return EngineStrategyName(s.locator) }

// degradedStrategy synthesizes placeholder pages. It carries the reason
// the engine strategies were abandoned.
type degradedStrategy struct {
	reason string
}

func newDegradedStrategy(reason string) *degradedStrategy {
	return &degradedStrategy{reason: reason}
}

func (s *degradedStrategy) Kind() StrategyKind { return KindDegraded }

func (s *degradedStrategy) Name() string { return StrategyDegraded }

// runStrategy executes a strategy, turning panics into errors.
func runStrategy(ctx context.Context, s Strategy, in Input, opts ConversionOptions, progress ProgressFunc) (res *ConversionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrRenderFailed, s.Name(), r)
		}
	}()
	res, err = s.Render(ctx, in, opts, progress)
	if err == nil && res != nil {
		err = res.checkInvariant()
	}
	return res, err
}
