package pdfraster

// Notes:
// - ConversionOptions: bounds validation and default filling
// - ConversionResult: the page-count invariant and helpers
// - Options: panics on non-positive durations

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestConversionOptions_Validate - Options Bounds
// ---------------------------------------------------------------------------

func TestConversionOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    ConversionOptions
		wantErr error
	}{
		{
			name:    "zero value is valid (use defaults)",
			opts:    ConversionOptions{},
			wantErr: nil,
		},
		{
			name:    "defaults are valid",
			opts:    DefaultOptions(),
			wantErr: nil,
		},
		{
			name:    "minimum quality",
			opts:    ConversionOptions{Quality: MinQuality},
			wantErr: nil,
		},
		{
			name:    "quality below minimum",
			opts:    ConversionOptions{Quality: 0.05},
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "quality above maximum",
			opts:    ConversionOptions{Quality: 1.01},
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "scale of one",
			opts:    ConversionOptions{Scale: 1},
			wantErr: nil,
		},
		{
			name:    "scale below one",
			opts:    ConversionOptions{Scale: 0.99},
			wantErr: ErrInvalidScale,
		},
		{
			name:    "jpg alias",
			opts:    ConversionOptions{Format: "JPG"},
			wantErr: nil,
		},
		{
			name:    "unsupported format",
			opts:    ConversionOptions{Format: "webp"},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "negative height",
			opts:    ConversionOptions{MaxHeight: -10},
			wantErr: ErrInvalidDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConversionOptions_WithDefaults(t *testing.T) {
	t.Parallel()

	got := ConversionOptions{Format: " JPG ", Binarize: true}.withDefaults()
	want := ConversionOptions{
		Quality:   DefaultQuality,
		Scale:     DefaultScale,
		Format:    FormatJPEG,
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Binarize:  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("withDefaults() mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestConversionResult - Invariant and Helpers
// ---------------------------------------------------------------------------

func TestConversionResult_CheckInvariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		res     ConversionResult
		wantErr error
	}{
		{
			name:    "failure is exempt",
			res:     ConversionResult{Success: false},
			wantErr: nil,
		},
		{
			name:    "matching pages",
			res:     ConversionResult{Success: true, PageCount: 2, Images: make([]PageImage, 2)},
			wantErr: nil,
		},
		{
			name:    "zero pages",
			res:     ConversionResult{Success: true},
			wantErr: ErrNoPages,
		},
		{
			name:    "image count mismatch",
			res:     ConversionResult{Success: true, PageCount: 3, Images: make([]PageImage, 2)},
			wantErr: ErrRenderFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.res.checkInvariant()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("checkInvariant() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkInvariant() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConversionResult_Helpers(t *testing.T) {
	t.Parallel()

	res := &ConversionResult{Strategy: StrategyDegraded, Elapsed: 1500 * time.Microsecond}
	if got := res.ElapsedMs(); got != 1 {
		t.Errorf("ElapsedMs() = %d, want 1", got)
	}
	if !res.Degraded() {
		t.Error("Degraded() = false, want true")
	}

	res.Strategy = "engine:jsdelivr"
	if res.Degraded() {
		t.Error("Degraded() = true for engine strategy")
	}
}

// ---------------------------------------------------------------------------
// TestOptions - Functional Options
// ---------------------------------------------------------------------------

func TestDurationOptions_PanicOnNonPositive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(time.Duration) Option
	}{
		{"WithTimeout", WithTimeout},
		{"WithProbeTimeout", WithProbeTimeout},
		{"WithVerifyTimeout", WithVerifyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Errorf("%s(0) did not panic", tt.name)
				}
			}()
			tt.fn(0)
		})
	}
}

func TestDurationOptions_Apply(t *testing.T) {
	t.Parallel()

	c := &Converter{}
	WithTimeout(time.Minute)(c)
	WithProbeTimeout(2 * time.Second)(c)
	WithVerifyTimeout(3 * time.Second)(c)

	if c.cfg.timeout != time.Minute || c.cfg.probeTimeout != 2*time.Second || c.cfg.verifyTimeout != 3*time.Second {
		t.Errorf("cfg = %+v, want 1m/2s/3s", c.cfg)
	}
}

func TestWithLogger_IgnoresNil(t *testing.T) {
	t.Parallel()

	c := &Converter{logger: discardLogger()}
	WithLogger(nil)(c)
	if c.logger == nil {
		t.Error("WithLogger(nil) cleared the logger")
	}
}
