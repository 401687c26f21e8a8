package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-pdfraster/internal/config"
)

func TestLoadEnvConfig(t *testing.T) {
	clearPdfrasterEnv(t)
	t.Setenv("PDFRASTER_CONFIG", "office")
	t.Setenv("PDFRASTER_TIMEOUT", "45s")
	t.Setenv("PDFRASTER_OUTPUT_DIR", "/tmp/images")
	t.Setenv("PDFRASTER_FORMAT", "jpeg")
	t.Setenv("PDFRASTER_WORKERS", "3")

	want := &envConfig{
		ConfigPath: "office",
		Timeout:    45 * time.Second,
		OutputDir:  "/tmp/images",
		Format:     "jpeg",
		Workers:    3,
	}
	if diff := cmp.Diff(want, loadEnvConfig()); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvConfig_IgnoresInvalidNumbers(t *testing.T) {
	clearPdfrasterEnv(t)
	t.Setenv("PDFRASTER_TIMEOUT", "soon")
	t.Setenv("PDFRASTER_WORKERS", "-2")

	got := loadEnvConfig()
	if got.Timeout != 0 || got.Workers != 0 {
		t.Errorf("Timeout = %v, Workers = %d, want zero values", got.Timeout, got.Workers)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	env := &envConfig{Timeout: time.Minute, OutputDir: "env-out", Format: "jpeg", Workers: 2}

	t.Run("fills empty fields", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(env, cfg)

		want := &config.Config{
			Engine:  config.EngineConfig{Timeout: "1m0s"},
			Output:  config.OutputConfig{Dir: "env-out", Format: "jpeg"},
			Workers: 2,
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("applyEnvConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("config file wins", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Output: config.OutputConfig{Dir: "file-out", Format: "png"}, Workers: 4}
		applyEnvConfig(env, cfg)

		if cfg.Output.Dir != "file-out" || cfg.Output.Format != "png" || cfg.Workers != 4 {
			t.Errorf("config values overwritten: %+v", cfg)
		}
	})
}

func TestWarnUnknownEnvVars(t *testing.T) {
	clearPdfrasterEnv(t)
	t.Setenv("PDFRASTER_FROMAT", "png")

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf)

	if !strings.Contains(buf.String(), "PDFRASTER_FROMAT") {
		t.Errorf("output = %q, want typo warning", buf.String())
	}
	if strings.Contains(buf.String(), "PDFRASTER_CONFIG") {
		t.Errorf("output = %q, known variable reported", buf.String())
	}
}
