package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	pdfraster "github.com/alnah/go-pdfraster"
	"github.com/alnah/go-pdfraster/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // PDFRASTER_CONFIG: config file name or path
	Timeout    time.Duration // PDFRASTER_TIMEOUT: per-document timeout
	OutputDir  string        // PDFRASTER_OUTPUT_DIR: image output directory
	Format     string        // PDFRASTER_FORMAT: png or jpeg
	Workers    int           // PDFRASTER_WORKERS: parallel workers
}

// knownEnvVars lists valid PDFRASTER_* environment variables.
var knownEnvVars = map[string]bool{
	"PDFRASTER_CONFIG":     true,
	"PDFRASTER_TIMEOUT":    true,
	"PDFRASTER_OUTPUT_DIR": true,
	"PDFRASTER_FORMAT":     true,
	"PDFRASTER_WORKERS":    true,
	pdfraster.EnvPDFJSDir:  true, // read by the library
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("PDFRASTER_CONFIG"),
		OutputDir:  os.Getenv("PDFRASTER_OUTPUT_DIR"),
		Format:     os.Getenv("PDFRASTER_FORMAT"),
	}

	if timeout := os.Getenv("PDFRASTER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PDFRASTER_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports unrecognized PDFRASTER_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PDFRASTER_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values that are still empty.
// Precedence: CLI flags > env vars > config file > defaults
// (flags are applied afterwards by mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 && cfg.Engine.Timeout == "" {
		cfg.Engine.Timeout = env.Timeout.String()
	}
	if env.OutputDir != "" && cfg.Output.Dir == "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Format != "" && cfg.Output.Format == "" {
		cfg.Output.Format = env.Format
	}
	if env.Workers > 0 && cfg.Workers == 0 {
		cfg.Workers = env.Workers
	}
}
