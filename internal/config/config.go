// Package config loads and validates pdfraster YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pdfraster/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxLocatorNameLength = 50
	MaxURILength         = 2048 // Browser limit
	MaxPathLength        = 4096 // PATH_MAX on Linux
	MaxLocators          = 16
	MaxWorkers           = 64
)

// Config holds all configuration for the pdfraster CLI.
type Config struct {
	Engine  EngineConfig `yaml:"engine"`
	Output  OutputConfig `yaml:"output"`
	Workers int          `yaml:"workers"` // 0 = auto
}

// EngineConfig defines where the rendering engine is loaded from and how
// long each stage may take.
type EngineConfig struct {
	Locators      []LocatorConfig `yaml:"locators"`      // empty = built-in list
	Timeout       string          `yaml:"timeout"`       // per document, e.g. "2m"
	ProbeTimeout  string          `yaml:"probeTimeout"`  // per locator, e.g. "5s"
	VerifyTimeout string          `yaml:"verifyTimeout"` // per locator, e.g. "10s"
}

// LocatorConfig is one candidate pdf.js build directory.
type LocatorConfig struct {
	Name  string `yaml:"name"`
	URI   string `yaml:"uri"`   // http(s) URL, or absolute path when local
	Local bool   `yaml:"local"` // bundled with the host
}

// OutputConfig defines image output options.
type OutputConfig struct {
	Dir             string  `yaml:"dir"`       // empty = next to the source
	Format          string  `yaml:"format"`    // "png" or "jpeg"
	Quality         float64 `yaml:"quality"`   // 0.1-1.0, JPEG only
	Scale           float64 `yaml:"scale"`     // >= 1.0
	MaxWidth        int     `yaml:"maxWidth"`  // pixels
	MaxHeight       int     `yaml:"maxHeight"` // pixels
	EnhanceContrast bool    `yaml:"enhanceContrast"`
	Binarize        bool    `yaml:"binarize"`
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if len(c.Engine.Locators) > MaxLocators {
		return fmt.Errorf("%w: engine.locators: %d entries (max %d)", ErrInvalidValue, len(c.Engine.Locators), MaxLocators)
	}
	for i, loc := range c.Engine.Locators {
		if err := loc.validate(fmt.Sprintf("engine.locators[%d]", i)); err != nil {
			return err
		}
	}

	for _, d := range []struct {
		field, value string
	}{
		{"engine.timeout", c.Engine.Timeout},
		{"engine.probeTimeout", c.Engine.ProbeTimeout},
		{"engine.verifyTimeout", c.Engine.VerifyTimeout},
	} {
		if _, err := parseDuration(d.field, d.value); err != nil {
			return err
		}
	}

	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("%w: output.format: %q (must be png or jpeg)", ErrInvalidValue, c.Output.Format)
	}
	if c.Output.Quality != 0 && (c.Output.Quality < 0.1 || c.Output.Quality > 1) {
		return fmt.Errorf("%w: output.quality: must be between 0.1 and 1, got %.2f", ErrInvalidValue, c.Output.Quality)
	}
	if c.Output.Scale != 0 && c.Output.Scale < 1 {
		return fmt.Errorf("%w: output.scale: must be at least 1, got %.2f", ErrInvalidValue, c.Output.Scale)
	}
	if c.Output.MaxWidth < 0 || c.Output.MaxHeight < 0 {
		return fmt.Errorf("%w: output.maxWidth/maxHeight: must not be negative", ErrInvalidValue)
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	return nil
}

func (l LocatorConfig) validate(field string) error {
	if err := validateFieldLength(field+".name", l.Name, MaxLocatorNameLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".uri", l.URI, MaxURILength); err != nil {
		return err
	}
	if strings.TrimSpace(l.URI) == "" {
		return fmt.Errorf("%w: %s.uri: required", ErrInvalidValue, field)
	}
	if !l.Local && !fileutil.IsURL(l.URI) {
		return fmt.Errorf("%w: %s.uri: remote locator must be an http(s) URL, got %q", ErrInvalidValue, field, l.URI)
	}
	return nil
}

// TimeoutDuration returns engine.timeout, or 0 when unset.
func (e EngineConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration("engine.timeout", e.Timeout)
	return d
}

// ProbeTimeoutDuration returns engine.probeTimeout, or 0 when unset.
func (e EngineConfig) ProbeTimeoutDuration() time.Duration {
	d, _ := parseDuration("engine.probeTimeout", e.ProbeTimeout)
	return d
}

// VerifyTimeoutDuration returns engine.verifyTimeout, or 0 when unset.
func (e EngineConfig) VerifyTimeoutDuration() time.Duration {
	d, _ := parseDuration("engine.verifyTimeout", e.VerifyTimeout)
	return d
}

// parseDuration parses an optional positive duration.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that defers every setting to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-pdfraster/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-pdfraster", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
