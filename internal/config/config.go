// Package config handles plytool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/plygeom/internal/logger"
)

// Output formats accepted by OutputConfig.Format.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config holds all plytool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig holds decoder settings.
type DecodeConfig struct {
	DeduplicateValues   bool `yaml:"deduplicate_values"`
	DeduplicatePointIDs bool `yaml:"deduplicate_point_ids"`
	PointCloud          bool `yaml:"point_cloud"` // Ignore faces and decode a point cloud
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text or yaml
	Bounds bool   `yaml:"bounds"` // Include position bounds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			DeduplicateValues:   true,
			DeduplicatePointIDs: true,
		},
		Output: OutputConfig{
			Format: FormatText,
			Bounds: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatText, FormatYAML, c.Output.Format)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
