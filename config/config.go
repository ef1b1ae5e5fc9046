// Package config - configuration for the pixel-map filter command.
package config

import (
	"os"

	"github.com/nvr-ai/go-ppm/random"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LogFormat selects the log output encoding.
type LogFormat string

const (
	// LogFormatText writes human-readable lines.
	LogFormatText LogFormat = "text"
	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON LogFormat = "json"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the settings of a filter run.
type Config struct {
	// Log configures the logger.
	Log LogConfig `json:"log" yaml:"log"`
	// Pointillism configures the random stream used by pointillism.
	Pointillism PointillismConfig `json:"pointillism" yaml:"pointillism"`
	// Blur configures Gaussian blur execution.
	Blur BlurConfig `json:"blur" yaml:"blur"`
	// Resize configures the resample operation.
	Resize ResizeConfig `json:"resize" yaml:"resize"`
	// Profile logs per-operation timings when true.
	Profile bool `json:"profile" yaml:"profile"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is a logrus level name such as "info" or "debug".
	Level string `json:"level" yaml:"level"`
	// Format is "text" or "json".
	Format LogFormat `json:"format" yaml:"format"`
}

// PointillismConfig configures the pointillism random stream.
type PointillismConfig struct {
	// Seed seeds the stream.
	Seed uint32 `json:"seed" yaml:"seed"`
	// Source is "glibc" (matches glibc rand()) or "go" (math/rand).
	Source random.Kind `json:"source" yaml:"source"`
}

// BlurConfig configures Gaussian blur execution.
type BlurConfig struct {
	// Parallel splits rows across goroutines.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// ResizeConfig configures the resize operation.
type ResizeConfig struct {
	// Filter is one of nearest, bilinear, bicubic, lanczos, mitchell.
	Filter string `json:"filter" yaml:"filter"`
}

// DefaultConfig returns the settings used when no file is given.
// The seed of 1 reproduces the reference pointillism output.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
		Pointillism: PointillismConfig{
			Seed:   1,
			Source: random.KindGlibc,
		},
		Resize: ResizeConfig{
			Filter: "lanczos",
		},
	}
}

// Load reads a YAML file over DefaultConfig. Missing keys keep their defaults.
//
// Arguments:
// - path: Path to the YAML file.
//
// Returns:
// - The merged, validated configuration.
// - error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.Wrapf(ErrInvalidConfig, "log.format %q", c.Log.Format)
	}

	switch c.Pointillism.Source {
	case random.KindGlibc, random.KindGo:
	default:
		return errors.Wrapf(ErrInvalidConfig, "pointillism.source %q", c.Pointillism.Source)
	}

	switch c.Resize.Filter {
	case "nearest", "bilinear", "bicubic", "lanczos", "mitchell":
	default:
		return errors.Wrapf(ErrInvalidConfig, "resize.filter %q", c.Resize.Filter)
	}

	return nil
}
