package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "GGRECIPE"

// Config is the ggrecipe configuration.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Run     RunConfig     `koanf:"run"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `koanf:"level"`
	// Format is the log output format (json, text).
	Format string `koanf:"format"`
	// AddSource includes source file and line in log entries.
	AddSource bool `koanf:"add_source"`
}

// RunConfig holds recipe execution settings.
type RunConfig struct {
	// Workers bounds concurrent image runs; 0 means one per CPU.
	Workers int `koanf:"workers"`
	// OutputDir receives artifacts.
	OutputDir string `koanf:"output_dir"`
	// FrameQuality is the JPEG quality of aggregation frames.
	FrameQuality int `koanf:"frame_quality"`
	// PreviewQuality is the JPEG quality of previews.
	PreviewQuality int `koanf:"preview_quality"`
	// Assemble builds contact sheets and animations after a batch.
	Assemble bool `koanf:"assemble"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// File, when set, receives the metrics in text exposition format
	// when the command finishes.
	File string `koanf:"file"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Run: RunConfig{
			OutputDir:      "out",
			FrameQuality:   90,
			PreviewQuality: 95,
			Assemble:       true,
		},
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}
	if !slices.Contains([]string{"json", "text"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format: must be json or text; got %q", c.Logging.Format))
	}
	if c.Run.Workers < 0 {
		errs = append(errs, fmt.Errorf("run.workers: must not be negative; got %d", c.Run.Workers))
	}
	for name, q := range map[string]int{"run.frame_quality": c.Run.FrameQuality, "run.preview_quality": c.Run.PreviewQuality} {
		if q < 1 || q > 100 {
			errs = append(errs, fmt.Errorf("%s: must be within 1..100; got %d", name, q))
		}
	}
	return errors.Join(errs...)
}

// FlagMappings maps command line flag names to configuration keys.
var FlagMappings = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-file": "metrics.file",
	"workers":      "run.workers",
	"output":       "run.output_dir",
}

// Load builds the configuration from defaults, the optional file at
// path, GGRECIPE__* environment variables and explicitly set flags.
func Load(path string, flags *pflag.FlagSet) (Config, *Loader, error) {
	l := NewLoader(EnvPrefix)
	if err := l.LoadWithDefaults(Defaults(), path); err != nil {
		return Config{}, nil, err
	}
	if flags != nil {
		if err := l.LoadFlags(flags, FlagMappings); err != nil {
			return Config{}, nil, err
		}
	}
	var cfg Config
	if err := l.UnmarshalAndValidate("", &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, l, nil
}
