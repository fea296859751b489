// Package config provides configuration management for prep cleaning and modelling defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/paveg/prep/internal/clean"
	"github.com/paveg/prep/internal/validation"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "PREP_"

// Config represents the configuration for cleaning and the demonstration model
type Config struct {
	// Cleaning defaults
	TargetColumn         string  `json:"target_column" yaml:"target_column" env:"TARGET_COLUMN"`                      // Column skipped by imputation
	ImputeStrategy       string  `json:"impute_strategy" yaml:"impute_strategy" env:"IMPUTE_STRATEGY"`                // mean, median or mode
	NormalizeMethod      string  `json:"normalize_method" yaml:"normalize_method" env:"NORMALIZE_METHOD"`             // minmax or standard
	CorrelationThreshold float64 `json:"correlation_threshold" yaml:"correlation_threshold" env:"CORRELATION_THRESHOLD"` // Redundant-feature cutoff in [0,1]

	// Demonstration model
	TestSize        float64 `json:"test_size" yaml:"test_size" env:"TEST_SIZE"`                      // Fraction of rows held out
	RandomSeed      uint64  `json:"random_seed" yaml:"random_seed" env:"RANDOM_SEED"`                // Seed for the stratified split
	MaxIterations   int     `json:"max_iterations" yaml:"max_iterations" env:"MAX_ITERATIONS"`       // Solver iteration bound
	RegularizationC float64 `json:"regularization_c" yaml:"regularization_c" env:"REGULARIZATION_C"` // Inverse L2 strength
	Tolerance       float64 `json:"tolerance" yaml:"tolerance" env:"TOLERANCE"`                      // Solver stopping tolerance

	// Logging and metrics
	LogLevel          string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`                            // debug, info, warn, error
	LogFormat         string `json:"log_format" yaml:"log_format" env:"LOG_FORMAT"`                         // text or json
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection" env:"METRICS_COLLECTION"` // Record per-operation metrics
}

// Default configuration values
const (
	DefaultTargetColumn         = "target"
	DefaultCorrelationThreshold = 0.9
	DefaultTestSize             = 0.2
	DefaultRandomSeed           = 42
	DefaultMaxIterations        = 100
	DefaultRegularizationC      = 1.0
	DefaultTolerance            = 1e-4
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		TargetColumn:         DefaultTargetColumn,
		ImputeStrategy:       string(clean.ImputeMean),
		NormalizeMethod:      string(clean.NormalizeMinMax),
		CorrelationThreshold: DefaultCorrelationThreshold,

		TestSize:        DefaultTestSize,
		RandomSeed:      DefaultRandomSeed,
		MaxIterations:   DefaultMaxIterations,
		RegularizationC: DefaultRegularizationC,
		Tolerance:       DefaultTolerance,

		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.TargetColumn == "" {
		return fmt.Errorf("TargetColumn must not be empty")
	}
	if _, err := clean.ParseImputeStrategy(c.ImputeStrategy); err != nil {
		return fmt.Errorf("ImputeStrategy: %w", err)
	}
	if _, err := clean.ParseNormalizeMethod(c.NormalizeMethod); err != nil {
		return fmt.Errorf("NormalizeMethod: %w", err)
	}
	if c.TestSize <= 0.0 || c.TestSize >= 1.0 {
		return fmt.Errorf("TestSize must be between 0 and 1 (exclusive), got %f", c.TestSize)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("MaxIterations must be positive, got %d", c.MaxIterations)
	}
	if c.RegularizationC <= 0.0 {
		return fmt.Errorf("RegularizationC must be positive, got %f", c.RegularizationC)
	}
	if c.Tolerance <= 0.0 {
		return fmt.Errorf("Tolerance must be positive, got %g", c.Tolerance)
	}

	return validation.NewCompoundValidator(
		validation.NewRangeValidator("config", "CorrelationThreshold", c.CorrelationThreshold, 0, 1),
		validation.NewOptionValidator("config", "log_level", strings.ToLower(c.LogLevel), "debug", "info", "warn", "error"),
		validation.NewOptionValidator("config", "log_format", strings.ToLower(c.LogFormat), "text", "json"),
	).Validate()
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.TargetColumn == "" {
		c.TargetColumn = defaults.TargetColumn
	}
	if c.ImputeStrategy == "" {
		c.ImputeStrategy = defaults.ImputeStrategy
	}
	if c.NormalizeMethod == "" {
		c.NormalizeMethod = defaults.NormalizeMethod
	}
	// A zero threshold is meaningful (drop any correlated column), so only
	// negative values are treated as unset.
	if c.CorrelationThreshold < 0 {
		c.CorrelationThreshold = defaults.CorrelationThreshold
	}
	if c.TestSize == 0.0 {
		c.TestSize = defaults.TestSize
	}
	if c.RandomSeed == 0 {
		c.RandomSeed = defaults.RandomSeed
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaults.MaxIterations
	}
	if c.RegularizationC == 0.0 {
		c.RegularizationC = defaults.RegularizationC
	}
	if c.Tolerance == 0.0 {
		c.Tolerance = defaults.Tolerance
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}

	// Note: MetricsCollection is intentionally left as set; false and unset
	// are indistinguishable.
	return c
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	config := Config{CorrelationThreshold: -1}
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	config := Config{CorrelationThreshold: -1}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	var load func([]byte) (Config, error)
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		load = LoadFromJSON
	case ".yaml", ".yml":
		load = LoadFromYAML
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}
	config, err := load(data)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}
	return config, nil
}

// LoadFromEnv loads configuration from PREP_* environment variables on top
// of the defaults. Unset variables keep their default.
func LoadFromEnv() (Config, error) {
	return ApplyEnv(NewConfig())
}

// ApplyEnv overrides fields of base with any PREP_* variables that are set.
func ApplyEnv(base Config) (Config, error) {
	if err := env.ParseWithOptions(&base, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parsing environment configuration: %w", err)
	}
	return base, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment before
// LoadFromEnv reads it. With no paths it loads ./.env. Variables already set
// in the environment win.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}
