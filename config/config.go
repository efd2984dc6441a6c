// Package config loads the demandcast configuration from YAML, fills
// defaults, applies DEMANDCAST_* environment overrides and validates the
// result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/demandcast/demand"
	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/logging"
	"github.com/sartorproj/demandcast/timeseries"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEMANDCAST"

// Config is the complete application configuration.
type Config struct {
	Method   forecast.MethodKind `yaml:"method" default:"auto" validate:"oneof=auto correction_factor exponential_smoothing holt_winters interval_aware"`
	Horizon  int                 `yaml:"horizon" default:"1" validate:"gte=1"`
	Forecast forecast.Config     `yaml:"forecast"`
	Input    InputConfig         `yaml:"input"`
	Batch    BatchConfig         `yaml:"batch"`
	Demand   demand.Tiers        `yaml:"demand"`
	Log      logging.Config      `yaml:"log"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// InputConfig describes the long-format history file.
type InputConfig struct {
	IDColumn       string   `yaml:"id_column" default:"product_id" validate:"required"`
	PeriodColumn   string   `yaml:"period_column" default:"period" validate:"required"`
	ValueColumn    string   `yaml:"value_column" default:"value"`
	RankColumn     string   `yaml:"rank_column"`
	EstimateColumn string   `yaml:"estimate_column" default:"previous_estimate"`
	Delimiter      string   `yaml:"delimiter" default:","`
	Allow          []string `yaml:"allow"`
}

// BatchConfig controls the per-product runner.
type BatchConfig struct {
	Workers int `yaml:"workers" default:"4" validate:"gte=1,lte=256"`
	// ClampEstimates floors previous estimates at forecast.epsilon instead
	// of failing the product with a division by zero.
	ClampEstimates bool `yaml:"clamp_estimates"`
}

// MetricsConfig controls the Prometheus recorder.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" default:"demandcast" validate:"required"`
	// Path, when set, receives the registry in text exposition format after
	// a batch run.
	Path string `yaml:"path"`
}

// envOverrides lists the settings that can be overridden from the
// environment. Unset variables leave the pointers nil.
type envOverrides struct {
	Method         *string  `envconfig:"METHOD"`
	Horizon        *int     `envconfig:"HORIZON"`
	Alpha          *float64 `envconfig:"ALPHA"`
	Beta           *float64 `envconfig:"BETA"`
	Gamma          *float64 `envconfig:"GAMMA"`
	SeasonalPeriod *int     `envconfig:"SEASONAL_PERIOD"`
	Seasonality    *string  `envconfig:"SEASONALITY"`
	IntervalPolicy *string  `envconfig:"INTERVAL_POLICY"`
	IntervalK      *float64 `envconfig:"INTERVAL_K"`
	Coverage       *float64 `envconfig:"INTERVAL_COVERAGE"`
	Workers        *int     `envconfig:"WORKERS"`
	LogLevel       *string  `envconfig:"LOG_LEVEL"`
	LogFormat      *string  `envconfig:"LOG_FORMAT"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{Demand: demand.DefaultTiers()}
	defaults.MustSet(c)
	return c
}

// Load reads and parses a YAML configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		c := Default()
		return c, c.Validate()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result. Values
// present in the YAML, zeros included, are kept as written.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if len(bytes.TrimSpace(b)) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with DEMANDCAST_*
// environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv copies any DEMANDCAST_* variables that are set onto c.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}

	if env.Method != nil {
		kind, err := forecast.ParseMethodKind(*env.Method)
		if err != nil {
			return err
		}
		c.Method = kind
	}
	if env.Horizon != nil {
		c.Horizon = *env.Horizon
	}
	if env.Alpha != nil {
		c.Forecast.Alpha = *env.Alpha
	}
	if env.Beta != nil {
		c.Forecast.Beta = *env.Beta
	}
	if env.Gamma != nil {
		c.Forecast.Gamma = *env.Gamma
	}
	if env.SeasonalPeriod != nil {
		c.Forecast.SeasonalPeriod = *env.SeasonalPeriod
	}
	if env.Seasonality != nil {
		c.Forecast.Seasonality = forecast.SeasonalityMode(*env.Seasonality)
	}
	if env.IntervalPolicy != nil {
		c.Forecast.Interval.Policy = forecast.IntervalKind(*env.IntervalPolicy)
	}
	if env.IntervalK != nil {
		c.Forecast.Interval.K = *env.IntervalK
	}
	if env.Coverage != nil {
		c.Forecast.Interval.Coverage = *env.Coverage
	}
	if env.Workers != nil {
		c.Batch.Workers = *env.Workers
	}
	if env.LogLevel != nil {
		c.Log.Level = *env.LogLevel
	}
	if env.LogFormat != nil {
		c.Log.Format = *env.LogFormat
	}
	return nil
}

// Validate checks struct tags and the cross-field rules.
func (c *Config) Validate() error {
	if err := forecast.ValidateStruct(c); err != nil {
		return err
	}
	if c.Demand.MediumAtLeast > c.Demand.HighAtLeast {
		return fmt.Errorf("%w: demand.medium_at_least must not exceed demand.high_at_least", forecast.ErrInvalidConfig)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("%w: input.delimiter must be a single character", forecast.ErrInvalidConfig)
	}
	return nil
}

// CSVOptions converts the input section into loader options.
func (c *Config) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.IDColumn = c.Input.IDColumn
	opts.PeriodColumn = c.Input.PeriodColumn
	opts.ValueColumn = c.Input.ValueColumn
	opts.RankColumn = c.Input.RankColumn
	opts.EstimateColumn = c.Input.EstimateColumn
	opts.Allow = c.Input.Allow
	opts.Tiers = c.Demand
	if r, _ := utf8.DecodeRuneInString(c.Input.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	return opts
}

// ErrNoConfig is returned by Find when no candidate file exists.
var ErrNoConfig = errors.New("no config file found")

// Find returns the first existing file among paths.
func Find(paths ...string) (string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoConfig
}
