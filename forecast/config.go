package forecast

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/sartorproj/demandcast/stats"
)

// IntervalKind selects how the interval method turns residuals into bounds.
type IntervalKind string

const (
	// StdMultipleInterval uses point ± k·σ.
	StdMultipleInterval IntervalKind = "std_multiple"
	// EmpiricalQuantileInterval uses the residual quantiles around the point.
	EmpiricalQuantileInterval IntervalKind = "empirical_quantile"
)

// SeasonalityMode controls whether the interval method fits a seasonal profile.
type SeasonalityMode string

const (
	SeasonalityAuto SeasonalityMode = "auto"
	SeasonalityOn   SeasonalityMode = "on"
	SeasonalityOff  SeasonalityMode = "off"
)

// IntervalPolicy is the interval-width policy of the interval method.
type IntervalPolicy struct {
	Policy IntervalKind `yaml:"policy" json:"policy" default:"std_multiple" validate:"oneof=std_multiple empirical_quantile"`
	// K is the σ multiple for std_multiple. Zero derives it from Coverage.
	K        float64 `yaml:"k" json:"k" validate:"gte=0"`
	Coverage float64 `yaml:"coverage" json:"coverage" default:"0.95" validate:"gt=0,lt=1"`
}

// StdMultiple returns a policy of point ± k·σ.
func StdMultiple(k float64) IntervalPolicy {
	return IntervalPolicy{Policy: StdMultipleInterval, K: k, Coverage: 0.95}
}

// EmpiricalQuantile returns a policy covering the central p of the residuals.
func EmpiricalQuantile(p float64) IntervalPolicy {
	return IntervalPolicy{Policy: EmpiricalQuantileInterval, Coverage: p}
}

// Multiplier returns K, or the two-sided normal quantile of Coverage when K
// is zero.
func (p IntervalPolicy) Multiplier() float64 {
	if p.K > 0 {
		return p.K
	}
	return stats.NormalQuantile((1 + p.Coverage) / 2)
}

func (p IntervalPolicy) String() string {
	if p.Policy == EmpiricalQuantileInterval {
		return fmt.Sprintf("empirical_quantile(%g)", p.Coverage)
	}
	return fmt.Sprintf("std_multiple(%g)", p.Multiplier())
}

// Config carries every tunable of the forecasting methods.
type Config struct {
	// Alpha is the level weight of exponential smoothing and Holt-Winters.
	Alpha float64 `yaml:"alpha" json:"alpha" default:"0.5" validate:"gt=0,lte=1"`
	// Beta is the Holt-Winters trend weight.
	Beta float64 `yaml:"beta" json:"beta" default:"0.1" validate:"gt=0,lt=1"`
	// Gamma is the Holt-Winters seasonal weight.
	Gamma float64 `yaml:"gamma" json:"gamma" default:"0.1" validate:"gt=0,lt=1"`
	// SeasonalPeriod is the number of periods in one cycle.
	SeasonalPeriod int `yaml:"seasonal_period" json:"seasonal_period" default:"12" validate:"gte=2"`
	// Epsilon floors denominators in deviation ratios.
	Epsilon float64 `yaml:"epsilon" json:"epsilon" default:"1e-9" validate:"gt=0"`

	IntervalMinHistory   int             `yaml:"interval_min_history" json:"interval_min_history" default:"8" validate:"gte=3"`
	Seasonality          SeasonalityMode `yaml:"seasonality" json:"seasonality" default:"auto" validate:"oneof=auto on off"`
	SeasonalityThreshold float64         `yaml:"seasonality_threshold" json:"seasonality_threshold" default:"0.3" validate:"gte=0,lte=1"`
	Interval             IntervalPolicy  `yaml:"interval" json:"interval"`
}

// DefaultConfig returns the default method configuration.
func DefaultConfig() *Config {
	c := &Config{}
	defaults.MustSet(c)
	return c
}

// SetDefaults fills zero-valued fields from their defaults.
func (c *Config) SetDefaults() error {
	return defaults.Set(c)
}

// HoltWintersMinHistory is two full seasonal cycles.
func (c *Config) HoltWintersMinHistory() int {
	return 2 * c.SeasonalPeriod
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its bounds.
func (c *Config) Validate() error {
	return ValidateStruct(c)
}

// ValidateStruct validates any struct carrying validate tags and reports the
// failures as a single ErrInvalidConfig.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
