package forecast

import (
	"fmt"
	"strings"

	"github.com/sartorproj/demandcast/timeseries"
)

// MethodKind identifies a forecasting method.
type MethodKind string

const (
	// Auto lets the selector start from the richest method.
	Auto                 MethodKind = "auto"
	CorrectionFactor     MethodKind = "correction_factor"
	ExponentialSmoothing MethodKind = "exponential_smoothing"
	HoltWinters          MethodKind = "holt_winters"
	IntervalAware        MethodKind = "interval_aware"
)

var kindAliases = map[string]MethodKind{
	"auto":                  Auto,
	"correction_factor":     CorrectionFactor,
	"correction":            CorrectionFactor,
	"cf":                    CorrectionFactor,
	"exponential_smoothing": ExponentialSmoothing,
	"smoothing":             ExponentialSmoothing,
	"ses":                   ExponentialSmoothing,
	"holt_winters":          HoltWinters,
	"holtwinters":           HoltWinters,
	"hw":                    HoltWinters,
	"interval_aware":        IntervalAware,
	"interval":              IntervalAware,
	"prophet":               IntervalAware,
}

// ParseMethodKind resolves a method name or alias, case-insensitively.
func ParseMethodKind(s string) (MethodKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if key == "" {
		return Auto, nil
	}
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// UnmarshalText implements encoding.TextUnmarshaler for config files and flags.
func (k *MethodKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMethodKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Kinds lists the concrete methods, richest first.
func Kinds() []MethodKind {
	return []MethodKind{IntervalAware, HoltWinters, ExponentialSmoothing, CorrectionFactor}
}

// Method is implemented by every forecasting method.
type Method interface {
	// Kind identifies the method.
	Kind() MethodKind
	// MinHistory is the fewest observations Forecast accepts.
	MinHistory() int
	// Forecast projects the series horizon steps past its last period.
	Forecast(series *timeseries.Series, horizon int) (*Result, error)
}

// Bounds is a prediction interval. Lower <= point <= Upper always holds for
// the step that carries it.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval, edges included.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Step is the forecast for one period past the end of the series.
type Step struct {
	Period  int     `json:"period"`
	Horizon int     `json:"horizon"`
	Point   float64 `json:"point"`
	Bounds  *Bounds `json:"bounds,omitempty"`
}

// Diagnostics describes the in-sample fit behind a result.
type Diagnostics struct {
	Observations   int      `json:"observations"`
	SSE            float64  `json:"sse"`
	ResidualStd    float64  `json:"residual_std"`
	LjungBoxPValue *float64 `json:"ljung_box_p_value,omitempty"`
	Seasonal       bool     `json:"seasonal"`
}

// Result is the outcome of one method on one series. PointForecast and
// Bounds describe the final step, Horizon periods after the last
// observation.
type Result struct {
	PointForecast float64      `json:"point_forecast"`
	Bounds        *Bounds      `json:"bounds,omitempty"`
	MethodUsed    MethodKind   `json:"method_used"`
	Requested     MethodKind   `json:"requested,omitempty"`
	Period        int          `json:"period"`
	Horizon       int          `json:"horizon"`
	Steps         []Step       `json:"steps"`
	Diagnostics   *Diagnostics `json:"diagnostics,omitempty"`
}

// NewResult builds a result whose headline fields mirror the last step.
func NewResult(kind MethodKind, steps []Step) *Result {
	r := &Result{
		MethodUsed: kind,
		Horizon:    len(steps),
		Steps:      steps,
	}
	if len(steps) > 0 {
		last := steps[len(steps)-1]
		r.PointForecast = last.Point
		r.Period = last.Period
		if last.Bounds != nil {
			b := *last.Bounds
			r.Bounds = &b
		}
	}
	return r
}

// HasBounds reports whether the method produced a prediction interval.
func (r *Result) HasBounds() bool {
	return r != nil && r.Bounds != nil
}

// StepFor returns the step forecasting the given period.
func (r *Result) StepFor(period int) (Step, bool) {
	for _, s := range r.Steps {
		if s.Period == period {
			return s, true
		}
	}
	return Step{}, false
}

// CheckHorizon validates a horizon argument.
func CheckHorizon(horizon int) error {
	if horizon < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizon)
	}
	return nil
}
