// Package selector picks the forecasting method for a series and builds it.
//
// Methods are tried in a fixed order, richest first:
//
//	interval_aware -> holt_winters -> exponential_smoothing -> correction_factor
//
// A request for "auto" starts at the top; a request for a concrete method
// starts at that method. The first method whose minimum history the series
// meets is used. Only an empty series has nowhere left to fall.
package selector

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sartorproj/demandcast/correction"
	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/holtwinters"
	"github.com/sartorproj/demandcast/interval"
	"github.com/sartorproj/demandcast/smoothing"
	"github.com/sartorproj/demandcast/timeseries"
)

// Registry builds the method for a kind from the shared config plus the
// per-call correction-factor inputs.
type Registry struct {
	Config           *forecast.Config
	PreviousEstimate *float64
	Realized         *float64
}

// NewRegistry creates a registry. A nil config uses the defaults.
func NewRegistry(cfg *forecast.Config, previousEstimate, realized *float64) *Registry {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	return &Registry{Config: cfg, PreviousEstimate: previousEstimate, Realized: realized}
}

// Method returns the implementation of kind.
func (r *Registry) Method(kind forecast.MethodKind) (forecast.Method, error) {
	switch kind {
	case forecast.CorrectionFactor:
		return correction.New(r.PreviousEstimate, r.Realized), nil
	case forecast.ExponentialSmoothing:
		return smoothing.New(r.Config.Alpha), nil
	case forecast.HoltWinters:
		return holtwinters.FromConfig(r.Config), nil
	case forecast.IntervalAware:
		return interval.New(r.Config), nil
	default:
		return nil, fmt.Errorf("%w: %q", forecast.ErrUnknownMethod, kind)
	}
}

// Selector chooses the effective method for a request.
type Selector struct {
	logger zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger that records each selection.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// New creates a selector. Without options it logs nothing.
func New(opts ...Option) *Selector {
	s := &Selector{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the first method, from requested onward in the fallback
// order, whose minimum history the series meets.
func (s *Selector) Select(series *timeseries.Series, requested forecast.MethodKind, cfg *forecast.Config) (forecast.MethodKind, error) {
	return s.selectFrom(series, requested, NewRegistry(cfg, nil, nil))
}

// Resolve selects the method and builds it from the registry.
func (s *Selector) Resolve(series *timeseries.Series, requested forecast.MethodKind, registry *Registry) (forecast.Method, error) {
	kind, err := s.selectFrom(series, requested, registry)
	if err != nil {
		return nil, err
	}
	return registry.Method(kind)
}

func (s *Selector) selectFrom(series *timeseries.Series, requested forecast.MethodKind, registry *Registry) (forecast.MethodKind, error) {
	candidates, err := Candidates(requested)
	if err != nil {
		return "", err
	}

	n := 0
	if series != nil {
		n = series.Len()
	}
	if n < 1 {
		return "", forecast.NewInsufficientData(requested, 1, n)
	}

	for i, kind := range candidates {
		method, err := registry.Method(kind)
		if err != nil {
			return "", err
		}
		if n < method.MinHistory() {
			s.logger.Debug().
				Str("method", string(kind)).
				Int("required", method.MinHistory()).
				Int("observations", n).
				Msg("history too short")
			continue
		}

		event := s.logger.Debug()
		if i > 0 {
			event = s.logger.Info()
		}
		event.
			Str("requested", string(requested)).
			Str("method_used", string(kind)).
			Int("observations", n).
			Msg("method selected")
		return kind, nil
	}

	last := candidates[len(candidates)-1]
	method, _ := registry.Method(last)
	return "", forecast.NewInsufficientData(last, method.MinHistory(), n)
}

// Candidates lists the methods tried for a request, in order.
func Candidates(requested forecast.MethodKind) ([]forecast.MethodKind, error) {
	order := forecast.Kinds()
	if requested == forecast.Auto || requested == "" {
		return order, nil
	}
	for i, kind := range order {
		if kind == requested {
			return order[i:], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", forecast.ErrUnknownMethod, requested)
}

// Select is a convenience wrapper around a selector that logs nothing.
func Select(series *timeseries.Series, requested forecast.MethodKind, cfg *forecast.Config) (forecast.MethodKind, error) {
	return New().Select(series, requested, cfg)
}
