// Package engine drives one product's history through validation, method
// selection, forecasting and anomaly classification.
package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sartorproj/demandcast/anomaly"
	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/selector"
	"github.com/sartorproj/demandcast/timeseries"
)

// Request is the input of a single run.
type Request struct {
	// ID names the series in log output only.
	ID           string
	Observations []timeseries.Observation
	Method       forecast.MethodKind
	// Horizon defaults to 1 when zero.
	Horizon int
	// Config defaults to forecast.DefaultConfig when nil.
	Config *forecast.Config

	// PreviousEstimate and Realized feed the correction-factor method.
	PreviousEstimate *float64
	Realized         *float64

	// Next is the realised observation to classify, if already known.
	Next *timeseries.Observation
}

// Engine runs requests. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	logger   zerolog.Logger
	selector *selector.Selector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.selector = selector.New(selector.WithLogger(e.logger))
	return e
}

// Run validates the observations, selects a method, forecasts and, when
// req.Next is set, classifies it against the forecast step for its period.
// Next must lie past the last observation. The verdict is nil when the
// method produced no bounds or no step covers Next's period. Errors are
// returned as produced.
func (e *Engine) Run(ctx context.Context, req Request) (*forecast.Result, *anomaly.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cfg := req.Config
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = 1
	}
	if err := forecast.CheckHorizon(horizon); err != nil {
		return nil, nil, err
	}

	requested := req.Method
	if requested == "" {
		requested = forecast.Auto
	}

	series, err := timeseries.New(req.Observations)
	if err != nil {
		return nil, nil, err
	}
	series.Name = req.ID
	if req.Next != nil && req.Next.Period <= series.LastPeriod() {
		return nil, nil, &forecast.StaleObservationError{Period: req.Next.Period, LastPeriod: series.LastPeriod()}
	}

	registry := selector.NewRegistry(cfg, req.PreviousEstimate, req.Realized)
	method, err := e.selector.Resolve(series, requested, registry)
	if err != nil {
		return nil, nil, err
	}

	result, err := method.Forecast(series, horizon)
	if err != nil {
		return nil, nil, err
	}
	result.Requested = requested

	logger := e.logger.With().Str("id", req.ID).Logger()
	logger.Debug().
		Str("method_used", string(result.MethodUsed)).
		Int("horizon", horizon).
		Float64("point_forecast", result.PointForecast).
		Msg("forecast computed")

	if req.Next == nil {
		return result, nil, nil
	}

	step, ok := result.StepFor(req.Next.Period)
	if !ok {
		logger.Debug().
			Int("period", req.Next.Period).
			Int("last_forecast_period", result.Period).
			Msg("observation outside forecast horizon, not classified")
		return result, nil, nil
	}
	verdict := anomaly.ClassifyStep(step, *req.Next, cfg.Epsilon)
	if verdict != nil && verdict.IsAnomaly {
		logger.Warn().
			Int("period", verdict.Period).
			Float64("observed", verdict.Observed).
			Float64("lower", verdict.Bounds.Lower).
			Float64("upper", verdict.Bounds.Upper).
			Float64("deviation_ratio", verdict.DeviationRatio).
			Msg("anomaly detected")
	}
	return result, verdict, nil
}

// Run executes req on an engine that logs nothing.
func Run(ctx context.Context, req Request) (*forecast.Result, *anomaly.Verdict, error) {
	return New().Run(ctx, req)
}
