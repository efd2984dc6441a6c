// Package smoothing implements single exponential smoothing.
package smoothing

import (
	"errors"
	"fmt"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

// Model is a single exponential smoothing model with weight Alpha in (0, 1].
//
// The fitted forecast for the first period is the first observation, and
// every later one follows
//
//	f_t = alpha*y_{t-1} + (1-alpha)*f_{t-1}
type Model struct {
	Alpha float64

	fitted     bool
	data       *timeseries.Series
	fittedVals []float64
	level      float64
	sse        float64
}

// New creates a smoothing model.
func New(alpha float64) *Model {
	return &Model{Alpha: alpha}
}

// Kind implements forecast.Method.
func (m *Model) Kind() forecast.MethodKind {
	return forecast.ExponentialSmoothing
}

// MinHistory implements forecast.Method.
func (m *Model) MinHistory() int {
	return 1
}

// Fit runs the recurrence over the series.
func (m *Model) Fit(series *timeseries.Series) error {
	if !(m.Alpha > 0 && m.Alpha <= 1) {
		return fmt.Errorf("%w: alpha must be in (0, 1], got %g", forecast.ErrInvalidConfig, m.Alpha)
	}
	if series == nil || series.Len() < 1 {
		return forecast.NewInsufficientData(forecast.ExponentialSmoothing, 1, 0)
	}

	y := series.Values
	n := len(y)

	m.fittedVals = make([]float64, n)
	m.fittedVals[0] = y[0]
	m.sse = 0
	for t := 1; t < n; t++ {
		m.fittedVals[t] = m.Alpha*y[t-1] + (1-m.Alpha)*m.fittedVals[t-1]
		e := y[t] - m.fittedVals[t]
		m.sse += e * e
	}

	// One-step-ahead forecast past the last observation
	m.level = m.Alpha*y[n-1] + (1-m.Alpha)*m.fittedVals[n-1]
	m.data = series
	m.fitted = true
	return nil
}

// Predict returns forecasts for the given number of steps. Later steps feed
// each forecast back as the next observation, which leaves the level flat.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if err := forecast.CheckHorizon(steps); err != nil {
		return nil, err
	}

	out := make([]float64, steps)
	f := m.level
	for h := 0; h < steps; h++ {
		out[h] = f
		f = m.Alpha*f + (1-m.Alpha)*f
	}
	return out, nil
}

// FittedValues returns the in-sample one-step forecasts.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

// Forecast implements forecast.Method.
func (m *Model) Forecast(series *timeseries.Series, horizon int) (*forecast.Result, error) {
	if err := forecast.CheckHorizon(horizon); err != nil {
		return nil, err
	}
	// Work on a copy so concurrent Forecast calls never share fit state
	fit := New(m.Alpha)
	if err := fit.Fit(series); err != nil {
		return nil, err
	}
	points, err := fit.Predict(horizon)
	if err != nil {
		return nil, err
	}

	last := series.LastPeriod()
	steps := make([]forecast.Step, horizon)
	for i, p := range points {
		steps[i] = forecast.Step{Period: last + i + 1, Horizon: i + 1, Point: p}
	}

	result := forecast.NewResult(forecast.ExponentialSmoothing, steps)
	result.Diagnostics = &forecast.Diagnostics{
		Observations: series.Len(),
		SSE:          fit.sse,
	}
	return result, nil
}
