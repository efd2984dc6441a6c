// Package holtwinters implements additive Holt-Winters (triple exponential
// smoothing) with a level, a trend and one seasonal index per period of the
// cycle.
package holtwinters

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

// Model represents an additive Holt-Winters model.
type Model struct {
	Alpha  float64 // level weight, (0, 1]
	Beta   float64 // trend weight, (0, 1)
	Gamma  float64 // seasonal weight, (0, 1)
	Period int     // seasonal period m, >= 2

	Level    float64
	Trend    float64
	Seasonal []float64 // indexed by position mod Period
	SSE      float64

	fitted     bool
	n          int
	fittedVals []float64
}

// New creates a Holt-Winters model.
func New(alpha, beta, gamma float64, period int) *Model {
	return &Model{
		Alpha:  alpha,
		Beta:   beta,
		Gamma:  gamma,
		Period: period,
	}
}

// FromConfig creates a model from the shared method config.
func FromConfig(cfg *forecast.Config) *Model {
	return New(cfg.Alpha, cfg.Beta, cfg.Gamma, cfg.SeasonalPeriod)
}

// Kind implements forecast.Method.
func (m *Model) Kind() forecast.MethodKind {
	return forecast.HoltWinters
}

// MinHistory implements forecast.Method. Two full cycles are needed to
// initialise the trend and seasonal indices.
func (m *Model) MinHistory() int {
	return 2 * m.Period
}

func (m *Model) validate() error {
	switch {
	case !(m.Alpha > 0 && m.Alpha <= 1):
		return fmt.Errorf("%w: alpha must be in (0, 1], got %g", forecast.ErrInvalidConfig, m.Alpha)
	case !(m.Beta > 0 && m.Beta < 1):
		return fmt.Errorf("%w: beta must be in (0, 1), got %g", forecast.ErrInvalidConfig, m.Beta)
	case !(m.Gamma > 0 && m.Gamma < 1):
		return fmt.Errorf("%w: gamma must be in (0, 1), got %g", forecast.ErrInvalidConfig, m.Gamma)
	case m.Period < 2:
		return fmt.Errorf("%w: seasonal period must be at least 2, got %d", forecast.ErrInvalidConfig, m.Period)
	}
	return nil
}

// Fit initialises the components from the first two cycles and then runs the
// update equations over every observation.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.validate(); err != nil {
		return err
	}
	got := 0
	if series != nil {
		got = series.Len()
	}
	if got < m.MinHistory() {
		return forecast.NewInsufficientData(forecast.HoltWinters, m.MinHistory(), got)
	}

	y := series.Values
	p := m.Period

	mean1 := mean(y[:p])
	mean2 := mean(y[p : 2*p])

	level := mean1
	trend := (mean2 - mean1) / float64(p)
	seasonal := make([]float64, p)
	for i := 0; i < p; i++ {
		seasonal[i] = ((y[i] - mean1) + (y[p+i] - mean2)) / 2
	}

	m.fittedVals = make([]float64, len(y))
	m.SSE = 0
	for t, v := range y {
		s := t % p
		m.fittedVals[t] = level + trend + seasonal[s]
		e := v - m.fittedVals[t]
		m.SSE += e * e

		prevLevel := level
		level = m.Alpha*(v-seasonal[s]) + (1-m.Alpha)*(level+trend)
		trend = m.Beta*(level-prevLevel) + (1-m.Beta)*trend
		seasonal[s] = m.Gamma*(v-level) + (1-m.Gamma)*seasonal[s]
	}

	m.Level = level
	m.Trend = trend
	m.Seasonal = seasonal
	m.n = len(y)
	m.fitted = true
	return nil
}

// Predict extends the fitted level, trend and season the given number of
// steps past the end of the series.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if err := forecast.CheckHorizon(steps); err != nil {
		return nil, err
	}

	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		out[h-1] = m.Level + float64(h)*m.Trend + m.Seasonal[(m.n-1+h)%m.Period]
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
	fit := New(m.Alpha, m.Beta, m.Gamma, m.Period)
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

	result := forecast.NewResult(forecast.HoltWinters, steps)
	result.Diagnostics = &forecast.Diagnostics{
		Observations: fit.n,
		SSE:          fit.SSE,
		ResidualStd:  math.Sqrt(fit.SSE / float64(fit.n)),
		Seasonal:     true,
	}
	return result, nil
}

func mean(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}
