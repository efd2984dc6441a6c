// Package interval implements the interval-aware forecast: a linear trend on
// the period index, an optional additive seasonal profile, and prediction
// intervals derived from the in-sample residuals.
package interval

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/stats"
	"github.com/sartorproj/demandcast/timeseries"
)

// Model is the interval-aware method. It reads the seasonal period, the
// seasonality mode and the interval policy from Config.
type Model struct {
	Config *forecast.Config

	Line      stats.LinearFit
	Profile   []float64 // nil when no seasonality was fitted
	Residuals []float64
	Sigma     float64

	fitted     bool
	lastPeriod int
}

// New creates an interval-aware model. A nil config uses the defaults.
func New(cfg *forecast.Config) *Model {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	return &Model{Config: cfg}
}

// Kind implements forecast.Method.
func (m *Model) Kind() forecast.MethodKind {
	return forecast.IntervalAware
}

// MinHistory implements forecast.Method.
func (m *Model) MinHistory() int {
	return m.Config.IntervalMinHistory
}

// Seasonal reports whether the fit carries a seasonal profile.
func (m *Model) Seasonal() bool {
	return m.Profile != nil
}

func (m *Model) validate() error {
	if m.Config.IntervalMinHistory < 3 {
		return fmt.Errorf("%w: interval_min_history must be at least 3, got %d",
			forecast.ErrInvalidConfig, m.Config.IntervalMinHistory)
	}
	if m.Config.SeasonalPeriod < 2 {
		return fmt.Errorf("%w: seasonal period must be at least 2, got %d",
			forecast.ErrInvalidConfig, m.Config.SeasonalPeriod)
	}
	return forecast.ValidateStruct(m.Config.Interval)
}

// useSeasonality decides whether to fit the seasonal profile. It needs two
// full cycles whatever the mode.
func (m *Model) useSeasonality(values []float64) bool {
	period := m.Config.SeasonalPeriod
	if len(values) < 2*period {
		return false
	}
	switch m.Config.Seasonality {
	case forecast.SeasonalityOn:
		return true
	case forecast.SeasonalityOff:
		return false
	default:
		return stats.SeasonalStrength(values, period) >= m.Config.SeasonalityThreshold
	}
}

// Fit estimates the trend line, the seasonal profile and the residuals.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.validate(); err != nil {
		return err
	}
	got := 0
	if series != nil {
		got = series.Len()
	}
	if got < m.MinHistory() {
		return forecast.NewInsufficientData(forecast.IntervalAware, m.MinHistory(), got)
	}

	n := series.Len()
	x := make([]float64, n)
	for i, p := range series.Periods {
		x[i] = float64(p)
	}
	y := series.Values

	m.Line = stats.FitLine(x, y)
	m.Profile = nil

	params := 2
	if m.useSeasonality(y) {
		detrended := make([]float64, n)
		for i := range y {
			detrended[i] = y[i] - m.Line.At(x[i])
		}
		m.Profile = stats.SeasonalProfile(detrended, series.Periods, m.Config.SeasonalPeriod)
		params += m.Config.SeasonalPeriod - 1
	}

	m.Residuals = make([]float64, n)
	for i, p := range series.Periods {
		m.Residuals[i] = y[i] - m.pointAt(p)
	}
	m.Sigma = stats.StdDev(m.Residuals, params)
	m.lastPeriod = series.LastPeriod()
	m.fitted = true
	return nil
}

func (m *Model) pointAt(period int) float64 {
	point := m.Line.At(float64(period))
	if m.Profile != nil {
		point += m.Profile[stats.SeasonIndex(period, m.Config.SeasonalPeriod)]
	}
	return point
}

// Bounds returns the prediction interval around point for a forecast h steps
// ahead. The width grows with √h.
func (m *Model) Bounds(point float64, h int) forecast.Bounds {
	growth := math.Sqrt(float64(h))
	policy := m.Config.Interval

	if policy.Policy == forecast.EmpiricalQuantileInterval {
		lo := stats.Quantile(m.Residuals, (1-policy.Coverage)/2) * growth
		hi := stats.Quantile(m.Residuals, (1+policy.Coverage)/2) * growth
		// Keep the point inside even for one-sided residuals
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
		return forecast.Bounds{Lower: point + lo, Upper: point + hi}
	}

	half := policy.Multiplier() * m.Sigma * growth
	return forecast.Bounds{Lower: point - half, Upper: point + half}
}

// Predict returns the steps following the last fitted period.
func (m *Model) Predict(steps int) ([]forecast.Step, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if err := forecast.CheckHorizon(steps); err != nil {
		return nil, err
	}

	out := make([]forecast.Step, steps)
	for h := 1; h <= steps; h++ {
		period := m.lastPeriod + h
		point := m.pointAt(period)
		b := m.Bounds(point, h)
		out[h-1] = forecast.Step{Period: period, Horizon: h, Point: point, Bounds: &b}
	}
	return out, nil
}

// Forecast implements forecast.Method.
func (m *Model) Forecast(series *timeseries.Series, horizon int) (*forecast.Result, error) {
	if err := forecast.CheckHorizon(horizon); err != nil {
		return nil, err
	}
	fit := New(m.Config)
	if err := fit.Fit(series); err != nil {
		return nil, err
	}
	steps, err := fit.Predict(horizon)
	if err != nil {
		return nil, err
	}

	sse := 0.0
	for _, r := range fit.Residuals {
		sse += r * r
	}
	diag := &forecast.Diagnostics{
		Observations: series.Len(),
		SSE:          sse,
		ResidualStd:  fit.Sigma,
		Seasonal:     fit.Seasonal(),
	}
	lags := len(fit.Residuals) / 5
	if lags > 10 {
		lags = 10
	}
	if lb := stats.LjungBox(fit.Residuals, lags, 0); lb != nil {
		p := lb.PValue
		diag.LjungBoxPValue = &p
	}

	result := forecast.NewResult(forecast.IntervalAware, steps)
	result.Diagnostics = diag
	return result, nil
}
