// Package correction implements the correction-factor forecast: the last
// observation scaled by how far the previous estimate missed reality.
package correction

import (
	"math"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

// Model is a correction-factor forecaster. The previous estimate is an
// explicit input; the model keeps no state between calls.
type Model struct {
	// PreviousEstimate is the forecast made earlier for the period now
	// realised. Nil means no estimate exists and the factor is 1.
	PreviousEstimate *float64
	// Realized overrides the realised value. Nil uses the last observation.
	Realized *float64
}

// New creates a correction-factor model.
func New(previousEstimate, realized *float64) *Model {
	return &Model{PreviousEstimate: previousEstimate, Realized: realized}
}

// Kind implements forecast.Method.
func (m *Model) Kind() forecast.MethodKind {
	return forecast.CorrectionFactor
}

// MinHistory implements forecast.Method.
func (m *Model) MinHistory() int {
	return 1
}

// Factor returns realized / previousEstimate, or 1 without an estimate.
func (m *Model) Factor(series *timeseries.Series) (float64, error) {
	if m.PreviousEstimate == nil {
		return 1, nil
	}
	prev := *m.PreviousEstimate
	if prev == 0 {
		return 0, &forecast.DivisionByZeroError{Operand: "previous estimate"}
	}
	realized := series.LastValue()
	if m.Realized != nil {
		realized = *m.Realized
	}
	return realized / prev, nil
}

// Forecast implements forecast.Method. Each step re-applies the factor to the
// step before it.
func (m *Model) Forecast(series *timeseries.Series, horizon int) (*forecast.Result, error) {
	if err := forecast.CheckHorizon(horizon); err != nil {
		return nil, err
	}
	if series == nil || series.Len() < 1 {
		return nil, forecast.NewInsufficientData(forecast.CorrectionFactor, 1, 0)
	}

	factor, err := m.Factor(series)
	if err != nil {
		return nil, err
	}

	steps := make([]forecast.Step, horizon)
	point := series.LastValue()
	last := series.LastPeriod()
	for h := 1; h <= horizon; h++ {
		point *= factor
		steps[h-1] = forecast.Step{Period: last + h, Horizon: h, Point: point}
	}

	return forecast.NewResult(forecast.CorrectionFactor, steps), nil
}

// ClampEstimate floors the magnitude of a previous estimate at epsilon,
// keeping its sign. Zero is lifted to +epsilon.
func ClampEstimate(estimate, epsilon float64) float64 {
	if math.Abs(estimate) >= epsilon {
		return estimate
	}
	if estimate < 0 {
		return -epsilon
	}
	return epsilon
}
