// Package timeseries provides the validated demand series consumed by the forecasting methods.
package timeseries

import "math"

// Observation is a single observed value at an integer period index.
type Observation struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// Series represents a validated demand series: strictly increasing periods,
// finite values, at least one observation.
type Series struct {
	Periods []int
	Values  []float64
	Name    string
}

// New validates observations into a Series. The observations are copied and
// never reordered; ordering is the caller's responsibility.
func New(observations []Observation) (*Series, error) {
	if len(observations) == 0 {
		return nil, &InsufficientDataError{Required: 1, Got: 0}
	}

	periods := make([]int, len(observations))
	values := make([]float64, len(observations))
	for i, o := range observations {
		if i > 0 && o.Period <= observations[i-1].Period {
			return nil, &NonMonotonicPeriodError{
				Index:    i,
				Previous: observations[i-1].Period,
				Current:  o.Period,
			}
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return nil, &NonFiniteValueError{Index: i, Period: o.Period, Value: o.Value}
		}
		periods[i] = o.Period
		values[i] = o.Value
	}

	return &Series{
		Periods: periods,
		Values:  values,
	}, nil
}

// FromValues creates a series with periods 1..n.
func FromValues(values []float64) *Series {
	periods := make([]int, len(values))
	for i := range periods {
		periods[i] = i + 1
	}
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{
		Periods: periods,
		Values:  v,
	}
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// LastValue returns the most recent observed value.
func (s *Series) LastValue() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// LastPeriod returns the period index of the most recent observation.
func (s *Series) LastPeriod() int {
	if len(s.Periods) == 0 {
		return 0
	}
	return s.Periods[len(s.Periods)-1]
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	periods := make([]int, len(values))
	copy(periods, s.Periods[start:end])

	return &Series{
		Periods: periods,
		Values:  values,
		Name:    s.Name,
	}
}
