package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

func ptr(v float64) *float64 { return &v }

func TestForecastWithoutEstimate(t *testing.T) {
	series := timeseries.FromValues([]float64{80, 95, 120})

	result, err := New(nil, nil).Forecast(series, 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.CorrectionFactor, result.MethodUsed)
	assert.Equal(t, 120.0, result.PointForecast)
	assert.Equal(t, 6, result.Period)
	assert.False(t, result.HasBounds())
	for _, s := range result.Steps {
		assert.Equal(t, 120.0, s.Point)
		assert.Nil(t, s.Bounds)
	}
}

func TestForecastWithEstimate(t *testing.T) {
	series := timeseries.FromValues([]float64{100, 120})

	// Estimated 100 for the last period, 120 was realised
	result, err := New(ptr(100), nil).Forecast(series, 2)
	require.NoError(t, err)

	assert.InDelta(t, 144.0, result.Steps[0].Point, 1e-9)
	assert.InDelta(t, 172.8, result.Steps[1].Point, 1e-9)
	assert.InDelta(t, 172.8, result.PointForecast, 1e-9)
}

func TestForecastWithExplicitRealized(t *testing.T) {
	series := timeseries.FromValues([]float64{50})

	result, err := New(ptr(40), ptr(60)).Forecast(series, 1)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, result.PointForecast, 1e-9)
}

func TestZeroEstimate(t *testing.T) {
	for _, observed := range []float64{0, 1, 250, -3} {
		series := timeseries.FromValues([]float64{observed})
		_, err := New(ptr(0), nil).Forecast(series, 1)
		assert.ErrorIs(t, err, forecast.ErrDivisionByZero)

		var dz *forecast.DivisionByZeroError
		assert.ErrorAs(t, err, &dz)
	}
}

func TestClampEstimate(t *testing.T) {
	assert.Equal(t, 1e-6, ClampEstimate(0, 1e-6))
	assert.Equal(t, -1e-6, ClampEstimate(-1e-9, 1e-6))
	assert.Equal(t, 5.0, ClampEstimate(5, 1e-6))

	series := timeseries.FromValues([]float64{2})
	_, err := New(ptr(ClampEstimate(0, 1e-6)), nil).Forecast(series, 1)
	assert.NoError(t, err)
}

func TestSingleObservationAlwaysForecasts(t *testing.T) {
	series := timeseries.FromValues([]float64{7})
	result, err := New(nil, nil).Forecast(series, 1)
	require.NoError(t, err)
	assert.Equal(t, 7.0, result.PointForecast)
	assert.Equal(t, 1, New(nil, nil).MinHistory())
}

func TestInvalidInput(t *testing.T) {
	_, err := New(nil, nil).Forecast(timeseries.FromValues([]float64{1}), 0)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)

	_, err = New(nil, nil).Forecast(&timeseries.Series{}, 1)
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}
