// Package backtest compares the forecasting methods on a series by holding
// out its most recent observations.
package backtest

import (
	"math"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/selector"
	"github.com/sartorproj/demandcast/stats"
	"github.com/sartorproj/demandcast/timeseries"
)

// Score is the out-of-sample accuracy of one method. Err is set when the
// method could not forecast the training part.
type Score struct {
	Method    forecast.MethodKind `json:"method"`
	RMSE      float64             `json:"rmse"`
	MAE       float64             `json:"mae"`
	MAPE      float64             `json:"mape"`
	Forecasts []float64           `json:"forecasts,omitempty"`
	Err       error               `json:"-"`
}

// Comparison holds the scores of every method, richest first.
type Comparison struct {
	Train  int                 `json:"train"`
	Test   int                 `json:"test"`
	Scores []Score             `json:"scores"`
	Best   forecast.MethodKind `json:"best,omitempty"`
}

// TestSize picks the hold-out length: a fifth of the series, at least one
// seasonal cycle, between 3 and 30, and always leaving one training point.
func TestSize(n, period int) int {
	testSize := n / 5
	if period > 0 {
		testSize = max(testSize, period)
	}
	testSize = max(min(testSize, 30), 3)
	return min(testSize, n-1)
}

// Compare fits every method on all but the last testSize observations and
// scores its forecasts against them. Methods are run directly, without
// fallback, so a method whose history is too short reports its error.
func Compare(series *timeseries.Series, registry *selector.Registry, testSize int) (*Comparison, error) {
	n := 0
	if series != nil {
		n = series.Len()
	}
	if testSize < 1 || n-testSize < 1 {
		return nil, forecast.NewInsufficientData(forecast.Auto, testSize+1, n)
	}

	train := series.Slice(0, n-testSize)
	test := series.Slice(n-testSize, n)

	cmp := &Comparison{Train: train.Len(), Test: test.Len()}
	bestRMSE := math.Inf(1)
	for _, kind := range forecast.Kinds() {
		score := Score{Method: kind}

		method, err := registry.Method(kind)
		if err != nil {
			return nil, err
		}
		result, err := method.Forecast(train, testSize)
		if err != nil {
			score.Err = err
			cmp.Scores = append(cmp.Scores, score)
			continue
		}

		score.Forecasts = make([]float64, len(result.Steps))
		for i, s := range result.Steps {
			score.Forecasts[i] = s.Point
		}
		score.RMSE, score.MAE, score.MAPE = stats.Accuracy(test.Values, score.Forecasts)
		if score.RMSE < bestRMSE {
			bestRMSE = score.RMSE
			cmp.Best = kind
		}
		cmp.Scores = append(cmp.Scores, score)
	}
	return cmp, nil
}
