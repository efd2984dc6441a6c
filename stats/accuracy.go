package stats

import "math"

// Accuracy calculates forecast accuracy over the overlapping prefix of
// actual and predicted. MAPE is in percent and skips zero actuals.
func Accuracy(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}
