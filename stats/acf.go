package stats

// ACF calculates the autocorrelation function of data for lags 0 to maxLag.
// Returns nil for constant data.
func ACF(data []float64, maxLag int) []float64 {
	n := len(data)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := Mean(data)
	variance := 0.0
	for _, v := range data {
		diff := v - mean
		variance += diff * diff
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (data[i] - mean) * (data[i-k] - mean)
		}
		acf[k] = sum / variance
	}
	return acf
}
