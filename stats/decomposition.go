package stats

import (
	"math"
)

// DecompositionResult holds the classical additive decomposition of a series.
// Trend and Residual are NaN at the edges where the centred moving average is
// undefined.
type DecompositionResult struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int
}

// Decompose performs classical additive decomposition (Y = T + S + R) using a
// centred moving average for the trend. Returns nil when the series holds
// fewer than two full cycles.
func Decompose(values []float64, period int) *DecompositionResult {
	n := len(values)
	if period < 2 || n < 2*period {
		return nil
	}

	trend := movingAverageTrend(values, period)

	detrended := make([]float64, n)
	positions := make([]int, n)
	for i := 0; i < n; i++ {
		positions[i] = i
		if math.IsNaN(trend[i]) {
			detrended[i] = math.NaN()
			continue
		}
		detrended[i] = values[i] - trend[i]
	}

	profile := SeasonalProfile(detrended, positions, period)

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = profile[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
			continue
		}
		residual[i] = values[i] - trend[i] - seasonal[i]
	}

	return &DecompositionResult{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}
}

// SeasonalProfile averages detrended values by season, where the season of
// element i is keys[i] mod period, and centres the result on zero. NaN values
// are ignored; seasons without data get 0.
func SeasonalProfile(detrended []float64, keys []int, period int) []float64 {
	profile := make([]float64, period)
	counts := make([]int, period)

	for i, v := range detrended {
		if math.IsNaN(v) {
			continue
		}
		s := SeasonIndex(keys[i], period)
		profile[s] += v
		counts[s]++
	}

	for s := range profile {
		if counts[s] > 0 {
			profile[s] /= float64(counts[s])
		}
	}

	mean := Mean(profile)
	for s := range profile {
		profile[s] -= mean
	}
	return profile
}

// SeasonIndex maps any integer key, including negative ones, onto [0, period).
func SeasonIndex(key, period int) int {
	s := key % period
	if s < 0 {
		s += period
	}
	return s
}

// SeasonalStrength calculates the strength of seasonality
// F_S = max(0, 1 - Var(R) / Var(S+R)) from a classical decomposition.
// Returns 0 for series shorter than two cycles.
func SeasonalStrength(values []float64, period int) float64 {
	decomp := Decompose(values, period)
	if decomp == nil {
		return 0
	}

	seasonalPlusResid := make([]float64, len(decomp.Seasonal))
	for i := range seasonalPlusResid {
		seasonalPlusResid[i] = decomp.Seasonal[i] + decomp.Residual[i]
	}

	varR := nanVariance(decomp.Residual)
	varSR := nanVariance(seasonalPlusResid)
	if varSR == 0 {
		return 0
	}

	return math.Max(0, 1-varR/varSR)
}

// movingAverageTrend calculates trend using centred moving average.
func movingAverageTrend(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2

	if period%2 == 0 {
		// Even period: 2xperiod MA, end points get half weight
		for i := half; i < n-half; i++ {
			sum := 0.5*values[i-half] + 0.5*values[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
		return trend
	}

	for i := half; i < n-half; i++ {
		sum := 0.0
		for j := i - half; j <= i+half; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// nanVariance calculates the sample variance, ignoring NaN values.
func nanVariance(data []float64) float64 {
	valid := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return 0
	}
	sd := StdDev(valid, 1)
	return sd * sd
}
