// Package stats provides the numeric building blocks shared by the forecasting methods.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of data, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev returns the standard deviation of data with fitted parameters
// removed from the degrees of freedom. When too few points remain it falls
// back to the population denominator.
func StdDev(data []float64, fitted int) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	mean := Mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	dof := n - fitted
	if dof < 1 {
		dof = n
	}
	return math.Sqrt(sumSq / float64(dof))
}

// Quantile returns the p-quantile of data using linear interpolation
// between order statistics (type 7). data is not modified.
func Quantile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// NormalQuantile returns the z-value for a given probability using the
// Abramowitz-Stegun rational approximation.
func NormalQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	if p < 0.5 {
		return -NormalQuantile(1 - p)
	}

	t := math.Sqrt(-2 * math.Log(1-p))
	c0, c1, c2 := 2.515517, 0.802853, 0.010328
	d1, d2, d3 := 1.432788, 0.189269, 0.001308

	return t - (c0+c1*t+c2*t*t)/(1+d1*t+d2*t*t+d3*t*t*t)
}

// LinearFit is an ordinary least squares line y = Intercept + Slope*x.
type LinearFit struct {
	Intercept float64
	Slope     float64
}

// At evaluates the line at x.
func (f LinearFit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// FitLine fits y against x by ordinary least squares. With fewer than two
// distinct x values the slope is 0 and the intercept is the mean of y.
func FitLine(x, y []float64) LinearFit {
	n := len(x)
	if n == 0 || n != len(y) {
		return LinearFit{}
	}
	mx, my := Mean(x), Mean(y)
	sxx, sxy := 0.0, 0.0
	for i := range x {
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
	}
	if sxx == 0 {
		return LinearFit{Intercept: my}
	}
	slope := sxy / sxx
	return LinearFit{Intercept: my - slope*mx, Slope: slope}
}
