// Package anomaly classifies realised observations against a forecast's
// prediction interval.
package anomaly

import (
	"math"

	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

// DefaultEpsilon floors the deviation-ratio denominator when the caller
// passes a non-positive epsilon.
const DefaultEpsilon = 1e-9

// Verdict is the classification of one observation. The interval edges
// count as normal.
type Verdict struct {
	Period         int             `json:"period"`
	Observed       float64         `json:"observed"`
	IsAnomaly      bool            `json:"is_anomaly"`
	DeviationRatio float64         `json:"deviation_ratio"`
	Point          float64         `json:"point"`
	Bounds         forecast.Bounds `json:"bounds"`
}

// Classify compares observation with the headline forecast of result. It
// returns nil when the result carries no bounds.
func Classify(result *forecast.Result, observation timeseries.Observation, epsilon float64) *Verdict {
	if !result.HasBounds() {
		return nil
	}
	return classify(result.PointForecast, *result.Bounds, observation, epsilon)
}

// ClassifyStep compares observation with a single forecast step.
func ClassifyStep(step forecast.Step, observation timeseries.Observation, epsilon float64) *Verdict {
	if step.Bounds == nil {
		return nil
	}
	return classify(step.Point, *step.Bounds, observation, epsilon)
}

// ClassifySeries back-tests observations against every step of result,
// matching by period. Observations without a bounded step are skipped.
func ClassifySeries(result *forecast.Result, observations []timeseries.Observation, epsilon float64) []Verdict {
	if result == nil {
		return nil
	}
	var verdicts []Verdict
	for _, o := range observations {
		step, ok := result.StepFor(o.Period)
		if !ok {
			continue
		}
		if v := ClassifyStep(step, o, epsilon); v != nil {
			verdicts = append(verdicts, *v)
		}
	}
	return verdicts
}

// Anomalies filters verdicts down to the anomalous ones.
func Anomalies(verdicts []Verdict) []Verdict {
	var out []Verdict
	for _, v := range verdicts {
		if v.IsAnomaly {
			out = append(out, v)
		}
	}
	return out
}

// DeviationRatio is (observed - point) / max(point, epsilon).
func DeviationRatio(observed, point, epsilon float64) float64 {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return (observed - point) / math.Max(point, epsilon)
}

func classify(point float64, bounds forecast.Bounds, o timeseries.Observation, epsilon float64) *Verdict {
	return &Verdict{
		Period:         o.Period,
		Observed:       o.Value,
		IsAnomaly:      !bounds.Contains(o.Value),
		DeviationRatio: DeviationRatio(o.Value, point, epsilon),
		Point:          point,
		Bounds:         bounds,
	}
}
