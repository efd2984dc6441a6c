// Package demandcast forecasts per-product demand and flags anomalous
// observations.
//
// Four methods share the forecast.Method contract: correction factor,
// exponential smoothing, additive Holt-Winters and an interval-aware trend
// model that attaches prediction bounds. The selector walks them in the order
// interval-aware, Holt-Winters, exponential smoothing, correction factor and
// picks the first whose minimum history the series meets.
//
// # Quick Start
//
// Forecast a single series:
//
//	result, verdict, err := engine.Run(ctx, engine.Request{
//		Observations: obs,
//		Method:       forecast.Auto,
//		Horizon:      3,
//		Next:         &timeseries.Observation{Period: 13, Value: 420},
//	})
//
// Run a whole history file:
//
//	loaded, _ := timeseries.LoadCSV("history.csv", nil)
//	runner := batch.NewRunner(batch.Options{Method: forecast.Auto, Horizon: 1})
//	rep, _ := runner.RunProducts(ctx, loaded)
//	_ = report.WriteFile("forecast.xlsx", rep)
//
// # Packages
//
//   - timeseries: validated series and the long-format CSV loader
//   - stats: descriptive statistics, seasonal profiles, ACF and Ljung-Box
//   - correction, smoothing, holtwinters, interval: the forecasting methods
//   - selector: fallback selection and dispatch by method kind
//   - anomaly: interval-based classification of observations
//   - engine: validate, select, forecast and classify in one call
//   - batch, report, metrics: parallel runs over many products and their output
//   - backtest: out-of-sample comparison of every method
package demandcast
