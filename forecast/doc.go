// Package forecast defines the contract shared by the demand forecasting methods.
//
// Four interchangeable methods implement Method, each identified by a
// MethodKind:
//
//   - correction: last value scaled by realised/previous-estimate
//   - smoothing: single exponential smoothing
//   - holtwinters: additive level, trend and season
//   - interval: trend plus optional season with residual-based prediction intervals
//
// Only the interval method fills Result.Bounds. Method parameters travel in
// Config; nothing is read from package-level state, so two calls with the
// same inputs always produce the same Result.
//
// # Usage
//
//	cfg := forecast.DefaultConfig()
//	cfg.Alpha = 0.3
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	result, err := method.Forecast(series, 3)
//
// Errors are typed and match sentinels with errors.Is:
//
//	if errors.Is(err, forecast.ErrInsufficientData) {
//	    // history too short even after fallback
//	}
package forecast
