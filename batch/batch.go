// Package batch runs the forecast engine over many products in parallel.
// A failing product is recorded in its outcome and never stops the others.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/demandcast/anomaly"
	"github.com/sartorproj/demandcast/correction"
	"github.com/sartorproj/demandcast/demand"
	"github.com/sartorproj/demandcast/engine"
	"github.com/sartorproj/demandcast/forecast"
	"github.com/sartorproj/demandcast/timeseries"
)

// Metrics receives batch activity. metrics.Recorder implements it.
type Metrics interface {
	RecordForecast(requested, methodUsed string)
	RecordError(reason string)
	RecordAnomaly(methodUsed string)
	RecordSkipped(n int)
	RecordLatency(op string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, string) {}

func (nopMetrics) RecordError(string) {}

func (nopMetrics) RecordAnomaly(string) {}

func (nopMetrics) RecordSkipped(int) {}

func (nopMetrics) RecordLatency(string, float64) {}

// Job is one product to forecast.
type Job struct {
	ID               string
	Observations     []timeseries.Observation
	PreviousEstimate *float64
	// Next is a realised observation past the history to classify.
	Next *timeseries.Observation
}

// Options controls every job of a run.
type Options struct {
	Method  forecast.MethodKind
	Horizon int
	Config  *forecast.Config
	Workers int
	// Holdout keeps the last observations of each job out of the history
	// and classifies them against the forecast.
	Holdout        int
	ClampEstimates bool
	Tiers          demand.Tiers
}

// Outcome is the result of one job.
type Outcome struct {
	ID          string            `json:"id"`
	Result      *forecast.Result  `json:"result,omitempty"`
	Verdict     *anomaly.Verdict  `json:"verdict,omitempty"`
	Verdicts    []anomaly.Verdict `json:"verdicts,omitempty"`
	DemandLevel demand.Level      `json:"demand_level,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Error       string            `json:"error,omitempty"`
	Err         error             `json:"-"`
	Duration    time.Duration     `json:"duration"`
}

// Anomalous reports whether any classified observation fell outside its
// bounds.
func (o *Outcome) Anomalous() bool {
	if o.Verdict != nil && o.Verdict.IsAnomaly {
		return true
	}
	for _, v := range o.Verdicts {
		if v.IsAnomaly {
			return true
		}
	}
	return false
}

// Fallback reports whether the selector substituted a simpler method.
func (o *Outcome) Fallback() bool {
	if o.Result == nil {
		return false
	}
	if o.Result.Requested == forecast.Auto {
		return o.Result.MethodUsed != forecast.Kinds()[0]
	}
	return o.Result.MethodUsed != o.Result.Requested
}

// Summary aggregates a run.
type Summary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Products  int           `json:"products"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Fallbacks int           `json:"fallbacks"`
	Anomalies int           `json:"anomalies"`
	Skipped   []string      `json:"skipped,omitempty"`
}

// Report is the output of a run, with outcomes in job order.
type Report struct {
	Summary  Summary   `json:"summary"`
	Outcomes []Outcome `json:"outcomes"`
}

// Runner fans jobs out to the engine.
type Runner struct {
	opts    Options
	engine  *engine.Engine
	metrics Metrics
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger. It is passed on to the engine unless
// WithEngine is also given.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithEngine replaces the engine.
func WithEngine(e *engine.Engine) Option {
	return func(r *Runner) {
		r.engine = e
	}
}

// NewRunner creates a runner. Zero options get defaults: one worker, horizon
// 1, auto method, default config and tiers.
func NewRunner(opts Options, options ...Option) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Horizon == 0 {
		opts.Horizon = 1
	}
	if opts.Method == "" {
		opts.Method = forecast.Auto
	}
	if opts.Config == nil {
		opts.Config = forecast.DefaultConfig()
	}
	if opts.Tiers.Ranks == nil && opts.Tiers.HighAtLeast == 0 {
		opts.Tiers = demand.DefaultTiers()
	}

	r := &Runner{
		opts:    opts,
		metrics: nopMetrics{},
		logger:  zerolog.Nop(),
	}
	for _, o := range options {
		o(r)
	}
	if r.engine == nil {
		r.engine = engine.New(engine.WithLogger(r.logger))
	}
	return r
}

// JobsFromProducts turns loaded products into jobs.
func JobsFromProducts(products []timeseries.Product) []Job {
	jobs := make([]Job, len(products))
	for i, p := range products {
		jobs[i] = Job{ID: p.ID, Observations: p.Observations, PreviousEstimate: p.PreviousEstimate}
	}
	return jobs
}

// RunProducts runs every loaded product and reports the ones the loader
// skipped.
func (r *Runner) RunProducts(ctx context.Context, loaded *timeseries.LoadResult) (*Report, error) {
	for _, id := range loaded.Skipped {
		r.logger.Warn().Str("id", id).Msg("product not in allow list, skipping")
	}
	if len(loaded.Skipped) > 0 {
		r.metrics.RecordSkipped(len(loaded.Skipped))
	}

	report, err := r.Run(ctx, JobsFromProducts(loaded.Products))
	if report != nil {
		report.Summary.Skipped = loaded.Skipped
	}
	return report, err
}

// Run forecasts every job with at most Workers in flight. The returned error
// is non-nil only when ctx ends the run early; the report then still holds
// the outcomes computed so far, and unscheduled jobs carry the context error.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Report, error) {
	started := time.Now()
	runID := uuid.New().String()
	logger := r.logger.With().Str("run_id", runID).Logger()

	logger.Info().
		Int("products", len(jobs)).
		Int("workers", r.opts.Workers).
		Str("method", string(r.opts.Method)).
		Msg("batch started")

	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i].ID = job.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	scheduled := 0
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		i := i
		scheduled++
		g.Go(func() error {
			outcomes[i] = r.runOne(gctx, jobs[i], logger)
			return nil
		})
	}
	_ = g.Wait()

	runErr := ctx.Err()
	if runErr != nil {
		for i := scheduled; i < len(jobs); i++ {
			outcomes[i].Err = runErr
			outcomes[i].Reason = ErrorReason(runErr)
			outcomes[i].Error = runErr.Error()
		}
	}

	summary := Summary{
		RunID:     runID,
		StartedAt: started,
		Duration:  time.Since(started),
		Products:  len(jobs),
	}
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if o.Fallback() {
			summary.Fallbacks++
		}
		if o.Anomalous() {
			summary.Anomalies++
		}
	}
	r.metrics.RecordLatency("batch", summary.Duration.Seconds())

	logger.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("fallbacks", summary.Fallbacks).
		Int("anomalies", summary.Anomalies).
		Dur("duration", summary.Duration).
		Msg("batch finished")

	return &Report{Summary: summary, Outcomes: outcomes}, runErr
}

func (r *Runner) runOne(ctx context.Context, job Job, logger zerolog.Logger) Outcome {
	start := time.Now()
	out := Outcome{ID: job.ID}

	req := engine.Request{
		ID:               job.ID,
		Observations:     job.Observations,
		Method:           r.opts.Method,
		Horizon:          r.opts.Horizon,
		Config:           r.opts.Config,
		PreviousEstimate: job.PreviousEstimate,
		Next:             job.Next,
	}
	if r.opts.ClampEstimates && job.PreviousEstimate != nil {
		v := correction.ClampEstimate(*job.PreviousEstimate, r.opts.Config.Epsilon)
		req.PreviousEstimate = &v
	}

	var heldOut []timeseries.Observation
	if h := r.opts.Holdout; h > 0 {
		n := len(job.Observations)
		if h > n {
			h = n
		}
		req.Observations = job.Observations[:n-h]
		heldOut = job.Observations[n-h:]
		if req.Next == nil && len(heldOut) > 0 {
			next := heldOut[0]
			req.Next = &next
		}
		if req.Horizon < h {
			req.Horizon = h
		}
	}

	result, verdict, err := r.engine.Run(ctx, req)
	out.Duration = time.Since(start)
	r.metrics.RecordLatency("product", out.Duration.Seconds())

	if err != nil {
		out.Err = err
		out.Reason = ErrorReason(err)
		out.Error = err.Error()
		r.metrics.RecordError(out.Reason)
		logger.Error().Err(err).Str("id", job.ID).Str("reason", out.Reason).Msg("forecast failed")
		return out
	}

	out.Result = result
	out.Verdict = verdict
	if len(heldOut) > 0 {
		out.Verdicts = anomaly.ClassifySeries(result, heldOut, r.opts.Config.Epsilon)
	}
	out.DemandLevel = r.opts.Tiers.Classify(result.PointForecast)

	r.metrics.RecordForecast(string(result.Requested), string(result.MethodUsed))
	if out.Anomalous() {
		r.metrics.RecordAnomaly(string(result.MethodUsed))
	}
	return out
}

// ErrorReason maps an engine error onto a short label for metrics and
// reports.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, forecast.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, forecast.ErrNonMonotonicPeriod):
		return "non_monotonic_period"
	case errors.Is(err, forecast.ErrNonFiniteValue):
		return "non_finite_value"
	case errors.Is(err, forecast.ErrStaleObservation):
		return "stale_observation"
	case errors.Is(err, forecast.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return "invalid_horizon"
	case errors.Is(err, forecast.ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, forecast.ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
