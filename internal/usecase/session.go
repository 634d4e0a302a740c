package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"BubbleScope/internal/domain/models"
	"BubbleScope/internal/domain/repository"
	"BubbleScope/internal/services/diagnostics"
	"BubbleScope/internal/services/ensemble"
	"BubbleScope/internal/services/fitting"
	"BubbleScope/internal/services/quality"
	"BubbleScope/internal/services/sampling"
	"BubbleScope/internal/services/selection"
	"BubbleScope/pkg/config"
	"BubbleScope/pkg/logger"
)

// FittingEngine runs one complete fitting session per (symbol, window)
// request: sample initial vectors, run the trials on a bounded worker pool,
// diagnose, score, select and aggregate. The engine holds no per-session
// state and is safe for concurrent sessions.
type FittingEngine struct {
	cfg     config.FittingConfig
	log     *logger.Logger
	metrics repository.Metrics

	sampler    *sampling.Sampler
	optimizer  *fitting.Optimizer
	classifier *diagnostics.Classifier
	evaluator  *quality.Evaluator
	selector   *selection.Selector
	aggregator *ensemble.Aggregator
}

// NewFittingEngine wires the pipeline stages. metrics may be nil.
func NewFittingEngine(cfg config.FittingConfig, log *logger.Logger, metrics repository.Metrics) *FittingEngine {
	return &FittingEngine{
		cfg:        cfg,
		log:        log,
		metrics:    metrics,
		sampler:    sampling.New(cfg),
		optimizer:  fitting.NewOptimizer(cfg.Optimizer),
		classifier: diagnostics.New(cfg),
		evaluator:  quality.New(cfg),
		selector:   selection.New(cfg),
		aggregator: ensemble.New(),
	}
}

// SessionRequest describes one fitting session.
type SessionRequest struct {
	Symbol   string
	Series   *models.TimeSeriesInput
	Strategy models.Strategy
	// Seed drives the randomized part of the sampling; an identical request
	// with an identical seed reproduces the session exactly.
	Seed int64
}

// Run executes the full session. It returns an error only on input or
// configuration precondition violations, or when ctx is canceled; every
// numerical failure mode ends up in the report's counters and diagnostic
// fields instead. A session with zero usable candidates still completes,
// carrying a NoUsableFit selection: the correct answer for a series with no
// bubble signature.
func (e *FittingEngine) Run(ctx context.Context, req SessionRequest) (*models.SessionReport, error) {
	if req.Series == nil {
		return nil, fmt.Errorf("fitting session: nil series")
	}
	if req.Series.Len() < e.cfg.MinDataPoints {
		return nil, fmt.Errorf("%w: got %d points, need at least %d",
			models.ErrInsufficientData, req.Series.Len(), e.cfg.MinDataPoints)
	}
	strat, err := e.strategyRow(req.Strategy)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report := &models.SessionReport{
		ID:            uuid.NewString(),
		Symbol:        req.Symbol,
		Strategy:      req.Strategy,
		State:         models.SessionInitiated,
		StartedAt:     started,
		FailureCounts: make(map[models.FailureReason]int),
		StatusCounts:  make(map[models.DiagnosticStatus]int),
	}
	e.log.Info("fitting session started",
		logger.String("session", report.ID),
		logger.String("symbol", req.Symbol),
		logger.String("strategy", string(req.Strategy)),
		logger.Int("points", req.Series.Len()),
	)

	report.State = models.SessionSampling
	stats := req.Series.Stats()
	bounds := e.sampler.BoundsFor(stats, strat)
	inits := e.sampler.Generate(stats, strat, req.Seed)
	report.TrialCount = len(inits)

	report.State = models.SessionTrialsRunning
	outcomes, err := e.runTrials(ctx, req.Series, inits, bounds, strat.TrialTimeout.Std())
	if err != nil {
		return nil, err
	}

	report.State = models.SessionDiagnosed
	candidates := e.diagnose(outcomes, bounds, report)

	report.State = models.SessionEvaluated
	scored := make([]models.ScoredCandidate, 0, len(candidates))
	usable := make([]models.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		sc := models.ScoredCandidate{Candidate: cand, Assessment: e.evaluator.Evaluate(cand)}
		scored = append(scored, sc)
		if sc.Assessment.Usable {
			usable = append(usable, sc)
		}
	}

	report.State = models.SessionSelected
	report.Selection = e.selector.Select(scored)

	if len(usable) > 0 {
		est, err := e.aggregator.Aggregate(usable)
		if err != nil {
			return nil, err
		}
		report.Ensemble = est
		report.State = models.SessionEnsembled
	}

	report.State = models.SessionComplete
	report.Elapsed = time.Since(started)
	e.finishObservability(report)
	return report, nil
}

func (e *FittingEngine) strategyRow(s models.Strategy) (config.StrategyConfig, error) {
	switch s {
	case models.StrategyConservative:
		return e.cfg.Conservative, nil
	case models.StrategyExtensive:
		return e.cfg.Extensive, nil
	case models.StrategyEmergency:
		return e.cfg.Emergency, nil
	default:
		return config.StrategyConfig{}, fmt.Errorf("%w: %q", models.ErrUnknownStrategy, s)
	}
}

// runTrials executes every trial on a bounded goroutine pool. Trials share
// only the read-only input arrays; each owns its initial vector, its working
// buffers and its own deadline. Results are index-addressed, so no ordering
// or locking is needed.
func (e *FittingEngine) runTrials(ctx context.Context, series *models.TimeSeriesInput, inits []models.ParameterVector, bounds models.Bounds, budget time.Duration) ([]models.TrialOutcome, error) {
	t := series.NormalizedTime()
	y := series.LogPrice()
	outcomes := make([]models.TrialOutcome, len(inits))

	p := pool.New().WithMaxGoroutines(e.cfg.Workers)
	for i, init := range inits {
		i, init := i, init
		p.Go(func() {
			if ctx.Err() != nil {
				outcomes[i] = models.TrialOutcome{TrialIndex: i, Failure: models.FailureTimeout}
				return
			}
			trialCtx, cancel := context.WithTimeout(ctx, budget)
			defer cancel()
			cand, err := e.optimizer.Fit(trialCtx, t, y, init, bounds)
			outcomes[i] = e.classifyOutcome(i, cand, err)
		})
	}
	p.Wait()

	// A canceled session discards the in-flight work and returns nothing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (e *FittingEngine) classifyOutcome(i int, cand *models.FitCandidate, err error) models.TrialOutcome {
	if err == nil {
		c := *cand
		c.TrialIndex = i
		return models.TrialOutcome{TrialIndex: i, Candidate: &c}
	}
	reason := models.FailureNonConvergence
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		reason = models.FailureTimeout
	case errors.Is(err, fitting.ErrSingular):
		reason = models.FailureNumeric
	}
	return models.TrialOutcome{TrialIndex: i, Failure: reason}
}

// diagnose attaches a status to every successful trial and tallies the
// failure-reason counters for the rest.
func (e *FittingEngine) diagnose(outcomes []models.TrialOutcome, bounds models.Bounds, report *models.SessionReport) []models.FitCandidate {
	candidates := make([]models.FitCandidate, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Succeeded() {
			report.FailureCounts[o.Failure]++
			if e.metrics != nil {
				e.metrics.RecordTrial("failure")
				e.metrics.RecordFailure(o.Failure.String())
			}
			continue
		}
		cand := *o.Candidate
		cand.Status = e.classifier.Classify(cand, bounds)
		cand.StuckParams = e.classifier.StuckParameters(cand.Params, bounds)
		report.StatusCounts[cand.Status]++
		if e.metrics != nil {
			e.metrics.RecordTrial("success")
			e.metrics.RecordCandidate(cand.Status.String())
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

func (e *FittingEngine) finishObservability(report *models.SessionReport) {
	result := "ok"
	if report.Selection.NoUsableFit {
		result = "no_usable_fit"
	}
	if e.metrics != nil {
		e.metrics.RecordSession(string(report.Strategy), result, report.Elapsed.Seconds())
	}
	e.log.Info("fitting session complete",
		logger.String("session", report.ID),
		logger.String("symbol", report.Symbol),
		logger.String("result", result),
		logger.Int("trials", report.TrialCount),
		logger.Int("usable", report.Selection.UsableCount),
		logger.Duration("elapsed", report.Elapsed),
	)
}
