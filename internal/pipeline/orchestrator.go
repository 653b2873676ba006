package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"stocklens/internal/capitalflow"
	"stocklens/internal/contracts"
	"stocklens/internal/indicator"
	"stocklens/internal/market"
	"stocklens/internal/provider"
	"stocklens/internal/quality"
	"stocklens/pkg/logger"
)

// ProgressEvent is emitted on every per-symbol stage transition.
type ProgressEvent struct {
	RunID     string          `json:"run_id"`
	RawSymbol string          `json:"raw_symbol"`
	Symbol    string          `json:"symbol,omitempty"`
	MarketID  string          `json:"market_id,omitempty"`
	Stage     contracts.Stage `json:"stage"`
	Error     string          `json:"error,omitempty"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
}

// ProgressFunc observes stage transitions. It is called from worker
// goroutines and must be safe for concurrent use.
type ProgressFunc func(ProgressEvent)

// Options holds run-level tuning for the orchestrator.
type Options struct {
	Workers    int
	RunTimeout time.Duration
	OnProgress ProgressFunc
}

// Orchestrator sequences detection, validation, indicator calculation and
// capital-flow analysis for each symbol of a batch. Symbols run
// independently on a worker pool; one symbol's failure never prevents
// another's completion.
type Orchestrator struct {
	registry   *market.Registry
	validator  *quality.Validator
	calculator *indicator.Calculator
	analyzer   *capitalflow.Analyzer
	source     provider.BarProvider
	specs      []contracts.IndicatorSpec
	opts       Options
	logger     *logger.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	registry *market.Registry,
	validator *quality.Validator,
	calculator *indicator.Calculator,
	analyzer *capitalflow.Analyzer,
	source provider.BarProvider,
	specs []contracts.IndicatorSpec,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{
		registry:   registry,
		validator:  validator,
		calculator: calculator,
		analyzer:   analyzer,
		source:     source,
		specs:      specs,
		opts:       opts,
		logger:     log.WithComponent("pipeline"),
	}
}

// Run executes the batch over [from, to] and returns the aggregated
// terminal states. The returned error is non-nil only for run-level
// failures; per-symbol failures live on the individual results.
func (o *Orchestrator) Run(ctx context.Context, rawSymbols []string, from, to time.Time) (*contracts.BatchResult, error) {
	return o.RunWithID(ctx, uuid.NewString(), rawSymbols, from, to)
}

// RunWithID is Run with a caller-supplied run id, so callers that track
// runs (the API's run registry) can hand out the id before the batch
// finishes.
func (o *Orchestrator) RunWithID(ctx context.Context, runID string, rawSymbols []string, from, to time.Time) (*contracts.BatchResult, error) {
	startedAt := time.Now()

	if o.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RunTimeout)
		defer cancel()
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"symbols": len(rawSymbols),
		"workers": o.opts.Workers,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
	}).Info("Starting batch run")

	type job struct {
		index     int
		rawSymbol string
	}

	jobs := make(chan job)
	results := make([]contracts.SymbolResult, len(rawSymbols))

	var completed int
	var mu sync.Mutex
	notify := func(ev ProgressEvent) {
		if o.opts.OnProgress == nil {
			return
		}
		mu.Lock()
		if ev.Stage.Terminal() {
			completed++
		}
		ev.RunID = runID
		ev.Completed = completed
		ev.Total = len(rawSymbols)
		mu.Unlock()
		o.opts.OnProgress(ev)
	}

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = o.runSymbol(ctx, j.rawSymbol, from, to, notify)
			}
		}()
	}

	for i, raw := range rawSymbols {
		jobs <- job{index: i, rawSymbol: raw}
	}
	close(jobs)
	wg.Wait()

	batch := &contracts.BatchResult{
		RunID:     runID,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Results:   results,
		Attempted: len(results),
	}
	for i := range results {
		if results[i].Succeeded() {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":    runID,
		"attempted": batch.Attempted,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
		"duration":  batch.Duration.Seconds(),
	}).Info("Batch run completed")

	return batch, nil
}

// runSymbol drives one symbol through the full stage sequence and always
// returns a terminal result.
func (o *Orchestrator) runSymbol(ctx context.Context, rawSymbol string, from, to time.Time, notify func(ProgressEvent)) contracts.SymbolResult {
	start := time.Now()
	res := contracts.SymbolResult{
		RawSymbol: rawSymbol,
		Stage:     contracts.StageDetecting,
	}

	fail := func(code contracts.ReasonCode, message string, cause error) contracts.SymbolResult {
		res.Failure = contracts.NewPipelineError(code, res.Stage, rawSymbol, message, cause)
		res.Stage = contracts.StageFailed
		res.Duration = time.Since(start)
		o.logger.WithError(res.Failure).WithField("symbol", rawSymbol).Warn("Symbol failed")
		notify(ProgressEvent{
			RawSymbol: rawSymbol,
			Symbol:    res.Symbol,
			MarketID:  res.MarketID,
			Stage:     contracts.StageFailed,
			Error:     res.Failure.Error(),
		})
		return res
	}

	expired := func() (contracts.SymbolResult, bool) {
		if err := ctx.Err(); err != nil {
			return fail(contracts.ReasonDataSource, "run timeout exceeded", err), true
		}
		return contracts.SymbolResult{}, false
	}

	advance := func(stage contracts.Stage) {
		res.Stage = stage
		notify(ProgressEvent{
			RawSymbol: rawSymbol,
			Symbol:    res.Symbol,
			MarketID:  res.MarketID,
			Stage:     stage,
		})
	}

	// Detecting
	if r, done := expired(); done {
		return r
	}
	advance(contracts.StageDetecting)

	marketID, symbol, err := o.registry.Detect(rawSymbol)
	if err != nil {
		return fail(contracts.ReasonSymbolClassification, "unrecognized symbol format", err)
	}
	res.Symbol = symbol
	res.MarketID = marketID

	profile, err := o.registry.Profile(marketID)
	if err != nil {
		return fail(contracts.ReasonSymbolClassification, "unknown market", err)
	}

	// Validating (fetch + structural checks)
	if r, done := expired(); done {
		return r
	}
	advance(contracts.StageValidating)

	bars, _, err := o.source.Fetch(ctx, symbol, marketID, from, to)
	if err != nil {
		return fail(contracts.ReasonDataSource, "data source unavailable", err)
	}

	series, err := o.validator.Validate(symbol, marketID, bars)
	if err != nil {
		return fail(contracts.ReasonDataQuality, "series rejected", err)
	}
	res.Series = series

	// ComputingIndicators
	if r, done := expired(); done {
		return r
	}
	advance(contracts.StageComputingIndicators)

	outcome, err := o.calculator.Evaluate(series, profile, o.specs)
	if err != nil {
		return fail(contracts.ReasonComputation, "indicator evaluation failed", err)
	}
	res.Indicators = outcome.Series
	if len(outcome.Failures) > 0 {
		res.IndicatorErrors = outcome.Failures
	}

	// ComputingCapitalFlow
	if r, done := expired(); done {
		return r
	}
	advance(contracts.StageComputingCapitalFlow)

	flow, err := o.analyzer.Analyze(series, outcome.Series)
	if err != nil {
		return fail(contracts.ReasonComputation, "capital flow analysis failed", err)
	}
	res.CapitalFlow = flow

	res.Duration = time.Since(start)
	advance(contracts.StageDone)
	return res
}
