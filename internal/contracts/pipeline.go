package contracts

import "time"

// Stage is the per-symbol pipeline state. Every symbol moves through the
// stages in order and ends in StageDone or StageFailed; a failure in any
// stage jumps straight to StageFailed.
type Stage string

const (
	StageDetecting            Stage = "DETECTING"
	StageValidating           Stage = "VALIDATING"
	StageComputingIndicators  Stage = "COMPUTING_INDICATORS"
	StageComputingCapitalFlow Stage = "COMPUTING_CAPITAL_FLOW"
	StageDone                 Stage = "DONE"
	StageFailed               Stage = "FAILED"
)

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}

// Terminal reports whether the stage ends a symbol's pipeline.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// SymbolResult is the terminal outcome of one symbol's pipeline: either a
// full bundle (validated series, indicator series, capital flow) or a
// failure record. A failed symbol never affects another symbol's result.
type SymbolResult struct {
	RawSymbol string `json:"raw_symbol"`
	Symbol    string `json:"symbol,omitempty"`
	MarketID  string `json:"market_id,omitempty"`
	Stage     Stage  `json:"stage"`

	Series      *ValidatedSeries            `json:"series,omitempty"`
	Indicators  map[string]*IndicatorSeries `json:"indicators,omitempty"`
	CapitalFlow *CapitalFlowRecord          `json:"capital_flow,omitempty"`

	// IndicatorErrors records per-indicator formula failures that were
	// isolated from the rest of the bundle (indicator name -> reason).
	IndicatorErrors map[string]string `json:"indicator_errors,omitempty"`

	Failure  *PipelineError `json:"failure,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// Succeeded reports whether the symbol reached StageDone.
func (r *SymbolResult) Succeeded() bool {
	return r.Stage == StageDone
}

// BatchResult aggregates the terminal states of every symbol in one run.
// Partial success is a normal outcome, not an exceptional one.
type BatchResult struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Results   []SymbolResult `json:"results"`

	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ResultFor returns the result for a raw symbol, or nil.
func (b *BatchResult) ResultFor(rawSymbol string) *SymbolResult {
	for i := range b.Results {
		if b.Results[i].RawSymbol == rawSymbol {
			return &b.Results[i]
		}
	}
	return nil
}
