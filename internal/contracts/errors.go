package contracts

import "fmt"

// ReasonCode is the machine-readable error category attached to a failed
// symbol. Only ReasonConfiguration aborts a run; every other code is
// per-symbol and leaves the rest of the batch untouched.
type ReasonCode string

const (
	ReasonConfiguration        ReasonCode = "CONFIGURATION_ERROR"
	ReasonSymbolClassification ReasonCode = "SYMBOL_CLASSIFICATION_ERROR"
	ReasonDataQuality          ReasonCode = "DATA_QUALITY_ERROR"
	ReasonDataSource           ReasonCode = "DATA_SOURCE_ERROR"
	ReasonComputation          ReasonCode = "COMPUTATION_ERROR"
)

// PipelineError carries a machine-readable reason code plus a
// human-readable message for one symbol's failure. Errors are never
// swallowed; every failure ends up attached to its symbol's result.
type PipelineError struct {
	Code    ReasonCode `json:"code"`
	Stage   Stage      `json:"stage"`
	Symbol  string     `json:"symbol"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s] %s: %s: %v", e.Code, e.Stage, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s] %s: %s", e.Code, e.Stage, e.Symbol, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a PipelineError wrapping cause. cause may be nil.
func NewPipelineError(code ReasonCode, stage Stage, symbol, message string, cause error) *PipelineError {
	return &PipelineError{
		Code:    code,
		Stage:   stage,
		Symbol:  symbol,
		Message: message,
		Err:     cause,
	}
}
