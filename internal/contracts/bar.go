package contracts

import "time"

// RawBar is one OHLCV record for a symbol on one trading session, as
// delivered by the market data source. Consumed read-only.
type RawBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// TypicalPrice returns (high + low + close) / 3.
func (b RawBar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Turnover approximates the traded value of the session.
func (b RawBar) Turnover() float64 {
	return b.Close * float64(b.Volume)
}

// ValidationWarning is a non-fatal finding attached to a validated series,
// e.g. a bar on a date the market calendar declares closed. Warnings never
// fail the pipeline.
type ValidationWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidatedSeries is an ordered bar sequence that passed validation:
// timestamps strictly increasing, no duplicates, all prices positive.
// Created fresh per pipeline run and never mutated afterwards.
type ValidatedSeries struct {
	Symbol   string              `json:"symbol"`
	MarketID string              `json:"market_id"`
	Bars     []RawBar            `json:"bars"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

// Len returns the number of sessions in the series.
func (s *ValidatedSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close price of every session in order.
func (s *ValidatedSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume of every session in order.
func (s *ValidatedSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = float64(b.Volume)
	}
	return out
}
