package quality

import (
	"fmt"
	"sort"

	"stocklens/internal/contracts"
	"stocklens/internal/market"
	"stocklens/pkg/logger"
)

// Validation failure sentinels. Each maps to a DataQualityError on the
// symbol's pipeline result.
var (
	ErrEmptySeries                   = fmt.Errorf("empty series")
	ErrUnsortedOrDuplicateTimestamps = fmt.Errorf("unsorted or duplicate timestamps")
	ErrInvalidBarValues              = fmt.Errorf("invalid bar values")
)

// Validator checks a raw bar sequence for integrity before any indicator
// runs. Ordering is repaired with a stable re-sort; duplicates and
// invalid values are rejected explicitly rather than dropped, since
// silent repair could mask upstream data-source faults.
type Validator struct {
	registry *market.Registry
	logger   *logger.Logger
}

// NewValidator creates a validator backed by the market registry.
func NewValidator(registry *market.Registry, log *logger.Logger) *Validator {
	return &Validator{
		registry: registry,
		logger:   log,
	}
}

// Validate produces an immutable ValidatedSeries or fails with one of the
// sentinel errors. The input slice is never mutated.
func (v *Validator) Validate(symbol, marketID string, bars []contracts.RawBar) (*contracts.ValidatedSeries, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no bars", ErrEmptySeries, symbol)
	}

	sorted := make([]contracts.RawBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Timestamp.After(sorted[i-1].Timestamp) {
			return nil, fmt.Errorf("%w: %s has duplicate timestamp %s",
				ErrUnsortedOrDuplicateTimestamps, symbol, sorted[i].Timestamp.Format("2006-01-02"))
		}
	}

	for i, b := range sorted {
		if field := invalidField(b); field != "" {
			return nil, fmt.Errorf("%w: %s bar %d (%s): %s",
				ErrInvalidBarValues, symbol, i, b.Timestamp.Format("2006-01-02"), field)
		}
	}

	series := &contracts.ValidatedSeries{
		Symbol:   symbol,
		MarketID: marketID,
		Bars:     sorted,
	}
	series.Warnings = v.calendarWarnings(symbol, marketID, sorted)
	series.Warnings = append(series.Warnings, containmentWarnings(sorted)...)

	if len(series.Warnings) > 0 {
		v.logger.WithFields(map[string]interface{}{
			"symbol":   symbol,
			"market":   marketID,
			"warnings": len(series.Warnings),
		}).Warn("Series validated with warnings")
	}

	return series, nil
}

// invalidField names the first hard-invalid field of a bar, or "".
func invalidField(b contracts.RawBar) string {
	switch {
	case b.Open <= 0:
		return fmt.Sprintf("open=%g must be > 0", b.Open)
	case b.High <= 0:
		return fmt.Sprintf("high=%g must be > 0", b.High)
	case b.Low <= 0:
		return fmt.Sprintf("low=%g must be > 0", b.Low)
	case b.Close <= 0:
		return fmt.Sprintf("close=%g must be > 0", b.Close)
	case b.High < b.Low:
		return fmt.Sprintf("high=%g < low=%g", b.High, b.Low)
	case b.Volume < 0:
		return fmt.Sprintf("volume=%d must be >= 0", b.Volume)
	}
	return ""
}

// calendarWarnings cross-checks bar dates against the market calendar.
// Provider calendars may lag official ones, so disagreement is a soft
// warning, never a hard failure.
func (v *Validator) calendarWarnings(symbol, marketID string, bars []contracts.RawBar) []contracts.ValidationWarning {
	rules, err := v.registry.Lookup(marketID)
	if err != nil {
		// Unknown market is caught earlier by the detector; here it only
		// means no calendar to check against.
		return nil
	}

	var warnings []contracts.ValidationWarning
	for _, b := range bars {
		if !rules.IsTradingDay(b.Timestamp) {
			warnings = append(warnings, contracts.ValidationWarning{
				Code:    "BAR_ON_CLOSED_DATE",
				Message: fmt.Sprintf("%s has a bar on %s, a non-trading date for %s", symbol, b.Timestamp.Format("2006-01-02"), marketID),
			})
		}
	}

	// Gaps over scheduled sessions: a missing weekday that is not a
	// holiday between two consecutive bars.
	for i := 1; i < len(bars); i++ {
		missed := 0
		for d := bars[i-1].Timestamp.AddDate(0, 0, 1); d.Before(bars[i].Timestamp); d = d.AddDate(0, 0, 1) {
			if rules.IsTradingDay(d) {
				missed++
			}
		}
		if missed > 0 {
			warnings = append(warnings, contracts.ValidationWarning{
				Code: "CALENDAR_GAP",
				Message: fmt.Sprintf("%s misses %d scheduled session(s) between %s and %s",
					symbol, missed, bars[i-1].Timestamp.Format("2006-01-02"), bars[i].Timestamp.Format("2006-01-02")),
			})
		}
	}

	return warnings
}

// containmentWarnings flags open/close drifting outside [low, high].
// Structural inversion (high < low) already failed hard; small drift is
// provider rounding and only worth a warning.
func containmentWarnings(bars []contracts.RawBar) []contracts.ValidationWarning {
	const tolerance = 1e-9

	var warnings []contracts.ValidationWarning
	for i, b := range bars {
		if b.Open < b.Low-tolerance || b.Open > b.High+tolerance ||
			b.Close < b.Low-tolerance || b.Close > b.High+tolerance {
			warnings = append(warnings, contracts.ValidationWarning{
				Code:    "OHLC_CONTAINMENT",
				Message: fmt.Sprintf("bar %d (%s): open/close outside [low, high]", i, b.Timestamp.Format("2006-01-02")),
			})
		}
	}
	return warnings
}
