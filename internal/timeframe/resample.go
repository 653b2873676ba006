package timeframe

import (
	"fmt"
	"time"

	"stocklens/internal/contracts"
)

// Timeframe is a resampling bucket size for daily series.
type Timeframe string

const (
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

// Resample aggregates a daily validated series into weekly or monthly
// bars: first open, max high, min low, last close, summed volume. Each
// bucket is stamped with its last contained session. Pure; the input is
// never mutated.
func Resample(series *contracts.ValidatedSeries, tf Timeframe) (*contracts.ValidatedSeries, error) {
	switch tf {
	case Weekly, Monthly:
	default:
		return nil, fmt.Errorf("unsupported timeframe %q", tf)
	}

	out := &contracts.ValidatedSeries{
		Symbol:   series.Symbol,
		MarketID: series.MarketID,
	}

	var current contracts.RawBar
	currentKey := ""
	open := false

	flush := func() {
		if open {
			out.Bars = append(out.Bars, current)
			open = false
		}
	}

	for _, b := range series.Bars {
		key := bucketKey(b.Timestamp, tf)
		if key != currentKey {
			flush()
			currentKey = key
			current = b
			open = true
			continue
		}
		if b.High > current.High {
			current.High = b.High
		}
		if b.Low < current.Low {
			current.Low = b.Low
		}
		current.Close = b.Close
		current.Volume += b.Volume
		current.Timestamp = b.Timestamp
	}
	flush()

	return out, nil
}

// bucketKey groups a session date into its ISO week or calendar month.
func bucketKey(t time.Time, tf Timeframe) string {
	if tf == Weekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return t.Format("2006-01")
}
