package indicator

import (
	"fmt"
	"math"
)

// computeHV is annualized historical volatility: the sample standard
// deviation of log returns over the window, scaled by the square root of
// the market's annual trading-day count (250 for HK, 240 for CN) and
// expressed in percent.
func computeHV(in Input) (Result, error) {
	w := in.Spec.Window(20)
	closes := in.Series.Closes()

	col := newColumn(len(closes))
	if len(closes) <= w {
		return Result{Primary: col}, nil
	}

	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		returns[i] = math.Log(closes[i] / closes[i-1])
	}

	annual := math.Sqrt(float64(in.Profile.AnnualTradingDays))
	// window of w returns needs w+1 bars; returns[0] is undefined
	std := rollingStd(returns[1:], w, true)
	for i := range std.Values {
		if std.Valid[i] {
			col.set(i+1, std.Values[i]*annual*100)
		}
	}
	return Result{Primary: col}, nil
}

// computeVolIndex blends short- and long-window historical volatility
// (0.7/0.3) and normalizes by the trailing maximum over up to norm_window
// valid sessions, yielding a 0-100 scale.
func computeVolIndex(in Input) (Result, error) {
	hvShort, err := in.dep(0)
	if err != nil {
		return Result{}, err
	}
	hvLong, err := in.dep(1)
	if err != nil {
		return Result{}, err
	}

	normW := int(in.Spec.Param("norm_window", 100))
	if normW < 1 {
		return Result{}, fmt.Errorf("norm_window must be >= 1")
	}

	n := in.Series.Len()
	composite := newColumn(n)
	for i := 0; i < n; i++ {
		if hvShort.Points[i].Valid && hvLong.Points[i].Valid {
			composite.set(i, 0.7*hvShort.Points[i].Value+0.3*hvLong.Points[i].Value)
		}
	}

	col := newColumn(n)
	for i := 0; i < n; i++ {
		if !composite.Valid[i] {
			continue
		}
		max := 0.0
		seen := 0
		for j := i; j >= 0 && seen < normW; j-- {
			if !composite.Valid[j] {
				continue
			}
			if composite.Values[j] > max {
				max = composite.Values[j]
			}
			seen++
		}
		if max > 0 {
			col.set(i, composite.Values[i]/max*100)
		} else {
			col.set(i, 0)
		}
	}
	return Result{Primary: col}, nil
}
