package indicator

// computeRSI uses simple means of gains and losses over the window, per
// Wilder's original smoothing replaced by the plain rolling form: the
// first valid point needs window deltas, i.e. window+1 bars.
func computeRSI(in Input) (Result, error) {
	w := in.Spec.Window(14)
	closes := in.Series.Closes()

	col := newColumn(len(closes))
	if len(closes) <= w {
		return Result{Primary: col}, nil
	}

	for i := w; i < len(closes); i++ {
		gains, losses := 0.0, 0.0
		for j := i - w + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses += -change
			}
		}

		avgGain := gains / float64(w)
		avgLoss := losses / float64(w)

		var rsi float64
		switch {
		case avgLoss == 0 && avgGain == 0:
			rsi = 50
		case avgLoss == 0:
			rsi = 100
		default:
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}
		col.set(i, rsi)
	}
	return Result{Primary: col}, nil
}

// computeStoch emits %K as primary and %D (an SMA of %K over the smooth
// parameter) as a component. A flat window (high == low) reads as 50.
func computeStoch(in Input) (Result, error) {
	w := in.Spec.Window(14)
	smooth := int(in.Spec.Param("smooth", 3))

	n := in.Series.Len()
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range in.Series.Bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	hh := rollingMax(highs, w)
	ll := rollingMin(lows, w)

	k := newColumn(n)
	for i := 0; i < n; i++ {
		if !hh.Valid[i] || !ll.Valid[i] {
			continue
		}
		span := hh.Values[i] - ll.Values[i]
		if span == 0 {
			k.set(i, 50)
			continue
		}
		k.set(i, 100*(in.Series.Bars[i].Close-ll.Values[i])/span)
	}

	d := smaOfColumn(k, smooth)

	return Result{
		Primary:    k,
		Components: map[string]Column{"d": d},
	}, nil
}
