package indicator

// computeMoneyFlow is the positive share of typical-price-times-volume
// flow over the window, on a 0-100 scale. A session counts as positive
// flow when its close rose against the prior session. A window with zero
// total flow reads as the neutral 50.
func computeMoneyFlow(in Input) (Result, error) {
	w := in.Spec.Window(20)
	bars := in.Series.Bars

	col := newColumn(len(bars))
	if len(bars) <= w {
		return Result{Primary: col}, nil
	}

	pos := make([]float64, len(bars))
	neg := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		flow := bars[i].TypicalPrice() * float64(bars[i].Volume)
		if bars[i].Close > bars[i-1].Close {
			pos[i] = flow
		} else {
			neg[i] = flow
		}
	}

	// the first bar has no prior close and contributes to neither side,
	// so a full window of classified sessions starts at index w
	for i := w; i < len(bars); i++ {
		posSum, negSum := 0.0, 0.0
		for j := i - w + 1; j <= i; j++ {
			posSum += pos[j]
			negSum += neg[j]
		}
		total := posSum + negSum
		if total == 0 {
			col.set(i, 50)
			continue
		}
		col.set(i, posSum/total*100)
	}
	return Result{Primary: col}, nil
}
