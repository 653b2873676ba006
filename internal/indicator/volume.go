package indicator

// computeOBV accumulates signed volume: add on up-closes, subtract on
// down-closes, hold on unchanged. Starts at zero on the first session.
func computeOBV(in Input) (Result, error) {
	bars := in.Series.Bars

	col := newColumn(len(bars))
	acc := 0.0
	for i := range bars {
		if i > 0 {
			switch {
			case bars[i].Close > bars[i-1].Close:
				acc += float64(bars[i].Volume)
			case bars[i].Close < bars[i-1].Close:
				acc -= float64(bars[i].Volume)
			}
		}
		col.set(i, acc)
	}
	return Result{Primary: col}, nil
}

func computeVolMA(in Input) (Result, error) {
	w := in.Spec.Window(0)
	return Result{Primary: rollingMean(in.Series.Volumes(), w)}, nil
}

// computeBlockTrade flags sessions whose volume exceeds the rolling mean
// by sigma standard deviations, an estimate of block-trade activity when
// no order-level data is available. Consumes the volume MA as a declared
// dependency.
func computeBlockTrade(in Input) (Result, error) {
	volMA, err := in.dep(0)
	if err != nil {
		return Result{}, err
	}

	w := in.Spec.Window(20)
	sigma := in.Spec.Param("sigma", 2)

	vols := in.Series.Volumes()
	std := rollingStd(vols, w, true)

	col := newColumn(len(vols))
	for i := range vols {
		if !volMA.Points[i].Valid || !std.Valid[i] {
			continue
		}
		threshold := volMA.Points[i].Value + sigma*std.Values[i]
		if vols[i] >= threshold && vols[i] > 0 {
			col.set(i, 1)
		} else {
			col.set(i, 0)
		}
	}
	return Result{Primary: col}, nil
}
