package indicator

import "math"

// computeBoll consumes its middle band as a declared SMA dependency and
// adds upper/lower bands at k population standard deviations, plus a
// relative "width" component.
func computeBoll(in Input) (Result, error) {
	mid, err := in.dep(0)
	if err != nil {
		return Result{}, err
	}

	w := in.Spec.Window(20)
	k := in.Spec.Param("k", 2)

	sigma := rollingStd(in.Series.Closes(), w, false)

	n := in.Series.Len()
	middle := newColumn(n)
	upper := newColumn(n)
	lower := newColumn(n)
	width := newColumn(n)
	for i := 0; i < n; i++ {
		if !mid.Points[i].Valid || !sigma.Valid[i] {
			continue
		}
		m := mid.Points[i].Value
		band := k * sigma.Values[i]
		middle.set(i, m)
		upper.set(i, m+band)
		lower.set(i, m-band)
		// prices are validated > 0, so a valid middle band is > 0
		width.set(i, 2*band/m)
	}

	return Result{
		Primary: middle,
		Components: map[string]Column{
			"upper": upper,
			"lower": lower,
			"width": width,
		},
	}, nil
}

// computeATR is the simple moving average of true range. The first bar's
// true range falls back to high-low since no prior close exists.
func computeATR(in Input) (Result, error) {
	w := in.Spec.Window(14)
	bars := in.Series.Bars

	tr := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			tr[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}

	return Result{Primary: rollingMean(tr, w)}, nil
}
