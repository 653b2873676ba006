package indicator

// computeFib derives Fibonacci retracement and extension levels from the
// rolling window high/low. The 61.8% retracement is the primary series;
// the remaining standard levels are components.
func computeFib(in Input) (Result, error) {
	w := in.Spec.Window(60)

	n := in.Series.Len()
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range in.Series.Bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	hh := rollingMax(highs, w)
	ll := rollingMin(lows, w)

	ratios := map[string]float64{
		"r236": 0.236,
		"r382": 0.382,
		"r500": 0.500,
		"r786": 0.786,
	}
	extensions := map[string]float64{
		"e1272": 1.272,
		"e1618": 1.618,
	}

	primary := newColumn(n)
	components := make(map[string]Column, len(ratios)+len(extensions))
	for name := range ratios {
		components[name] = newColumn(n)
	}
	for name := range extensions {
		components[name] = newColumn(n)
	}

	for i := 0; i < n; i++ {
		if !hh.Valid[i] || !ll.Valid[i] {
			continue
		}
		span := hh.Values[i] - ll.Values[i]
		primary.set(i, hh.Values[i]-0.618*span)
		for name, r := range ratios {
			components[name].set(i, hh.Values[i]-r*span)
		}
		for name, e := range extensions {
			components[name].set(i, ll.Values[i]+e*span)
		}
	}

	return Result{Primary: primary, Components: components}, nil
}
