package indicator

// computeMACD consumes two declared EMA dependencies (fast, slow) and
// emits the MACD line plus "signal" and "hist" components. The signal
// line is an EMA of the MACD line with the signal window's own smoothing
// factor.
func computeMACD(in Input) (Result, error) {
	fast, err := in.dep(0)
	if err != nil {
		return Result{}, err
	}
	slow, err := in.dep(1)
	if err != nil {
		return Result{}, err
	}

	n := in.Series.Len()
	macd := newColumn(n)
	for i := 0; i < n; i++ {
		if fast.Points[i].Valid && slow.Points[i].Valid {
			macd.set(i, fast.Points[i].Value-slow.Points[i].Value)
		}
	}

	signalW := int(in.Spec.Param("signal", 9))
	signal := emaOfColumn(macd, signalW)

	hist := newColumn(n)
	for i := 0; i < n; i++ {
		if macd.Valid[i] && signal.Valid[i] {
			hist.set(i, macd.Values[i]-signal.Values[i])
		}
	}

	return Result{
		Primary: macd,
		Components: map[string]Column{
			"signal": signal,
			"hist":   hist,
		},
	}, nil
}
