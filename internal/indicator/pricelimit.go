package indicator

import "strings"

// computePriceLimit is A-share specific: mainland boards cap the daily
// move at ±10% (main board) or ±20% (STAR Market and ChiNext). The
// primary series is the signed proximity of the session return to its
// board limit; the "flag" component marks limit-up (+1) and limit-down
// (-1) sessions using a half-percent-point margin under the cap.
func computePriceLimit(in Input) (Result, error) {
	limit := boardLimit(in.Series.Symbol)
	margin := in.Spec.Param("margin", 0.005)

	bars := in.Series.Bars
	proximity := newColumn(len(bars))
	flag := newColumn(len(bars))
	for i := 1; i < len(bars); i++ {
		ret := (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
		proximity.set(i, ret/limit)
		switch {
		case ret >= limit-margin:
			flag.set(i, 1)
		case ret <= -(limit - margin):
			flag.set(i, -1)
		default:
			flag.set(i, 0)
		}
	}

	return Result{
		Primary:    proximity,
		Components: map[string]Column{"flag": flag},
	}, nil
}

// boardLimit maps a normalized A-share symbol to its daily limit band.
func boardLimit(symbol string) float64 {
	code := symbol
	if i := strings.IndexByte(code, '.'); i >= 0 {
		code = code[:i]
	}
	switch {
	case strings.HasPrefix(code, "688"), strings.HasPrefix(code, "689"):
		return 0.20 // STAR Market
	case strings.HasPrefix(code, "300"), strings.HasPrefix(code, "301"):
		return 0.20 // ChiNext
	default:
		return 0.10
	}
}
