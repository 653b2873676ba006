package indicator

import "fmt"

// Moving average family: simple, exponential, and linearly weighted.
// A window of length w leaves the first w-1 points marked insufficient.

func computeSMA(in Input) (Result, error) {
	w := in.Spec.Window(0)
	return Result{Primary: rollingMean(in.Series.Closes(), w)}, nil
}

// computeEMA seeds with the SMA of the first w closes and then applies
// the recursive form with smoothing factor 2/(w+1). The factor is derived
// from the window, never a free constant, so two runs with the same input
// are bit-identical.
func computeEMA(in Input) (Result, error) {
	w := in.Spec.Window(0)
	return Result{Primary: emaOfColumn(fullColumn(in.Series.Closes()), w)}, nil
}

// computeWMA weights the window linearly, most recent close heaviest.
func computeWMA(in Input) (Result, error) {
	w := in.Spec.Window(0)
	closes := in.Series.Closes()

	col := newColumn(len(closes))
	if w < 1 {
		return Result{}, fmt.Errorf("window must be >= 1")
	}
	if len(closes) < w {
		return Result{Primary: col}, nil
	}

	weightSum := float64(w*(w+1)) / 2
	for i := w - 1; i < len(closes); i++ {
		acc := 0.0
		for j := 0; j < w; j++ {
			acc += closes[i-w+1+j] * float64(j+1)
		}
		col.set(i, acc/weightSum)
	}
	return Result{Primary: col}, nil
}
