package indicator

import "math"

// Rolling-window primitives shared by the formula implementations. All of
// them return columns aligned to the input slice, invalid until a full
// window is available.

func rollingMean(vals []float64, w int) Column {
	col := newColumn(len(vals))
	if w < 1 || len(vals) < w {
		return col
	}

	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= w {
			sum -= vals[i-w]
		}
		if i >= w-1 {
			col.set(i, sum/float64(w))
		}
	}
	return col
}

// rollingStd computes the rolling standard deviation. sample selects the
// n-1 denominator; population uses n.
func rollingStd(vals []float64, w int, sample bool) Column {
	col := newColumn(len(vals))
	if w < 2 || len(vals) < w {
		return col
	}

	den := float64(w)
	if sample {
		den = float64(w - 1)
	}

	for i := w - 1; i < len(vals); i++ {
		mean := 0.0
		for j := i - w + 1; j <= i; j++ {
			mean += vals[j]
		}
		mean /= float64(w)

		ss := 0.0
		for j := i - w + 1; j <= i; j++ {
			d := vals[j] - mean
			ss += d * d
		}
		col.set(i, math.Sqrt(ss/den))
	}
	return col
}

func rollingMax(vals []float64, w int) Column {
	col := newColumn(len(vals))
	if w < 1 || len(vals) < w {
		return col
	}
	for i := w - 1; i < len(vals); i++ {
		max := vals[i-w+1]
		for j := i - w + 2; j <= i; j++ {
			if vals[j] > max {
				max = vals[j]
			}
		}
		col.set(i, max)
	}
	return col
}

func rollingMin(vals []float64, w int) Column {
	col := newColumn(len(vals))
	if w < 1 || len(vals) < w {
		return col
	}
	for i := w - 1; i < len(vals); i++ {
		min := vals[i-w+1]
		for j := i - w + 2; j <= i; j++ {
			if vals[j] < min {
				min = vals[j]
			}
		}
		col.set(i, min)
	}
	return col
}

// smaOfColumn applies a w-SMA over the valid run of a column. Validity
// starts once w valid inputs have accumulated after the column's first
// valid index.
func smaOfColumn(in Column, w int) Column {
	out := newColumn(len(in.Values))
	if w < 1 {
		return out
	}

	count := 0
	sum := 0.0
	for i := range in.Values {
		if !in.Valid[i] {
			// leading invalid region; columns are invalid only as a prefix
			continue
		}
		sum += in.Values[i]
		count++
		if count > w {
			sum -= in.Values[i-w]
		}
		if count >= w {
			out.set(i, sum/float64(w))
		}
	}
	return out
}

// emaOfColumn applies an exponential moving average over the valid run of
// a column, seeded with the SMA of the first w valid values and smoothed
// with 2/(w+1).
func emaOfColumn(in Column, w int) Column {
	out := newColumn(len(in.Values))
	if w < 1 {
		return out
	}

	alpha := 2.0 / (float64(w) + 1.0)
	count := 0
	seed := 0.0
	prev := 0.0
	for i := range in.Values {
		if !in.Valid[i] {
			continue
		}
		count++
		switch {
		case count < w:
			seed += in.Values[i]
		case count == w:
			seed += in.Values[i]
			prev = seed / float64(w)
			out.set(i, prev)
		default:
			prev = in.Values[i]*alpha + prev*(1-alpha)
			out.set(i, prev)
		}
	}
	return out
}

// fullColumn wraps raw values as an all-valid column.
func fullColumn(vals []float64) Column {
	col := Column{
		Values: vals,
		Valid:  make([]bool, len(vals)),
	}
	for i := range col.Valid {
		col.Valid[i] = true
	}
	return col
}
