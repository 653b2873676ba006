package capitalflow

import (
	"fmt"
	"math"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// ErrInsufficientData is returned when the series is too short to derive
// a flow direction; the comparison against the prior session needs at
// least two bars.
var ErrInsufficientData = fmt.Errorf("insufficient data for capital flow analysis")

// Config tunes the analyzer. Values come from the indicator config file.
type Config struct {
	// Threshold is the relative typical-price move below which a session
	// classifies as neutral.
	Threshold float64

	// MomentumPeriod is the lookback for the flow momentum metric.
	MomentumPeriod int

	// DivergenceWindow is the lookback for the price/flow divergence
	// metric.
	DivergenceWindow int
}

// DefaultConfig mirrors the shipped indicator config defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.005,
		MomentumPeriod:   5,
		DivergenceWindow: 20,
	}
}

// Analyzer derives per-session money-flow estimates and summary metrics
// from price/volume history. It consumes calculator outputs (volume MA,
// money flow ratio) when present but degrades gracefully without them.
type Analyzer struct {
	config Config
	logger *logger.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config, log *logger.Logger) *Analyzer {
	return &Analyzer{config: cfg, logger: log}
}

// Analyze produces the capital flow record for one validated series.
// Fails with ErrInsufficientData below two sessions.
func (a *Analyzer) Analyze(series *contracts.ValidatedSeries, indicators map[string]*contracts.IndicatorSeries) (*contracts.CapitalFlowRecord, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("%w: %s has %d session(s), need at least 2", ErrInsufficientData, series.Symbol, series.Len())
	}

	record := &contracts.CapitalFlowRecord{
		Symbol: series.Symbol,
		Points: a.classify(series),
	}
	record.Metrics = a.deriveMetrics(series, record.Points, indicators)

	a.logger.WithFields(map[string]interface{}{
		"symbol":    series.Symbol,
		"sessions":  len(record.Points),
		"net_ratio": record.Metrics.NetInflowRatio,
		"trend":     record.Metrics.Trend,
	}).Debug("Capital flow analyzed")

	return record, nil
}

// classify signs each session's typical-price-times-volume flow by the
// typical-price move against the prior session. The first session has no
// comparison point and is always neutral with zero net flow.
func (a *Analyzer) classify(series *contracts.ValidatedSeries) []contracts.FlowPoint {
	bars := series.Bars
	points := make([]contracts.FlowPoint, len(bars))
	points[0] = contracts.FlowPoint{
		Timestamp: bars[0].Timestamp,
		Direction: contracts.FlowNeutral,
	}

	for i := 1; i < len(bars); i++ {
		tp := bars[i].TypicalPrice()
		prevTP := bars[i-1].TypicalPrice()
		flow := tp * float64(bars[i].Volume)

		move := (tp - prevTP) / prevTP
		point := contracts.FlowPoint{Timestamp: bars[i].Timestamp}
		switch {
		case math.Abs(move) < a.config.Threshold:
			point.Direction = contracts.FlowNeutral
			point.NetInflow = 0
		case move > 0:
			point.Direction = contracts.FlowInflow
			point.NetInflow = flow
		default:
			point.Direction = contracts.FlowOutflow
			point.NetInflow = -flow
		}
		points[i] = point
	}
	return points
}

// deriveMetrics computes the summary metrics over the classified points.
func (a *Analyzer) deriveMetrics(series *contracts.ValidatedSeries, points []contracts.FlowPoint, indicators map[string]*contracts.IndicatorSeries) contracts.FlowMetrics {
	var inflow, outflow float64
	for _, p := range points {
		switch p.Direction {
		case contracts.FlowInflow:
			inflow += p.NetInflow
		case contracts.FlowOutflow:
			outflow += -p.NetInflow
		}
	}

	m := contracts.FlowMetrics{
		NetInflowRatio:     netInflowRatio(inflow, outflow),
		FlowMomentum:       a.flowMomentum(series),
		FlowDivergence:     a.flowDivergence(series),
		ConcentrationIndex: a.concentration(series, indicators),
		Trend:              trend(points),
	}
	m.SentimentScore = sentimentScore(m)
	m.AdjustedSentiment = adjustedSentiment(m.SentimentScore, a.realizedVolatility(series, indicators))
	return m
}

// netInflowRatio is (in - out) / (in + out) * 100, zero when flat.
func netInflowRatio(inflow, outflow float64) float64 {
	total := inflow + outflow
	if total == 0 {
		return 0
	}
	return (inflow - outflow) / total * 100
}

// flowMomentum is the percent change of session flow over the momentum
// period, measured at the last session.
func (a *Analyzer) flowMomentum(series *contracts.ValidatedSeries) float64 {
	period := a.config.MomentumPeriod
	bars := series.Bars
	last := len(bars) - 1
	if last-period < 0 {
		return 0
	}
	base := bars[last-period].TypicalPrice() * float64(bars[last-period].Volume)
	if base == 0 {
		return 0
	}
	current := bars[last].TypicalPrice() * float64(bars[last].Volume)
	return (current/base - 1) * 100
}

// flowDivergence is the price return minus the flow return over the
// divergence window, at the last session. A positive value means price
// outran money flow.
func (a *Analyzer) flowDivergence(series *contracts.ValidatedSeries) float64 {
	w := a.config.DivergenceWindow
	bars := series.Bars
	last := len(bars) - 1
	if last-w < 0 {
		return 0
	}

	priceBase := bars[last-w].Close
	flowBase := bars[last-w].TypicalPrice() * float64(bars[last-w].Volume)
	if priceBase == 0 || flowBase == 0 {
		return 0
	}

	priceReturn := bars[last].Close/priceBase - 1
	flowReturn := (bars[last].TypicalPrice()*float64(bars[last].Volume))/flowBase - 1
	return priceReturn - flowReturn
}

// concentration estimates the block-trade share of turnover: the turnover
// of sessions flagged by the block_trade indicator over total turnover.
// Without the indicator it falls back to a 2-sigma volume rule.
func (a *Analyzer) concentration(series *contracts.ValidatedSeries, indicators map[string]*contracts.IndicatorSeries) float64 {
	bars := series.Bars

	var total, block float64
	flags := indicators["block_trade"]
	if flags != nil && flags.Len() == len(bars) {
		for i, b := range bars {
			turnover := b.Turnover()
			total += turnover
			if flags.Points[i].Valid && flags.Points[i].Value > 0 {
				block += turnover
			}
		}
	} else {
		mean, std := volumeStats(bars)
		for _, b := range bars {
			turnover := b.Turnover()
			total += turnover
			if float64(b.Volume) >= mean+2*std {
				block += turnover
			}
		}
	}

	if total == 0 {
		return 0
	}
	return block / total * 100
}

func volumeStats(bars []contracts.RawBar) (mean, std float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	for _, b := range bars {
		mean += float64(b.Volume)
	}
	mean /= float64(len(bars))
	for _, b := range bars {
		d := float64(b.Volume) - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(bars)))
	return mean, std
}

// trend compares the mean signed flow of the last five sessions against
// the five before them.
func trend(points []contracts.FlowPoint) contracts.FlowTrend {
	if len(points) < 10 {
		return contracts.TrendStable
	}

	recent := meanNetFlow(points[len(points)-5:])
	prior := meanNetFlow(points[len(points)-10 : len(points)-5])

	scale := math.Max(math.Abs(recent), math.Abs(prior))
	if scale == 0 {
		return contracts.TrendStable
	}
	diff := (recent - prior) / scale

	switch {
	case diff > 0.5:
		return contracts.TrendStrongUp
	case diff > 0.1:
		return contracts.TrendUp
	case diff < -0.5:
		return contracts.TrendStrongDown
	case diff < -0.1:
		return contracts.TrendDown
	default:
		return contracts.TrendStable
	}
}

// sentimentScore is a 0-100 composite of the derived metrics: the net
// inflow ratio anchors the score, momentum and divergence tilt it. The
// weights are fixed so identical inputs always score identically.
func sentimentScore(m contracts.FlowMetrics) float64 {
	score := 50.0
	score += m.NetInflowRatio * 0.35               // -35..+35
	score += math.Tanh(m.FlowMomentum/100) * 10    // -10..+10
	score -= math.Tanh(m.FlowDivergence) * 5       // price outrunning flow is fragile
	return clamp(score, 0, 100)
}

// referenceVol is the annualized volatility (percent) at which the
// sentiment tilt is halved.
const referenceVol = 30.0

// volFallbackWindow is the log-return lookback for the fallback
// volatility estimate.
const volFallbackWindow = 20

// adjustedSentiment damps the sentiment score's distance from neutral by
// realized volatility: the same flow reading carries less conviction in a
// choppy name than in a quiet one.
func adjustedSentiment(score, vol float64) float64 {
	if vol <= 0 {
		return score
	}
	factor := referenceVol / (referenceVol + vol)
	return clamp(50+(score-50)*factor, 0, 100)
}

// realizedVolatility prefers the hv indicator's latest value and falls
// back to the annualized standard deviation of recent log returns. The
// fallback assumes a 250-day year; the indicator path carries the
// market's own trading-day count.
func (a *Analyzer) realizedVolatility(series *contracts.ValidatedSeries, indicators map[string]*contracts.IndicatorSeries) float64 {
	if hv := indicators["hv"]; hv != nil {
		if last, ok := hv.Last(); ok {
			return last.Value
		}
	}

	closes := series.Closes()
	w := volFallbackWindow
	if w > len(closes)-1 {
		w = len(closes) - 1
	}
	if w < 2 {
		return 0
	}

	returns := make([]float64, 0, w)
	for i := len(closes) - w; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(250) * 100
}

func meanNetFlow(points []contracts.FlowPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.NetInflow
	}
	return sum / float64(len(points))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
