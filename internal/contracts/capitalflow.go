package contracts

import "time"

// FlowDirection classifies one session's estimated net money flow.
type FlowDirection string

const (
	FlowInflow  FlowDirection = "inflow"
	FlowOutflow FlowDirection = "outflow"
	FlowNeutral FlowDirection = "neutral"
)

// FlowPoint is the per-session capital flow estimate: typical price times
// volume, signed by the typical-price move against the prior session.
type FlowPoint struct {
	Timestamp time.Time     `json:"timestamp"`
	NetInflow float64       `json:"net_inflow"`
	Direction FlowDirection `json:"direction"`
}

// FlowTrend labels the recent flow direction of a symbol.
type FlowTrend string

const (
	TrendStrongUp   FlowTrend = "strong_up"
	TrendUp         FlowTrend = "up"
	TrendStable     FlowTrend = "stable"
	TrendDown       FlowTrend = "down"
	TrendStrongDown FlowTrend = "strong_down"
)

// FlowMetrics are the derived summary metrics of a capital flow record.
type FlowMetrics struct {
	NetInflowRatio     float64   `json:"net_inflow_ratio"`    // (in-out)/(in+out) * 100
	FlowMomentum       float64   `json:"flow_momentum"`       // pct change of flow over the momentum period
	FlowDivergence     float64   `json:"flow_divergence"`     // price return minus flow return over the window
	ConcentrationIndex float64   `json:"concentration_index"` // block-trade share of turnover, 0-100
	SentimentScore     float64   `json:"sentiment_score"`     // 0-100 composite
	AdjustedSentiment  float64   `json:"adjusted_sentiment"`  // 0-100, tilt damped by realized volatility
	Trend              FlowTrend `json:"trend"`
}

// CapitalFlowRecord is the capital flow derivation for one symbol:
// one FlowPoint per session plus summary metrics. Read-only once produced.
type CapitalFlowRecord struct {
	Symbol  string      `json:"symbol"`
	Points  []FlowPoint `json:"points"`
	Metrics FlowMetrics `json:"metrics"`
}

// Len returns the number of sessions covered.
func (r *CapitalFlowRecord) Len() int {
	return len(r.Points)
}
