package contracts

// MarketProfile is the static trading-convention rule set for one market.
// Profiles are loaded once at process start and never mutated.
type MarketProfile struct {
	ID                string  `json:"id"`   // "HK", "CN"
	Name              string  `json:"name"` // human readable
	Currency          string  `json:"currency"`
	TickSize          float64 `json:"tick_size"`
	LotSize           int     `json:"lot_size"`
	AnnualTradingDays int     `json:"annual_trading_days"`
	Timezone          string  `json:"timezone"`
}
