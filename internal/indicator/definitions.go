package indicator

import "stocklens/internal/market"

// catalog is the full formula catalog keyed by formula id. Every entry is
// fixed at process start; the config loader validates specs against it
// before any pipeline run.
var catalog = map[string]Definition{
	"sma": {
		ID:      "sma",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeSMA,
	},
	"ema": {
		ID:      "ema",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeEMA,
	},
	"wma": {
		ID:      "wma",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeWMA,
	},
	"macd": {
		ID:      "macd",
		Params:  []ParamSpec{{Name: "signal", Min: 1}},
		NumDeps: 2, // fast EMA, slow EMA
		Compute: computeMACD,
	},
	"rsi": {
		ID:      "rsi",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 2}},
		Compute: computeRSI,
	},
	"stoch": {
		ID:      "stoch",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}, {Name: "smooth", Min: 1}},
		Compute: computeStoch,
	},
	"boll": {
		ID:      "boll",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 2}, {Name: "k", Min: 0}},
		NumDeps: 1, // middle band SMA
		Compute: computeBoll,
	},
	"atr": {
		ID:      "atr",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeATR,
	},
	"obv": {
		ID:      "obv",
		Compute: computeOBV,
	},
	"vol_ma": {
		ID:      "vol_ma",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeVolMA,
	},
	"hv": {
		ID:      "hv",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 2}},
		Compute: computeHV,
	},
	"vol_index": {
		ID:      "vol_index",
		Params:  []ParamSpec{{Name: "norm_window", Min: 1}},
		NumDeps: 2, // short HV, long HV
		Compute: computeVolIndex,
	},
	"money_flow": {
		ID:      "money_flow",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 1}},
		Compute: computeMoneyFlow,
	},
	"block_trade": {
		ID:      "block_trade",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 2}, {Name: "sigma", Min: 0}},
		NumDeps: 1, // volume MA
		Compute: computeBlockTrade,
	},
	"fib": {
		ID:      "fib",
		Params:  []ParamSpec{{Name: "window", Required: true, Min: 2}},
		Compute: computeFib,
	},
	"price_limit": {
		ID:      "price_limit",
		Params:  []ParamSpec{{Name: "margin", Min: 0}},
		Markets: []string{market.CN},
		Compute: computePriceLimit,
	},
}
