package models

import "time"

// AssetRecord holds annualised statistics for one symbol over the lookback window.
type AssetRecord struct {
	Symbol        string  `json:"symbol"`
	ReturnPct     float64 `json:"annualized_return_pct"`
	VolatilityPct float64 `json:"volatility_pct"`
	Sharpe        float64 `json:"sharpe"`
}

// PriceSeries is a chronological adjusted-close series. NaN marks a missing day.
type PriceSeries struct {
	Symbol string      `json:"symbol"`
	Dates  []time.Time `json:"dates"`
	Closes []float64   `json:"closes"`
}

func (p PriceSeries) Len() int { return len(p.Closes) }

// Basket is the outcome of the selection policy.
type Basket struct {
	Profile   RiskProfile   `json:"risk_profile"`
	Assets    []AssetRecord `json:"assets"`
	QueryHint string        `json:"query_hint"`
}

func (b Basket) Symbols() []string {
	out := make([]string, len(b.Assets))
	for i, a := range b.Assets {
		out[i] = a.Symbol
	}
	return out
}

// Quote is a live snapshot of one ticker.
type Quote struct {
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name"`
	CurrentPrice   float64 `json:"current_price"`
	DayHigh        float64 `json:"day_high,omitempty"`
	DayLow         float64 `json:"day_low,omitempty"`
	MarketCap      float64 `json:"market_cap,omitempty"`
	FiftyTwoWkHigh float64 `json:"52_week_high,omitempty"`
	FiftyTwoWkLow  float64 `json:"52_week_low,omitempty"`
	Summary        string  `json:"summary,omitempty"`
}
