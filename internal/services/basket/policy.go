package basket

import (
	"sort"

	"NeoFin/internal/domain/models"
)

// Size is the number of assets in a basket.
const Size = 5

// Exclusive filter thresholds, in percent.
const (
	lowRiskMaxVolatilityPct    = 20
	mediumRiskMaxVolatilityPct = 35
	highRiskMinReturnPct       = 5
)

var queryHints = map[models.RiskProfile]string{
	models.RiskLow:    "market outlook for low-volatility assets like bonds and stable ETFs",
	models.RiskMedium: "market outlook for balanced assets like S&P 500 and diversified ETFs",
	models.RiskHigh:   "market outlook for high-growth assets like NASDAQ, Bitcoin, and emerging markets",
}

// QueryHint is the news query that goes with a profile's basket.
func QueryHint(p models.RiskProfile) string {
	if q, ok := queryHints[p]; ok {
		return q
	}
	return queryHints[models.RiskMedium]
}

// speculative flags symbols Low risk never holds: high-yield credit and crypto.
func speculative(symbol string) bool {
	return Classify(symbol).Speculative()
}

// Select ranks records for the profile and keeps the top Size.
//
//	Low:    volatility < 20% and not speculative, lowest volatility first
//	Medium: volatility < 35%, highest Sharpe first
//	High:   return > 5%, highest Sharpe first
//
// Any other profile is treated as Medium. Ties keep input order. The result
// may be shorter than Size, or empty; records are never modified.
func Select(records []models.AssetRecord, profile models.RiskProfile) models.Basket {
	pool := make([]models.AssetRecord, 0, len(records))
	switch profile {
	case models.RiskLow:
		for _, r := range records {
			if r.VolatilityPct < lowRiskMaxVolatilityPct && !speculative(r.Symbol) {
				pool = append(pool, r)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].VolatilityPct < pool[j].VolatilityPct })
	case models.RiskHigh:
		for _, r := range records {
			if r.ReturnPct > highRiskMinReturnPct {
				pool = append(pool, r)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].Sharpe > pool[j].Sharpe })
	default:
		profile = models.RiskMedium
		for _, r := range records {
			if r.VolatilityPct < mediumRiskMaxVolatilityPct {
				pool = append(pool, r)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].Sharpe > pool[j].Sharpe })
	}

	if len(pool) > Size {
		pool = pool[:Size]
	}
	return models.Basket{Profile: profile, Assets: pool, QueryHint: QueryHint(profile)}
}
