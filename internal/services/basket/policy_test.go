package basket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
)

func rec(sym string, ret, vol, sharpe float64) models.AssetRecord {
	return models.AssetRecord{Symbol: sym, ReturnPct: ret, VolatilityPct: vol, Sharpe: sharpe}
}

func TestUniverseIsFixedAndOrdered(t *testing.T) {
	syms := UniverseSymbols()
	require.Len(t, syms, 27)
	assert.Equal(t, "VOO", syms[0])
	assert.Equal(t, "ETH-USD", syms[26])

	syms[0] = "MUTATED"
	assert.Equal(t, "VOO", UniverseSymbols()[0])

	c, ok := ClassOf("TLT")
	assert.True(t, ok)
	assert.Equal(t, ClassBond, c)
}

func TestClassifySpeculativeAssets(t *testing.T) {
	cases := map[string]AssetClass{
		"HYG":     ClassHighYield,
		"BTC-USD": ClassCrypto,
		"ETH-USD": ClassCrypto,
		"SOL-USD": ClassCrypto,
		"HYG.L":   ClassHighYield,
		"LQD":     ClassBond,
		"ZZZ":     "",
	}
	for sym, want := range cases {
		assert.Equal(t, want, Classify(sym), sym)
	}

	var flagged []string
	for _, s := range UniverseSymbols() {
		if Classify(s).Speculative() {
			flagged = append(flagged, s)
		}
	}
	assert.Equal(t, []string{"HYG", "BTC-USD", "ETH-USD"}, flagged)
}

func TestLowRiskFiltersAndSortsByVolatility(t *testing.T) {
	records := []models.AssetRecord{
		rec("QQQ", 18, 22, 0.8),
		rec("BND", 3, 5, 0.6),
		rec("HYG", 5, 8, 0.6),
		rec("BTC-USD", 60, 70, 0.9),
		rec("SHY", 2, 1.5, 1.3),
		rec("GLD", 7, 15, 0.5),
		rec("VTV", 9, 19.99, 0.45),
		rec("XLE", 8, 20, 0.4),
	}
	b := Select(records, models.RiskLow)
	assert.Equal(t, []string{"SHY", "BND", "GLD", "VTV"}, b.Symbols())
	assert.Equal(t, "market outlook for low-volatility assets like bonds and stable ETFs", b.QueryHint)
}

func TestLowRiskCanBeEmpty(t *testing.T) {
	b := Select([]models.AssetRecord{rec("QQQ", 18, 25, 0.7), rec("ETH-USD", 50, 80, 0.6)}, models.RiskLow)
	assert.Empty(t, b.Assets)
	assert.Equal(t, models.RiskLow, b.Profile)
}

func TestMediumSortsBySharpeAndTruncates(t *testing.T) {
	var records []models.AssetRecord
	for i := 0; i < 8; i++ {
		records = append(records, rec(fmt.Sprintf("S%d", i), 10, 15, float64(i)/10))
	}
	b := Select(records, models.RiskMedium)
	assert.Equal(t, []string{"S7", "S6", "S5", "S4", "S3"}, b.Symbols())
}

func TestMediumDropsVolatileAssets(t *testing.T) {
	records := []models.AssetRecord{
		rec("BTC-USD", 60, 70, 0.86),
		rec("QQQ", 18, 22, 0.8),
		rec("ARKK", 12, 35, 2.0),
		rec("BND", 3, 5, 0.6),
	}
	b := Select(records, models.RiskMedium)
	assert.Equal(t, []string{"QQQ", "BND"}, b.Symbols())
}

func TestHighFiltersByReturnAndSortsBySharpe(t *testing.T) {
	records := []models.AssetRecord{
		rec("BND", 3, 5, 1.6),
		rec("BTC-USD", 60, 70, 0.86),
		rec("QQQ", 18, 22, 0.9),
		rec("GLD", 5, 15, 2.0),
	}
	b := Select(records, models.RiskHigh)
	assert.Equal(t, []string{"QQQ", "BTC-USD"}, b.Symbols())
	assert.Equal(t, "market outlook for high-growth assets like NASDAQ, Bitcoin, and emerging markets", b.QueryHint)
}

func TestHighCanBeEmpty(t *testing.T) {
	b := Select([]models.AssetRecord{rec("BND", 3, 5, 0.6)}, models.RiskHigh)
	assert.Empty(t, b.Assets)
}

func TestTiesKeepInputOrder(t *testing.T) {
	records := []models.AssetRecord{rec("A", 10, 10, 1), rec("B", 10, 10, 1), rec("C", 10, 10, 1)}
	for _, p := range models.RiskProfiles {
		assert.Equal(t, []string{"A", "B", "C"}, Select(records, p).Symbols(), string(p))
	}
}

func TestUnknownProfileFallsBackToMedium(t *testing.T) {
	records := []models.AssetRecord{rec("A", 30, 10, 0.1), rec("B", 5, 10, 2)}
	b := Select(records, models.RiskProfile("Aggressive"))
	assert.Equal(t, models.RiskMedium, b.Profile)
	assert.Equal(t, []string{"B", "A"}, b.Symbols())
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	records := []models.AssetRecord{rec("A", 10, 1, 1), rec("B", 20, 2, 2)}
	Select(records, models.RiskHigh)
	assert.Equal(t, "A", records[0].Symbol)
}
