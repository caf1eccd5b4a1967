// Package basket picks the assets a plan is built around.
package basket

import "strings"

// AssetClass groups universe members.
type AssetClass string

const (
	ClassUSEquity   AssetClass = "US equity"
	ClassSector     AssetClass = "US sector"
	ClassIntlEquity AssetClass = "International equity"
	ClassBond       AssetClass = "Bond"
	ClassHighYield  AssetClass = "High-yield bond"
	ClassRealEstate AssetClass = "Real estate"
	ClassCommodity  AssetClass = "Commodity"
	ClassCrypto     AssetClass = "Crypto"
)

type Asset struct {
	Symbol string
	Class  AssetClass
}

// universe is fixed and ordered; its order is the tie-break of the ranking.
var universe = []Asset{
	{"VOO", ClassUSEquity}, {"VUG", ClassUSEquity}, {"VTV", ClassUSEquity},
	{"VO", ClassUSEquity}, {"VB", ClassUSEquity}, {"QQQ", ClassUSEquity},
	{"XLK", ClassSector}, {"XLF", ClassSector}, {"XLV", ClassSector}, {"XLE", ClassSector},
	{"VEU", ClassIntlEquity}, {"EEM", ClassIntlEquity}, {"EFA", ClassIntlEquity}, {"VGK", ClassIntlEquity},
	{"BND", ClassBond}, {"TLT", ClassBond}, {"SHY", ClassBond}, {"BNDX", ClassBond},
	{"LQD", ClassBond}, {"HYG", ClassHighYield},
	{"VNQ", ClassRealEstate}, {"VNQI", ClassRealEstate},
	{"GLD", ClassCommodity}, {"SLV", ClassCommodity}, {"DBC", ClassCommodity},
	{"BTC-USD", ClassCrypto}, {"ETH-USD", ClassCrypto},
}

// UniverseSymbols returns just the tickers, in canonical order.
func UniverseSymbols() []string {
	out := make([]string, len(universe))
	for i, a := range universe {
		out[i] = a.Symbol
	}
	return out
}

// ClassOf reports the class of a universe symbol.
func ClassOf(symbol string) (AssetClass, bool) {
	for _, a := range universe {
		if a.Symbol == symbol {
			return a.Class, true
		}
	}
	return "", false
}

// Classify is ClassOf extended to symbols outside the universe: any ticker
// quoted against USD is crypto and any HYG listing is high-yield credit.
// Unknown symbols have no class.
func Classify(symbol string) AssetClass {
	if c, ok := ClassOf(symbol); ok {
		return c
	}
	switch {
	case strings.Contains(symbol, "-USD"):
		return ClassCrypto
	case strings.Contains(symbol, "HYG"):
		return ClassHighYield
	}
	return ""
}

// Speculative reports whether a class is off limits for Low risk.
func (c AssetClass) Speculative() bool {
	return c == ClassCrypto || c == ClassHighYield
}
