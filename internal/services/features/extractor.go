package features

import (
	"math"

	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualises daily statistics.
const TradingDaysPerYear = 252

// ComputeLogReturns computes r_t = ln(C_t / C_{t-1}) over consecutive closes.
// Pairs where either close is missing (NaN) or non-positive yield no return,
// so the result may be shorter than len(closes)-1.
func ComputeLogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if !usable(prev) || !usable(cur) {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

func usable(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) // NaN fails p > 0
}

// Mean is the arithmetic mean; NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev is the n-1 standard deviation; NaN with fewer than two values.
func SampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// AnnualizedStats returns the annualised mean return and volatility of daily log returns.
func AnnualizedStats(logReturns []float64) (ret, vol float64) {
	ret = Mean(logReturns) * TradingDaysPerYear
	vol = SampleStdDev(logReturns) * math.Sqrt(TradingDaysPerYear)
	return ret, vol
}

// Round rounds half away from zero to the given number of decimals.
// Non-finite inputs are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

func IsFinite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
