// Package goal answers "how long until I reach this amount".
package goal

import (
	"math"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/services/features"
)

// EstimateTenure returns the years needed to reach g.Target.
//
// A lump sum compounds annually: n = ln(target/amount) / ln(1+r).
// A flat SIP uses the future value of an annuity with monthly rate r/12,
// solved for the number of months and reported in years.
// Both closed forms round to one decimal. A SIP with a step-up has no closed
// form and is simulated year by year instead.
func EstimateTenure(g models.GoalSpec) models.TenureResult {
	if !(g.Target > 0) || !(g.Contribution > 0) {
		return models.NotComputable("target and contribution must be positive")
	}
	switch g.Mode {
	case models.Lumpsum:
		return lumpsumTenure(g.Target, g.Contribution, g.AnnualRate)
	case models.SIP:
		if g.StepUp {
			return SimulateStepUp(g.Target, g.Contribution, g.AnnualRate, g.StepUpRate)
		}
		return sipTenure(g.Target, g.Contribution, g.AnnualRate)
	}
	return models.NotComputable("unknown contribution mode")
}

func lumpsumTenure(target, amount, rate float64) models.TenureResult {
	if target <= amount {
		return models.NotComputable("goal amount must be greater than the investment")
	}
	growth := math.Log1p(rate)
	if math.IsNaN(growth) || growth <= 0 {
		return models.NotComputable("annual rate must be positive")
	}
	n := math.Log(target/amount) / growth
	if !features.IsFinite(n) || n <= 0 {
		return models.NotComputable("tenure is not a finite positive number")
	}
	return models.FiniteTenure(features.Round(n, 1))
}

func sipTenure(target, monthly, rate float64) models.TenureResult {
	rm := rate / 12
	if rm == 0 {
		return models.NotComputable("annual rate must not be zero")
	}
	arg := target/monthly*rm + 1
	den := math.Log1p(rm)
	if !(arg > 0) || math.IsNaN(den) || den == 0 {
		return models.NotComputable("inputs give no real solution")
	}
	months := math.Log(arg) / den
	if !features.IsFinite(months) || months <= 0 {
		return models.NotComputable("tenure is not a finite positive number")
	}
	return models.FiniteTenure(features.Round(months/12, 1))
}
