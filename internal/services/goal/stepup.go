package goal

import (
	"math"

	"NeoFin/internal/domain/models"
)

// SimulateStepUp walks a monthly SIP whose contribution grows by stepUp each year.
//
// Each month the contribution is deposited first, then the corpus compounds
// at annualRate/12. The goal is checked at the end of every year; the
// contribution is stepped up only after a year that did not reach it. The
// result is a whole number of years, or ExceedsHorizon after MaxTenureYears.
func SimulateStepUp(target, monthly, annualRate, stepUp float64) models.TenureResult {
	if !(target > 0) || !(monthly > 0) {
		return models.NotComputable("target and contribution must be positive")
	}
	if math.IsNaN(annualRate) || math.IsNaN(stepUp) || annualRate <= -1 {
		return models.NotComputable("invalid rate")
	}

	rm := annualRate / 12
	corpus := 0.0
	contribution := monthly
	for year := 1; year <= models.MaxTenureYears; year++ {
		for m := 0; m < 12; m++ {
			corpus = (corpus + contribution) * (1 + rm)
		}
		if corpus >= target {
			return models.FiniteTenure(float64(year))
		}
		contribution *= 1 + stepUp
	}
	return models.ExceedsHorizon(models.MaxTenureYears)
}
