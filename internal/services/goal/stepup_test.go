package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NeoFin/internal/domain/models"
)

func TestStepUpReachesWithinFirstYear(t *testing.T) {
	got := SimulateStepUp(1000, 1000, 0.10, 0.10)
	assert.Equal(t, models.FiniteTenure(1), got)
}

func TestStepUpExceedsHorizon(t *testing.T) {
	got := SimulateStepUp(1e12, 1, 0.01, 0)
	assert.Equal(t, models.TenureExceedsHorizon, got.Status)
	assert.Equal(t, models.MaxTenureYears, got.Bound)
	assert.Equal(t, "60+", got.String())
}

func TestStepUpNeverSlowerThanFlat(t *testing.T) {
	for _, target := range []float64{50_000, 250_000, 1_000_000, 5_000_000} {
		flat := SimulateStepUp(target, 1000, 0.10, 0)
		stepped := SimulateStepUp(target, 1000, 0.10, 0.10)
		if !flat.IsFinite() {
			continue
		}
		assert.True(t, stepped.IsFinite(), "target=%v", target)
		assert.LessOrEqual(t, stepped.Years, flat.Years, "target=%v", target)
	}
}

func TestStepUpMonotonicInStepRate(t *testing.T) {
	prev := SimulateStepUp(2_000_000, 2000, 0.10, 0)
	for _, s := range []float64{0.05, 0.10, 0.20} {
		cur := SimulateStepUp(2_000_000, 2000, 0.10, s)
		assert.LessOrEqual(t, cur.Years, prev.Years, "step=%v", s)
		prev = cur
	}
}

func TestStepUpDepositBeforeCompound(t *testing.T) {
	// corpus after 12 deposit-then-compound months of 100 at 12% a year
	rate := 0.12
	rm := rate / 12
	corpus := 0.0
	for m := 0; m < 12; m++ {
		corpus = (corpus + 100) * (1 + rm)
	}
	assert.Equal(t, models.FiniteTenure(1), SimulateStepUp(corpus, 100, rate, 0))
	assert.Equal(t, models.FiniteTenure(2), SimulateStepUp(corpus+0.01, 100, rate, 0))
}
