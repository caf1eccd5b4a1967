package models

import (
	"errors"
	"fmt"
	"strings"
)

// ContributionMode says how money goes in: once up front, or every month.
type ContributionMode string

const (
	Lumpsum ContributionMode = "lumpsum"
	SIP     ContributionMode = "sip"
)

// ParseContributionMode accepts "lumpsum", "lump sum", "sip" or "monthly sip".
func ParseContributionMode(s string) (ContributionMode, error) {
	switch strings.ToLower(strings.Join(strings.Fields(s), " ")) {
	case "lumpsum", "lump sum":
		return Lumpsum, nil
	case "sip", "monthly sip", "monthly":
		return SIP, nil
	}
	return "", fmt.Errorf("unknown contribution mode %q", s)
}

func (m ContributionMode) Label() string {
	if m == SIP {
		return "Monthly SIP"
	}
	return "Lump Sum"
}

// GoalSpec describes a savings goal. It is a value type: copies never alias.
type GoalSpec struct {
	Target       float64          `json:"target_amount"`
	Mode         ContributionMode `json:"mode"`
	Contribution float64          `json:"contribution"`
	AnnualRate   float64          `json:"annual_rate"`
	// StepUp selects the year-by-year simulation for a SIP. StepUpRate, the
	// yearly increase of the monthly contribution as a fraction, is only read
	// when it is set; a step-up of zero still simulates.
	StepUp     bool    `json:"step_up"`
	StepUpRate float64 `json:"step_up_rate,omitempty"`
}

var ErrInvalidGoal = errors.New("invalid goal")

// Validate checks the ranges a GoalSpec must satisfy to be constructed by callers.
// Degenerate-but-valid combinations (a target already covered, say) are left
// to the estimator, which reports them as not computable.
func (g GoalSpec) Validate() error {
	switch {
	case !(g.Target > 0):
		return fmt.Errorf("%w: target must be positive", ErrInvalidGoal)
	case !(g.Contribution > 0):
		return fmt.Errorf("%w: contribution must be positive", ErrInvalidGoal)
	case g.Mode != Lumpsum && g.Mode != SIP:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidGoal, g.Mode)
	case !(g.AnnualRate > 0 && g.AnnualRate <= 1):
		return fmt.Errorf("%w: annual rate must be in (0, 1]", ErrInvalidGoal)
	case !(g.StepUpRate >= 0 && g.StepUpRate <= 1):
		return fmt.Errorf("%w: step-up rate must be in [0, 1]", ErrInvalidGoal)
	case g.StepUp && g.Mode != SIP:
		return fmt.Errorf("%w: step-up only applies to a monthly SIP", ErrInvalidGoal)
	}
	return nil
}

// MaxTenureYears bounds the step-up simulation.
const MaxTenureYears = 60

// TenureStatus discriminates TenureResult.
type TenureStatus string

const (
	TenureFinite         TenureStatus = "finite"
	TenureExceedsHorizon TenureStatus = "exceeds_horizon"
	TenureNotComputable  TenureStatus = "not_computable"
)

// TenureResult is either a number of years or one of two sentinels.
// Years is only meaningful when Status is TenureFinite; Bound is set for
// TenureExceedsHorizon; Reason explains TenureNotComputable.
type TenureResult struct {
	Status TenureStatus `json:"status"`
	Years  float64      `json:"years,omitempty"`
	Bound  int          `json:"bound,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

func FiniteTenure(years float64) TenureResult {
	return TenureResult{Status: TenureFinite, Years: years}
}

func ExceedsHorizon(bound int) TenureResult {
	return TenureResult{Status: TenureExceedsHorizon, Bound: bound}
}

func NotComputable(reason string) TenureResult {
	return TenureResult{Status: TenureNotComputable, Reason: reason}
}

func (t TenureResult) IsFinite() bool { return t.Status == TenureFinite }

// String renders the value the way a user reads it: "14.5", "60+" or "N/A".
func (t TenureResult) String() string {
	switch t.Status {
	case TenureFinite:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", t.Years), "0"), ".")
	case TenureExceedsHorizon:
		return fmt.Sprintf("%d+", t.Bound)
	default:
		return "N/A"
	}
}

// Message is the sentence shown to the user about the tenure.
func (t TenureResult) Message() string {
	switch t.Status {
	case TenureFinite:
		return fmt.Sprintf("Estimated time to reach your goal: %s years", t.String())
	case TenureExceedsHorizon:
		return fmt.Sprintf("Your goal would take over %d years to reach with this plan. Consider increasing your investment amount.", t.Bound)
	default:
		return "Could not calculate tenure. Please check your inputs (e.g., goal amount must be greater than investment amount)."
	}
}
