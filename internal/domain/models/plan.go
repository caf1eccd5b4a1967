package models

import "time"

// PlanOutcome labels how far a plan got.
type PlanOutcome string

const (
	PlanTenureOnly       PlanOutcome = "tenure_only"
	PlanNoMarketData     PlanOutcome = "no_market_data"
	PlanNoEligibleAssets PlanOutcome = "no_eligible_assets"
	PlanNarrated         PlanOutcome = "narrated"
	PlanUnnarrated       PlanOutcome = "narrative_failed"
)

// PlanInput is what a user provides to the goal planner.
type PlanInput struct {
	Target        float64
	Mode          ContributionMode
	Amount        float64
	Profile       RiskProfile
	StepUp        bool
	StepUpPercent float64
}

// Goal derives the GoalSpec, taking the growth rate from the risk profile.
func (in PlanInput) Goal() GoalSpec {
	g := GoalSpec{
		Target:       in.Target,
		Mode:         in.Mode,
		Contribution: in.Amount,
		AnnualRate:   in.Profile.ExpectedAnnualRate(),
	}
	if in.Mode == SIP && in.StepUp {
		g.StepUp = true
		g.StepUpRate = in.StepUpPercent / 100
	}
	return g
}

// PlanResult is everything the planner produced for one request.
type PlanResult struct {
	Goal      GoalSpec     `json:"goal"`
	Profile   RiskProfile  `json:"risk_profile"`
	Tenure    TenureResult `json:"tenure"`
	Message   string       `json:"message"`
	Basket    *Basket      `json:"basket,omitempty"`
	Quotes    []QuoteNote  `json:"quotes,omitempty"`
	News      string       `json:"news,omitempty"`
	Narrative string       `json:"narrative,omitempty"`
	Outcome   PlanOutcome  `json:"outcome"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// QuoteNote is the quote decoration for one basket member: a quote or an error text.
type QuoteNote struct {
	Symbol string `json:"symbol"`
	Quote  *Quote `json:"quote,omitempty"`
	Error  string `json:"error,omitempty"`
}

// PlanEvent is the audit record of one plan.
type PlanEvent struct {
	ID          string           `json:"id"`
	At          time.Time        `json:"at"`
	Profile     RiskProfile      `json:"risk_profile"`
	Mode        ContributionMode `json:"mode"`
	Target      float64          `json:"target_amount"`
	Amount      float64          `json:"contribution"`
	StepUpRate  float64          `json:"step_up_rate"`
	TenureState TenureStatus     `json:"tenure_status"`
	TenureYears float64          `json:"tenure_years"`
	Symbols     []string         `json:"symbols"`
	Outcome     PlanOutcome      `json:"outcome"`
}
