package models

import xhttp "NeoFin/pkg/http"

// Request bodies of the HTTP API. Transport tags live here so the CLI can
// validate the same shapes.

func init() {
	xhttp.MustRegisterStringRule("risk_profile", "must be low, medium or high", func(s string) bool {
		_, err := ParseRiskProfile(s)
		return err == nil
	})
}

// TenureRequest is the body of both /api/tenure and /api/plan.
type TenureRequest struct {
	Target        float64 `json:"target_amount" validate:"required,gt=0"`
	Mode          string  `json:"mode" default:"lumpsum" validate:"oneof=lumpsum sip"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	RiskProfile   string  `json:"risk_profile" default:"medium" validate:"risk_profile"`
	StepUpPercent float64 `json:"step_up_percent" validate:"gte=0,lte=100"`
	// StepUp defaults to on whenever a positive step_up_percent is sent.
	StepUp *bool `json:"step_up"`
}

type ChatRequest struct {
	Message     string `json:"message" validate:"required,max=8000"`
	RiskProfile string `json:"risk_profile" default:"medium" validate:"risk_profile"`
	Mode        string `json:"mode" default:"detailed" validate:"oneof=concise detailed"`
	WebSearch   *bool  `json:"web_search"`
	StockData   *bool  `json:"stock_data"`
}

// Options resolves the request into per-turn chat options; toggles default to on.
func (r ChatRequest) Options() ChatOptions {
	profile, err := ParseRiskProfile(r.RiskProfile)
	if err != nil {
		profile = RiskMedium
	}
	return ChatOptions{
		Profile:   profile,
		Mode:      ResponseMode(r.Mode),
		WebSearch: r.WebSearch == nil || *r.WebSearch,
		StockData: r.StockData == nil || *r.StockData,
	}
}

// Input converts the request into planner input. It assumes a validated request.
func (r TenureRequest) Input() (PlanInput, error) {
	mode, err := ParseContributionMode(r.Mode)
	if err != nil {
		return PlanInput{}, err
	}
	profile, err := ParseRiskProfile(r.RiskProfile)
	if err != nil {
		return PlanInput{}, err
	}
	return PlanInput{
		Target:        r.Target,
		Mode:          mode,
		Amount:        r.Amount,
		Profile:       profile,
		StepUp:        r.stepUpEnabled(),
		StepUpPercent: r.StepUpPercent,
	}, nil
}

func (r TenureRequest) stepUpEnabled() bool {
	if r.StepUp != nil {
		return *r.StepUp
	}
	return r.StepUpPercent > 0
}
