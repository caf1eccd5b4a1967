package models

import (
	"fmt"
	"strings"
)

// RiskProfile is the user's declared risk appetite.
type RiskProfile string

const (
	RiskLow    RiskProfile = "Low Risk"
	RiskMedium RiskProfile = "Medium Risk"
	RiskHigh   RiskProfile = "High Risk"
)

var RiskProfiles = []RiskProfile{RiskLow, RiskMedium, RiskHigh}

// ParseRiskProfile accepts "low", "Low Risk", "MEDIUM" and so on.
func ParseRiskProfile(s string) (RiskProfile, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, " risk")
	switch key {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk profile %q", s)
}

// ExpectedAnnualRate is the growth assumption used when planning for the profile.
func (r RiskProfile) ExpectedAnnualRate() float64 {
	switch r {
	case RiskLow:
		return 0.08
	case RiskHigh:
		return 0.14
	default:
		return 0.10
	}
}

// Short is the single-word form ("Low", "Medium", "High").
func (r RiskProfile) Short() string {
	return strings.TrimSuffix(string(r), " Risk")
}
