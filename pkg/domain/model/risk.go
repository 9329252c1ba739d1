package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// RiskLevel is a coarse bucketing of a risk score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

const (
	MinRiskScore = 0
	MaxRiskScore = 100

	highRiskThreshold   = 70
	mediumRiskThreshold = 40
)

// ClassifyRisk maps a risk score in [0,100] to its risk level
func ClassifyRisk(score int) (RiskLevel, error) {
	if score < MinRiskScore || score > MaxRiskScore {
		return "", goerr.New("risk score out of range",
			goerr.T(ErrTagValidation),
			goerr.V("score", score))
	}

	switch {
	case score >= highRiskThreshold:
		return RiskLevelHigh, nil
	case score >= mediumRiskThreshold:
		return RiskLevelMedium, nil
	default:
		return RiskLevelLow, nil
	}
}

// String returns the string representation
func (l RiskLevel) String() string {
	return string(l)
}

// IsValid checks if the level is one of the three known levels
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// Label returns the display text of the level
func (l RiskLevel) Label() string {
	switch l {
	case RiskLevelHigh:
		return "高リスク"
	case RiskLevelMedium:
		return "中リスク"
	case RiskLevelLow:
		return "低リスク"
	default:
		return string(l)
	}
}

// BadgeVariant returns the badge style used to render the level
func (l RiskLevel) BadgeVariant() string {
	switch l {
	case RiskLevelHigh:
		return "destructive"
	case RiskLevelLow:
		return "secondary"
	default:
		return "default"
	}
}
