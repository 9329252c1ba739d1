package model

import "github.com/secmon-lab/retention/pkg/domain/types"

// DepartmentStat holds risk level counts of one department
type DepartmentStat struct {
	Name   types.Department `json:"name"`
	Total  int              `json:"total"`
	High   int              `json:"high"`
	Medium int              `json:"medium"`
	Low    int              `json:"low"`
}

// Add counts one record of the given level
func (s *DepartmentStat) Add(level RiskLevel) {
	switch level {
	case RiskLevelHigh:
		s.High++
	case RiskLevelMedium:
		s.Medium++
	case RiskLevelLow:
		s.Low++
	default:
		return
	}
	s.Total++
}

// RiskFactorStat holds the share of employees affected by a factor
type RiskFactorStat struct {
	Factor     string `json:"factor"`
	Percentage int    `json:"percentage"`
}

// RiskOverview holds the dashboard headline counts
type RiskOverview struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Dashboard bundles every aggregate shown on the dashboard
type Dashboard struct {
	Overview    RiskOverview     `json:"overview"`
	Departments []DepartmentStat `json:"departments"`
	Factors     []RiskFactorStat `json:"factors"`
}

// Priority of a recommended action
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Recommendation is a suggested retention action for an employee.
// ExpectedImpact is the estimated reduction of the risk score in points.
type Recommendation struct {
	Priority       Priority `json:"priority"`
	Title          string   `json:"title"`
	Action         string   `json:"action"`
	ExpectedImpact int      `json:"expected_impact"`
}

// EmployeeAdvice pairs a high risk employee with the recommended actions
type EmployeeAdvice struct {
	Employee        *Employee        `json:"employee"`
	Recommendations []Recommendation `json:"recommendations"`
}
