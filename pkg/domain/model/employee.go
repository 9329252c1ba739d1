package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// JoinDateLayout is the layout of Employee.JoinDate
const JoinDateLayout = "2006-01-02"

// RiskFactor is one contributing factor of an employee's risk score
type RiskFactor struct {
	Factor string  `json:"factor" yaml:"factor" firestore:"factor"`
	Impact float64 `json:"impact" yaml:"impact" firestore:"impact"`
}

// Employee is a risk record of one employee. The risk level is not stored;
// it is always derived from RiskScore.
type Employee struct {
	ID             types.EmployeeID `json:"id" yaml:"id" firestore:"id"`
	Name           string           `json:"name" yaml:"name" firestore:"name"`
	Department     types.Department `json:"department" yaml:"department" firestore:"department"`
	Position       string           `json:"position" yaml:"position" firestore:"position"`
	JoinDate       string           `json:"join_date" yaml:"join_date" firestore:"join_date"`
	Age            int              `json:"age" yaml:"age" firestore:"age"`
	RiskScore      int              `json:"risk_score" yaml:"risk_score" firestore:"risk_score"`
	TopRiskFactors []RiskFactor     `json:"top_risk_factors" yaml:"top_risk_factors" firestore:"top_risk_factors"`
}

// RiskLevel returns the level derived from RiskScore. A record that failed
// Validate yields an empty level.
func (e *Employee) RiskLevel() RiskLevel {
	level, err := ClassifyRisk(e.RiskScore)
	if err != nil {
		return ""
	}
	return level
}

// HasFactor reports whether factor appears in the top risk factors
func (e *Employee) HasFactor(factor string) bool {
	for _, f := range e.TopRiskFactors {
		if f.Factor == factor {
			return true
		}
	}
	return false
}

// Validate validates the employee record
func (e *Employee) Validate() error {
	if e.ID == "" {
		return goerr.New("employee ID is required", goerr.T(ErrTagValidation))
	}
	if e.Name == "" {
		return goerr.New("employee name is required",
			goerr.T(ErrTagValidation),
			goerr.V("id", e.ID))
	}
	if e.Department == "" {
		return goerr.New("employee department is required",
			goerr.T(ErrTagValidation),
			goerr.V("id", e.ID))
	}
	if e.Department == types.DepartmentAll {
		return goerr.New("department name is reserved",
			goerr.T(ErrTagValidation),
			goerr.V("id", e.ID),
			goerr.V("department", e.Department))
	}
	if _, err := ClassifyRisk(e.RiskScore); err != nil {
		return goerr.Wrap(err, "invalid risk score", goerr.V("id", e.ID))
	}
	if e.Age < 0 {
		return goerr.New("age must not be negative",
			goerr.T(ErrTagValidation),
			goerr.V("id", e.ID),
			goerr.V("age", e.Age))
	}
	if e.JoinDate != "" {
		if _, err := time.Parse(JoinDateLayout, e.JoinDate); err != nil {
			return goerr.Wrap(err, "invalid join date",
				goerr.T(ErrTagValidation),
				goerr.V("id", e.ID),
				goerr.V("join_date", e.JoinDate))
		}
	}
	for i, f := range e.TopRiskFactors {
		if f.Factor == "" {
			return goerr.New("risk factor name is required",
				goerr.T(ErrTagValidation),
				goerr.V("id", e.ID),
				goerr.V("index", i))
		}
		if f.Impact < 0 || f.Impact > 1 {
			return goerr.New("risk factor impact must be between 0 and 1",
				goerr.T(ErrTagValidation),
				goerr.V("id", e.ID),
				goerr.V("factor", f.Factor),
				goerr.V("impact", f.Impact))
		}
	}
	return nil
}

// Normalize orders the top risk factors by descending impact. Factors with
// equal impact keep their relative order.
func (e *Employee) Normalize() {
	slices.SortStableFunc(e.TopRiskFactors, func(a, b RiskFactor) int {
		switch {
		case a.Impact > b.Impact:
			return -1
		case a.Impact < b.Impact:
			return 1
		default:
			return 0
		}
	})
}

// Copy returns a deep copy of the employee
func (e *Employee) Copy() *Employee {
	c := *e
	c.TopRiskFactors = slices.Clone(e.TopRiskFactors)
	return &c
}

// EmployeesConfig is the YAML seed file layout for employee records
type EmployeesConfig struct {
	Employees []*Employee `yaml:"employees"`
}

// Validate validates every record and rejects duplicate IDs
func (c *EmployeesConfig) Validate() error {
	seen := make(map[types.EmployeeID]bool)
	for i, emp := range c.Employees {
		if emp == nil {
			return goerr.New("employee entry is empty",
				goerr.T(ErrTagValidation),
				goerr.V("index", i))
		}
		if err := emp.Validate(); err != nil {
			return goerr.Wrap(err, "invalid employee at index", goerr.V("index", i))
		}
		if seen[emp.ID] {
			return goerr.New("duplicate employee ID",
				goerr.T(ErrTagValidation),
				goerr.V("id", emp.ID))
		}
		seen[emp.ID] = true
	}
	return nil
}
