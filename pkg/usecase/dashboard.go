package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/service/risk"
	"github.com/secmon-lab/retention/pkg/utils/metrics"
)

// DashboardUseCase serves the risk views computed from the employee records
type DashboardUseCase struct {
	employees interfaces.EmployeeRepository
	advisor   interfaces.Advisor
	metrics   *metrics.Metrics
}

// NewDashboardUseCase creates a DashboardUseCase. advisor may be nil, in which
// case high risk employees carry no recommendations.
func NewDashboardUseCase(employees interfaces.EmployeeRepository, advisor interfaces.Advisor, m *metrics.Metrics) *DashboardUseCase {
	return &DashboardUseCase{
		employees: employees,
		advisor:   advisor,
		metrics:   m,
	}
}

// Dashboard computes the overview, department and factor aggregates over
// the records matching query and department
func (uc *DashboardUseCase) Dashboard(ctx context.Context, query string, department types.Department) (*model.Dashboard, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := risk.Collect(risk.Filter(records, query, normalizeDepartment(department)))
	dashboard := risk.Aggregate(filtered)

	if query == "" && normalizeDepartment(department) == types.DepartmentAll {
		uc.metrics.ObserveOverview(dashboard.Overview)
	}
	return dashboard, nil
}

// ListEmployees returns the records matching query and department in
// repository order
func (uc *DashboardUseCase) ListEmployees(ctx context.Context, query string, department types.Department) ([]*model.Employee, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return risk.Collect(risk.Filter(records, query, normalizeDepartment(department))), nil
}

// Departments returns the distinct departments for the filter options
func (uc *DashboardUseCase) Departments(ctx context.Context) ([]types.Department, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return risk.Departments(records), nil
}

// HighRisk returns the high risk employees with their recommended actions
func (uc *DashboardUseCase) HighRisk(ctx context.Context) ([]*model.EmployeeAdvice, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	result := []*model.EmployeeAdvice{}
	for emp := range risk.HighRisk(records) {
		advice := &model.EmployeeAdvice{
			Employee:        emp,
			Recommendations: []model.Recommendation{},
		}

		if uc.advisor != nil {
			recs, err := uc.advisor.Recommend(ctx, emp)
			if err != nil {
				// One employee's advice failing does not hide the others
				ctxlog.From(ctx).Warn("failed to get recommendations",
					"error", err,
					"employeeID", emp.ID,
				)
			} else {
				advice.Recommendations = recs
			}
		}

		result = append(result, advice)
	}

	return result, nil
}

// Employee returns one employee with recommendations when the employee is
// high risk
func (uc *DashboardUseCase) Employee(ctx context.Context, id types.EmployeeID) (*model.EmployeeAdvice, error) {
	records, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, emp := range records {
		if emp.ID != id {
			continue
		}
		advice := &model.EmployeeAdvice{Employee: emp, Recommendations: []model.Recommendation{}}
		if uc.advisor != nil && emp.RiskLevel() == model.RiskLevelHigh {
			recs, err := uc.advisor.Recommend(ctx, emp)
			if err != nil {
				ctxlog.From(ctx).Warn("failed to get recommendations", "error", err, "employeeID", emp.ID)
			} else {
				advice.Recommendations = recs
			}
		}
		return advice, nil
	}

	return nil, goerr.Wrap(model.ErrEmployeeNotFound, "no such employee", goerr.V("id", id))
}

func (uc *DashboardUseCase) load(ctx context.Context) ([]*model.Employee, error) {
	records, err := uc.employees.ListEmployees(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}

	valid := make([]*model.Employee, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if err := rec.Validate(); err != nil {
			ctxlog.From(ctx).Warn("skipping invalid employee record", "error", err)
			continue
		}
		rec.Normalize()
		valid = append(valid, rec)
	}
	return valid, nil
}

func normalizeDepartment(d types.Department) types.Department {
	if d == "" {
		return types.DepartmentAll
	}
	return d
}
