package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/interfaces/mocks"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/repository"
	"github.com/secmon-lab/retention/pkg/service/advice"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/secmon-lab/retention/pkg/utils/metrics"
)

func seedEmployees(t *testing.T) interfaces.Repository {
	t.Helper()
	repo := repository.NewMemory()
	employees := []*model.Employee{
		{
			ID: "EMP001", Name: "田中 太郎", Department: "営業部", Position: "主任",
			JoinDate: "2020-04-01", Age: 32, RiskScore: 85,
			TopRiskFactors: []model.RiskFactor{
				{Factor: "キャリア成長", Impact: 0.25},
				{Factor: "ワークライフバランス", Impact: 0.3},
				{Factor: "上司との関係", Impact: 0.2},
			},
		},
		{
			ID: "EMP002", Name: "佐藤 花子", Department: "開発部", Position: "シニアエンジニア",
			JoinDate: "2019-07-15", Age: 28, RiskScore: 45,
			TopRiskFactors: []model.RiskFactor{
				{Factor: "報酬・待遇", Impact: 0.35},
				{Factor: "スキルマッチ", Impact: 0.15},
			},
		},
		{
			ID: "EMP003", Name: "鈴木 一郎", Department: "人事部", Position: "マネージャー",
			JoinDate: "2018-03-01", Age: 35, RiskScore: 25,
			TopRiskFactors: []model.RiskFactor{{Factor: "職場環境", Impact: 0.1}},
		},
		{
			ID: "EMP004", Name: "山田 美咲", Department: "マーケティング部", Position: "スペシャリスト",
			JoinDate: "2021-01-10", Age: 29, RiskScore: 72,
			TopRiskFactors: []model.RiskFactor{
				{Factor: "キャリア成長", Impact: 0.4},
				{Factor: "労働時間", Impact: 0.25},
			},
		},
	}
	for _, emp := range employees {
		gt.NoError(t, repo.PutEmployee(context.Background(), emp))
	}
	return repo
}

func TestDashboardUseCase_Dashboard(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(nil)
	uc := usecase.NewDashboardUseCase(seedEmployees(t), nil, m)

	t.Run("all employees", func(t *testing.T) {
		d, err := uc.Dashboard(ctx, "", types.DepartmentAll)
		gt.NoError(t, err)
		gt.Equal(t, d.Overview, model.RiskOverview{Total: 4, High: 2, Medium: 1, Low: 1})
		gt.A(t, d.Departments).Length(4)
		gt.Equal(t, d.Departments[0].Name, types.Department("営業部"))

		// Factors follow first-seen order after normalization by impact
		gt.Equal(t, d.Factors[0], model.RiskFactorStat{Factor: "ワークライフバランス", Percentage: 25})
		gt.Equal(t, d.Factors[1], model.RiskFactorStat{Factor: "キャリア成長", Percentage: 50})

		gt.Equal(t, testutil.ToFloat64(m.Employees.WithLabelValues("HIGH")), 2.0)
	})

	t.Run("empty department means all", func(t *testing.T) {
		d, err := uc.Dashboard(ctx, "", "")
		gt.NoError(t, err)
		gt.Equal(t, d.Overview.Total, 4)
	})

	t.Run("filtered", func(t *testing.T) {
		d, err := uc.Dashboard(ctx, "", "開発部")
		gt.NoError(t, err)
		gt.Equal(t, d.Overview, model.RiskOverview{Total: 1, Medium: 1})
		gt.A(t, d.Factors).Length(2)
		gt.Equal(t, d.Factors[0].Percentage, 100)
	})

	t.Run("no match", func(t *testing.T) {
		d, err := uc.Dashboard(ctx, "存在しない", types.DepartmentAll)
		gt.NoError(t, err)
		gt.Equal(t, d.Overview.Total, 0)
		gt.A(t, d.Departments).Length(0)
		gt.A(t, d.Factors).Length(0)
	})
}

func TestDashboardUseCase_ListEmployees(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewDashboardUseCase(seedEmployees(t), nil, nil)

	all, err := uc.ListEmployees(ctx, "", types.DepartmentAll)
	gt.NoError(t, err)
	gt.A(t, all).Length(4)

	byName, err := uc.ListEmployees(ctx, "田中", types.DepartmentAll)
	gt.NoError(t, err)
	gt.A(t, byName).Length(1)
	gt.Equal(t, byName[0].ID, types.EmployeeID("EMP001"))
	gt.Equal(t, byName[0].TopRiskFactors[0].Factor, "ワークライフバランス")

	byDept, err := uc.ListEmployees(ctx, "部", "人事部")
	gt.NoError(t, err)
	gt.A(t, byDept).Length(1)
	gt.Equal(t, byDept[0].ID, types.EmployeeID("EMP003"))

	none, err := uc.ListEmployees(ctx, "田中", "開発部")
	gt.NoError(t, err)
	gt.A(t, none).Length(0)
}

func TestDashboardUseCase_SkipsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	repo := seedEmployees(t)
	gt.NoError(t, repo.PutEmployee(ctx, &model.Employee{ID: "EMP999", Name: "broken", Department: "営業部", RiskScore: 150}))

	uc := usecase.NewDashboardUseCase(repo, nil, nil)
	d, err := uc.Dashboard(ctx, "", types.DepartmentAll)
	gt.NoError(t, err)
	gt.Equal(t, d.Overview.Total, 4)
}

func TestDashboardUseCase_RepositoryError(t *testing.T) {
	uc := usecase.NewDashboardUseCase(failingEmployees{}, nil, nil)
	_, err := uc.Dashboard(context.Background(), "", types.DepartmentAll)
	gt.Error(t, err)
}

type failingEmployees struct{}

func (failingEmployees) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	return nil, errors.New("connection refused")
}

func TestDashboardUseCase_Departments(t *testing.T) {
	uc := usecase.NewDashboardUseCase(seedEmployees(t), nil, nil)
	depts, err := uc.Departments(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, depts, []types.Department{"営業部", "開発部", "人事部", "マーケティング部"})
}

func TestDashboardUseCase_HighRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("with rules advisor", func(t *testing.T) {
		uc := usecase.NewDashboardUseCase(seedEmployees(t), advice.NewRules(3), nil)
		result, err := uc.HighRisk(ctx)
		gt.NoError(t, err)
		gt.A(t, result).Length(2)
		gt.Equal(t, result[0].Employee.ID, types.EmployeeID("EMP001"))
		gt.Equal(t, result[1].Employee.ID, types.EmployeeID("EMP004"))
		gt.A(t, result[0].Recommendations).Length(3)
		gt.Equal(t, result[0].Recommendations[0].Priority, model.PriorityHigh)
	})

	t.Run("advisor failure keeps the employee", func(t *testing.T) {
		adv := &mocks.AdvisorMock{
			RecommendFunc: func(ctx context.Context, emp *model.Employee) ([]model.Recommendation, error) {
				if emp.ID == "EMP001" {
					return nil, errors.New("timeout")
				}
				return []model.Recommendation{{Priority: model.PriorityLow, Title: "t", Action: "a"}}, nil
			},
		}
		uc := usecase.NewDashboardUseCase(seedEmployees(t), adv, nil)
		result, err := uc.HighRisk(ctx)
		gt.NoError(t, err)
		gt.A(t, result).Length(2)
		gt.A(t, result[0].Recommendations).Length(0)
		gt.A(t, result[1].Recommendations).Length(1)
		gt.A(t, adv.RecommendCalls()).Length(2)
	})

	t.Run("without advisor", func(t *testing.T) {
		uc := usecase.NewDashboardUseCase(seedEmployees(t), nil, nil)
		result, err := uc.HighRisk(ctx)
		gt.NoError(t, err)
		gt.A(t, result).Length(2)
		gt.V(t, result[0].Recommendations).NotNil()
	})
}

func TestDashboardUseCase_Employee(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewDashboardUseCase(seedEmployees(t), advice.NewRules(3), nil)

	high, err := uc.Employee(ctx, "EMP004")
	gt.NoError(t, err)
	gt.Equal(t, high.Employee.Name, "山田 美咲")
	gt.A(t, high.Recommendations).Length(3)

	low, err := uc.Employee(ctx, "EMP003")
	gt.NoError(t, err)
	gt.A(t, low.Recommendations).Length(0)

	_, err = uc.Employee(ctx, "EMP404")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrEmployeeNotFound))
}
