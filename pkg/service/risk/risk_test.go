package risk_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/service/risk"
)

func sampleEmployees() []*model.Employee {
	return []*model.Employee{
		{
			ID: "EMP001", Name: "田中 太郎", Department: "営業部", Position: "主任",
			JoinDate: "2020-04-01", Age: 32, RiskScore: 85,
			TopRiskFactors: []model.RiskFactor{
				{Factor: "ワークライフバランス", Impact: 0.3},
				{Factor: "キャリア成長", Impact: 0.25},
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
			TopRiskFactors: []model.RiskFactor{
				{Factor: "職場環境", Impact: 0.1},
			},
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
}

func ids(records []*model.Employee) []types.EmployeeID {
	result := make([]types.EmployeeID, 0, len(records))
	for _, r := range records {
		result = append(result, r.ID)
	}
	return result
}

func TestOverview(t *testing.T) {
	ov := risk.Overview(sampleEmployees())
	gt.Equal(t, ov, model.RiskOverview{Total: 4, High: 2, Medium: 1, Low: 1})
}

func TestAggregateByDepartment(t *testing.T) {
	t.Run("first-seen order and counts", func(t *testing.T) {
		records := sampleEmployees()
		records = append(records, &model.Employee{ID: "EMP005", Name: "高橋 健", Department: "営業部", RiskScore: 50})

		stats := risk.AggregateByDepartment(records)
		gt.A(t, stats).Length(4)
		gt.Equal(t, stats[0], model.DepartmentStat{Name: "営業部", Total: 2, High: 1, Medium: 1, Low: 0})
		gt.Equal(t, stats[1].Name, "開発部")
		gt.Equal(t, stats[2].Name, "人事部")
		gt.Equal(t, stats[3].Name, "マーケティング部")
	})

	t.Run("counts always add up to total", func(t *testing.T) {
		var records []*model.Employee
		for i := 0; i <= 100; i++ {
			records = append(records, &model.Employee{
				ID:         types.EmployeeID(fmt.Sprintf("E%03d", i)),
				Name:       "x",
				Department: types.Department(fmt.Sprintf("dept-%d", i%7)),
				RiskScore:  i,
			})
		}
		for _, s := range risk.AggregateByDepartment(records) {
			gt.Equal(t, s.High+s.Medium+s.Low, s.Total)
			gt.True(t, s.High >= 0 && s.Medium >= 0 && s.Low >= 0)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		gt.A(t, risk.AggregateByDepartment(nil)).Length(0)
	})

	t.Run("idempotent", func(t *testing.T) {
		records := sampleEmployees()
		gt.Equal(t, risk.AggregateByDepartment(records), risk.AggregateByDepartment(records))
	})
}

func TestAggregateByFactor(t *testing.T) {
	t.Run("sample records", func(t *testing.T) {
		stats := risk.AggregateByFactor(sampleEmployees())
		gt.Equal(t, stats, []model.RiskFactorStat{
			{Factor: "ワークライフバランス", Percentage: 25},
			{Factor: "キャリア成長", Percentage: 50},
			{Factor: "上司との関係", Percentage: 25},
			{Factor: "報酬・待遇", Percentage: 25},
			{Factor: "スキルマッチ", Percentage: 25},
			{Factor: "職場環境", Percentage: 25},
			{Factor: "労働時間", Percentage: 25},
		})
	})

	t.Run("rounds half up", func(t *testing.T) {
		var records []*model.Employee
		for i := 0; i < 8; i++ {
			emp := &model.Employee{ID: types.EmployeeID(fmt.Sprintf("E%d", i)), Name: "x", Department: "d", RiskScore: 10}
			if i < 1 {
				emp.TopRiskFactors = append(emp.TopRiskFactors, model.RiskFactor{Factor: "one-eighth", Impact: 0.1})
			}
			if i < 3 {
				emp.TopRiskFactors = append(emp.TopRiskFactors, model.RiskFactor{Factor: "three-eighths", Impact: 0.1})
			}
			records = append(records, emp)
		}

		stats := risk.AggregateByFactor(records)
		gt.A(t, stats).Length(2)
		gt.Equal(t, stats[0], model.RiskFactorStat{Factor: "one-eighth", Percentage: 13})
		gt.Equal(t, stats[1], model.RiskFactorStat{Factor: "three-eighths", Percentage: 38})
	})

	t.Run("thirds round to nearest", func(t *testing.T) {
		records := []*model.Employee{
			{ID: "1", Name: "a", Department: "d", TopRiskFactors: []model.RiskFactor{{Factor: "f", Impact: 0.5}}},
			{ID: "2", Name: "b", Department: "d", TopRiskFactors: []model.RiskFactor{{Factor: "f", Impact: 0.5}, {Factor: "g", Impact: 0.1}}},
			{ID: "3", Name: "c", Department: "d"},
		}
		stats := risk.AggregateByFactor(records)
		gt.Equal(t, stats, []model.RiskFactorStat{
			{Factor: "f", Percentage: 67},
			{Factor: "g", Percentage: 33},
		})
	})

	t.Run("repeated factor in one record counts once", func(t *testing.T) {
		records := []*model.Employee{
			{ID: "1", Name: "a", Department: "d", TopRiskFactors: []model.RiskFactor{{Factor: "f", Impact: 0.5}, {Factor: "f", Impact: 0.2}}},
			{ID: "2", Name: "b", Department: "d"},
		}
		gt.Equal(t, risk.AggregateByFactor(records), []model.RiskFactorStat{{Factor: "f", Percentage: 50}})
	})

	t.Run("empty input", func(t *testing.T) {
		gt.A(t, risk.AggregateByFactor(nil)).Length(0)
	})

	t.Run("idempotent", func(t *testing.T) {
		records := sampleEmployees()
		gt.Equal(t, risk.AggregateByFactor(records), risk.AggregateByFactor(records))
	})
}

func TestFilter(t *testing.T) {
	records := sampleEmployees()

	t.Run("empty term and all departments return everything in order", func(t *testing.T) {
		result := risk.Collect(risk.Filter(records, "", types.DepartmentAll))
		gt.Equal(t, ids(result), []types.EmployeeID{"EMP001", "EMP002", "EMP003", "EMP004"})
	})

	t.Run("name search", func(t *testing.T) {
		result := risk.Collect(risk.Filter(records, "田中", types.DepartmentAll))
		gt.Equal(t, ids(result), []types.EmployeeID{"EMP001"})
	})

	t.Run("department substring search", func(t *testing.T) {
		result := risk.Collect(risk.Filter(records, "発", types.DepartmentAll))
		gt.Equal(t, ids(result), []types.EmployeeID{"EMP002"})
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		mixed := []*model.Employee{
			{ID: "A", Name: "Alice Smith", Department: "Sales"},
			{ID: "B", Name: "bob", Department: "Engineering"},
		}
		gt.Equal(t, ids(risk.Collect(risk.Filter(mixed, "SMITH", types.DepartmentAll))), []types.EmployeeID{"A"})
		gt.Equal(t, ids(risk.Collect(risk.Filter(mixed, "engineer", types.DepartmentAll))), []types.EmployeeID{"B"})
	})

	t.Run("department filter is exact", func(t *testing.T) {
		gt.Equal(t, ids(risk.Collect(risk.Filter(records, "", "開発部"))), []types.EmployeeID{"EMP002"})
		gt.A(t, risk.Collect(risk.Filter(records, "", "開発"))).Length(0)
	})

	t.Run("both conditions must hold", func(t *testing.T) {
		gt.A(t, risk.Collect(risk.Filter(records, "田中", "開発部"))).Length(0)
		gt.Equal(t, ids(risk.Collect(risk.Filter(records, "田中", "営業部"))), []types.EmployeeID{"EMP001"})
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		seq := risk.Filter(records, "", types.DepartmentAll)
		first := risk.Collect(seq)
		second := risk.Collect(seq)
		gt.Equal(t, ids(first), ids(second))
	})

	t.Run("early stop", func(t *testing.T) {
		count := 0
		for range risk.Filter(records, "", types.DepartmentAll) {
			count++
			if count == 2 {
				break
			}
		}
		gt.Equal(t, count, 2)
	})
}

func TestHighRiskAndDepartments(t *testing.T) {
	records := sampleEmployees()
	gt.Equal(t, ids(risk.Collect(risk.HighRisk(records))), []types.EmployeeID{"EMP001", "EMP004"})
	gt.Equal(t, risk.Departments(records), []types.Department{"営業部", "開発部", "人事部", "マーケティング部"})
}

func TestAggregate(t *testing.T) {
	dash := risk.Aggregate(sampleEmployees())
	gt.Equal(t, dash.Overview.Total, 4)
	gt.A(t, dash.Departments).Length(4)
	gt.A(t, dash.Factors).Length(7)
}
