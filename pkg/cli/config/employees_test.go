package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/cli/config"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/repository"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEmployees_Load(t *testing.T) {
	t.Run("built-in sample", func(t *testing.T) {
		var cfg config.Employees
		emps, err := cfg.Load()
		gt.NoError(t, err)
		gt.A(t, emps.Employees).Length(4)
		gt.Equal(t, emps.Employees[0].ID, types.EmployeeID("EMP001"))
		gt.Equal(t, emps.Employees[0].RiskLevel(), model.RiskLevelHigh)
	})

	t.Run("from file", func(t *testing.T) {
		path := writeFile(t, `
employees:
  - id: E1
    name: Alice
    department: Sales
    join_date: "2022-01-01"
    age: 30
    risk_score: 55
    top_risk_factors:
      - factor: 報酬・待遇
        impact: 0.5
`)
		cfg := config.Employees{Path: path}
		emps, err := cfg.Load()
		gt.NoError(t, err)
		gt.A(t, emps.Employees).Length(1)
		gt.Equal(t, emps.Employees[0].Department, types.Department("Sales"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadEmployeesFromFile(filepath.Join(t.TempDir(), "none.yaml"))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("not found")
	})

	t.Run("broken YAML", func(t *testing.T) {
		_, err := config.LoadEmployeesFromFile(writeFile(t, "employees: [:"))
		gt.Error(t, err)
	})

	t.Run("invalid record", func(t *testing.T) {
		path := writeFile(t, `
employees:
  - id: E1
    name: Alice
    department: Sales
    risk_score: 120
`)
		_, err := config.LoadEmployeesFromFile(path)
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagValidation)).True()
	})

	t.Run("duplicate IDs", func(t *testing.T) {
		_, err := config.ParseEmployees([]byte(`
employees:
  - {id: E1, name: A, department: Sales, risk_score: 10}
  - {id: E1, name: B, department: Sales, risk_score: 20}
`))
		gt.Error(t, err)
	})
}

func TestEmployees_Seed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	var cfg config.Employees
	gt.NoError(t, cfg.Seed(ctx, repo))

	emps, err := repo.ListEmployees(ctx)
	gt.NoError(t, err)
	gt.A(t, emps).Length(4)
}
