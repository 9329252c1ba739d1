package config

import (
	"context"
	_ "embed"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

//go:embed sample_employees.yaml
var sampleEmployees []byte

// Employees holds the location of the employee seed file
type Employees struct {
	Path string
}

// Flags returns CLI flags for Employees configuration
func (e *Employees) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "employees",
			Aliases:     []string{"e"},
			Usage:       "YAML file of employee risk records (built-in sample data if empty)",
			Category:    "Data",
			Sources:     cli.EnvVars("RETENTION_EMPLOYEES"),
			Destination: &e.Path,
		},
	}
}

// Load reads the seed file, or the built-in sample data when no path is set
func (e *Employees) Load() (*model.EmployeesConfig, error) {
	if e.Path == "" {
		return ParseEmployees(sampleEmployees)
	}
	return LoadEmployeesFromFile(e.Path)
}

// Seed stores every loaded employee in repo
func (e *Employees) Seed(ctx context.Context, repo interfaces.Repository) error {
	cfg, err := e.Load()
	if err != nil {
		return err
	}

	for _, emp := range cfg.Employees {
		if err := repo.PutEmployee(ctx, emp); err != nil {
			return goerr.Wrap(err, "failed to seed employee", goerr.V("id", emp.ID))
		}
	}

	ctxlog.From(ctx).Info("employees loaded",
		"count", len(cfg.Employees),
		"sample", e.Path == "",
	)
	return nil
}

// LogValue returns structured log value
func (e Employees) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", e.Path))
}

// LoadEmployeesFromFile loads employee records from a YAML file
func LoadEmployeesFromFile(path string) (*model.EmployeesConfig, error) {
	if path == "" {
		return nil, goerr.New("employees file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "employees file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read employees file",
			goerr.V("path", path))
	}

	cfg, err := ParseEmployees(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid employees file", goerr.V("path", path))
	}
	return cfg, nil
}

// ParseEmployees parses and validates YAML employee records
func ParseEmployees(data []byte) (*model.EmployeesConfig, error) {
	var cfg model.EmployeesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse employees YAML")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
