package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/cli/config"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/repository"
	"github.com/secmon-lab/retention/pkg/service/advice"
	"github.com/secmon-lab/retention/pkg/service/llm"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type summaryReport struct {
	Query      string                 `json:"query,omitempty"`
	Department types.Department       `json:"department"`
	Dashboard  *model.Dashboard       `json:"dashboard"`
	HighRisk   []*model.EmployeeAdvice `json:"high_risk,omitempty"`
}

func cmdSummary() *cli.Command {
	var (
		employeesCfg config.Employees
		query        string
		department   string
		output       string
		withAdvice   bool
	)

	flags := joinFlags(
		employeesCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Case-insensitive search over names and departments",
				Destination: &query,
			},
			&cli.StringFlag{
				Name:        "department",
				Aliases:     []string{"d"},
				Usage:       "Department to aggregate (all departments if empty)",
				Value:       types.DepartmentAll.String(),
				Destination: &department,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file (- for stdout)",
				Value:       "-",
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "advice",
				Usage:       "Include high risk employees with rule based recommendations",
				Destination: &withAdvice,
			},
		},
	)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print risk aggregates of the employee records as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := io.Writer(os.Stdout)
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
				}
				defer safeClose(ctx, "output file", f)
				w = f
			}

			report, err := buildSummary(ctx, &employeesCfg, query, types.Department(department), withAdvice)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return goerr.Wrap(err, "failed to write summary")
			}
			return nil
		},
	}
}

func buildSummary(ctx context.Context, employeesCfg *config.Employees, query string, department types.Department, withAdvice bool) (*summaryReport, error) {
	repo := repository.NewMemory()
	if err := employeesCfg.Seed(ctx, repo); err != nil {
		return nil, goerr.Wrap(err, "failed to load employees")
	}

	uc := usecase.NewDashboardUseCase(repo, advice.NewRules(llm.DefaultMaxActions), nil)
	dashboard, err := uc.Dashboard(ctx, query, department)
	if err != nil {
		return nil, err
	}

	report := &summaryReport{
		Query:      query,
		Department: department,
		Dashboard:  dashboard,
	}

	if withAdvice {
		report.HighRisk, err = uc.HighRisk(ctx)
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}
