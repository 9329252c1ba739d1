// Package risk derives the dashboard views from employee risk records.
package risk

import (
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// AggregateByDepartment counts risk levels per department. Departments
// appear in first-seen order.
func AggregateByDepartment(records []*model.Employee) []model.DepartmentStat {
	stats := []model.DepartmentStat{}
	index := make(map[types.Department]int)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		i, ok := index[rec.Department]
		if !ok {
			i = len(stats)
			index[rec.Department] = i
			stats = append(stats, model.DepartmentStat{Name: rec.Department})
		}
		stats[i].Add(rec.RiskLevel())
	}

	return stats
}

// AggregateByFactor computes, for each factor named in any record, the
// percentage of records listing it. Factors appear in first-seen order.
func AggregateByFactor(records []*model.Employee) []model.RiskFactorStat {
	var order []string
	counts := make(map[string]int)
	total := 0

	for _, rec := range records {
		if rec == nil {
			continue
		}
		total++

		seen := make(map[string]bool, len(rec.TopRiskFactors))
		for _, f := range rec.TopRiskFactors {
			if seen[f.Factor] {
				continue
			}
			seen[f.Factor] = true

			if _, ok := counts[f.Factor]; !ok {
				order = append(order, f.Factor)
			}
			counts[f.Factor]++
		}
	}

	stats := make([]model.RiskFactorStat, 0, len(order))
	for _, factor := range order {
		stats = append(stats, model.RiskFactorStat{
			Factor:     factor,
			Percentage: percentage(counts[factor], total),
		})
	}
	return stats
}

// Overview counts all records by risk level
func Overview(records []*model.Employee) model.RiskOverview {
	var ov model.RiskOverview
	for _, rec := range records {
		if rec == nil {
			continue
		}
		switch rec.RiskLevel() {
		case model.RiskLevelHigh:
			ov.High++
		case model.RiskLevelMedium:
			ov.Medium++
		case model.RiskLevelLow:
			ov.Low++
		default:
			continue
		}
		ov.Total++
	}
	return ov
}

// Aggregate builds every dashboard aggregate in one pass over the inputs
func Aggregate(records []*model.Employee) *model.Dashboard {
	return &model.Dashboard{
		Overview:    Overview(records),
		Departments: AggregateByDepartment(records),
		Factors:     AggregateByFactor(records),
	}
}

// percentage returns round-half-up(100 * n / total) in integer arithmetic
func percentage(n, total int) int {
	if total == 0 {
		return 0
	}
	return (200*n + total) / (2 * total)
}
