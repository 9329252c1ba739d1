package risk

import (
	"iter"
	"slices"
	"strings"

	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
)

// Filter yields the records whose name or department contains searchTerm
// (case-insensitive) and whose department equals departmentFilter, unless
// departmentFilter is types.DepartmentAll. The sequence is lazy and can be
// iterated any number of times.
func Filter(records []*model.Employee, searchTerm string, departmentFilter types.Department) iter.Seq[*model.Employee] {
	term := strings.ToLower(searchTerm)

	return func(yield func(*model.Employee) bool) {
		for _, rec := range records {
			if rec == nil {
				continue
			}
			if !matchesSearch(rec, term) || !matchesDepartment(rec, departmentFilter) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Collect materializes a filtered sequence
func Collect(seq iter.Seq[*model.Employee]) []*model.Employee {
	result := slices.Collect(seq)
	if result == nil {
		return []*model.Employee{}
	}
	return result
}

// HighRisk yields the records classified HIGH, in input order
func HighRisk(records []*model.Employee) iter.Seq[*model.Employee] {
	return func(yield func(*model.Employee) bool) {
		for _, rec := range records {
			if rec == nil || rec.RiskLevel() != model.RiskLevelHigh {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Departments returns the distinct departments in first-seen order
func Departments(records []*model.Employee) []types.Department {
	result := []types.Department{}
	seen := make(map[types.Department]bool)
	for _, rec := range records {
		if rec == nil || seen[rec.Department] {
			continue
		}
		seen[rec.Department] = true
		result = append(result, rec.Department)
	}
	return result
}

func matchesSearch(rec *model.Employee, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Name), lowerTerm) ||
		strings.Contains(strings.ToLower(rec.Department.String()), lowerTerm)
}

func matchesDepartment(rec *model.Employee, departmentFilter types.Department) bool {
	return departmentFilter == types.DepartmentAll || rec.Department == departmentFilter
}
