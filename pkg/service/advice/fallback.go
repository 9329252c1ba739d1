package advice

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/retention/pkg/domain/interfaces"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// Fallback asks the primary advisor and uses the secondary one when it fails
type Fallback struct {
	primary   interfaces.Advisor
	secondary interfaces.Advisor
}

// NewFallback creates a Fallback advisor
func NewFallback(primary, secondary interfaces.Advisor) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Recommend implements interfaces.Advisor
func (f *Fallback) Recommend(ctx context.Context, employee *model.Employee) ([]model.Recommendation, error) {
	recs, err := f.primary.Recommend(ctx, employee)
	if err == nil {
		return recs, nil
	}

	ctxlog.From(ctx).Warn("advisor failed, using fallback",
		"error", err,
		"employeeID", employee.ID,
	)
	return f.secondary.Recommend(ctx, employee)
}
