package interfaces

//go:generate moq -out mocks/advisor_mock.go -pkg mocks . Advisor

import (
	"context"

	"github.com/secmon-lab/retention/pkg/domain/model"
)

// Advisor suggests retention actions for an employee
type Advisor interface {
	Recommend(ctx context.Context, employee *model.Employee) ([]model.Recommendation, error)
}
