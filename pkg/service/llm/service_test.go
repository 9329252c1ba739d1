package llm_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/service/llm"
)

func newMockClient(text string, prompt *string) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if prompt != nil && len(input) > 0 {
						if txt, ok := input[0].(gollem.Text); ok {
							*prompt = string(txt)
						}
					}
					if text == "" {
						return &gollem.Response{Texts: []string{}}, nil
					}
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func highRiskEmployee() *model.Employee {
	return &model.Employee{
		ID:         "EMP001",
		Name:       "田中 太郎",
		Department: "営業部",
		Position:   "主任",
		JoinDate:   "2020-04-01",
		Age:        32,
		RiskScore:  85,
		TopRiskFactors: []model.RiskFactor{
			{Factor: "ワークライフバランス", Impact: 0.3},
			{Factor: "キャリア成長", Impact: 0.25},
		},
	}
}

func TestLLMService_Recommend_Success(t *testing.T) {
	var prompt string
	client := newMockClient(`{
		"recommendations": [
			{"priority": "high", "title": "1on1面談の実施", "action": "2週間以内に上司との1on1を実施", "expected_impact": 20},
			{"priority": "urgent", "title": "キャリア開発プログラム", "action": "研修機会を提供", "expected_impact": 150},
			{"priority": "low", "title": "", "action": "missing title is skipped"}
		]
	}`, &prompt)
	service := llm.NewLLMService(client)

	recs, err := service.Recommend(context.Background(), highRiskEmployee())
	gt.NoError(t, err)
	gt.A(t, recs).Length(2)

	gt.Equal(t, recs[0].Priority, model.PriorityHigh)
	gt.Equal(t, recs[0].Title, "1on1面談の実施")
	gt.Equal(t, recs[0].ExpectedImpact, 20)

	// Unknown priority and out of range impact are normalized
	gt.Equal(t, recs[1].Priority, model.PriorityMedium)
	gt.Equal(t, recs[1].ExpectedImpact, 100)

	gt.S(t, prompt).Contains("営業部")
	gt.S(t, prompt).Contains("ワークライフバランス")
	gt.S(t, prompt).Contains("85 / 100")
	gt.S(t, prompt).NotContains("田中")
}

func TestLLMService_Recommend_MaxActions(t *testing.T) {
	client := newMockClient(`{
		"recommendations": [
			{"priority": "high", "title": "a", "action": "a"},
			{"priority": "high", "title": "b", "action": "b"},
			{"priority": "high", "title": "c", "action": "c"}
		]
	}`, nil)
	service := llm.NewLLMService(client, llm.WithMaxActions(2))

	recs, err := service.Recommend(context.Background(), highRiskEmployee())
	gt.NoError(t, err)
	gt.A(t, recs).Length(2)
}

func TestLLMService_Recommend_InvalidJSON(t *testing.T) {
	service := llm.NewLLMService(newMockClient("not valid json", nil))

	recs, err := service.Recommend(context.Background(), highRiskEmployee())
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, llm.ErrTagInvalidJSON)).True()
	gt.Nil(t, recs)
}

func TestLLMService_Recommend_NoUsableRecommendation(t *testing.T) {
	service := llm.NewLLMService(newMockClient(`{"recommendations": []}`, nil))

	recs, err := service.Recommend(context.Background(), highRiskEmployee())
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, llm.ErrTagMissingField)).True()
	values := goerr.Values(err)
	gt.V(t, values["field"]).Equal("recommendations")
	gt.Nil(t, recs)
}

func TestLLMService_Recommend_EmptyResponse(t *testing.T) {
	service := llm.NewLLMService(newMockClient("", nil))

	recs, err := service.Recommend(context.Background(), highRiskEmployee())
	gt.Error(t, err)
	gt.B(t, goerr.HasTag(err, llm.ErrTagEmptyResponse)).True()
	gt.Nil(t, recs)
}
