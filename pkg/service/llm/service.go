package llm

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// Error tags for categorization
var (
	ErrTagInvalidJSON     = goerr.NewTag("invalid_json")
	ErrTagMissingField    = goerr.NewTag("missing_field")
	ErrTagEmptyResponse   = goerr.NewTag("empty_response")
	ErrTagTemplateFailure = goerr.NewTag("template_failure")
)

// DefaultMaxActions is the number of actions requested per employee
const DefaultMaxActions = 3

//go:embed templates/*.md
var templateFS embed.FS

// LLMService generates retention recommendations with an LLM
type LLMService struct {
	llmClient  gollem.LLMClient
	maxActions int
}

// Option configures LLMService
type Option func(*LLMService)

// WithMaxActions sets the number of actions requested per employee
func WithMaxActions(n int) Option {
	return func(s *LLMService) {
		if n > 0 {
			s.maxActions = n
		}
	}
}

// AdviceTemplateData is the input of the advice prompt. The employee name is
// deliberately left out of the prompt.
type AdviceTemplateData struct {
	Department string
	Position   string
	Age        int
	JoinDate   string
	RiskScore  int
	RiskLabel  string
	Factors    []model.RiskFactor
	MaxActions int
}

type adviceResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// NewLLMService creates a new LLMService instance
func NewLLMService(llmClient gollem.LLMClient, opts ...Option) *LLMService {
	s := &LLMService{
		llmClient:  llmClient,
		maxActions: DefaultMaxActions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend asks the LLM for retention actions for the employee
func (s *LLMService) Recommend(ctx context.Context, employee *model.Employee) ([]model.Recommendation, error) {
	if employee == nil {
		return nil, goerr.New("employee is required")
	}

	prompt, err := s.renderAdviceTemplate(AdviceTemplateData{
		Department: employee.Department.String(),
		Position:   employee.Position,
		Age:        employee.Age,
		JoinDate:   employee.JoinDate,
		RiskScore:  employee.RiskScore,
		RiskLabel:  employee.RiskLevel().Label(),
		Factors:    employee.TopRiskFactors,
		MaxActions: s.maxActions,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render advice template",
			goerr.T(ErrTagTemplateFailure))
	}

	// Create session with JSON content type
	session, err := s.llmClient.NewSession(ctx, gollem.WithSessionContentType(gollem.ContentTypeJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	response, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate LLM response",
			goerr.V("employee_id", employee.ID))
	}

	if len(response.Texts) == 0 || response.Texts[0] == "" {
		return nil, goerr.New("empty response from LLM",
			goerr.T(ErrTagEmptyResponse))
	}

	var resp adviceResponse
	if err := json.Unmarshal([]byte(response.Texts[0]), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response as JSON",
			goerr.V("response", response.Texts[0]),
			goerr.T(ErrTagInvalidJSON))
	}

	recs := make([]model.Recommendation, 0, len(resp.Recommendations))
	for _, rec := range resp.Recommendations {
		if rec.Title == "" || rec.Action == "" {
			continue
		}
		if !rec.Priority.Valid() {
			rec.Priority = model.PriorityMedium
		}
		rec.ExpectedImpact = min(max(rec.ExpectedImpact, 0), model.MaxRiskScore)
		recs = append(recs, rec)
		if len(recs) == s.maxActions {
			break
		}
	}

	if len(recs) == 0 {
		return nil, goerr.New("LLM response has no usable recommendation",
			goerr.T(ErrTagMissingField),
			goerr.V("field", "recommendations"))
	}

	return recs, nil
}

// renderAdviceTemplate renders the advice prompt
func (s *LLMService) renderAdviceTemplate(data AdviceTemplateData) (string, error) {
	templateContent, err := templateFS.ReadFile("templates/retention_advice.md")
	if err != nil {
		return "", goerr.Wrap(err, "failed to read advice template")
	}

	tmpl, err := template.New("retention_advice").Parse(string(templateContent))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse advice template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute advice template")
	}

	return buf.String(), nil
}
