// Package advice produces recommended retention actions for high risk
// employees.
package advice

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
)

// rule maps a risk factor to an action
type rule struct {
	factor string
	rec    model.Recommendation
}

// interview is always recommended first for a high risk employee
var interview = model.Recommendation{
	Priority:       model.PriorityHigh,
	Title:          "1on1面談の実施",
	Action:         "上司との1on1面談を2週間以内に実施し、現在の悩みや要望をヒアリング",
	ExpectedImpact: 20,
}

var rules = []rule{
	{factor: "キャリア成長", rec: model.Recommendation{
		Priority:       model.PriorityMedium,
		Title:          "キャリア開発プログラム",
		Action:         "スキルアップ研修やキャリアパス相談の機会を提供",
		ExpectedImpact: 15,
	}},
	{factor: "ワークライフバランス", rec: model.Recommendation{
		Priority:       model.PriorityMedium,
		Title:          "ワークライフバランス改善",
		Action:         "フレックスタイム制度やリモートワークの活用を提案",
		ExpectedImpact: 10,
	}},
	{factor: "労働時間", rec: model.Recommendation{
		Priority:       model.PriorityMedium,
		Title:          "業務量の見直し",
		Action:         "残業時間を確認し、業務の再配分や増員を検討",
		ExpectedImpact: 10,
	}},
	{factor: "報酬・待遇", rec: model.Recommendation{
		Priority:       model.PriorityMedium,
		Title:          "報酬水準の確認",
		Action:         "市場水準と比較し、次回評価での処遇改善を検討",
		ExpectedImpact: 15,
	}},
	{factor: "上司との関係", rec: model.Recommendation{
		Priority:       model.PriorityHigh,
		Title:          "上司とのコミュニケーション改善",
		Action:         "人事による面談やメンター制度の導入を検討",
		ExpectedImpact: 15,
	}},
	{factor: "スキルマッチ", rec: model.Recommendation{
		Priority:       model.PriorityLow,
		Title:          "配置の見直し",
		Action:         "スキルと業務内容のギャップを確認し、異動や担当変更を検討",
		ExpectedImpact: 10,
	}},
	{factor: "職場環境", rec: model.Recommendation{
		Priority:       model.PriorityLow,
		Title:          "職場環境の改善",
		Action:         "チームのエンゲージメント調査を実施し、課題を把握",
		ExpectedImpact: 5,
	}},
}

// Rules recommends actions from a static factor table
type Rules struct {
	maxActions int
}

// NewRules creates a Rules advisor returning at most maxActions actions.
// Zero or negative means no limit.
func NewRules(maxActions int) *Rules {
	return &Rules{maxActions: maxActions}
}

// Recommend returns the interview action followed by one action per known
// top factor, in factor order
func (r *Rules) Recommend(_ context.Context, employee *model.Employee) ([]model.Recommendation, error) {
	if employee == nil {
		return nil, goerr.New("employee is required")
	}

	recs := []model.Recommendation{interview}
	for _, f := range employee.TopRiskFactors {
		idx := slices.IndexFunc(rules, func(r rule) bool { return r.factor == f.Factor })
		if idx < 0 {
			continue
		}
		if slices.Contains(recs, rules[idx].rec) {
			continue
		}
		recs = append(recs, rules[idx].rec)
	}

	if r.maxActions > 0 && len(recs) > r.maxActions {
		recs = recs[:r.maxActions]
	}
	return recs, nil
}
