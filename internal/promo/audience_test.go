package promo

import "testing"

func TestClassifyAudience(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{label: "all", want: AudienceAll},
		{label: "  ALL Customers ", want: AudienceAll},
		{label: "Everyone", want: AudienceAll},
		{label: "全部用户", want: AudienceAll},
		{label: "New users", want: AudienceNew},
		{label: "first_order", want: AudienceNew},
		{label: "First purchase", want: AudienceNew},
		{label: "新用户", want: AudienceNew},
		{label: "Registered members", want: AudienceUsers},
		{label: "existing customers", want: AudienceUsers},
		{label: "users", want: AudienceUsers},
		{label: "老用户", want: AudienceUsers},
		{label: "", want: AudienceUsers},
		{label: "   ", want: AudienceUsers},
		{label: "  VIP  ", want: "VIP"},
		// 顺序敏感：包含 all 的标签优先归入 all
		{label: "small business", want: AudienceAll},
		{label: "all new users", want: AudienceAll},
	}
	for _, tc := range cases {
		if got := ClassifyAudience(tc.label); got != tc.want {
			t.Fatalf("ClassifyAudience(%q) want %q got %q", tc.label, tc.want, got)
		}
	}
}

func TestCustomAudienceTable(t *testing.T) {
	table := NewAudienceTable(
		AudienceRule{Target: AudienceNew, Synonyms: []string{"Rookie", ""}},
		AudienceRule{Target: AudienceAll, Synonyms: []string{"public"}},
	)
	if got := table.Classify("rookie public"); got != AudienceNew {
		t.Fatalf("first rule should win, got %q", got)
	}
	if got := table.Classify("public"); got != AudienceAll {
		t.Fatalf("public want all got %q", got)
	}
	if got := table.Classify("everyone"); got != "everyone" {
		t.Fatalf("unmatched label should be returned unchanged, got %q", got)
	}

	evaluator := NewEvaluator(table)
	result := evaluator.Evaluate(
		Coupon{IsActive: true},
		Normalize(map[string]interface{}{"audience": "rookie"}),
		EvaluationContext{Identity: Identity{IsNewUser: false}},
	)
	if !result.Has(ReasonAudienceMismatch) {
		t.Fatalf("custom table should drive evaluator audience check, got %v", result.Reasons)
	}
}
