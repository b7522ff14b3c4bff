package promo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// AudienceClassifier 将自由文本受众标签映射到规范标签
type AudienceClassifier interface {
	Classify(label string) string
}

// AudienceRule 一条同义词规则，标签包含任一同义词即归入 Target
type AudienceRule struct {
	Target   string
	Synonyms []string
}

// AudienceTable 按顺序匹配的同义词表，先命中者生效
type AudienceTable struct {
	rules []AudienceRule
}

// NewAudienceTable 创建同义词表，同义词统一折叠为小写
func NewAudienceTable(rules ...AudienceRule) *AudienceTable {
	copied := make([]AudienceRule, 0, len(rules))
	for _, rule := range rules {
		synonyms := make([]string, 0, len(rule.Synonyms))
		for _, synonym := range rule.Synonyms {
			folded := foldAudienceLabel(synonym)
			if folded == "" {
				continue
			}
			synonyms = append(synonyms, folded)
		}
		copied = append(copied, AudienceRule{Target: rule.Target, Synonyms: synonyms})
	}
	return &AudienceTable{rules: copied}
}

// DefaultAudienceTable 默认同义词表
var DefaultAudienceTable = NewAudienceTable(
	AudienceRule{Target: AudienceAll, Synonyms: []string{"all", "everyone", "everybody", "所有", "全部"}},
	AudienceRule{Target: AudienceNew, Synonyms: []string{"new", "first", "first_order", "新"}},
	AudienceRule{Target: AudienceUsers, Synonyms: []string{"registered", "existing", "users", "注册", "老用户"}},
)

// Classify 依次检查同义词；均未命中时非空标签原样返回，空标签视为 users
func (t *AudienceTable) Classify(label string) string {
	trimmed := strings.TrimSpace(label)
	folded := foldAudienceLabel(trimmed)
	if folded == "" {
		return AudienceUsers
	}
	for _, rule := range t.rules {
		for _, synonym := range rule.Synonyms {
			if strings.Contains(folded, synonym) {
				return rule.Target
			}
		}
	}
	return trimmed
}

// ClassifyAudience 使用默认同义词表分类
func ClassifyAudience(label string) string {
	return DefaultAudienceTable.Classify(label)
}

// foldAudienceLabel Caser 有状态，每次调用单独创建
func foldAudienceLabel(label string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(label)))
}
