package promo

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MatchMode 多个包含令牌的组合方式
type MatchMode string

const (
	MatchModeAll MatchMode = "all" // 全部命中
	MatchModeAny MatchMode = "any" // 任一命中
)

// 受众目标标签
const (
	AudienceAll   = "all"
	AudienceNew   = "new"
	AudienceUsers = "users"
	AudienceGuest = "guest"
	AudienceClub  = "club"
)

// 规则字段名
const (
	RuleFieldEnabled        = "enabled"
	RuleFieldMin            = "min"
	RuleFieldMax            = "max"
	RuleFieldIncludes       = "includes"
	RuleFieldExcludes       = "excludes"
	RuleFieldMatchMode      = "matchMode"
	RuleFieldSchedule       = "schedule"
	RuleFieldLimitPerUser   = "limitPerUser"
	RuleFieldPaymentMethods = "paymentMethods"
	RuleFieldAudience       = "audience"
)

// ruleFieldAliases 表单提交的下划线字段别名
var ruleFieldAliases = map[string]string{
	"match_mode":      RuleFieldMatchMode,
	"limit_per_user":  RuleFieldLimitPerUser,
	"payment_methods": RuleFieldPaymentMethods,
}

// Schedule 规则内的二级时间窗口
type Schedule struct {
	From *time.Time
	To   *time.Time
}

// Audience 受众设置
type Audience struct {
	Target string
}

// Rules 归一化后的优惠券规则
type Rules struct {
	Enabled        bool
	Min            *decimal.Decimal
	Max            *decimal.Decimal
	Includes       []string
	Excludes       []string
	MatchMode      MatchMode
	Schedule       Schedule
	LimitPerUser   *int
	PaymentMethods []string
	Audience       Audience
	// Extra 未识别字段，原样保留
	Extra map[string]interface{}
}

// DefaultRules 返回未配置任何条件时的规则
func DefaultRules() Rules {
	return Rules{
		Enabled:   true,
		Includes:  []string{},
		Excludes:  []string{},
		MatchMode: MatchModeAll,
		Audience:  Audience{Target: AudienceAll},
	}
}

// ToMap 输出规则的持久化结构，已知字段覆盖同名的附加字段
func (r Rules) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(r.Extra)+10)
	for key, value := range r.Extra {
		out[key] = value
	}

	out[RuleFieldEnabled] = r.Enabled
	out[RuleFieldMin] = decimalToJSON(r.Min)
	out[RuleFieldMax] = decimalToJSON(r.Max)
	out[RuleFieldIncludes] = stringsOrEmpty(r.Includes)
	out[RuleFieldExcludes] = stringsOrEmpty(r.Excludes)
	matchMode := r.MatchMode
	if matchMode != MatchModeAny {
		matchMode = MatchModeAll
	}
	out[RuleFieldMatchMode] = string(matchMode)
	out[RuleFieldSchedule] = map[string]interface{}{
		"from": timeToJSON(r.Schedule.From),
		"to":   timeToJSON(r.Schedule.To),
	}
	if r.LimitPerUser != nil {
		out[RuleFieldLimitPerUser] = *r.LimitPerUser
	} else {
		out[RuleFieldLimitPerUser] = nil
	}
	if len(r.PaymentMethods) > 0 {
		out[RuleFieldPaymentMethods] = append([]string(nil), r.PaymentMethods...)
	} else {
		out[RuleFieldPaymentMethods] = nil
	}
	out[RuleFieldAudience] = map[string]interface{}{
		"target": r.Audience.Target,
	}
	return out
}

// MarshalJSON 以持久化结构输出
func (r Rules) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON 解码时总是经过归一化
func (r *Rules) UnmarshalJSON(data []byte) error {
	*r = NormalizeJSON(data)
	return nil
}

// HasSchedule 是否配置了二级时间窗口
func (r Rules) HasSchedule() bool {
	return r.Schedule.From != nil || r.Schedule.To != nil
}

func decimalToJSON(value *decimal.Decimal) interface{} {
	if value == nil {
		return nil
	}
	return json.Number(value.String())
}

func timeToJSON(value *time.Time) interface{} {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339)
}

func stringsOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}
