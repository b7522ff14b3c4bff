package promo

import (
	"strings"
	"time"
)

// Evaluator 资格判定器，零值使用默认受众分类表
type Evaluator struct {
	Classifier AudienceClassifier
}

// NewEvaluator 创建判定器，classifier 为空时使用默认分类表
func NewEvaluator(classifier AudienceClassifier) *Evaluator {
	return &Evaluator{Classifier: classifier}
}

var defaultEvaluator = &Evaluator{}

// Evaluate 使用默认判定器执行资格判定
func Evaluate(coupon Coupon, rules Rules, ctx EvaluationContext) Result {
	return defaultEvaluator.Evaluate(coupon, rules, ctx)
}

// Evaluate 依次执行全部检查并累积失败原因，不修改任何入参
func (e *Evaluator) Evaluate(coupon Coupon, rules Rules, ctx EvaluationContext) Result {
	reasons := make([]Reason, 0, len(AllReasons))

	if !coupon.IsActive || !rules.Enabled {
		reasons = append(reasons, ReasonInactive)
	}
	if !withinWindow(ctx.Now, coupon.ValidFrom, coupon.ValidUntil) ||
		!withinWindow(ctx.Now, rules.Schedule.From, rules.Schedule.To) {
		reasons = append(reasons, ReasonOutOfSchedule)
	}
	if !e.audienceAllowed(rules.Audience.Target, ctx.Identity) {
		reasons = append(reasons, ReasonAudienceMismatch)
	}
	if rules.Min != nil && ctx.CartTotal.LessThan(*rules.Min) {
		reasons = append(reasons, ReasonBelowMinimum)
	}
	if !paymentMethodAllowed(rules.PaymentMethods, ctx.PaymentMethod) {
		reasons = append(reasons, ReasonPaymentMethodNotAllowed)
	}
	if rules.LimitPerUser != nil && ctx.PriorRedemptions >= *rules.LimitPerUser {
		reasons = append(reasons, ReasonUsageLimitReached)
	}
	if !includesSatisfied(rules.Includes, rules.MatchMode, ctx) {
		reasons = append(reasons, ReasonIncludesNotSatisfied)
	}
	if anyTokenMatches(rules.Excludes, ctx) {
		reasons = append(reasons, ReasonExcludedItemPresent)
	}

	return Result{OK: len(reasons) == 0, Reasons: reasons}
}

func (e *Evaluator) classifier() AudienceClassifier {
	if e == nil || e.Classifier == nil {
		return DefaultAudienceTable
	}
	return e.Classifier
}

// audienceAllowed guest 与 club 由身份标记直接判定，其余标签先分类
func (e *Evaluator) audienceAllowed(target string, identity Identity) bool {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case AudienceGuest:
		return identity.IsGuest
	case AudienceClub:
		return identity.IsClubMember
	}
	switch e.classifier().Classify(target) {
	case AudienceAll:
		return true
	case AudienceNew:
		return identity.IsNewUser
	default:
		return !identity.IsGuest
	}
}

// withinWindow 闭区间判断，nil 边界视为不限
func withinWindow(now time.Time, from, until *time.Time) bool {
	if from != nil && now.Before(*from) {
		return false
	}
	if until != nil && now.After(*until) {
		return false
	}
	return true
}

func paymentMethodAllowed(allowed []string, method string) bool {
	if len(allowed) == 0 {
		return true
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return false
	}
	for _, item := range allowed {
		if strings.EqualFold(item, method) {
			return true
		}
	}
	return false
}

func includesSatisfied(includes []string, mode MatchMode, ctx EvaluationContext) bool {
	if len(includes) == 0 {
		return true
	}
	if mode == MatchModeAny {
		return anyTokenMatches(includes, ctx)
	}
	for _, token := range includes {
		if !MatchToken(token, ctx) {
			return false
		}
	}
	return true
}

func anyTokenMatches(tokens []string, ctx EvaluationContext) bool {
	for _, token := range tokens {
		if MatchToken(token, ctx) {
			return true
		}
	}
	return false
}
