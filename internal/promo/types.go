// Package promo 实现优惠券适用规则引擎：规则归一化、受众分类、令牌匹配、资格判定与折扣计算。
//
// 包内所有函数均为纯函数，不持有可变共享状态，可在多个请求间并发调用。
package promo

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType 优惠类型
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE" // 百分比折扣
	DiscountTypeFixed      DiscountType = "FIXED"      // 固定金额
)

// ParseDiscountType 解析优惠类型，大小写不敏感，兼容 percent/fixed_amount 写法
func ParseDiscountType(raw string) (DiscountType, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(DiscountTypePercentage), "PERCENT":
		return DiscountTypePercentage, true
	case string(DiscountTypeFixed), "FIXED_AMOUNT":
		return DiscountTypeFixed, true
	default:
		return "", false
	}
}

// Coupon 引擎视角下的优惠券
type Coupon struct {
	Code          string          `json:"code"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     *time.Time      `json:"valid_from,omitempty"`
	ValidUntil    *time.Time      `json:"valid_until,omitempty"`
	IsActive      bool            `json:"is_active"`
}

// LineItem 购物车行项目，空字段不参与匹配
type LineItem struct {
	Category  string `json:"category,omitempty"`
	Brand     string `json:"brand,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
	VendorID  string `json:"vendor_id,omitempty"`
}

// Identity 结算方身份
type Identity struct {
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
	IsGuest      bool   `json:"is_guest"`
	IsNewUser    bool   `json:"is_new_user"`
	IsClubMember bool   `json:"is_club_member"`
}

// EvaluationContext 单次结算尝试的评估上下文
type EvaluationContext struct {
	CartTotal        decimal.Decimal `json:"cart_total"`
	PaymentMethod    string          `json:"payment_method"`
	LineItems        []LineItem      `json:"line_items"`
	Identity         Identity        `json:"identity"`
	PriorRedemptions int             `json:"prior_redemptions"`
	Now              time.Time       `json:"now"`
}

// Reason 不满足条件的原因码
type Reason string

const (
	ReasonInactive                Reason = "inactive"
	ReasonOutOfSchedule           Reason = "out_of_schedule"
	ReasonAudienceMismatch        Reason = "audience_mismatch"
	ReasonBelowMinimum            Reason = "below_minimum"
	ReasonPaymentMethodNotAllowed Reason = "payment_method_not_allowed"
	ReasonUsageLimitReached       Reason = "usage_limit_reached"
	ReasonIncludesNotSatisfied    Reason = "includes_not_satisfied"
	ReasonExcludedItemPresent     Reason = "excluded_item_present"
)

// AllReasons 按检查顺序列出全部原因码
var AllReasons = []Reason{
	ReasonInactive,
	ReasonOutOfSchedule,
	ReasonAudienceMismatch,
	ReasonBelowMinimum,
	ReasonPaymentMethodNotAllowed,
	ReasonUsageLimitReached,
	ReasonIncludesNotSatisfied,
	ReasonExcludedItemPresent,
}

// Result 资格判定结果
type Result struct {
	OK      bool     `json:"ok"`
	Reasons []Reason `json:"reasons"`
}

// Has 判断结果是否包含指定原因
func (r Result) Has(reason Reason) bool {
	for _, item := range r.Reasons {
		if item == reason {
			return true
		}
	}
	return false
}

// ReasonStrings 返回原因码字符串切片
func (r Result) ReasonStrings() []string {
	out := make([]string, 0, len(r.Reasons))
	for _, item := range r.Reasons {
		out = append(out, string(item))
	}
	return out
}
