package service

import (
	"strings"

	"github.com/dujiao-next/promo/internal/constants"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/promo"
)

const draftCouponCode = "DRAFT"

// toPromoCoupon 将持久化优惠券转换为引擎视角
func toPromoCoupon(coupon *models.Coupon) promo.Coupon {
	if coupon == nil {
		return promo.Coupon{}
	}
	return promo.Coupon{
		Code:          coupon.Code,
		DiscountType:  promo.DiscountType(coupon.DiscountType),
		DiscountValue: coupon.DiscountValue.Decimal,
		ValidFrom:     coupon.ValidFrom,
		ValidUntil:    coupon.ValidUntil,
		IsActive:      coupon.IsActive,
	}
}

// rulesFromModel 读取存储的规则，缺失时返回默认规则
func rulesFromModel(rule *models.CouponRule) promo.Rules {
	if rule == nil || rule.RulesJSON == nil {
		return promo.DefaultRules()
	}
	return promo.Normalize(map[string]interface{}(rule.RulesJSON))
}

// rulesToModelJSON 将归一化规则转为可持久化的 JSON 对象
func rulesToModelJSON(rules promo.Rules) models.JSON {
	return models.JSON(rules.ToMap())
}

// normalizeCouponCode 优惠码统一去空白并大写
func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeDiscountType 优惠类型统一大写
func normalizeDiscountType(raw string) (string, bool) {
	kind, ok := promo.ParseDiscountType(raw)
	return string(kind), ok
}

// normalizeDraftCoupon 按创建时的规则校验未保存的优惠券
func normalizeDraftCoupon(draft promo.Coupon) (promo.Coupon, error) {
	code := draft.Code
	if strings.TrimSpace(code) == "" {
		code = draftCouponCode
	}
	fields, err := validateCouponFields(code, "", string(draft.DiscountType), models.Money{Decimal: draft.DiscountValue}, draft.ValidFrom, draft.ValidUntil)
	if err != nil {
		return promo.Coupon{}, err
	}
	return promo.Coupon{
		Code:          fields.code,
		DiscountType:  promo.DiscountType(fields.discountType),
		DiscountValue: fields.discountValue,
		ValidFrom:     fields.validFrom,
		ValidUntil:    fields.validUntil,
		IsActive:      draft.IsActive,
	}, nil
}

// identityKey 生成核销计数使用的身份键
func identityKey(identity promo.Identity) string {
	if userID := strings.TrimSpace(identity.UserID); userID != "" {
		return constants.IdentityKeyPrefixUser + userID
	}
	if email := strings.ToLower(strings.TrimSpace(identity.Email)); email != "" {
		return constants.IdentityKeyPrefixEmail + email
	}
	return ""
}
