package service

import "errors"

// 优惠券管理错误
var (
	ErrCouponInvalid         = errors.New("coupon invalid")
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrCouponCodeRequired    = errors.New("coupon code required")
	ErrCouponCodeExists      = errors.New("coupon code exists")
	ErrCouponTypeInvalid     = errors.New("coupon discount type invalid")
	ErrCouponValueInvalid    = errors.New("coupon discount value invalid")
	ErrCouponWindowInvalid   = errors.New("coupon validity window invalid")
	ErrCouponFetchFailed     = errors.New("coupon fetch failed")
	ErrCouponSaveFailed      = errors.New("coupon save failed")
	ErrCouponRulesSaveFailed = errors.New("coupon rules save failed")
)

// 结算评估与核销错误
var (
	ErrCheckoutInvalid   = errors.New("checkout context invalid")
	ErrCouponNotEligible = errors.New("coupon not eligible")
	ErrRedemptionInvalid = errors.New("redemption invalid")
	ErrRedemptionFailed  = errors.New("redemption record failed")
)

// 审计错误
var ErrAuditLogFailed = errors.New("audit log fetch failed")
