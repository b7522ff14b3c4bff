package public

import (
	"errors"

	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/promo"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutCouponRequest 结算评估请求
type CheckoutCouponRequest struct {
	Code             string           `json:"code" binding:"required"`
	CartTotal        decimal.Decimal  `json:"cart_total"`
	PaymentMethod    string           `json:"payment_method"`
	LineItems        []promo.LineItem `json:"line_items"`
	Identity         promo.Identity   `json:"identity"`
	PriorRedemptions *int             `json:"prior_redemptions"`
}

// RedeemCouponRequest 核销请求
type RedeemCouponRequest struct {
	CheckoutCouponRequest
	OrderNo string `json:"order_no" binding:"required"`
}

func (r CheckoutCouponRequest) toInput() service.CheckoutInput {
	return service.CheckoutInput{
		Code:             r.Code,
		CartTotal:        r.CartTotal,
		PaymentMethod:    r.PaymentMethod,
		LineItems:        r.LineItems,
		Identity:         r.Identity,
		PriorRedemptions: r.PriorRedemptions,
	}
}

// EvaluateCoupon 评估优惠码在当前结算上下文下是否可用
// 不满足条件时仍返回成功响应，由 ok 与 reasons 说明原因
func (h *Handler) EvaluateCoupon(c *gin.Context) {
	var req CheckoutCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	outcome, err := h.CouponService.Evaluate(c.Request.Context(), req.toInput())
	if err != nil {
		respondEvaluateError(c, err)
		return
	}
	handlershared.RespondEvaluation(c, outcome, outcome.Reasons)
}

// RedeemCoupon 复核资格并记录一次核销，同一订单重复提交幂等
func (h *Handler) RedeemCoupon(c *gin.Context) {
	var req RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	outcome, err := h.CouponService.RecordRedemption(c.Request.Context(), service.RedemptionInput{
		CheckoutInput: req.toInput(),
		OrderNo:       req.OrderNo,
		RequestID:     response.RequestID(c),
	})
	if errors.Is(err, service.ErrCouponNotEligible) && outcome != nil && outcome.Evaluation != nil {
		handlershared.RespondRejected(c, "error.coupon_not_eligible", outcome.Evaluation, outcome.Evaluation.Reasons)
		return
	}
	if err != nil {
		respondRedemptionError(c, err)
		return
	}
	response.Success(c, outcome)
}
