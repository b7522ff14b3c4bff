package admin

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/promo"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CouponRequest 创建/更新优惠券请求
type CouponRequest struct {
	Code          string          `json:"code" binding:"required"`
	Name          string          `json:"name"`
	DiscountType  string          `json:"discount_type" binding:"required"`
	DiscountValue models.Money    `json:"discount_value"`
	ValidFrom     string          `json:"valid_from"`
	ValidUntil    string          `json:"valid_until"`
	IsActive      *bool           `json:"is_active"`
	Rules         json.RawMessage `json:"rules"`
}

// CouponActiveRequest 启用/停用请求
type CouponActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CouponQuickTestRequest 快速测试请求
type CouponQuickTestRequest struct {
	Rules            json.RawMessage  `json:"rules"`
	CartTotal        decimal.Decimal  `json:"cart_total"`
	PaymentMethod    string           `json:"payment_method"`
	LineItems        []promo.LineItem `json:"line_items"`
	Identity         promo.Identity   `json:"identity"`
	PriorRedemptions int              `json:"prior_redemptions"`
	Now              string           `json:"now"`
}

// CouponDraftQuickTestRequest 未保存优惠券的快速测试请求
type CouponDraftQuickTestRequest struct {
	CouponQuickTestRequest
	Coupon CouponDraftRequest `json:"coupon"`
}

// CouponDraftRequest 未保存的优惠券
type CouponDraftRequest struct {
	Code          string       `json:"code"`
	DiscountType  string       `json:"discount_type" binding:"required"`
	DiscountValue models.Money `json:"discount_value"`
	ValidFrom     string       `json:"valid_from"`
	ValidUntil    string       `json:"valid_until"`
	IsActive      *bool        `json:"is_active"`
}

func (r CouponQuickTestRequest) toInput(couponID uint, draft *promo.Coupon) (service.QuickTestInput, error) {
	now, err := handlershared.ParseTimeNullable(r.Now)
	if err != nil {
		return service.QuickTestInput{}, err
	}
	return service.QuickTestInput{
		CouponID:         couponID,
		Draft:            draft,
		Rules:            rawRulesInput(r.Rules),
		CartTotal:        r.CartTotal,
		PaymentMethod:    r.PaymentMethod,
		LineItems:        r.LineItems,
		Identity:         r.Identity,
		PriorRedemptions: r.PriorRedemptions,
		Now:              now,
	}, nil
}

func (r CouponDraftRequest) toCoupon() (*promo.Coupon, error) {
	validFrom, err := handlershared.ParseTimeNullable(r.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := handlershared.ParseTimeNullable(r.ValidUntil)
	if err != nil {
		return nil, err
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &promo.Coupon{
		Code:          r.Code,
		DiscountType:  promo.DiscountType(r.DiscountType),
		DiscountValue: r.DiscountValue.Decimal,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		IsActive:      active,
	}, nil
}

// rawRulesInput 未提交或为 null 的规则返回 nil
func rawRulesInput(raw json.RawMessage) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.RawMessage(trimmed)
}

func (r CouponRequest) parseWindow() (*time.Time, *time.Time, error) {
	validFrom, err := handlershared.ParseTimeNullable(r.ValidFrom)
	if err != nil {
		return nil, nil, err
	}
	validUntil, err := handlershared.ParseTimeNullable(r.ValidUntil)
	if err != nil {
		return nil, nil, err
	}
	return validFrom, validUntil, nil
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	validFrom, validUntil, err := req.parseWindow()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	detail, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:          req.Code,
		Name:          req.Name,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		IsActive:      req.IsActive,
		Rules:         rawRulesInput(req.Rules),
	}, actor)
	if err != nil {
		respondCouponSaveError(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateCoupon 更新优惠券，未提交 rules 时保持原规则
func (h *Handler) UpdateCoupon(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	validFrom, validUntil, err := req.parseWindow()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	detail, err := h.CouponAdminService.Update(couponID, service.UpdateCouponInput{
		Code:          req.Code,
		Name:          req.Name,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		IsActive:      req.IsActive,
		Rules:         rawRulesInput(req.Rules),
	}, actor)
	if err != nil {
		respondCouponSaveError(c, err)
		return
	}
	response.Success(c, detail)
}

// SetCouponActive 启用或停用优惠券
func (h *Handler) SetCouponActive(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	var req CouponActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponAdminService.SetActive(couponID, *req.IsActive, actor)
	if err != nil {
		respondCouponSaveError(c, err)
		return
	}
	response.Success(c, coupon)
}

// GetAdminCoupon 获取优惠券详情
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	detail, err := h.CouponAdminService.Get(couponID)
	if err != nil {
		respondCouponFetchError(c, err)
		return
	}
	response.Success(c, detail)
}

// GetAdminCoupons 获取优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)

	id, err := handlershared.ParseUintQuery(c, "id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var isActive *bool
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		isActive = &parsed
	}

	coupons, total, err := h.CouponAdminService.List(service.CouponListInput{
		Page:     page,
		PageSize: pageSize,
		ID:       id,
		Code:     c.Query("code"),
		Keyword:  c.Query("keyword"),
		IsActive: isActive,
		Audience: c.Query("audience"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, coupons, handlershared.BuildPagination(page, pageSize, total))
}

// GetCouponRules 获取优惠券归一化规则
func (h *Handler) GetCouponRules(c *gin.Context) {
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	rules, err := h.CouponAdminService.GetRules(couponID)
	if err != nil {
		respondCouponFetchError(c, err)
		return
	}
	response.Success(c, rules)
}

// SaveCouponRules 保存优惠券规则，请求体为原始规则对象
func (h *Handler) SaveCouponRules(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !json.Valid(trimmed) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	rules, err := h.CouponAdminService.SaveRules(couponID, rawRulesInput(raw), actor)
	if err != nil {
		respondCouponSaveError(c, err)
		return
	}
	response.Success(c, rules)
}

// QuickTestCoupon 使用合成结算上下文试算优惠券，可携带未保存的规则
func (h *Handler) QuickTestCoupon(c *gin.Context) {
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	var req CouponQuickTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput(couponID, nil)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	h.runQuickTest(c, input)
}

// QuickTestDraftCoupon 试算尚未保存的优惠券与规则
func (h *Handler) QuickTestDraftCoupon(c *gin.Context) {
	var req CouponDraftQuickTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	draft, err := req.Coupon.toCoupon()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput(0, draft)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	h.runQuickTest(c, input)
}

func (h *Handler) runQuickTest(c *gin.Context, input service.QuickTestInput) {
	outcome, err := h.CouponService.QuickTest(c.Request.Context(), input)
	if err != nil {
		respondCouponQuickTestError(c, err)
		return
	}
	requestLog(c).Debugw("admin_coupon_quick_test",
		"coupon_id", input.CouponID,
		"code", outcome.Code,
		"ok", outcome.OK,
		"reasons", outcome.Reasons,
		"unsaved_rules", outcome.UnsavedRules,
	)
	handlershared.RespondEvaluation(c, outcome, outcome.Reasons)
}

// GetCouponUsages 获取优惠券核销记录
func (h *Handler) GetCouponUsages(c *gin.Context) {
	couponID, ok := parseCouponIDParam(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PaginationFromQuery(c)
	createdFrom, err := handlershared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := handlershared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	usages, total, err := h.CouponAdminService.ListUsages(couponID, service.CouponUsageListInput{
		Page:        page,
		PageSize:    pageSize,
		UserID:      c.Query("user_id"),
		Email:       c.Query("email"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondCouponFetchError(c, err)
		return
	}
	response.SuccessWithPage(c, usages, handlershared.BuildPagination(page, pageSize, total))
}
