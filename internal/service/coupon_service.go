package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/cache"
	"github.com/dujiao-next/promo/internal/constants"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/metrics"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/promo"
	"github.com/dujiao-next/promo/internal/queue"
	"github.com/dujiao-next/promo/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// 评估来源，用于指标标签
const (
	evaluationSourceCheckout  = "checkout"
	evaluationSourceRedeem    = "redeem"
	evaluationSourceQuickTest = "quick_test"
)

// 核销写入结果，用于指标标签
const (
	redemptionOutcomeRecorded  = "recorded"
	redemptionOutcomeDuplicate = "duplicate"
	redemptionOutcomeFailed    = "failed"
)

// CouponService 结算侧优惠券服务
type CouponService struct {
	couponRepo  repository.CouponRepository
	ruleRepo    repository.CouponRuleRepository
	usageRepo   repository.CouponUsageRepository
	queueClient *queue.Client
	recorder    *metrics.Recorder
	evaluator   *promo.Evaluator
	rulesTTL    time.Duration
	loads       singleflight.Group
	now         func() time.Time
}

// NewCouponService 创建结算侧优惠券服务
func NewCouponService(
	couponRepo repository.CouponRepository,
	ruleRepo repository.CouponRuleRepository,
	usageRepo repository.CouponUsageRepository,
	queueClient *queue.Client,
	recorder *metrics.Recorder,
	rulesTTL time.Duration,
) *CouponService {
	return &CouponService{
		couponRepo:  couponRepo,
		ruleRepo:    ruleRepo,
		usageRepo:   usageRepo,
		queueClient: queueClient,
		recorder:    recorder,
		evaluator:   promo.NewEvaluator(promo.DefaultAudienceTable),
		rulesTTL:    rulesTTL,
		now:         time.Now,
	}
}

// CheckoutInput 结算评估输入
type CheckoutInput struct {
	Code             string
	CartTotal        decimal.Decimal
	PaymentMethod    string
	LineItems        []promo.LineItem
	Identity         promo.Identity
	PriorRedemptions *int // 调用方已知的历史核销次数，为 nil 时按身份统计
}

// QuickTestInput 后台快速测试输入
type QuickTestInput struct {
	CouponID         uint
	Draft            *promo.Coupon // 未保存的优惠券，CouponID 为 0 时使用
	Rules            interface{}   // 未保存的原始规则，为 nil 时使用已保存规则
	CartTotal        decimal.Decimal
	PaymentMethod    string
	LineItems        []promo.LineItem
	Identity         promo.Identity
	PriorRedemptions int
	Now              *time.Time // 模拟评估时间，为 nil 时使用当前时间
}

// RedemptionInput 核销输入
type RedemptionInput struct {
	CheckoutInput
	OrderNo   string
	RequestID string
}

// EvaluationOutcome 评估结果
type EvaluationOutcome struct {
	CouponID         uint         `json:"-"`
	Code             string       `json:"code"`
	OK               bool         `json:"ok"`
	Reasons          []string     `json:"reasons"`
	Discount         models.Money `json:"discount"`
	CartTotal        models.Money `json:"cart_total"`
	PayableTotal     models.Money `json:"payable_total"`
	PriorRedemptions int          `json:"prior_redemptions"`
	EvaluatedAt      time.Time    `json:"evaluated_at"`
}

// QuickTestOutcome 后台快速测试结果
type QuickTestOutcome struct {
	EvaluationOutcome
	Rules        promo.Rules `json:"rules"`
	UnsavedRules bool        `json:"unsaved_rules"`
}

// RedemptionOutcome 核销结果
type RedemptionOutcome struct {
	Code       string             `json:"code"`
	OrderNo    string             `json:"order_no"`
	Discount   models.Money       `json:"discount"`
	Mode       string             `json:"mode"`
	Duplicate  bool               `json:"duplicate"`
	Evaluation *EvaluationOutcome `json:"evaluation,omitempty"`
}

// Evaluate 按优惠码评估结算上下文，不满足条件时返回带原因的结果而非错误
func (s *CouponService) Evaluate(ctx context.Context, input CheckoutInput) (*EvaluationOutcome, error) {
	return s.evaluate(ctx, input, evaluationSourceCheckout)
}

func (s *CouponService) evaluate(ctx context.Context, input CheckoutInput, source string) (*EvaluationOutcome, error) {
	started := time.Now()
	code := normalizeCouponCode(input.Code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	if !validCartTotal(input.CartTotal) {
		return nil, ErrCheckoutInvalid
	}
	if input.PriorRedemptions != nil && *input.PriorRedemptions < 0 {
		return nil, ErrCheckoutInvalid
	}

	snapshot, err := s.loadSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrCouponNotFound
	}

	prior, err := s.resolvePriorRedemptions(snapshot, input)
	if err != nil {
		return nil, err
	}

	evalCtx := promo.EvaluationContext{
		CartTotal:        input.CartTotal,
		PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
		LineItems:        input.LineItems,
		Identity:         input.Identity,
		PriorRedemptions: prior,
		Now:              s.now().UTC(),
	}
	outcome := s.run(snapshot.Coupon, snapshot.Rules, evalCtx)
	outcome.CouponID = snapshot.CouponID
	s.recorder.ObserveEvaluation(source, outcome.OK, outcome.Reasons, outcome.Discount.InexactFloat64(), time.Since(started))
	logger.Debugw("coupon_evaluated",
		"source", source,
		"code", code,
		"ok", outcome.OK,
		"reasons", outcome.Reasons,
		"discount", outcome.Discount.String(),
	)
	return outcome, nil
}

// resolvePriorRedemptions 规则未限制每人次数时不查询核销记录
func (s *CouponService) resolvePriorRedemptions(snapshot *cache.CouponSnapshot, input CheckoutInput) (int, error) {
	if input.PriorRedemptions != nil {
		return *input.PriorRedemptions, nil
	}
	if snapshot.Rules.LimitPerUser == nil || s.usageRepo == nil {
		return 0, nil
	}
	count, err := s.usageRepo.CountByIdentity(snapshot.CouponID, identityKey(input.Identity))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	return int(count), nil
}

func (s *CouponService) run(coupon promo.Coupon, rules promo.Rules, evalCtx promo.EvaluationContext) *EvaluationOutcome {
	result := s.evaluator.Evaluate(coupon, rules, evalCtx)
	discount := decimal.Zero
	if result.OK {
		discount = promo.ComputeDiscount(coupon, rules, evalCtx)
	}
	payable := evalCtx.CartTotal.Sub(discount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	return &EvaluationOutcome{
		Code:             coupon.Code,
		OK:               result.OK,
		Reasons:          result.ReasonStrings(),
		Discount:         models.NewMoneyFromDecimal(discount),
		CartTotal:        models.NewMoneyFromDecimal(evalCtx.CartTotal),
		PayableTotal:     models.NewMoneyFromDecimal(payable),
		PriorRedemptions: evalCtx.PriorRedemptions,
		EvaluatedAt:      evalCtx.Now,
	}
}

// QuickTest 后台使用合成上下文试算，可传入未保存的规则，不读取核销记录
func (s *CouponService) QuickTest(ctx context.Context, input QuickTestInput) (*QuickTestOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()
	if input.CouponID == 0 && input.Draft == nil {
		return nil, ErrCouponInvalid
	}
	if !validCartTotal(input.CartTotal) || input.PriorRedemptions < 0 {
		return nil, ErrCheckoutInvalid
	}

	var coupon promo.Coupon
	var rules promo.Rules
	unsaved := input.Rules != nil
	if input.CouponID == 0 {
		draft, err := normalizeDraftCoupon(*input.Draft)
		if err != nil {
			return nil, err
		}
		coupon = draft
		rules = promo.Normalize(input.Rules)
		unsaved = true
	} else {
		stored, err := s.couponRepo.GetByID(input.CouponID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
		}
		if stored == nil {
			return nil, ErrCouponNotFound
		}
		coupon = toPromoCoupon(stored)
		if unsaved {
			rules = promo.Normalize(input.Rules)
		} else {
			rule, err := s.ruleRepo.GetByCouponID(stored.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
			}
			rules = rulesFromModel(rule)
		}
	}

	now := s.now()
	if input.Now != nil {
		now = *input.Now
	}
	evalCtx := promo.EvaluationContext{
		CartTotal:        input.CartTotal,
		PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
		LineItems:        input.LineItems,
		Identity:         input.Identity,
		PriorRedemptions: input.PriorRedemptions,
		Now:              now.UTC(),
	}
	outcome := s.run(coupon, rules, evalCtx)
	outcome.CouponID = input.CouponID
	s.recorder.ObserveEvaluation(evaluationSourceQuickTest, outcome.OK, outcome.Reasons, outcome.Discount.InexactFloat64(), time.Since(started))
	return &QuickTestOutcome{EvaluationOutcome: *outcome, Rules: rules, UnsavedRules: unsaved}, nil
}

// RecordRedemption 复核资格后记录核销，同一订单重复提交返回已有结果
func (s *CouponService) RecordRedemption(ctx context.Context, input RedemptionInput) (*RedemptionOutcome, error) {
	orderNo := strings.TrimSpace(input.OrderNo)
	if orderNo == "" || len(orderNo) > 64 {
		return nil, ErrRedemptionInvalid
	}
	code := normalizeCouponCode(input.Code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}

	snapshot, err := s.loadSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrCouponNotFound
	}
	existing, err := s.usageRepo.GetByOrderNo(snapshot.CouponID, orderNo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedemptionFailed, err)
	}
	if existing != nil {
		s.recorder.ObserveRedemption(constants.RedemptionModeSync, redemptionOutcomeDuplicate)
		return &RedemptionOutcome{
			Code:      snapshot.Coupon.Code,
			OrderNo:   orderNo,
			Discount:  existing.DiscountAmount,
			Mode:      constants.RedemptionModeSync,
			Duplicate: true,
		}, nil
	}

	checkout := input.CheckoutInput
	checkout.Code = code
	checkout.PriorRedemptions = nil
	evaluation, err := s.evaluate(ctx, checkout, evaluationSourceRedeem)
	if err != nil {
		return nil, err
	}
	outcome := &RedemptionOutcome{
		Code:       evaluation.Code,
		OrderNo:    orderNo,
		Discount:   evaluation.Discount,
		Evaluation: evaluation,
	}
	if !evaluation.OK {
		return outcome, ErrCouponNotEligible
	}

	payload := queue.CouponRedemptionPayload{
		CouponID:       evaluation.CouponID,
		OrderNo:        orderNo,
		IdentityKey:    identityKey(input.Identity),
		UserID:         strings.TrimSpace(input.Identity.UserID),
		Email:          strings.ToLower(strings.TrimSpace(input.Identity.Email)),
		PaymentMethod:  strings.ToLower(strings.TrimSpace(input.PaymentMethod)),
		CartTotal:      evaluation.CartTotal.String(),
		DiscountAmount: evaluation.Discount.String(),
		RequestID:      strings.TrimSpace(input.RequestID),
		RedeemedAt:     evaluation.EvaluatedAt.Unix(),
	}

	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueCouponRedemption(payload)
		if err == nil {
			outcome.Mode = constants.RedemptionModeQueued
			s.recorder.ObserveRedemption(constants.RedemptionModeQueued, redemptionOutcomeRecorded)
			logger.Infow("coupon_redemption_enqueued", "coupon_id", payload.CouponID, "order_no", orderNo)
			return outcome, nil
		}
		logger.Warnw("coupon_redemption_enqueue_failed", "coupon_id", payload.CouponID, "order_no", orderNo, "error", err)
	}

	outcome.Mode = constants.RedemptionModeSync
	inserted, err := s.PersistRedemption(payload)
	if err != nil {
		return nil, err
	}
	outcome.Duplicate = !inserted
	return outcome, nil
}

// PersistRedemption 写入核销记录，返回是否为新记录
func (s *CouponService) PersistRedemption(payload queue.CouponRedemptionPayload) (bool, error) {
	if payload.CouponID == 0 || strings.TrimSpace(payload.OrderNo) == "" {
		return false, ErrRedemptionInvalid
	}
	cartTotal, err := models.ParseMoney(defaultMoneyText(payload.CartTotal))
	if err != nil {
		return false, ErrRedemptionInvalid
	}
	discount, err := models.ParseMoney(defaultMoneyText(payload.DiscountAmount))
	if err != nil {
		return false, ErrRedemptionInvalid
	}
	redeemedAt := s.now()
	if payload.RedeemedAt > 0 {
		redeemedAt = time.Unix(payload.RedeemedAt, 0)
	}
	usage := &models.CouponUsage{
		CouponID:       payload.CouponID,
		OrderNo:        strings.TrimSpace(payload.OrderNo),
		IdentityKey:    payload.IdentityKey,
		UserID:         payload.UserID,
		Email:          payload.Email,
		PaymentMethod:  payload.PaymentMethod,
		CartTotal:      cartTotal,
		DiscountAmount: discount,
		RequestID:      payload.RequestID,
		CreatedAt:      redeemedAt.UTC(),
	}
	inserted, err := s.usageRepo.Create(usage)
	if err != nil {
		s.recorder.ObserveRedemption(constants.RedemptionModeSync, redemptionOutcomeFailed)
		logger.Errorw("coupon_redemption_persist_failed", "coupon_id", payload.CouponID, "order_no", payload.OrderNo, "error", err)
		return false, fmt.Errorf("%w: %w", ErrRedemptionFailed, err)
	}
	outcome := redemptionOutcomeRecorded
	if !inserted {
		outcome = redemptionOutcomeDuplicate
	}
	s.recorder.ObserveRedemption(constants.RedemptionModeSync, outcome)
	logger.Infow("coupon_redemption_recorded",
		"coupon_id", payload.CouponID,
		"order_no", payload.OrderNo,
		"identity_key", payload.IdentityKey,
		"duplicate", !inserted,
	)
	return inserted, nil
}

// InvalidateSnapshot 清除指定优惠码的快照缓存
func (s *CouponService) InvalidateSnapshot(ctx context.Context, codes ...string) error {
	return cache.InvalidateCouponSnapshots(ctx, codes...)
}

func (s *CouponService) loadSnapshot(ctx context.Context, code string) (*cache.CouponSnapshot, error) {
	snapshot, hit, err := cache.GetCouponSnapshot(ctx, code)
	if err != nil {
		logger.Warnw("coupon_snapshot_cache_read_failed", "code", code, "error", err)
	} else if hit {
		return snapshot, nil
	}

	value, err, _ := s.loads.Do(code, func() (interface{}, error) {
		coupon, err := s.couponRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, nil
		}
		rule, err := s.ruleRepo.GetByCouponID(coupon.ID)
		if err != nil {
			return nil, err
		}
		loaded := &cache.CouponSnapshot{
			CouponID: coupon.ID,
			Coupon:   toPromoCoupon(coupon),
			Rules:    rulesFromModel(rule),
		}
		if err := cache.SetCouponSnapshot(ctx, loaded, s.rulesTTL); err != nil {
			logger.Warnw("coupon_snapshot_cache_write_failed", "code", code, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if value == nil {
		return nil, nil
	}
	loaded, ok := value.(*cache.CouponSnapshot)
	if !ok {
		return nil, errors.New("unexpected coupon snapshot type")
	}
	return loaded, nil
}

// validCartTotal 购物车金额不能为负，且须在可比较范围内
func validCartTotal(total decimal.Decimal) bool {
	return !total.IsNegative() && promo.BoundedDecimal(total)
}

func defaultMoneyText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "0"
	}
	return strings.TrimSpace(raw)
}
