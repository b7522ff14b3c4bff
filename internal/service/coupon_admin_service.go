package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/cache"
	"github.com/dujiao-next/promo/internal/constants"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/promo"
	"github.com/dujiao-next/promo/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	couponRepo repository.CouponRepository
	ruleRepo   repository.CouponRuleRepository
	usageRepo  repository.CouponUsageRepository
	audit      *AuditService
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(
	couponRepo repository.CouponRepository,
	ruleRepo repository.CouponRuleRepository,
	usageRepo repository.CouponUsageRepository,
	audit *AuditService,
) *CouponAdminService {
	return &CouponAdminService{
		couponRepo: couponRepo,
		ruleRepo:   ruleRepo,
		usageRepo:  usageRepo,
		audit:      audit,
	}
}

// AdminActor 发起后台操作的管理员
type AdminActor struct {
	AdminID   uint
	Username  string
	RequestID string
	Object    string
	Method    string
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code          string
	Name          string
	DiscountType  string
	DiscountValue models.Money
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      *bool
	Rules         interface{} // 原始规则，为 nil 时写入默认规则
}

// UpdateCouponInput 更新优惠券输入
type UpdateCouponInput struct {
	Code          string
	Name          string
	DiscountType  string
	DiscountValue models.Money
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      *bool       // 为 nil 时保持原状态
	Rules         interface{} // 为 nil 时保持原规则
}

// CouponListInput 优惠券列表查询输入
type CouponListInput struct {
	Page     int
	PageSize int
	ID       uint
	Code     string
	Keyword  string
	IsActive *bool
	Audience string
}

// CouponUsageListInput 核销记录查询输入
type CouponUsageListInput struct {
	Page        int
	PageSize    int
	UserID      string
	Email       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponDetail 优惠券及其归一化规则
type CouponDetail struct {
	Coupon *models.Coupon `json:"coupon"`
	Rules  promo.Rules    `json:"rules"`
}

type couponFields struct {
	code          string
	name          string
	discountType  string
	discountValue decimal.Decimal
	validFrom     *time.Time
	validUntil    *time.Time
}

func validateCouponFields(code, name, discountType string, value models.Money, validFrom, validUntil *time.Time) (couponFields, error) {
	normalizedCode := normalizeCouponCode(code)
	if normalizedCode == "" {
		return couponFields{}, ErrCouponCodeRequired
	}
	if len(normalizedCode) > constants.CouponCodeMaxLength {
		return couponFields{}, ErrCouponInvalid
	}
	trimmedName := strings.TrimSpace(name)
	if len([]rune(trimmedName)) > constants.CouponNameMaxLength {
		return couponFields{}, ErrCouponInvalid
	}
	normalizedType, ok := normalizeDiscountType(discountType)
	if !ok {
		return couponFields{}, ErrCouponTypeInvalid
	}
	amount := value.Decimal
	if amount.IsNegative() || !promo.BoundedDecimal(amount) {
		return couponFields{}, ErrCouponValueInvalid
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return couponFields{}, ErrCouponWindowInvalid
	}
	return couponFields{
		code:          normalizedCode,
		name:          trimmedName,
		discountType:  normalizedType,
		discountValue: amount,
		validFrom:     utcTimePtr(validFrom),
		validUntil:    utcTimePtr(validUntil),
	}, nil
}

func utcTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	t := value.UTC()
	return &t
}

// Create 创建优惠券，同时写入归一化规则
func (s *CouponAdminService) Create(input CreateCouponInput, actor AdminActor) (*CouponDetail, error) {
	fields, err := validateCouponFields(input.Code, input.Name, input.DiscountType, input.DiscountValue, input.ValidFrom, input.ValidUntil)
	if err != nil {
		return nil, err
	}
	exists, err := s.couponRepo.CodeExists(fields.code, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if exists {
		return nil, ErrCouponCodeExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	rules := promo.Normalize(input.Rules)
	now := time.Now()
	coupon := &models.Coupon{
		Code:          fields.code,
		Name:          fields.name,
		DiscountType:  fields.discountType,
		DiscountValue: models.NewMoneyFromDecimal(fields.discountValue),
		ValidFrom:     fields.validFrom,
		ValidUntil:    fields.validUntil,
		IsActive:      isActive,
		CreatedBy:     actor.AdminID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = runInTx(func(tx *gorm.DB) error {
		if err := s.couponRepo.WithTx(tx).Create(coupon); err != nil {
			return err
		}
		return s.ruleRepo.WithTx(tx).Upsert(&models.CouponRule{
			CouponID:  coupon.ID,
			RulesJSON: rulesToModelJSON(rules),
			UpdatedBy: actor.AdminID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponSaveFailed, err)
	}

	invalidateCouponSnapshots(coupon.Code)
	logger.Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code, "admin_id", actor.AdminID)
	s.audit.RecordQuietly(actor.auditInput(constants.AuditActionCouponCreate, coupon.ID, models.JSON{
		"code":           coupon.Code,
		"discount_type":  coupon.DiscountType,
		"discount_value": coupon.DiscountValue.String(),
		"is_active":      coupon.IsActive,
	}))
	return &CouponDetail{Coupon: coupon, Rules: rules}, nil
}

// Update 更新优惠券基础信息，提供规则时一并覆盖
func (s *CouponAdminService) Update(id uint, input UpdateCouponInput, actor AdminActor) (*CouponDetail, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	fields, err := validateCouponFields(input.Code, input.Name, input.DiscountType, input.DiscountValue, input.ValidFrom, input.ValidUntil)
	if err != nil {
		return nil, err
	}
	previousCode := coupon.Code
	if fields.code != previousCode {
		exists, err := s.couponRepo.CodeExists(fields.code, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
		}
		if exists {
			return nil, ErrCouponCodeExists
		}
	}

	coupon.Code = fields.code
	coupon.Name = fields.name
	coupon.DiscountType = fields.discountType
	coupon.DiscountValue = models.NewMoneyFromDecimal(fields.discountValue)
	coupon.ValidFrom = fields.validFrom
	coupon.ValidUntil = fields.validUntil
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	coupon.UpdatedAt = time.Now()

	var rules *promo.Rules
	if input.Rules != nil {
		normalized := promo.Normalize(input.Rules)
		rules = &normalized
	}

	err = runInTx(func(tx *gorm.DB) error {
		if err := s.couponRepo.WithTx(tx).Update(coupon); err != nil {
			return err
		}
		if rules == nil {
			return nil
		}
		return s.ruleRepo.WithTx(tx).Upsert(&models.CouponRule{
			CouponID:  coupon.ID,
			RulesJSON: rulesToModelJSON(*rules),
			UpdatedBy: actor.AdminID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponSaveFailed, err)
	}

	invalidateCouponSnapshots(previousCode, coupon.Code)
	logger.Infow("coupon_updated", "coupon_id", coupon.ID, "code", coupon.Code, "admin_id", actor.AdminID)
	detail := models.JSON{
		"code":           coupon.Code,
		"previous_code":  previousCode,
		"discount_type":  coupon.DiscountType,
		"discount_value": coupon.DiscountValue.String(),
		"is_active":      coupon.IsActive,
		"rules_replaced": rules != nil,
	}
	s.audit.RecordQuietly(actor.auditInput(constants.AuditActionCouponUpdate, coupon.ID, detail))

	current := promo.DefaultRules()
	if rules != nil {
		current = *rules
	} else if current, err = s.GetRules(coupon.ID); err != nil {
		return nil, err
	}
	return &CouponDetail{Coupon: coupon, Rules: current}, nil
}

// SetActive 启用或停用优惠券
func (s *CouponAdminService) SetActive(id uint, active bool, actor AdminActor) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.IsActive == active {
		return coupon, nil
	}
	if err := s.couponRepo.SetActive(coupon.ID, active); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponSaveFailed, err)
	}
	coupon.IsActive = active
	coupon.UpdatedAt = time.Now()

	invalidateCouponSnapshots(coupon.Code)
	action := constants.AuditActionCouponDisable
	if active {
		action = constants.AuditActionCouponActivate
	}
	logger.Infow("coupon_active_changed", "coupon_id", coupon.ID, "code", coupon.Code, "is_active", active, "admin_id", actor.AdminID)
	s.audit.RecordQuietly(actor.auditInput(action, coupon.ID, models.JSON{"code": coupon.Code, "is_active": active}))
	return coupon, nil
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*CouponDetail, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	rule, err := s.ruleRepo.GetByCouponID(coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	return &CouponDetail{Coupon: coupon, Rules: rulesFromModel(rule)}, nil
}

// List 获取优惠券列表
func (s *CouponAdminService) List(input CouponListInput) ([]models.Coupon, int64, error) {
	filter := repository.CouponListFilter{
		Page:     input.Page,
		PageSize: input.PageSize,
		ID:       input.ID,
		Code:     normalizeCouponCode(input.Code),
		Keyword:  strings.TrimSpace(input.Keyword),
		IsActive: input.IsActive,
		Audience: strings.TrimSpace(input.Audience),
	}
	coupons, total, err := s.couponRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	return coupons, total, nil
}

// GetRules 获取优惠券的归一化规则，未配置时返回默认规则
func (s *CouponAdminService) GetRules(id uint) (promo.Rules, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return promo.Rules{}, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return promo.Rules{}, ErrCouponNotFound
	}
	rule, err := s.ruleRepo.GetByCouponID(coupon.ID)
	if err != nil {
		return promo.Rules{}, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	return rulesFromModel(rule), nil
}

// SaveRules 归一化并保存规则，返回保存后的规则
func (s *CouponAdminService) SaveRules(id uint, raw interface{}, actor AdminActor) (promo.Rules, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return promo.Rules{}, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return promo.Rules{}, ErrCouponNotFound
	}
	rules := promo.Normalize(raw)
	if err := s.ruleRepo.Upsert(&models.CouponRule{
		CouponID:  coupon.ID,
		RulesJSON: rulesToModelJSON(rules),
		UpdatedBy: actor.AdminID,
	}); err != nil {
		return promo.Rules{}, fmt.Errorf("%w: %w", ErrCouponRulesSaveFailed, err)
	}

	invalidateCouponSnapshots(coupon.Code)
	logger.Infow("coupon_rules_saved",
		"coupon_id", coupon.ID,
		"code", coupon.Code,
		"match_mode", rules.MatchMode,
		"includes", len(rules.Includes),
		"excludes", len(rules.Excludes),
		"admin_id", actor.AdminID,
	)
	s.audit.RecordQuietly(actor.auditInput(constants.AuditActionCouponRulesSave, coupon.ID, models.JSON{
		"code":  coupon.Code,
		"rules": rules.ToMap(),
	}))
	return rules, nil
}

// ListUsages 查询优惠券核销记录
func (s *CouponAdminService) ListUsages(id uint, input CouponUsageListInput) ([]models.CouponUsage, int64, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	if coupon == nil {
		return nil, 0, ErrCouponNotFound
	}
	filter := repository.CouponUsageListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		CouponID:    coupon.ID,
		IdentityKey: identityKey(promo.Identity{UserID: input.UserID, Email: input.Email}),
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	}
	usages, total, err := s.usageRepo.ListByCoupon(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCouponFetchFailed, err)
	}
	return usages, total, nil
}

func (a AdminActor) auditInput(action string, couponID uint, detail models.JSON) AuditRecordInput {
	return AuditRecordInput{
		OperatorAdminID:  a.AdminID,
		OperatorUsername: a.Username,
		Action:           action,
		TargetType:       constants.AuditTargetCoupon,
		TargetID:         couponID,
		Object:           a.Object,
		Method:           a.Method,
		RequestID:        a.RequestID,
		Detail:           detail,
	}
}

// runInTx 在全局数据库上开启事务，未初始化时直接执行
func runInTx(fn func(tx *gorm.DB) error) error {
	if models.DB == nil {
		return fn(nil)
	}
	return models.DB.Transaction(fn)
}

func invalidateCouponSnapshots(codes ...string) {
	if err := cache.InvalidateCouponSnapshots(context.Background(), codes...); err != nil {
		logger.Warnw("coupon_snapshot_invalidate_failed", "codes", codes, "error", err)
	}
}
