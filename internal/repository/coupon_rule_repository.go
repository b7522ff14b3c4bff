package repository

import (
	"errors"
	"time"

	"github.com/dujiao-next/promo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponRuleRepository 优惠券规则数据访问接口
type CouponRuleRepository interface {
	GetByCouponID(couponID uint) (*models.CouponRule, error)
	Upsert(rule *models.CouponRule) error
	WithTx(tx *gorm.DB) *GormCouponRuleRepository
}

// GormCouponRuleRepository GORM 实现
type GormCouponRuleRepository struct {
	db *gorm.DB
}

// NewCouponRuleRepository 创建优惠券规则仓库
func NewCouponRuleRepository(db *gorm.DB) *GormCouponRuleRepository {
	return &GormCouponRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRuleRepository) WithTx(tx *gorm.DB) *GormCouponRuleRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRuleRepository{db: tx}
}

// GetByCouponID 获取优惠券规则，不存在时返回 nil
func (r *GormCouponRuleRepository) GetByCouponID(couponID uint) (*models.CouponRule, error) {
	var rule models.CouponRule
	if err := r.db.Where("coupon_id = ?", couponID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Upsert 保存规则，同一优惠券后写覆盖先写
func (r *GormCouponRuleRepository) Upsert(rule *models.CouponRule) error {
	if rule == nil {
		return nil
	}
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coupon_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rules_json", "updated_by", "updated_at"}),
	}).Create(rule).Error
}
