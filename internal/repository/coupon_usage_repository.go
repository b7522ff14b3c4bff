package repository

import (
	"github.com/dujiao-next/promo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CouponUsageRepository 优惠券核销记录数据访问接口
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) (bool, error)
	CountByIdentity(couponID uint, identityKey string) (int64, error)
	GetByOrderNo(couponID uint, orderNo string) (*models.CouponUsage, error)
	ListByCoupon(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error)
	WithTx(tx *gorm.DB) *GormCouponUsageRepository
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建优惠券核销记录仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) *GormCouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create 写入核销记录，同一订单重复写入时忽略并返回 false
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(usage)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByIdentity 统计身份在该优惠券上的核销次数
func (r *GormCouponUsageRepository) CountByIdentity(couponID uint, identityKey string) (int64, error) {
	if identityKey == "" {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND identity_key = ?", couponID, identityKey).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByOrderNo 获取订单核销记录
func (r *GormCouponUsageRepository) GetByOrderNo(couponID uint, orderNo string) (*models.CouponUsage, error) {
	var usages []models.CouponUsage
	if err := r.db.Where("coupon_id = ? AND order_no = ?", couponID, orderNo).Limit(1).Find(&usages).Error; err != nil {
		return nil, err
	}
	if len(usages) == 0 {
		return nil, nil
	}
	return &usages[0], nil
}

// ListByCoupon 获取优惠券核销记录
func (r *GormCouponUsageRepository) ListByCoupon(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	query := r.db.Model(&models.CouponUsage{}).Where("coupon_id = ?", filter.CouponID)
	if filter.IdentityKey != "" {
		query = query.Where("identity_key = ?", filter.IdentityKey)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	usages := make([]models.CouponUsage, 0)
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
