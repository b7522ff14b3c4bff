package models

import "time"

// Coupon 优惠券
type Coupon struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Code          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`           // 优惠码（大写存储）
	Name          string     `gorm:"type:varchar(120);not null;default:''" json:"name"`           // 后台展示名称
	DiscountType  string     `gorm:"type:varchar(20);not null" json:"discount_type"`              // 优惠类型（PERCENTAGE/FIXED）
	DiscountValue Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_value"` // 数值（百分比或固定金额）
	ValidFrom     *time.Time `gorm:"index" json:"valid_from"`                                     // 生效时间
	ValidUntil    *time.Time `gorm:"index" json:"valid_until"`                                    // 失效时间
	IsActive      bool       `gorm:"not null;default:false;index" json:"is_active"`               // 是否启用
	CreatedBy     uint       `gorm:"not null;default:0" json:"created_by"`                        // 创建人管理员ID
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
