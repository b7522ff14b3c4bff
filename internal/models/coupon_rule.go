package models

import "time"

// CouponRule 优惠券适用规则（每张优惠券一条，保存即覆盖）
type CouponRule struct {
	ID        uint      `gorm:"primarykey" json:"id"`                  // 主键
	CouponID  uint      `gorm:"uniqueIndex;not null" json:"coupon_id"` // 优惠券ID
	RulesJSON JSON      `gorm:"type:json" json:"rules"`                // 归一化后的规则
	UpdatedBy uint      `gorm:"not null;default:0" json:"updated_by"`  // 最后修改人管理员ID
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`               // 更新时间
}

// TableName 指定表名
func (CouponRule) TableName() string {
	return "coupon_rules"
}
