package models

import "time"

// CouponUsage 优惠券核销记录
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                                                               // 主键
	CouponID       uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_order,priority:1;index:idx_coupon_usage_identity,priority:1" json:"coupon_id"` // 优惠券ID
	OrderNo        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_coupon_usage_order,priority:2" json:"order_no"`                            // 订单号
	IdentityKey    string    `gorm:"type:varchar(191);not null;default:'';index:idx_coupon_usage_identity,priority:2" json:"identity_key"`               // 身份键（user:ID 或 email:地址）
	UserID         string    `gorm:"type:varchar(64);not null;default:''" json:"user_id"`                                                                // 用户ID
	Email          string    `gorm:"type:varchar(191);not null;default:''" json:"email"`                                                                 // 邮箱
	PaymentMethod  string    `gorm:"type:varchar(32);not null;default:''" json:"payment_method"`                                                         // 支付方式
	CartTotal      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cart_total"`                                                            // 购物车金额
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`                                                       // 优惠金额
	RequestID      string    `gorm:"type:varchar(64);not null;default:''" json:"request_id"`                                                             // 请求ID
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                                                            // 核销时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
