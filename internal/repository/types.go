package repository

import "time"

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	ID       uint
	Code     string
	Keyword  string
	IsActive *bool
	Audience string
}

// CouponUsageListFilter 查询优惠券核销记录列表的过滤条件
type CouponUsageListFilter struct {
	Page        int
	PageSize    int
	CouponID    uint
	IdentityKey string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	Action          string
	TargetType      string
	TargetID        uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
