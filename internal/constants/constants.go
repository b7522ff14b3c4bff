package constants

// 优惠类型常量（与规则引擎保持一致，大写存储）
const (
	CouponTypePercentage = "PERCENTAGE"
	CouponTypeFixed      = "FIXED"
)

// 优惠券编码长度限制
const (
	CouponCodeMaxLength = 64
	CouponNameMaxLength = 120
)

// 核销身份键前缀
const (
	IdentityKeyPrefixUser  = "user:"
	IdentityKeyPrefixEmail = "email:"
)

// 核销写入方式
const (
	RedemptionModeQueued = "queued"
	RedemptionModeSync   = "sync"
)

// 审计动作常量
const (
	AuditActionCouponCreate    = "coupon.create"
	AuditActionCouponUpdate    = "coupon.update"
	AuditActionCouponActivate  = "coupon.activate"
	AuditActionCouponDisable   = "coupon.disable"
	AuditActionCouponRulesSave = "coupon.rules_save"
	AuditActionAdminRolesSet   = "admin.roles_set"
	AuditActionPolicyGrant     = "authz.policy_grant"
	AuditActionPolicyRevoke    = "authz.policy_revoke"
)

// 审计目标类型常量
const (
	AuditTargetCoupon = "coupon"
	AuditTargetAdmin  = "admin"
	AuditTargetRole   = "role"
)

// 队列常量
const (
	QueueDefault               = "default"
	TaskCouponRedemptionRecord = "coupon:redemption_record"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault      = "promo"
	CouponRulesCacheTTLSecs = 300
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 结算接口默认限流
const (
	CheckoutRateLimitWindowSeconds = 60
	CheckoutRateLimitRequests      = 120
)
