package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":            "请求参数错误",
		"error.unauthorized":           "未登录或登录已失效",
		"error.forbidden":              "无权访问",
		"error.not_found":              "资源不存在",
		"error.internal":               "服务器内部错误",
		"error.rate_limited":           "请求过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable": "限流服务暂不可用",
		"error.auth_header_missing":    "缺少认证信息",
		"error.auth_header_invalid":    "认证信息格式错误",
		"error.token_invalid":          "令牌无效或已过期",
		"error.jwt_secret_missing":     "服务未配置令牌密钥",
		"error.admin_id_invalid":       "管理员身份无效",
		"error.admin_id_type_invalid":  "管理员身份类型错误",
		"error.permission_denied":      "没有执行该操作的权限",
		"error.authz_failed":           "权限校验失败",
		"error.role_invalid":           "角色无效",
		"error.role_update_failed":     "角色更新失败",
		"error.role_not_found":         "角色不存在",
		"error.coupon_id_invalid":      "优惠券ID无效",
		"error.coupon_invalid":         "优惠券参数无效",
		"error.coupon_not_found":       "优惠券不存在",
		"error.coupon_code_exists":     "优惠码已存在",
		"error.coupon_code_required":   "优惠码不能为空",
		"error.coupon_type_invalid":    "优惠类型无效",
		"error.coupon_value_invalid":   "优惠数值无效",
		"error.coupon_window_invalid":  "有效期结束时间不能早于开始时间",
		"error.coupon_not_eligible":    "优惠券不满足使用条件",
		"error.coupon_fetch_failed":    "获取优惠券失败",
		"error.coupon_save_failed":     "保存优惠券失败",
		"error.coupon_evaluate_failed": "优惠券校验失败",
		"error.checkout_invalid":       "结算信息无效",
		"error.redemption_invalid":     "核销信息无效",
		"error.redemption_failed":      "记录核销失败",
		"error.audit_log_fetch_failed": "获取审计日志失败",

		"reason.inactive":                   "优惠券未启用",
		"reason.out_of_schedule":            "不在优惠券有效期内",
		"reason.audience_mismatch":          "当前用户不在适用人群内",
		"reason.below_minimum":              "未达到最低消费金额",
		"reason.payment_method_not_allowed": "当前支付方式不可使用该优惠券",
		"reason.usage_limit_reached":        "已达到每人使用次数上限",
		"reason.includes_not_satisfied":     "购物车中没有适用的商品",
		"reason.excluded_item_present":      "购物车中包含不参与优惠的商品",
	},
	LocaleTW: {
		"error.bad_request":            "請求參數錯誤",
		"error.unauthorized":           "未登入或登入已失效",
		"error.forbidden":              "無權存取",
		"error.not_found":              "資源不存在",
		"error.internal":               "伺服器內部錯誤",
		"error.rate_limited":           "請求過於頻繁，請在 %d 秒後重試",
		"error.rate_limit_unavailable": "限流服務暫不可用",
		"error.auth_header_missing":    "缺少認證資訊",
		"error.auth_header_invalid":    "認證資訊格式錯誤",
		"error.token_invalid":          "令牌無效或已過期",
		"error.jwt_secret_missing":     "服務未設定令牌密鑰",
		"error.admin_id_invalid":       "管理員身分無效",
		"error.admin_id_type_invalid":  "管理員身分類型錯誤",
		"error.permission_denied":      "沒有執行該操作的權限",
		"error.authz_failed":           "權限校驗失敗",
		"error.role_invalid":           "角色無效",
		"error.role_update_failed":     "角色更新失敗",
		"error.role_not_found":         "角色不存在",
		"error.coupon_id_invalid":      "優惠券ID無效",
		"error.coupon_invalid":         "優惠券參數無效",
		"error.coupon_not_found":       "優惠券不存在",
		"error.coupon_code_exists":     "優惠碼已存在",
		"error.coupon_code_required":   "優惠碼不能為空",
		"error.coupon_type_invalid":    "優惠類型無效",
		"error.coupon_value_invalid":   "優惠數值無效",
		"error.coupon_window_invalid":  "有效期結束時間不能早於開始時間",
		"error.coupon_not_eligible":    "優惠券不符合使用條件",
		"error.coupon_fetch_failed":    "取得優惠券失敗",
		"error.coupon_save_failed":     "儲存優惠券失敗",
		"error.coupon_evaluate_failed": "優惠券校驗失敗",
		"error.checkout_invalid":       "結帳資訊無效",
		"error.redemption_invalid":     "核銷資訊無效",
		"error.redemption_failed":      "記錄核銷失敗",
		"error.audit_log_fetch_failed": "取得稽核日誌失敗",

		"reason.inactive":                   "優惠券未啟用",
		"reason.out_of_schedule":            "不在優惠券有效期內",
		"reason.audience_mismatch":          "目前使用者不在適用族群內",
		"reason.below_minimum":              "未達最低消費金額",
		"reason.payment_method_not_allowed": "目前付款方式不可使用該優惠券",
		"reason.usage_limit_reached":        "已達每人使用次數上限",
		"reason.includes_not_satisfied":     "購物車中沒有適用的商品",
		"reason.excluded_item_present":      "購物車中包含不參與優惠的商品",
	},
	LocaleEN: {
		"error.bad_request":            "Invalid request parameters",
		"error.unauthorized":           "Not signed in or session expired",
		"error.forbidden":              "Access denied",
		"error.not_found":              "Resource not found",
		"error.internal":               "Internal server error",
		"error.rate_limited":           "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter unavailable",
		"error.auth_header_missing":    "Missing authorization header",
		"error.auth_header_invalid":    "Malformed authorization header",
		"error.token_invalid":          "Token invalid or expired",
		"error.jwt_secret_missing":     "Token secret is not configured",
		"error.admin_id_invalid":       "Invalid admin identity",
		"error.admin_id_type_invalid":  "Invalid admin identity type",
		"error.permission_denied":      "Permission denied",
		"error.authz_failed":           "Authorization check failed",
		"error.role_invalid":           "Invalid role",
		"error.role_update_failed":     "Failed to update roles",
		"error.role_not_found":         "Role not found",
		"error.coupon_id_invalid":      "Invalid coupon id",
		"error.coupon_invalid":         "Invalid coupon parameters",
		"error.coupon_not_found":       "Coupon not found",
		"error.coupon_code_exists":     "Coupon code already exists",
		"error.coupon_code_required":   "Coupon code is required",
		"error.coupon_type_invalid":    "Invalid discount type",
		"error.coupon_value_invalid":   "Invalid discount value",
		"error.coupon_window_invalid":  "Validity end must not be before start",
		"error.coupon_not_eligible":    "Coupon is not applicable",
		"error.coupon_fetch_failed":    "Failed to load coupon",
		"error.coupon_save_failed":     "Failed to save coupon",
		"error.coupon_evaluate_failed": "Failed to evaluate coupon",
		"error.checkout_invalid":       "Invalid checkout data",
		"error.redemption_invalid":     "Invalid redemption data",
		"error.redemption_failed":      "Failed to record redemption",
		"error.audit_log_fetch_failed": "Failed to load audit logs",

		"reason.inactive":                   "Coupon is not active",
		"reason.out_of_schedule":            "Coupon is outside its validity window",
		"reason.audience_mismatch":          "Coupon is not available for this customer",
		"reason.below_minimum":              "Cart total is below the minimum spend",
		"reason.payment_method_not_allowed": "Coupon cannot be used with this payment method",
		"reason.usage_limit_reached":        "Per-customer usage limit reached",
		"reason.includes_not_satisfied":     "No eligible items in the cart",
		"reason.excluded_item_present":      "Cart contains items excluded from this coupon",
	},
}
