package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dujiao-next/promo/internal/authz"
	"github.com/dujiao-next/promo/internal/cache"
	"github.com/dujiao-next/promo/internal/config"
	adminhandlers "github.com/dujiao-next/promo/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/promo/internal/http/handlers/public"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按结算/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(MetricsMiddleware(c.Metrics))

	apiV1 := r.Group("/api/v1")
	{
		// 结算接口（按券码 + IP 限流）
		checkout := apiV1.Group("/checkout", checkoutRateLimit(cfg))
		{
			checkout.POST("/coupons/evaluate", publicHandler.EvaluateCoupon)
			checkout.POST("/coupons/redeem", publicHandler.RedeemCoupon)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		{
			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(c.AdminTokenService))
			authorized.Use(AdminRBACMiddleware(c.AuthzService))
			{
				// 优惠券
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.GET("/coupons", adminHandler.GetAdminCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetAdminCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.PATCH("/coupons/:id/active", adminHandler.SetCouponActive)
				authorized.GET("/coupons/:id/rules", adminHandler.GetCouponRules)
				authorized.PUT("/coupons/:id/rules", adminHandler.SaveCouponRules)
				authorized.POST("/coupons/quick-test", adminHandler.QuickTestDraftCoupon)
				authorized.POST("/coupons/:id/quick-test", adminHandler.QuickTestCoupon)
				authorized.GET("/coupons/:id/usages", adminHandler.GetCouponUsages)

				// 权限管理
				authorized.GET("/authz/permissions", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles/:role/policies", adminHandler.GrantAuthzRolePolicy)
				authorized.DELETE("/authz/roles/:role/policies", adminHandler.RevokeAuthzRolePolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)

				// 审计日志
				authorized.GET("/audit-logs", adminHandler.ListAuditLogs)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled && c.Metrics != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	return r
}

func checkoutRateLimit(cfg *config.Config) gin.HandlerFunc {
	limit := cfg.Security.CheckoutRateLimit
	if !limit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	rule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", cache.KeyPrefix()),
		WindowSeconds: limit.WindowSeconds,
		MaxRequests:   limit.MaxRequests,
	}
	keyFunc := KeyByIPAndJSONField("code")
	if client := cache.Client(); client != nil {
		return RateLimitMiddleware(client, rule, keyFunc)
	}
	logger.Warnw("checkout_rate_limit_local_fallback", "reason", "redis_disabled")
	return LocalRateLimitMiddleware(rule, keyFunc)
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
