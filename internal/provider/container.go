package provider

import (
	"time"

	"github.com/dujiao-next/promo/internal/authz"
	"github.com/dujiao-next/promo/internal/cache"
	"github.com/dujiao-next/promo/internal/config"
	"github.com/dujiao-next/promo/internal/i18n"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/metrics"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/queue"
	"github.com/dujiao-next/promo/internal/repository"
	"github.com/dujiao-next/promo/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Recorder

	// Repositories
	CouponRepo      repository.CouponRepository
	CouponRuleRepo  repository.CouponRuleRepository
	CouponUsageRepo repository.CouponUsageRepository
	AuditLogRepo    repository.AuditLogRepository

	// Services
	AuthzService       *authz.Service
	AdminTokenService  *service.AdminTokenService
	AuditService       *service.AuditService
	CouponAdminService *service.CouponAdminService
	CouponService      *service.CouponService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}
	i18n.SetDefaultLocale(cfg.Promo.DefaultLocale)

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     recorder,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponRuleRepo = repository.NewCouponRuleRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AdminTokenService = service.NewAdminTokenService(c.Config.JWT)
	c.AuditService = service.NewAuditService(c.AuditLogRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CouponRuleRepo, c.CouponUsageRepo, c.AuditService)

	rulesTTL := time.Duration(c.Config.Promo.RulesCacheTTLSeconds) * time.Second
	c.CouponService = service.NewCouponService(
		c.CouponRepo,
		c.CouponRuleRepo,
		c.CouponUsageRepo,
		c.QueueClient,
		c.Metrics,
		rulesTTL,
	)
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
