package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/authz"
	"github.com/dujiao-next/promo/internal/config"
	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/repository"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedCoupon 种子优惠券定义
type seedCoupon struct {
	Code          string                 `yaml:"code"`
	Name          string                 `yaml:"name"`
	DiscountType  string                 `yaml:"discount_type"`
	DiscountValue string                 `yaml:"discount_value"`
	ValidFrom     string                 `yaml:"valid_from"`
	ValidUntil    string                 `yaml:"valid_until"`
	Rules         map[string]interface{} `yaml:"rules"`
}

type seedFile struct {
	Coupons []seedCoupon `yaml:"coupons"`
}

// defaultSeed 未指定种子文件时写入的演示数据
const defaultSeed = `
coupons:
  - code: WELCOME10
    name: 新用户立减 10%
    discount_type: PERCENTAGE
    discount_value: "10"
    rules:
      max: "50"
      limitPerUser: 1
      audience:
        target: new
  - code: SHOES20
    name: 鞋类满 100 减 20
    discount_type: FIXED
    discount_value: "20"
    rules:
      min: "100"
      includes: ["category:shoes"]
      excludes: ["brand:clearance"]
  - code: CLUBWEEKEND
    name: 会员周末 15%
    discount_type: PERCENTAGE
    discount_value: "15"
    rules:
      matchMode: any
      includes: ["brand:nike", "brand:adidas"]
      paymentMethods: ["card", "wallet"]
      audience:
        target: club
`

func main() {
	var configPath string
	var seedPath string
	var adminID uint
	var roles string
	flag.StringVar(&configPath, "config", "", "配置文件路径")
	flag.StringVar(&seedPath, "file", "", "YAML 种子文件，默认写入内置演示优惠券")
	flag.UintVar(&adminID, "admin-id", 0, "为该管理员分配角色")
	flag.StringVar(&roles, "roles", authz.RoleSuperAdmin, "分配的角色，逗号分隔")
	flag.Parse()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 内置角色
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to bootstrap roles: %v", err)
	}
	stdLog.Printf("Builtin roles ready")
	if adminID > 0 {
		assigned, err := authzService.SetAdminRoles(adminID, splitRoles(roles))
		if err != nil {
			stdLog.Fatalf("Failed to assign roles to admin %d: %v", adminID, err)
		}
		stdLog.Printf("Admin %d roles: %s", adminID, strings.Join(assigned, ", "))
	}

	// 演示优惠券
	raw := []byte(defaultSeed)
	if strings.TrimSpace(seedPath) != "" {
		raw, err = os.ReadFile(seedPath)
		if err != nil {
			stdLog.Fatalf("Failed to read seed file: %v", err)
		}
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		stdLog.Fatalf("Failed to parse seed file: %v", err)
	}

	db := models.DB
	adminService := service.NewCouponAdminService(
		repository.NewCouponRepository(db),
		repository.NewCouponRuleRepository(db),
		repository.NewCouponUsageRepository(db),
		service.NewAuditService(repository.NewAuditLogRepository(db)),
	)
	actor := service.AdminActor{Username: "seed", Object: "/admin/coupons", Method: "POST"}
	for _, item := range seed.Coupons {
		input, err := item.toInput()
		if err != nil {
			stdLog.Printf("Skip coupon %s: %v", item.Code, err)
			continue
		}
		detail, err := adminService.Create(input, actor)
		switch {
		case errors.Is(err, service.ErrCouponCodeExists):
			stdLog.Printf("Coupon already exists: %s", item.Code)
		case err != nil:
			stdLog.Printf("Failed to create coupon %s: %v", item.Code, err)
		default:
			stdLog.Printf("Created coupon: %s (id=%d)", detail.Coupon.Code, detail.Coupon.ID)
		}
	}

	stdLog.Printf("Seed completed")
}

func (s seedCoupon) toInput() (service.CreateCouponInput, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s.DiscountValue))
	if err != nil {
		return service.CreateCouponInput{}, fmt.Errorf("discount_value: %w", err)
	}
	validFrom, err := parseSeedTime(s.ValidFrom)
	if err != nil {
		return service.CreateCouponInput{}, fmt.Errorf("valid_from: %w", err)
	}
	validUntil, err := parseSeedTime(s.ValidUntil)
	if err != nil {
		return service.CreateCouponInput{}, fmt.Errorf("valid_until: %w", err)
	}
	input := service.CreateCouponInput{
		Code:          s.Code,
		Name:          s.Name,
		DiscountType:  s.DiscountType,
		DiscountValue: models.NewMoneyFromDecimal(value),
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
	}
	if s.Rules != nil {
		input.Rules = s.Rules
	}
	return input, nil
}

func parseSeedTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func splitRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}
	return roles
}
