//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/dujiao-next/promo/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.CouponUsage{},
		&models.CouponRule{},
		&models.Coupon{},
		&models.AdminAuditLog{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCouponRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	couponRepo := NewCouponRepository(db)
	coupon := &models.Coupon{
		Code:          "PGCLUB",
		Name:          "Postgres 会员专享",
		DiscountType:  "FIXED",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		IsActive:      true,
	}
	if err := couponRepo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	ruleRepo := NewCouponRuleRepository(db)
	if err := ruleRepo.Upsert(&models.CouponRule{
		CouponID:  coupon.ID,
		RulesJSON: models.JSON{"audience": map[string]interface{}{"target": "club"}, "min": 30},
	}); err != nil {
		t.Fatalf("upsert rules failed: %v", err)
	}
	if err := ruleRepo.Upsert(&models.CouponRule{
		CouponID:  coupon.ID,
		RulesJSON: models.JSON{"audience": map[string]interface{}{"target": "club"}, "min": 50},
	}); err != nil {
		t.Fatalf("second upsert rules failed: %v", err)
	}

	rows, total, err := couponRepo.List(CouponListFilter{Page: 1, PageSize: 10, Audience: "club", Keyword: "pgc"})
	if err != nil {
		t.Fatalf("list by audience failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("list by audience want 1 got total=%d len=%d", total, len(rows))
	}

	usageRepo := NewCouponUsageRepository(db)
	usage := &models.CouponUsage{CouponID: coupon.ID, OrderNo: "PG-1", IdentityKey: "email:pg@example.com"}
	if created, err := usageRepo.Create(usage); err != nil || !created {
		t.Fatalf("create usage failed: %v %v", created, err)
	}
	duplicate := &models.CouponUsage{CouponID: coupon.ID, OrderNo: "PG-1", IdentityKey: "email:pg@example.com"}
	if created, err := usageRepo.Create(duplicate); err != nil || created {
		t.Fatalf("duplicate usage should be ignored: %v %v", created, err)
	}
	count, err := usageRepo.CountByIdentity(coupon.ID, "email:pg@example.com")
	if err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("usage count want 1 got %d", count)
	}
}
