package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dujiao-next/promo/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCouponRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate coupon tables failed: %v", err)
	}
	return db
}

func createTestCoupon(t *testing.T, repo *GormCouponRepository, code, name string, active bool) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:          code,
		Name:          name,
		DiscountType:  "PERCENTAGE",
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive:      active,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func TestCouponRepositoryLookupAndExists(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewCouponRepository(db)
	coupon := createTestCoupon(t, repo, "SUMMER10", "Summer", true)

	got, err := repo.GetByCode("SUMMER10")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got == nil || got.ID != coupon.ID {
		t.Fatalf("get by code want id %d got %+v", coupon.ID, got)
	}

	missing, err := repo.GetByCode("NOPE")
	if err != nil || missing != nil {
		t.Fatalf("missing code should return nil,nil got %+v %v", missing, err)
	}

	exists, err := repo.CodeExists("SUMMER10", 0)
	if err != nil || !exists {
		t.Fatalf("code should exist: %v %v", exists, err)
	}
	exists, err = repo.CodeExists("SUMMER10", coupon.ID)
	if err != nil || exists {
		t.Fatalf("code excluding itself should not exist: %v %v", exists, err)
	}
}

func TestCouponRepositorySetActiveKeepsFalse(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewCouponRepository(db)
	coupon := createTestCoupon(t, repo, "OFF", "Off", false)

	stored, err := repo.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("coupon created inactive should stay inactive")
	}

	if err := repo.SetActive(coupon.ID, true); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	stored, _ = repo.GetByID(coupon.ID)
	if !stored.IsActive {
		t.Fatalf("coupon should be active after toggle")
	}
}

func TestCouponRepositoryListFilters(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewCouponRepository(db)
	ruleRepo := NewCouponRuleRepository(db)

	newbie := createTestCoupon(t, repo, "NEWBIE", "Welcome offer", true)
	club := createTestCoupon(t, repo, "CLUB20", "Club members", true)
	createTestCoupon(t, repo, "OLD", "Retired offer", false)

	if err := ruleRepo.Upsert(&models.CouponRule{CouponID: newbie.ID, RulesJSON: models.JSON{"audience": map[string]interface{}{"target": "new"}}}); err != nil {
		t.Fatalf("upsert newbie rules failed: %v", err)
	}
	if err := ruleRepo.Upsert(&models.CouponRule{CouponID: club.ID, RulesJSON: models.JSON{"audience": map[string]interface{}{"target": "club"}}}); err != nil {
		t.Fatalf("upsert club rules failed: %v", err)
	}

	active := true
	rows, total, err := repo.List(CouponListFilter{Page: 1, PageSize: 10, IsActive: &active})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("active coupons want 2 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Code != "CLUB20" {
		t.Fatalf("list should be ordered by id desc, got %s first", rows[0].Code)
	}

	rows, total, err = repo.List(CouponListFilter{Keyword: "offer"})
	if err != nil {
		t.Fatalf("list keyword failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("keyword offer want 2 got total=%d", total)
	}

	rows, total, err = repo.List(CouponListFilter{Audience: "club"})
	if err != nil {
		t.Fatalf("list audience failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != club.ID {
		t.Fatalf("audience club want coupon %d got total=%d rows=%+v", club.ID, total, rows)
	}
}

func TestCouponRuleRepositoryUpsertOverwrites(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewCouponRuleRepository(db)

	if err := repo.Upsert(&models.CouponRule{CouponID: 7, RulesJSON: models.JSON{"min": 10}, UpdatedBy: 1}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := repo.Upsert(&models.CouponRule{CouponID: 7, RulesJSON: models.JSON{"min": 20}, UpdatedBy: 2}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	rule, err := repo.GetByCouponID(7)
	if err != nil {
		t.Fatalf("get rule failed: %v", err)
	}
	if rule == nil {
		t.Fatalf("rule should exist")
	}
	if fmt.Sprint(rule.RulesJSON["min"]) != "20" || rule.UpdatedBy != 2 {
		t.Fatalf("last write should win, got %+v", rule)
	}

	var count int64
	db.Model(&models.CouponRule{}).Where("coupon_id = ?", 7).Count(&count)
	if count != 1 {
		t.Fatalf("rules per coupon want 1 got %d", count)
	}

	missing, err := repo.GetByCouponID(99)
	if err != nil || missing != nil {
		t.Fatalf("missing rule should return nil,nil")
	}
}

func TestCouponUsageRepositoryIdempotentByOrder(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewCouponUsageRepository(db)

	usage := func(orderNo string) *models.CouponUsage {
		return &models.CouponUsage{
			CouponID:       1,
			OrderNo:        orderNo,
			IdentityKey:    "user:42",
			UserID:         "42",
			DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		}
	}

	created, err := repo.Create(usage("ORD-1"))
	if err != nil || !created {
		t.Fatalf("first create should insert: %v %v", created, err)
	}
	created, err = repo.Create(usage("ORD-1"))
	if err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}
	if created {
		t.Fatalf("duplicate order should be ignored")
	}
	if _, err := repo.Create(usage("ORD-2")); err != nil {
		t.Fatalf("second order create failed: %v", err)
	}

	count, err := repo.CountByIdentity(1, "user:42")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count want 2 got %d", count)
	}
	if count, _ := repo.CountByIdentity(1, ""); count != 0 {
		t.Fatalf("empty identity should count 0")
	}

	found, err := repo.GetByOrderNo(1, "ORD-2")
	if err != nil || found == nil {
		t.Fatalf("get by order no failed: %v", err)
	}

	rows, total, err := repo.ListByCoupon(CouponUsageListFilter{CouponID: 1, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list usages failed: %v", err)
	}
	if total != 2 || len(rows) != 1 || rows[0].OrderNo != "ORD-2" {
		t.Fatalf("list usages unexpected: total=%d rows=%+v", total, rows)
	}
}

func TestAuditLogRepositoryList(t *testing.T) {
	db := setupCouponRepositoryTest(t)
	repo := NewAuditLogRepository(db)

	for i, action := range []string{"coupon_create", "coupon_rules_save", "coupon_rules_save"} {
		if err := repo.Create(&models.AdminAuditLog{
			OperatorAdminID: 1,
			Action:          action,
			TargetType:      "coupon",
			TargetID:        uint(i + 1),
		}); err != nil {
			t.Fatalf("create audit log failed: %v", err)
		}
	}

	rows, total, err := repo.List(AuditLogListFilter{Action: "coupon_rules_save"})
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("audit logs want 2 got %d", total)
	}
	if rows[0].TargetID != 3 {
		t.Fatalf("audit logs should be newest first, got target %d", rows[0].TargetID)
	}
}
