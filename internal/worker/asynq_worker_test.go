package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/promo/internal/config"
	"github.com/dujiao-next/promo/internal/constants"
	"github.com/dujiao-next/promo/internal/models"
	"github.com/dujiao-next/promo/internal/provider"
	"github.com/dujiao-next/promo/internal/queue"
	"github.com/dujiao-next/promo/internal/repository"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*asynq.ServeMux, repository.CouponUsageRepository, uint) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate tables failed: %v", err)
	}

	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	coupon := &models.Coupon{
		Code:          "WORKER5",
		Name:          "worker",
		DiscountType:  constants.CouponTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive:      true,
	}
	if err := couponRepo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	queueClient, _ := queue.NewClient(nil)

	container := &provider.Container{
		Config:          &config.Config{},
		QueueClient:     queueClient,
		CouponRepo:      couponRepo,
		CouponRuleRepo:  repository.NewCouponRuleRepository(db),
		CouponUsageRepo: usageRepo,
	}
	container.CouponService = service.NewCouponService(
		container.CouponRepo,
		container.CouponRuleRepo,
		container.CouponUsageRepo,
		queueClient,
		nil,
		time.Minute,
	)

	mux := asynq.NewServeMux()
	NewConsumer(container).Register(mux)
	return mux, usageRepo, coupon.ID
}

func TestHandleCouponRedemptionRecord(t *testing.T) {
	mux, usageRepo, couponID := setupWorkerTest(t)

	payload := queue.CouponRedemptionPayload{
		CouponID:       couponID,
		OrderNo:        "ORD-W1",
		IdentityKey:    "user:42",
		UserID:         "42",
		CartTotal:      "80.00",
		DiscountAmount: "5.00",
		RequestID:      "req-worker",
		RedeemedAt:     time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC).Unix(),
	}
	task, err := queue.NewCouponRedemptionTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := mux.ProcessTask(context.Background(), task); err != nil {
			t.Fatalf("process task attempt %d failed: %v", i+1, err)
		}
	}

	count, err := usageRepo.CountByIdentity(couponID, "user:42")
	if err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("replayed task should record once, got %d", count)
	}
	usage, err := usageRepo.GetByOrderNo(couponID, "ORD-W1")
	if err != nil || usage == nil {
		t.Fatalf("get usage failed: %v", err)
	}
	if usage.DiscountAmount.StringFixed(2) != "5.00" || usage.RequestID != "req-worker" {
		t.Fatalf("unexpected stored usage: %+v", usage)
	}
}

func TestHandleCouponRedemptionRecordBadPayload(t *testing.T) {
	mux, usageRepo, couponID := setupWorkerTest(t)

	err := mux.ProcessTask(context.Background(), asynq.NewTask(queue.TaskCouponRedemptionRecord, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload want SkipRetry got %v", err)
	}

	cases := []queue.CouponRedemptionPayload{
		{CouponID: 0, OrderNo: "ORD-X"},
		{CouponID: couponID, OrderNo: ""},
		{CouponID: couponID, OrderNo: "ORD-BAD", DiscountAmount: "not-money"},
	}
	for _, payload := range cases {
		task, err := queue.NewCouponRedemptionTask(payload)
		if err != nil {
			t.Fatalf("build task failed: %v", err)
		}
		if err := mux.ProcessTask(context.Background(), task); err != nil {
			t.Fatalf("invalid payload %+v should be dropped, got %v", payload, err)
		}
	}
	if usage, err := usageRepo.GetByOrderNo(couponID, "ORD-BAD"); err != nil || usage != nil {
		t.Fatalf("invalid payload must not be stored: %+v %v", usage, err)
	}
}

func TestConsumerRegisterNil(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	NewConsumer(nil).Register(nil)
}

func TestNewServiceRequiresQueue(t *testing.T) {
	if _, err := NewService(nil, NewConsumer(nil)); err == nil {
		t.Fatalf("nil queue config should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer should fail")
	}
}

func TestServiceLifecycleWithoutServer(t *testing.T) {
	svc := &Service{}
	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("start without server should fail")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop without server should be a no-op, got %v", err)
	}
	if svc.Name() != "worker" {
		t.Fatalf("default name want worker got %s", svc.Name())
	}
}
