package queue

import (
	"errors"
	"testing"

	"github.com/dujiao-next/promo/internal/config"
)

func TestCouponRedemptionTaskRoundTrip(t *testing.T) {
	payload := CouponRedemptionPayload{
		CouponID:       3,
		OrderNo:        "ORD-1001",
		IdentityKey:    "user:42",
		CartTotal:      "150.00",
		DiscountAmount: "15.00",
		RedeemedAt:     1718452800,
	}
	task, err := NewCouponRedemptionTask(payload)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskCouponRedemptionRecord {
		t.Fatalf("task type want %s got %s", TaskCouponRedemptionRecord, task.Type())
	}
	got, err := ParseCouponRedemptionPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if got != payload {
		t.Fatalf("payload changed: %+v", got)
	}
	if payload.TaskID() != "coupon_redemption:3:ORD-1001" {
		t.Fatalf("unexpected task id: %s", payload.TaskID())
	}
}

func TestParseCouponRedemptionPayloadNilTask(t *testing.T) {
	if _, err := ParseCouponRedemptionPayload(nil); err == nil {
		t.Fatalf("nil task should fail")
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("create disabled client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	err = client.EnqueueCouponRedemption(CouponRedemptionPayload{CouponID: 1, OrderNo: "A"})
	if !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("disabled enqueue want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("default addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected default server config: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 4, Queues: map[string]int{"default": 3}})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 || cfg.Queues["default"] != 3 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
