package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/dujiao-next/promo/internal/logger"
	"github.com/dujiao-next/promo/internal/provider"
	"github.com/dujiao-next/promo/internal/queue"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponRedemptionRecord, c.handleCouponRedemptionRecord)
}

func (c *Consumer) handleCouponRedemptionRecord(_ context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_coupon_redemption_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCouponRedemptionPayload(task)
	if err != nil {
		logger.Warnw("worker_coupon_redemption_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	if payload.CouponID == 0 || payload.OrderNo == "" {
		logger.Debugw("worker_coupon_redemption_skip_invalid_payload", "coupon_id", payload.CouponID, "order_no", payload.OrderNo)
		return nil
	}
	if c.CouponService == nil {
		logger.Warnw("worker_coupon_redemption_skip_service_nil", "coupon_id", payload.CouponID, "order_no", payload.OrderNo)
		return nil
	}

	inserted, err := c.CouponService.PersistRedemption(payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRedemptionInvalid):
			logger.Debugw("worker_coupon_redemption_skip_invalid_amount", "coupon_id", payload.CouponID, "order_no", payload.OrderNo)
			return nil
		default:
			logger.Warnw("worker_coupon_redemption_failed", "coupon_id", payload.CouponID, "order_no", payload.OrderNo, "error", err)
			return err
		}
	}
	if !inserted {
		logger.Debugw("worker_coupon_redemption_skip_exists", "coupon_id", payload.CouponID, "order_no", payload.OrderNo)
	}
	return nil
}
