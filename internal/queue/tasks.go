package queue

import (
	"encoding/json"
	"fmt"

	"github.com/dujiao-next/promo/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCouponRedemptionRecord 优惠券核销记录写入任务
	TaskCouponRedemptionRecord = constants.TaskCouponRedemptionRecord
)

// CouponRedemptionPayload 优惠券核销任务载荷，金额以字符串传递避免精度丢失
type CouponRedemptionPayload struct {
	CouponID       uint   `json:"coupon_id"`
	OrderNo        string `json:"order_no"`
	IdentityKey    string `json:"identity_key"`
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	PaymentMethod  string `json:"payment_method"`
	CartTotal      string `json:"cart_total"`
	DiscountAmount string `json:"discount_amount"`
	RequestID      string `json:"request_id"`
	RedeemedAt     int64  `json:"redeemed_at"`
}

// TaskID 同一订单的核销任务使用固定任务ID，重复入队会被队列拒绝
func (p CouponRedemptionPayload) TaskID() string {
	return fmt.Sprintf("coupon_redemption:%d:%s", p.CouponID, p.OrderNo)
}

// NewCouponRedemptionTask 创建优惠券核销任务
func NewCouponRedemptionTask(payload CouponRedemptionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCouponRedemptionRecord, body), nil
}

// ParseCouponRedemptionPayload 解析优惠券核销任务载荷
func ParseCouponRedemptionPayload(task *asynq.Task) (CouponRedemptionPayload, error) {
	var payload CouponRedemptionPayload
	if task == nil {
		return payload, fmt.Errorf("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
