package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/promo"
)

// CouponSnapshot 结算评估所需的优惠券与规则快照
// 规则以归一化形态存储，读取时再次归一化结果不变
type CouponSnapshot struct {
	CouponID uint         `json:"coupon_id"`
	Coupon   promo.Coupon `json:"coupon"`
	Rules    promo.Rules  `json:"rules"`
	CachedAt int64        `json:"cached_at"`
}

func couponSnapshotKey(code string) string {
	return fmt.Sprintf("coupon:snapshot:%s", strings.ToUpper(strings.TrimSpace(code)))
}

// GetCouponSnapshot 读取优惠券快照
func GetCouponSnapshot(ctx context.Context, code string) (*CouponSnapshot, bool, error) {
	if strings.TrimSpace(code) == "" {
		return nil, false, nil
	}
	var snapshot CouponSnapshot
	hit, err := GetJSON(ctx, couponSnapshotKey(code), &snapshot)
	if err != nil || !hit {
		return nil, false, err
	}
	return &snapshot, true, nil
}

// SetCouponSnapshot 写入优惠券快照
func SetCouponSnapshot(ctx context.Context, snapshot *CouponSnapshot, ttl time.Duration) error {
	if snapshot == nil || strings.TrimSpace(snapshot.Coupon.Code) == "" || ttl <= 0 {
		return nil
	}
	if snapshot.CachedAt == 0 {
		snapshot.CachedAt = time.Now().Unix()
	}
	return SetJSON(ctx, couponSnapshotKey(snapshot.Coupon.Code), snapshot, ttl)
}

// InvalidateCouponSnapshots 删除一个或多个优惠码的快照
func InvalidateCouponSnapshots(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		key := couponSnapshotKey(code)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return Del(ctx, keys...)
}
