package promo

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeDiscount 计算折扣金额，结果保留两位小数（四舍五入），
// 不为负且不超过购物车金额与规则上限。
func ComputeDiscount(coupon Coupon, rules Rules, ctx EvaluationContext) decimal.Decimal {
	total := ctx.CartTotal
	if total.IsNegative() {
		total = decimal.Zero
	}

	var amount decimal.Decimal
	switch coupon.DiscountType {
	case DiscountTypePercentage:
		rate := clampDecimal(coupon.DiscountValue, decimal.Zero, hundred)
		amount = total.Mul(rate).Div(hundred)
	case DiscountTypeFixed:
		amount = decimal.Max(coupon.DiscountValue, decimal.Zero)
		amount = decimal.Min(amount, total)
	default:
		return decimal.Zero
	}

	bound := total
	if rules.Max != nil {
		limit := decimal.Max(*rules.Max, decimal.Zero)
		amount = decimal.Min(amount, limit)
		bound = decimal.Min(bound, limit)
	}

	amount = amount.Round(2)
	if amount.GreaterThan(bound) {
		amount = bound.Truncate(2)
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

func clampDecimal(value, low, high decimal.Decimal) decimal.Decimal {
	if value.LessThan(low) {
		return low
	}
	if value.GreaterThan(high) {
		return high
	}
	return value
}
