package promo

import "github.com/shopspring/decimal"

// 金额与规则数值的可接受范围：超出范围的数值在比较或舍入时需要构造巨大的整数
const (
	MaxDecimalExponent = 18
	maxCoefficientBits = 128
)

// BoundedDecimal 报告数值的指数与有效位数是否在可安全比较、舍入的范围内
func BoundedDecimal(value decimal.Decimal) bool {
	exp := value.Exponent()
	if exp > MaxDecimalExponent || exp < -MaxDecimalExponent {
		return false
	}
	return value.Coefficient().BitLen() <= maxCoefficientBits
}
