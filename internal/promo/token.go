package promo

import "strings"

// TokenKind 令牌类型
type TokenKind string

const (
	TokenCategory TokenKind = "category"
	TokenBrand    TokenKind = "brand"
	TokenProduct  TokenKind = "product"
	TokenSKU      TokenKind = "sku"
	TokenVendor   TokenKind = "vendor"
	TokenUser     TokenKind = "user"
	TokenEmail    TokenKind = "email"
)

// TokenKinds 支持的令牌类型
var TokenKinds = []TokenKind{
	TokenCategory,
	TokenBrand,
	TokenProduct,
	TokenSKU,
	TokenVendor,
	TokenUser,
	TokenEmail,
}

// Token 已解析的 "type:value" 令牌
type Token struct {
	Kind  TokenKind
	Value string
}

// ParseToken 解析令牌，类型不区分大小写，值去除首尾空白。
// 缺少分隔符、类型未知或值为空时返回 false。
func ParseToken(raw string) (Token, bool) {
	idx := strings.Index(raw, ":")
	if idx < 0 {
		return Token{}, false
	}
	kind := TokenKind(strings.ToLower(strings.TrimSpace(raw[:idx])))
	value := strings.TrimSpace(raw[idx+1:])
	if value == "" || !isTokenKind(kind) {
		return Token{}, false
	}
	return Token{Kind: kind, Value: value}, true
}

func isTokenKind(kind TokenKind) bool {
	for _, item := range TokenKinds {
		if item == kind {
			return true
		}
	}
	return false
}

// String 输出规范形式
func (t Token) String() string {
	return string(t.Kind) + ":" + t.Value
}

// Matches 判断令牌是否命中上下文中的任一行项目或当前身份
func (t Token) Matches(ctx EvaluationContext) bool {
	if t.Value == "" {
		return false
	}
	switch t.Kind {
	case TokenCategory:
		return anyLineItem(ctx.LineItems, func(item LineItem) bool { return item.Category == t.Value })
	case TokenBrand:
		return anyLineItem(ctx.LineItems, func(item LineItem) bool {
			return item.Brand != "" && strings.EqualFold(item.Brand, t.Value)
		})
	case TokenProduct:
		return anyLineItem(ctx.LineItems, func(item LineItem) bool { return item.ProductID == t.Value })
	case TokenSKU:
		return anyLineItem(ctx.LineItems, func(item LineItem) bool { return item.SKU == t.Value })
	case TokenVendor:
		return anyLineItem(ctx.LineItems, func(item LineItem) bool { return item.VendorID == t.Value })
	case TokenUser:
		return ctx.Identity.UserID != "" && ctx.Identity.UserID == t.Value
	case TokenEmail:
		email := strings.TrimSpace(ctx.Identity.Email)
		return email != "" && strings.EqualFold(email, t.Value)
	default:
		return false
	}
}

// MatchToken 解析并匹配令牌，非法令牌一律不命中
func MatchToken(raw string, ctx EvaluationContext) bool {
	token, ok := ParseToken(raw)
	if !ok {
		return false
	}
	return token.Matches(ctx)
}

func anyLineItem(items []LineItem, match func(LineItem) bool) bool {
	for _, item := range items {
		if match(item) {
			return true
		}
	}
	return false
}
