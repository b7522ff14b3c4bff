package promo

import "testing"

func TestParseToken(t *testing.T) {
	cases := []struct {
		raw  string
		ok   bool
		want Token
	}{
		{raw: "category:shoes", ok: true, want: Token{Kind: TokenCategory, Value: "shoes"}},
		{raw: " BRAND : Nike ", ok: true, want: Token{Kind: TokenBrand, Value: "Nike"}},
		{raw: "email:a:b@example.com", ok: true, want: Token{Kind: TokenEmail, Value: "a:b@example.com"}},
		{raw: "shoes", ok: false},
		{raw: "color:red", ok: false},
		{raw: "sku:", ok: false},
		{raw: ":value", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseToken(tc.raw)
		if ok != tc.ok {
			t.Fatalf("ParseToken(%q) ok want %v got %v", tc.raw, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseToken(%q) want %+v got %+v", tc.raw, tc.want, got)
		}
	}
}

func TestMatchToken(t *testing.T) {
	ctx := EvaluationContext{
		LineItems: []LineItem{
			{Category: "shoes", Brand: "Nike", ProductID: "p-1", SKU: "SKU-RED-42", VendorID: "v-9"},
			{Category: "bags"},
		},
		Identity: Identity{UserID: "u-100", Email: "Buyer@Example.com"},
	}

	cases := []struct {
		token string
		want  bool
	}{
		{token: "category:shoes", want: true},
		{token: "category:Shoes", want: false},
		{token: "category:bags", want: true},
		{token: "brand:nike", want: true},
		{token: "brand:Adidas", want: false},
		{token: "product:p-1", want: true},
		{token: "sku:SKU-RED-42", want: true},
		{token: "sku:sku-red-42", want: false},
		{token: "vendor:v-9", want: true},
		{token: "user:u-100", want: true},
		{token: "user:u-1", want: false},
		{token: "email:buyer@example.com", want: true},
		{token: "email:other@example.com", want: false},
		{token: "malformed", want: false},
		{token: "unknown:shoes", want: false},
	}
	for _, tc := range cases {
		if got := MatchToken(tc.token, ctx); got != tc.want {
			t.Fatalf("MatchToken(%q) want %v got %v", tc.token, tc.want, got)
		}
	}
}

func TestEmptyContextFieldsNeverMatch(t *testing.T) {
	ctx := EvaluationContext{LineItems: []LineItem{{}}}
	for _, kind := range TokenKinds {
		token := Token{Kind: kind, Value: "x"}
		if token.Matches(ctx) {
			t.Fatalf("token %s should not match empty context", token)
		}
	}
	if (Token{Kind: TokenUser}).Matches(ctx) {
		t.Fatalf("token with empty value should not match")
	}
}
