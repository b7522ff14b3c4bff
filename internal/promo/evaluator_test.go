package promo

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func activeCoupon() Coupon {
	return Coupon{
		Code:          "SUMMER10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}
}

func cartContext(total int64, items ...LineItem) EvaluationContext {
	return EvaluationContext{
		CartTotal:     decimal.NewFromInt(total),
		PaymentMethod: "alipay",
		LineItems:     items,
		Identity:      Identity{UserID: "u-1", Email: "buyer@example.com"},
		Now:           testNow,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestEvaluatePercentageNoRestrictions(t *testing.T) {
	rules := Normalize(map[string]interface{}{
		"enabled":  true,
		"min":      0,
		"max":      nil,
		"includes": []interface{}{},
		"excludes": []interface{}{},
	})
	ctx := cartContext(150)

	result := Evaluate(activeCoupon(), rules, ctx)
	if !result.OK || len(result.Reasons) != 0 {
		t.Fatalf("expected ok result, got %+v", result)
	}
	discount := ComputeDiscount(activeCoupon(), rules, ctx)
	if discount.StringFixed(2) != "15.00" {
		t.Fatalf("discount want 15.00 got %s", discount.StringFixed(2))
	}
}

func TestEvaluateBelowMinimum(t *testing.T) {
	rules := Normalize(map[string]interface{}{"min": 200})
	result := Evaluate(activeCoupon(), rules, cartContext(150))
	if result.OK {
		t.Fatalf("expected rejection")
	}
	if !reflect.DeepEqual(result.ReasonStrings(), []string{"below_minimum"}) {
		t.Fatalf("reasons want [below_minimum] got %v", result.Reasons)
	}
}

func TestEvaluateCategoryIncludeAnyMode(t *testing.T) {
	rules := Normalize(map[string]interface{}{
		"includes":  []interface{}{"category:shoes", "category:bags"},
		"matchMode": "any",
	})
	result := Evaluate(activeCoupon(), rules, cartContext(80, LineItem{Category: "bags"}))
	if !result.OK {
		t.Fatalf("expected ok result, got %v", result.Reasons)
	}
}

func TestEvaluateExcludedBrandPresent(t *testing.T) {
	rules := Normalize(map[string]interface{}{
		"includes": []interface{}{"category:shoes"},
		"excludes": []interface{}{"brand:Nike"},
	})
	ctx := cartContext(120, LineItem{Category: "shoes", Brand: "nike"})
	result := Evaluate(activeCoupon(), rules, ctx)
	if result.OK {
		t.Fatalf("exclusion should reject the coupon")
	}
	if !result.Has(ReasonExcludedItemPresent) {
		t.Fatalf("reasons should contain excluded_item_present, got %v", result.Reasons)
	}
	if result.Has(ReasonIncludesNotSatisfied) {
		t.Fatalf("includes were satisfied, got %v", result.Reasons)
	}
}

func TestEvaluateUsageLimitReached(t *testing.T) {
	rules := Normalize(map[string]interface{}{"limitPerUser": 1})
	ctx := cartContext(100)
	ctx.PriorRedemptions = 1
	result := Evaluate(activeCoupon(), rules, ctx)
	if result.OK || !result.Has(ReasonUsageLimitReached) {
		t.Fatalf("reasons should contain usage_limit_reached, got %+v", result)
	}

	ctx.PriorRedemptions = 0
	if result := Evaluate(activeCoupon(), rules, ctx); !result.OK {
		t.Fatalf("first redemption should pass, got %v", result.Reasons)
	}
}

func TestEvaluateMatchModes(t *testing.T) {
	includes := []interface{}{"category:shoes", "brand:Puma"}
	onlyShoes := cartContext(100, LineItem{Category: "shoes", Brand: "Nike"})
	both := cartContext(100, LineItem{Category: "shoes", Brand: "Nike"}, LineItem{Brand: "PUMA"})

	allMode := Normalize(map[string]interface{}{"includes": includes, "matchMode": "all"})
	anyMode := Normalize(map[string]interface{}{"includes": includes, "matchMode": "any"})
	unknown := Normalize(map[string]interface{}{"includes": includes, "matchMode": "most"})

	if Evaluate(activeCoupon(), allMode, onlyShoes).OK {
		t.Fatalf("all mode should fail when one include misses")
	}
	if !Evaluate(activeCoupon(), allMode, both).OK {
		t.Fatalf("all mode should pass when every include matches")
	}
	if !Evaluate(activeCoupon(), anyMode, onlyShoes).OK {
		t.Fatalf("any mode should pass when one include matches")
	}
	if Evaluate(activeCoupon(), anyMode, cartContext(100, LineItem{Category: "hats"})).OK {
		t.Fatalf("any mode should fail when nothing matches")
	}
	if Evaluate(activeCoupon(), unknown, onlyShoes).OK {
		t.Fatalf("unknown match mode should behave as all")
	}
}

func TestEvaluateAccumulatesReasonsInOrder(t *testing.T) {
	coupon := activeCoupon()
	coupon.IsActive = false
	coupon.ValidUntil = timePtr(testNow.Add(-time.Hour))
	rules := Normalize(map[string]interface{}{
		"min":            500,
		"includes":       []interface{}{"category:hats"},
		"excludes":       []interface{}{"user:u-1"},
		"limitPerUser":   0,
		"paymentMethods": []interface{}{"stripe"},
		"audience":       "new",
	})
	ctx := cartContext(100, LineItem{Category: "shoes"})

	result := Evaluate(coupon, rules, ctx)
	want := []string{
		"inactive",
		"out_of_schedule",
		"audience_mismatch",
		"below_minimum",
		"payment_method_not_allowed",
		"usage_limit_reached",
		"includes_not_satisfied",
		"excluded_item_present",
	}
	if !reflect.DeepEqual(result.ReasonStrings(), want) {
		t.Fatalf("reasons want %v got %v", want, result.Reasons)
	}
}

func TestEvaluateScheduleIntersection(t *testing.T) {
	coupon := activeCoupon()
	coupon.ValidFrom = timePtr(testNow.Add(-48 * time.Hour))
	coupon.ValidUntil = timePtr(testNow.Add(48 * time.Hour))

	inside := Normalize(map[string]interface{}{
		"schedule": map[string]interface{}{
			"from": testNow.Add(-time.Hour).Format(time.RFC3339),
			"to":   testNow.Add(time.Hour).Format(time.RFC3339),
		},
	})
	if result := Evaluate(coupon, inside, cartContext(10)); !result.OK {
		t.Fatalf("inside both windows should pass, got %v", result.Reasons)
	}

	ruleLater := Normalize(map[string]interface{}{
		"schedule": map[string]interface{}{"from": testNow.Add(time.Hour).Format(time.RFC3339)},
	})
	if result := Evaluate(coupon, ruleLater, cartContext(10)); !result.Has(ReasonOutOfSchedule) {
		t.Fatalf("rule schedule not started should reject, got %v", result.Reasons)
	}

	couponExpired := activeCoupon()
	couponExpired.ValidUntil = timePtr(testNow.Add(-time.Second))
	if result := Evaluate(couponExpired, inside, cartContext(10)); !result.Has(ReasonOutOfSchedule) {
		t.Fatalf("expired coupon window should reject even inside rule schedule, got %v", result.Reasons)
	}

	boundary := activeCoupon()
	boundary.ValidFrom = timePtr(testNow)
	boundary.ValidUntil = timePtr(testNow)
	if result := Evaluate(boundary, DefaultRules(), cartContext(10)); !result.OK {
		t.Fatalf("window bounds should be inclusive, got %v", result.Reasons)
	}
}

func TestEvaluateAudience(t *testing.T) {
	cases := []struct {
		target   string
		identity Identity
		ok       bool
	}{
		{target: "all", identity: Identity{IsGuest: true}, ok: true},
		{target: "new", identity: Identity{IsNewUser: true}, ok: true},
		{target: "new", identity: Identity{}, ok: false},
		{target: "users", identity: Identity{IsGuest: true}, ok: false},
		{target: "users", identity: Identity{}, ok: true},
		{target: "guest", identity: Identity{IsGuest: true}, ok: true},
		{target: "Guest", identity: Identity{}, ok: false},
		{target: "club", identity: Identity{IsClubMember: true}, ok: true},
		{target: "club", identity: Identity{}, ok: false},
		{target: "VIP", identity: Identity{IsGuest: true}, ok: false},
		{target: "VIP", identity: Identity{}, ok: true},
	}
	for _, tc := range cases {
		ctx := cartContext(10)
		ctx.Identity = tc.identity
		rules := Normalize(map[string]interface{}{"audience": map[string]interface{}{"target": tc.target}})
		result := Evaluate(activeCoupon(), rules, ctx)
		if result.OK != tc.ok {
			t.Fatalf("audience %q identity %+v want ok=%v got %v", tc.target, tc.identity, tc.ok, result.Reasons)
		}
	}
}

func TestEvaluatePaymentMethod(t *testing.T) {
	rules := Normalize(map[string]interface{}{"paymentMethods": []interface{}{"Stripe", "paypal"}})
	ctx := cartContext(10)
	ctx.PaymentMethod = "STRIPE"
	if result := Evaluate(activeCoupon(), rules, ctx); !result.OK {
		t.Fatalf("payment method should match case-insensitively, got %v", result.Reasons)
	}
	ctx.PaymentMethod = ""
	if result := Evaluate(activeCoupon(), rules, ctx); !result.Has(ReasonPaymentMethodNotAllowed) {
		t.Fatalf("missing payment method should be rejected, got %v", result.Reasons)
	}
}

func TestEvaluateDisabledRules(t *testing.T) {
	rules := Normalize(map[string]interface{}{"enabled": false})
	result := Evaluate(activeCoupon(), rules, cartContext(10))
	if result.OK || !result.Has(ReasonInactive) {
		t.Fatalf("disabled rules should be inactive, got %+v", result)
	}
}

func TestExclusionDominance(t *testing.T) {
	for _, mode := range []string{"all", "any"} {
		rules := Normalize(map[string]interface{}{
			"includes":  []interface{}{"category:shoes", "brand:Nike"},
			"excludes":  []interface{}{"sku:LIMITED", "vendor:none"},
			"matchMode": mode,
		})
		ctx := cartContext(100, LineItem{Category: "shoes", Brand: "Nike", SKU: "LIMITED"})
		if Evaluate(activeCoupon(), rules, ctx).OK {
			t.Fatalf("matching exclude should reject in %s mode", mode)
		}
	}
}

func TestEvaluateDeterministicAndConcurrent(t *testing.T) {
	rules := Normalize(map[string]interface{}{
		"includes":  []interface{}{"category:shoes"},
		"excludes":  []interface{}{"brand:Nike"},
		"min":       50,
		"max":       "20",
		"matchMode": "any",
	})
	ctx := cartContext(150, LineItem{Category: "shoes", Brand: "Puma"})
	wantResult := Evaluate(activeCoupon(), rules, ctx)
	wantDiscount := ComputeDiscount(activeCoupon(), rules, ctx)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Evaluate(activeCoupon(), rules, ctx)
			if !reflect.DeepEqual(got, wantResult) {
				errs <- "evaluate result changed"
				return
			}
			if !ComputeDiscount(activeCoupon(), rules, ctx).Equal(wantDiscount) {
				errs <- "discount changed"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatalf("%s", msg)
	}
}

func TestResultReasonsNeverNil(t *testing.T) {
	result := Evaluate(activeCoupon(), DefaultRules(), cartContext(1))
	if result.Reasons == nil {
		t.Fatalf("reasons should be an empty slice")
	}
}
