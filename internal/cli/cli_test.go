package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/promo/internal/config"
	"github.com/dujiao-next/promo/internal/service"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	return path
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"normalize", "eval", "token"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == nil || sub.Name() != name {
			t.Fatalf("command %s should exist: %v", name, err)
		}
	}
	if flag := cmd.PersistentFlags().Lookup("format"); flag == nil || flag.DefValue != "text" {
		t.Fatalf("format flag should default to text")
	}
}

func TestInvalidFormat(t *testing.T) {
	path := writeFixture(t, "rules.yaml", "min: 10\n")
	if _, err := runCommand(t, "", "normalize", "--format", "xml", path); err == nil {
		t.Fatalf("invalid format should fail")
	}
}

func TestNormalizeYAML(t *testing.T) {
	path := writeFixture(t, "rules.yaml", `
min: "25"
max: -3
includes: [" Category:Shoes ", "bogus", "brand:nike"]
match_mode: ANY
limit_per_user: 2
campaign: spring
`)
	out, err := runCommand(t, "", "normalize", path)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	var rules map[string]interface{}
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("normalize output is not json: %v\n%s", err, out)
	}
	if rules["min"] != float64(25) {
		t.Fatalf("min want 25 got %v", rules["min"])
	}
	if rules["matchMode"] != "any" {
		t.Fatalf("matchMode want any got %v", rules["matchMode"])
	}
	if rules["limitPerUser"] != float64(2) {
		t.Fatalf("limitPerUser want 2 got %v", rules["limitPerUser"])
	}
	if rules["campaign"] != "spring" {
		t.Fatalf("unknown field should be kept, got %v", rules["campaign"])
	}
	includes, _ := rules["includes"].([]interface{})
	if len(includes) != 2 || includes[0] != "category:Shoes" || includes[1] != "brand:nike" {
		t.Fatalf("unexpected includes: %v", rules["includes"])
	}
}

func TestNormalizeJSONFromStdinWithEnvelope(t *testing.T) {
	out, err := runCommand(t, `{"enabled": "no"}`, "normalize", "--format", "json", "-")
	if err != nil {
		t.Fatalf("normalize stdin failed: %v", err)
	}
	var resp struct {
		Status string                 `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal envelope failed: %v\n%s", err, out)
	}
	if resp.Status != "ok" || resp.Data["enabled"] != false {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

const evalFixtureYAML = `
coupon:
  code: summer10
  discount_type: percentage
  discount_value: 10
rules:
  min: 100
  max: 12
  includes: ["category:shoes"]
  paymentMethods: [card]
context:
  cart_total: "150"
  payment_method: Card
  line_items:
    - category: shoes
      brand: Nike
  identity:
    user_id: "42"
  now: "2024-06-15T12:00:00Z"
`

func TestEvalEligible(t *testing.T) {
	path := writeFixture(t, "fixture.yaml", evalFixtureYAML)
	out, err := runCommand(t, "", "eval", "--format", "json", path)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	var resp struct {
		Data EvalReport `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal eval output failed: %v\n%s", err, out)
	}
	report := resp.Data
	if !report.OK || report.Code != "SUMMER10" {
		t.Fatalf("fixture should be eligible: %+v", report)
	}
	if report.Discount != "12.00" || report.PayableTotal != "138.00" {
		t.Fatalf("discount should be capped at 12, got %s payable %s", report.Discount, report.PayableTotal)
	}
}

func TestEvalRejectedTextOutput(t *testing.T) {
	path := writeFixture(t, "fixture.yml", evalFixtureYAML)
	out, err := runCommand(t, "", "eval", "--locale", "en-US", "--now", "2024-06-15T12:00:00Z", path)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if !strings.HasPrefix(out, "SUMMER10 ELIGIBLE") {
		t.Fatalf("unexpected text output: %s", out)
	}

	rejected := strings.Replace(evalFixtureYAML, `cart_total: "150"`, `cart_total: "80"`, 1)
	rejected = strings.Replace(rejected, "payment_method: Card", "payment_method: paypal", 1)
	path = writeFixture(t, "rejected.yaml", rejected)
	out, err = runCommand(t, "", "eval", "--locale", "en-US", path)
	if err != nil {
		t.Fatalf("eval rejected failed: %v", err)
	}
	if !strings.Contains(out, "SUMMER10 REJECTED") ||
		!strings.Contains(out, "below_minimum") ||
		!strings.Contains(out, "payment_method_not_allowed") ||
		!strings.Contains(out, "discount=0.00 payable=80.00") {
		t.Fatalf("unexpected rejected output: %s", out)
	}
}

func TestEvaluateFixtureDefaults(t *testing.T) {
	inactive := false
	report, err := evaluateFixture(EvalFixture{
		Coupon: FixtureCoupon{Code: "x", DiscountType: "FIXED", IsActive: &inactive},
	}, "")
	if err != nil {
		t.Fatalf("evaluate fixture failed: %v", err)
	}
	if report.OK || len(report.Reasons) != 1 || report.Reasons[0] != "inactive" {
		t.Fatalf("inactive coupon should be rejected with inactive: %+v", report)
	}
	if report.EvaluatedAt.IsZero() {
		t.Fatalf("missing now should default to current time")
	}

	if _, err := evaluateFixture(EvalFixture{Coupon: FixtureCoupon{Code: "x", DiscountType: "bogo"}}, ""); err == nil {
		t.Fatalf("unsupported discount type should fail")
	}
}

func TestEvalRejectsOutOfRangeNumbers(t *testing.T) {
	huge := strings.Replace(evalFixtureYAML, `cart_total: "150"`, `cart_total: "1e2000000000"`, 1)
	path := writeFixture(t, "huge.yaml", huge)
	if _, err := runCommand(t, "", "eval", path); err == nil {
		t.Fatalf("out of range cart_total should fail")
	}

	tiny := strings.Replace(evalFixtureYAML, "discount_value: 10", `discount_value: "1e-2000000000"`, 1)
	path = writeFixture(t, "tiny.yaml", tiny)
	if _, err := runCommand(t, "", "eval", path); err == nil {
		t.Fatalf("out of range discount_value should fail")
	}
}

func TestEvalInvalidNow(t *testing.T) {
	path := writeFixture(t, "fixture.yaml", evalFixtureYAML)
	if _, err := runCommand(t, "", "eval", "--now", "yesterday", path); err == nil {
		t.Fatalf("invalid --now should fail")
	}
}

func TestTokenCommand(t *testing.T) {
	out, err := runCommand(t, "", "token", "--format", "json", "--secret", "cli-secret", "--issuer", "promoctl", "--admin-id", "8", "--username", "ops", "--super")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	var resp struct {
		Data TokenReport `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("unmarshal token output failed: %v\n%s", err, out)
	}
	if resp.Data.AdminID != 8 || !resp.Data.IsSuper || !resp.Data.ExpiresAt.After(time.Now()) {
		t.Fatalf("unexpected token report: %+v", resp.Data)
	}

	claims, err := service.NewAdminTokenService(config.JWTConfig{SecretKey: "cli-secret", Issuer: "promoctl"}).Parse(resp.Data.Token)
	if err != nil {
		t.Fatalf("issued token should parse: %v", err)
	}
	if claims.AdminID != 8 || claims.Username != "ops" || !claims.IsSuper {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := runCommand(t, "", "token", "--secret", "cli-secret"); err == nil {
		t.Fatalf("missing admin id should fail")
	}
}
