package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/i18n"
	"github.com/dujiao-next/promo/internal/promo"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// EvalFixture 离线评估用例
type EvalFixture struct {
	Coupon  FixtureCoupon           `json:"coupon"`
	Rules   json.RawMessage         `json:"rules"`
	Context promo.EvaluationContext `json:"context"`
}

// FixtureCoupon 用例中的优惠券，is_active 缺省视为启用
type FixtureCoupon struct {
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     *time.Time      `json:"valid_from"`
	ValidUntil    *time.Time      `json:"valid_until"`
	IsActive      *bool           `json:"is_active"`
}

// EvalReport 评估输出
type EvalReport struct {
	Code         string      `json:"code"`
	OK           bool        `json:"ok"`
	Reasons      []string    `json:"reasons"`
	Messages     []string    `json:"messages"`
	Discount     string      `json:"discount"`
	CartTotal    string      `json:"cart_total"`
	PayableTotal string      `json:"payable_total"`
	EvaluatedAt  time.Time   `json:"evaluated_at"`
	Rules        promo.Rules `json:"rules"`
}

type evalOptions struct {
	now string
}

// NewEvalCommand 创建 eval 命令
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <fixture-file|->",
		Short: "Evaluate a coupon fixture offline",
		Long: `Evaluate a fixture document holding coupon, rules and context sections.
The same checks and discount calculation as the checkout API are applied,
without any storage or usage history lookup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluation time (RFC3339), overrides context.now")
	return cmd
}

func runEval(rootOpts *RootOptions, opts *evalOptions, path string, cmd *cobra.Command) error {
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return err
	}
	var fixture EvalFixture
	if err := json.Unmarshal(doc, &fixture); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(opts.now) != "" {
		now, err := time.Parse(time.RFC3339, strings.TrimSpace(opts.now))
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		fixture.Context.Now = now
	}
	report, err := evaluateFixture(fixture, rootOpts.Locale)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(report, report.render)
}

// evaluateFixture 执行资格判定与折扣计算
func evaluateFixture(fixture EvalFixture, locale string) (*EvalReport, error) {
	kind, ok := promo.ParseDiscountType(fixture.Coupon.DiscountType)
	if !ok {
		return nil, fmt.Errorf("unsupported discount_type %q", fixture.Coupon.DiscountType)
	}
	if !promo.BoundedDecimal(fixture.Coupon.DiscountValue) {
		return nil, fmt.Errorf("discount_value out of range")
	}
	if !promo.BoundedDecimal(fixture.Context.CartTotal) {
		return nil, fmt.Errorf("cart_total out of range")
	}
	coupon := promo.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(fixture.Coupon.Code)),
		DiscountType:  kind,
		DiscountValue: fixture.Coupon.DiscountValue,
		ValidFrom:     fixture.Coupon.ValidFrom,
		ValidUntil:    fixture.Coupon.ValidUntil,
		IsActive:      fixture.Coupon.IsActive == nil || *fixture.Coupon.IsActive,
	}
	rules := promo.NormalizeJSON(fixture.Rules)
	evalCtx := fixture.Context
	if evalCtx.Now.IsZero() {
		evalCtx.Now = time.Now().UTC()
	}

	result := promo.Evaluate(coupon, rules, evalCtx)
	discount := decimal.Zero
	if result.OK {
		discount = promo.ComputeDiscount(coupon, rules, evalCtx)
	}
	total := decimal.Max(evalCtx.CartTotal, decimal.Zero)

	if strings.TrimSpace(locale) == "" {
		locale = i18n.DefaultLocale()
	} else if normalized, ok := i18n.NormalizeLocale(locale); ok {
		locale = normalized
	}
	reasons := result.ReasonStrings()
	messages := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		messages = append(messages, i18n.Reason(locale, reason))
	}

	return &EvalReport{
		Code:         coupon.Code,
		OK:           result.OK,
		Reasons:      reasons,
		Messages:     messages,
		Discount:     discount.StringFixed(2),
		CartTotal:    total.StringFixed(2),
		PayableTotal: total.Sub(discount).StringFixed(2),
		EvaluatedAt:  evalCtx.Now,
		Rules:        rules,
	}, nil
}

func (r *EvalReport) render(w io.Writer) error {
	status := "ELIGIBLE"
	if !r.OK {
		status = "REJECTED"
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", r.Code, status); err != nil {
		return err
	}
	for i, reason := range r.Reasons {
		if _, err := fmt.Fprintf(w, "  - %s: %s\n", reason, r.Messages[i]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "cart_total=%s discount=%s payable=%s\n", r.CartTotal, r.Discount, r.PayableTotal)
	return err
}
