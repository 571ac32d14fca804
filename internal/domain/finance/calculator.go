// Package finance computes the fixed revenue split between the parking
// partner and the operator, and aggregates splits into per-group summaries.
//
// All splitting is done with exact decimal arithmetic and round-half-up
// rounding to cents, applied to each share independently. Because the shares
// are rounded independently, their sum can drift from the rounded total by
// up to one cent; that drift is accepted, and Validate exists for callers
// that want to check it.
package finance

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the split percentages, injected at construction so the
// calculator stays testable and safe for concurrent use.
type Config struct {
	PartnerPercent  decimal.Decimal
	OperatorPercent decimal.Decimal
}

// DefaultConfig returns the contractual 60/40 allocation.
func DefaultConfig() Config {
	return Config{
		PartnerPercent:  decimal.NewFromFloat(0.60),
		OperatorPercent: decimal.NewFromFloat(0.40),
	}
}

// Calculator performs deterministic revenue splits.
type Calculator struct {
	config Config
}

// New creates a calculator with the given split percentages.
func New(config Config) *Calculator {
	return &Calculator{config: config}
}

// Split divides an amount into the partner and operator shares, each rounded
// half up to cents. Non-positive amounts split to (0, 0).
func (c *Calculator) Split(amount float64) (partner, operator float64) {
	if amount <= 0 {
		return 0, 0
	}

	total := decimal.NewFromFloat(amount)

	// decimal.Round rounds half away from zero, which for positive
	// amounts is the required half-up behavior: a .xx5 share rounds to
	// the larger cent.
	partner, _ = total.Mul(c.config.PartnerPercent).Round(2).Float64()
	operator, _ = total.Mul(c.config.OperatorPercent).Round(2).Float64()

	return partner, operator
}

// Totals holds batch-level sums of amounts and shares.
type Totals struct {
	TotalAmount   float64 `json:"total_amount"`
	PartnerTotal  float64 `json:"partner_total"`
	OperatorTotal float64 `json:"operator_total"`
	Count         int     `json:"count"`
}

// Aggregate sums the given amounts and their splits. Each input is split and
// rounded on its own before summing; the batch totals are therefore the sum
// of the per-booking splits, not a split of the grand total.
func (c *Calculator) Aggregate(amounts []float64) Totals {
	var totalAmount, partnerTotal, operatorTotal decimal.Decimal

	for _, amount := range amounts {
		partner, operator := c.Split(amount)
		totalAmount = totalAmount.Add(decimal.NewFromFloat(amount))
		partnerTotal = partnerTotal.Add(decimal.NewFromFloat(partner))
		operatorTotal = operatorTotal.Add(decimal.NewFromFloat(operator))
	}

	total, _ := totalAmount.Round(2).Float64()
	partner, _ := partnerTotal.Round(2).Float64()
	operator, _ := operatorTotal.Round(2).Float64()

	return Totals{
		TotalAmount:   total,
		PartnerTotal:  partner,
		OperatorTotal: operator,
		Count:         len(amounts),
	}
}

// Item is one booking's contribution to a financial report.
type Item struct {
	Amount        float64 `json:"amount"`
	Brand         string  `json:"brand"`
	PaymentMethod string  `json:"payment_method"`
}

// GroupBreakdown accumulates amounts and shares for one group value.
type GroupBreakdown struct {
	Key           string  `json:"key"`
	TotalAmount   float64 `json:"total_amount"`
	PartnerTotal  float64 `json:"partner_total"`
	OperatorTotal float64 `json:"operator_total"`
	Count         int     `json:"count"`
}

// unknownKey is the bucket for items with an empty grouping value.
const unknownKey = "unknown"

// Breakdown groups items by the caller-supplied key and accumulates running
// sums per group, rounding only the final totals. Groups are returned in
// first-seen order.
func (c *Calculator) Breakdown(items []Item, keyFn func(Item) string) []GroupBreakdown {
	type accumulator struct {
		total, partner, operator decimal.Decimal
		count                    int
	}

	groups := make(map[string]*accumulator)
	var order []string

	for _, item := range items {
		key := keyFn(item)
		if key == "" {
			key = unknownKey
		}

		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
			order = append(order, key)
		}

		partner, operator := c.Split(item.Amount)
		acc.total = acc.total.Add(decimal.NewFromFloat(item.Amount))
		acc.partner = acc.partner.Add(decimal.NewFromFloat(partner))
		acc.operator = acc.operator.Add(decimal.NewFromFloat(operator))
		acc.count++
	}

	result := make([]GroupBreakdown, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		total, _ := acc.total.Round(2).Float64()
		partner, _ := acc.partner.Round(2).Float64()
		operator, _ := acc.operator.Round(2).Float64()
		result = append(result, GroupBreakdown{
			Key:           key,
			TotalAmount:   total,
			PartnerTotal:  partner,
			OperatorTotal: operator,
			Count:         acc.count,
		})
	}

	return result
}

// RankTop returns the n groups with the largest totals, descending. Ties
// keep their first-seen order.
func RankTop(groups []GroupBreakdown, n int) []GroupBreakdown {
	ranked := make([]GroupBreakdown, len(groups))
	copy(ranked, groups)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalAmount > ranked[j].TotalAmount
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Validate reports whether a previously computed split still reconciles with
// its original amount, allowing the accepted one-cent rounding drift.
func (c *Calculator) Validate(originalAmount, partner, operator float64) bool {
	return math.Abs(originalAmount-(partner+operator)) < 0.01
}

// Report is the full financial report for a set of bookings.
type Report struct {
	Summary           Totals           `json:"summary"`
	ByBrand           []GroupBreakdown `json:"by_brand"`
	ByPaymentMethod   []GroupBreakdown `json:"by_payment_method"`
	TopBrands         []GroupBreakdown `json:"top_brands"`
	TopPaymentMethods []GroupBreakdown `json:"top_payment_methods"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// topN bounds the "top performers" sections of a report.
const topN = 5

// BuildReport composes batch totals, both breakdowns, and the top-5 rankings
// into a single report.
func (c *Calculator) BuildReport(items []Item) Report {
	amounts := make([]float64, len(items))
	for i, item := range items {
		amounts[i] = item.Amount
	}

	byBrand := c.Breakdown(items, func(i Item) string { return i.Brand })
	byPayment := c.Breakdown(items, func(i Item) string { return i.PaymentMethod })

	return Report{
		Summary:           c.Aggregate(amounts),
		ByBrand:           byBrand,
		ByPaymentMethod:   byPayment,
		TopBrands:         RankTop(byBrand, topN),
		TopPaymentMethods: RankTop(byPayment, topN),
		GeneratedAt:       time.Now().UTC(),
	}
}
