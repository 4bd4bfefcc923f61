package statement

import (
	"errors"
	"fmt"
	"regexp"
)

// Line items read from a financial statement
const (
	ItemTotalRevenue      = "Total Revenue"
	ItemTotalCostOfSales  = "Total Cost of Sales"
	ItemProfitBeforeTax   = "Profit Before Tax"
	ItemTotalExpenses     = "Total Expenses"
	ItemNetProfit         = "Net Profit"
	ItemIncomeTaxExpenses = "Income Tax Expenses"
	ItemProfitForTheYear  = "Profit For the Year"
)

var ErrNoCaptureGroup = errors.New("pattern has no capture group")

// Pattern locates one line item; the first capture group holds the amount
type Pattern struct {
	Item string
	Expr *regexp.Regexp
}

// NewPattern compiles a case-insensitive pattern for a line item
func NewPattern(item, expr string) (Pattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern for %s: %w", item, err)
	}
	if re.NumSubexp() < 1 {
		return Pattern{}, fmt.Errorf("%w: %s", ErrNoCaptureGroup, item)
	}
	return Pattern{Item: item, Expr: re}, nil
}

func mustPattern(item, expr string) Pattern {
	p, err := NewPattern(item, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Amounts need a decimal part; costs and expenses are printed in parentheses
var defaultPatterns = []Pattern{
	mustPattern(ItemTotalRevenue, `Total Revenue\s+([\d,]+\.\d+)`),
	mustPattern(ItemTotalCostOfSales, `Total Cost of sales\s+\(([\d,]+\.\d+)\)`),
	mustPattern(ItemProfitBeforeTax, `Profit Before Tax\s+([\d,]+\.\d+)`),
	mustPattern(ItemTotalExpenses, `Total Expenses\s+\(([\d,]+\.\d+)\)`),
	mustPattern(ItemNetProfit, `Net Profit/\(Loss\)\s+([\d,]+\.\d+)`),
	mustPattern(ItemIncomeTaxExpenses, `Income Tax Expenses\s+([\d,]+\.\d+)`),
	mustPattern(ItemProfitForTheYear, `Profit For the Year\s+([\d,]+\.\d+)`),
}

// DefaultPatterns returns the statement line-item table
func DefaultPatterns() []Pattern {
	out := make([]Pattern, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}
