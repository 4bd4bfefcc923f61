package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Ratio names
const (
	RatioGrossMargin     = "Gross Margin"
	RatioNetProfitMargin = "Net Profit Margin"
	RatioPBTMargin       = "PBT Margin"
	RatioExpenseRatio    = "Expense Ratio"
)

// ratioPlaces is the rounding applied before a ratio is formatted.
// Ties round half away from zero: 1.005 renders as "1.01%", not "1.0%".
const ratioPlaces = 2

// Aggregator derives percentage ratios from statement line items
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a statement aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate computes Gross Margin, Net Profit Margin, PBT Margin and
// Expense Ratio. Each needs Total Revenue plus its own line item; zero
// revenue omits the ratio.
func (a *Aggregator) Aggregate(ctx context.Context, m *metrics.Scalars) *metrics.Summary {
	a.logger.Info("calculating ratios", "metrics", m.Len())

	summary := metrics.NewSummary()
	for _, r := range []metrics.Result{
		GrossMargin(m),
		NetProfitMargin(m),
		PBTMargin(m),
		ExpenseRatio(m),
	} {
		a.log(r)
		summary.Add(r)
	}

	a.logger.Info("ratios calculated", "ratios", summary.Len())
	return summary
}

func (a *Aggregator) log(r metrics.Result) {
	switch {
	case r.OK():
		a.logger.Info("calculated ratio", "ratio", r.Name, "value", r.Value)
	case errors.Is(r.Err, metrics.ErrFieldAbsent):
		a.logger.Debug("ratio skipped", "ratio", r.Name, "reason", r.Err)
	default:
		a.logger.Warn("cannot calculate ratio", "ratio", r.Name, "error", r.Err)
	}
}

// GrossMargin is (Total Revenue - Total Cost of Sales) / Total Revenue x 100
func GrossMargin(m *metrics.Scalars) metrics.Result {
	return percentOfRevenue(m, RatioGrossMargin, ItemTotalCostOfSales, func(revenue, cost float64) float64 {
		return revenue - cost
	})
}

// NetProfitMargin is Net Profit / Total Revenue x 100
func NetProfitMargin(m *metrics.Scalars) metrics.Result {
	return percentOfRevenue(m, RatioNetProfitMargin, ItemNetProfit, share)
}

// PBTMargin is Profit Before Tax / Total Revenue x 100
func PBTMargin(m *metrics.Scalars) metrics.Result {
	return percentOfRevenue(m, RatioPBTMargin, ItemProfitBeforeTax, share)
}

// ExpenseRatio is Total Expenses / Total Revenue x 100
func ExpenseRatio(m *metrics.Scalars) metrics.Result {
	return percentOfRevenue(m, RatioExpenseRatio, ItemTotalExpenses, share)
}

func share(_, item float64) float64 {
	return item
}

func percentOfRevenue(m *metrics.Scalars, name, item string, numerator func(revenue, item float64) float64) metrics.Result {
	revenue, ok := m.Get(ItemTotalRevenue)
	if !ok {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, ItemTotalRevenue))
	}
	v, ok := m.Get(item)
	if !ok {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, item))
	}

	pct, err := money.PercentageOf(numerator(revenue, v), revenue)
	if errors.Is(err, money.ErrDivisionByZero) {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrZeroDenominator, ItemTotalRevenue))
	}
	if err != nil {
		return metrics.Omitted(name, err)
	}

	return metrics.Computed(name, money.FormatPercent(pct, ratioPlaces))
}
