package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

// Summary result names
const (
	ResultTotalSale         = "Total Sale"
	ResultChannelData       = "Channel Data"
	ResultSalespersonData   = "Salesperson Data"
	ResultCustomerIDCounter = "Customer ID Counter"
)

// Aggregator derives sales summaries from an extracted table.
// Each result is computed independently; a failure only drops that result.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a sales aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate computes Total Sale, Channel Data, Salesperson Data and
// Customer ID Counter, in that order. A nil or empty table yields an
// empty summary.
func (a *Aggregator) Aggregate(ctx context.Context, t *metrics.Table) *metrics.Summary {
	a.logger.Info("computing sales summary", "fields", t.Len(), "rows", t.RowCount())

	summary := metrics.NewSummary()
	for _, r := range []metrics.Result{
		TotalSale(t),
		GroupBy(t, ResultChannelData, FieldChannel),
		GroupBy(t, ResultSalespersonData, FieldSalesperson),
		CountDistinct(t, ResultCustomerIDCounter, FieldCustomerID),
	} {
		a.log(r)
		summary.Add(r)
	}

	a.logger.Info("sales summary computed", "results", summary.Len(), "omitted", len(summary.Omissions()))
	return summary
}

func (a *Aggregator) log(r metrics.Result) {
	switch {
	case r.OK():
		a.logger.Info("computed result", "result", r.Name)
		if g, ok := r.Value.(*metrics.Grouping); ok && g.Unpaired() > 0 {
			a.logger.Warn("rows skipped without a paired cell", "result", r.Name, "rows", g.Unpaired())
		}
	case errors.Is(r.Err, metrics.ErrFieldAbsent):
		a.logger.Debug("result skipped", "result", r.Name, "reason", r.Err)
	default:
		a.logger.Warn("cannot compute result", "result", r.Name, "error", r.Err)
	}
}

// TotalSale sums every Total Sale Value cell. Absent cells are skipped;
// a cell that is not a number omits the result.
func TotalSale(t *metrics.Table) metrics.Result {
	col, ok := t.Column(FieldTotalSaleValue)
	if !ok {
		return metrics.Omitted(ResultTotalSale, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, FieldTotalSaleValue))
	}

	values := make([]float64, 0, col.Len())
	for _, row := range col.Rows() {
		v, _ := col.Get(row)
		if v.IsAbsent() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return metrics.Omitted(ResultTotalSale,
				fmt.Errorf("%w: row %d value %q", metrics.ErrParseFailure, row, v.String()))
		}
		values = append(values, f)
	}

	total, err := money.Sum(values)
	if err != nil {
		return metrics.Omitted(ResultTotalSale, fmt.Errorf("%w: %v", metrics.ErrParseFailure, err))
	}

	return metrics.Computed(ResultTotalSale, total.InexactFloat64())
}

// GroupBy collects Total Sale Value cells per distinct key, pairing by row index.
// Rows with an absent key are skipped. Rows present in only one column are
// skipped and counted in the grouping's Unpaired total.
func GroupBy(t *metrics.Table, name, keyField string) metrics.Result {
	keys, ok := t.Column(keyField)
	if !ok {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, keyField))
	}
	values, ok := t.Column(FieldTotalSaleValue)
	if !ok {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, FieldTotalSaleValue))
	}

	g := metrics.NewGrouping()
	for _, row := range keys.Rows() {
		key, _ := keys.Get(row)
		if key.IsAbsent() {
			continue
		}
		v, ok := values.Get(row)
		if !ok {
			g.SkipUnpaired()
			continue
		}
		g.Add(key.String(), v)
	}
	for _, row := range values.Rows() {
		if _, ok := keys.Get(row); !ok {
			g.SkipUnpaired()
		}
	}

	return metrics.Computed(name, g)
}

// CountDistinct counts how often each value of a field occurs. Absent cells are not counted.
func CountDistinct(t *metrics.Table, name, field string) metrics.Result {
	col, ok := t.Column(field)
	if !ok {
		return metrics.Omitted(name, fmt.Errorf("%w: %s", metrics.ErrFieldAbsent, field))
	}

	c := metrics.NewCounter()
	for _, v := range col.Values() {
		if v.IsAbsent() {
			continue
		}
		c.Add(v.String())
	}

	return metrics.Computed(name, c)
}
