package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
)

// newTable builds a table from field -> cells by row index
func newTable(fields map[string]map[int]metrics.Value, order ...string) *metrics.Table {
	t := metrics.NewTable()
	for _, f := range order {
		t.AddField(f)
		for row, v := range fields[f] {
			t.Set(f, row, v)
		}
	}
	return t
}

func TestAggregator_FullExport(t *testing.T) {
	table := newTable(map[string]map[int]metrics.Value{
		FieldChannel: {
			0: metrics.Text("Online"), 2: metrics.Text("Retail"), 5: metrics.Text("Online"),
		},
		FieldSalesperson: {
			0: metrics.Text("Alice"), 2: metrics.Text("Bob"), 5: metrics.Text("Alice"),
		},
		FieldCustomerID: {
			0: metrics.Text("A"), 2: metrics.Text("B"), 5: metrics.Text("A"),
		},
		FieldTotalSaleValue: {
			0: metrics.Number(0.1), 2: metrics.Number(0.2), 5: metrics.Number(7),
		},
	}, FieldChannel, FieldSalesperson, FieldCustomerID, FieldTotalSaleValue)

	summary := NewAggregator(testLogger()).Aggregate(context.Background(), table)

	assert.Equal(t, []string{ResultTotalSale, ResultChannelData, ResultSalespersonData, ResultCustomerIDCounter}, summary.Names())
	assert.Empty(t, summary.Omissions())

	total, ok := summary.Get(ResultTotalSale)
	require.True(t, ok)
	assert.Equal(t, 7.3, total)

	b, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Total Sale": 7.3,
		"Channel Data": {"Online": [0.1, 7], "Retail": [0.2]},
		"Salesperson Data": {"Alice": [0.1, 7], "Bob": [0.2]},
		"Customer ID Counter": {"A": 2, "B": 1}
	}`, string(b))
}

func TestGroupBy_ChannelGrouping(t *testing.T) {
	table := newTable(map[string]map[int]metrics.Value{
		FieldChannel:        {0: metrics.Text("Online"), 1: metrics.Text("Retail"), 2: metrics.Text("Online")},
		FieldTotalSaleValue: {0: metrics.Number(10), 1: metrics.Number(5), 2: metrics.Number(7)},
	}, FieldChannel, FieldTotalSaleValue)

	r := GroupBy(table, ResultChannelData, FieldChannel)
	require.True(t, r.OK())

	g := r.Value.(*metrics.Grouping)
	assert.Equal(t, []string{"Online", "Retail"}, g.Keys())
	online, _ := g.Get("Online")
	assert.Equal(t, []metrics.Value{metrics.Number(10), metrics.Number(7)}, online)
	retail, _ := g.Get("Retail")
	assert.Equal(t, []metrics.Value{metrics.Number(5)}, retail)
}

func TestGroupBy_PairsByRowIndex(t *testing.T) {
	// Salesperson has a row the value column lacks, and vice versa
	table := newTable(map[string]map[int]metrics.Value{
		FieldSalesperson:    {1: metrics.Text("Ann"), 3: metrics.Text("Ben"), 4: metrics.Absent(), 8: metrics.Text("Ann")},
		FieldTotalSaleValue: {1: metrics.Number(1), 4: metrics.Number(4), 8: metrics.Absent(), 9: metrics.Number(9)},
	}, FieldSalesperson, FieldTotalSaleValue)

	r := GroupBy(table, ResultSalespersonData, FieldSalesperson)
	require.True(t, r.OK())

	b, err := json.Marshal(r.Value)
	require.NoError(t, err)
	assert.Equal(t, `{"Ann":[1,null]}`, string(b))
	assert.Equal(t, 2, r.Value.(*metrics.Grouping).Unpaired(), "row 3 has no value and row 9 has no salesperson")
}

func TestAggregator_LogsUnpairedRows(t *testing.T) {
	table := newTable(map[string]map[int]metrics.Value{
		FieldChannel:        {0: metrics.Text("Web"), 1: metrics.Text("Retail")},
		FieldTotalSaleValue: {0: metrics.Number(10), 2: metrics.Number(3)},
	}, FieldChannel, FieldTotalSaleValue)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	summary := NewAggregator(logger).Aggregate(context.Background(), table)

	v, ok := summary.Get(ResultChannelData)
	require.True(t, ok)
	assert.Equal(t, 2, v.(*metrics.Grouping).Unpaired())
	assert.Contains(t, buf.String(), `msg="rows skipped without a paired cell" result="Channel Data" rows=2`)
}

func TestCountDistinct(t *testing.T) {
	cells := map[int]metrics.Value{}
	for i, id := range []string{"A", "B", "A", "A", "C"} {
		cells[i] = metrics.Text(id)
	}
	cells[5] = metrics.Absent()
	table := newTable(map[string]map[int]metrics.Value{FieldCustomerID: cells}, FieldCustomerID)

	r := CountDistinct(table, ResultCustomerIDCounter, FieldCustomerID)
	require.True(t, r.OK())

	c := r.Value.(*metrics.Counter)
	assert.Equal(t, map[string]int{"A": 3, "B": 1, "C": 1}, c.Map())
}

func TestTotalSale(t *testing.T) {
	t.Run("skips absent cells", func(t *testing.T) {
		table := newTable(map[string]map[int]metrics.Value{
			FieldTotalSaleValue: {0: metrics.Number(100), 1: metrics.Absent(), 2: metrics.Text("1,200.50")},
		}, FieldTotalSaleValue)

		r := TotalSale(table)
		require.True(t, r.OK())
		assert.Equal(t, 1300.5, r.Value)
	})

	t.Run("empty column sums to zero", func(t *testing.T) {
		table := newTable(nil, FieldTotalSaleValue)

		r := TotalSale(table)
		require.True(t, r.OK())
		assert.Equal(t, 0.0, r.Value)
	})

	t.Run("text cell omits the result", func(t *testing.T) {
		table := newTable(map[string]map[int]metrics.Value{
			FieldTotalSaleValue: {0: metrics.Number(100), 3: metrics.Text("pending")},
		}, FieldTotalSaleValue)

		r := TotalSale(table)
		assert.False(t, r.OK())
		assert.ErrorIs(t, r.Err, metrics.ErrParseFailure)
		assert.Contains(t, r.Err.Error(), "row 3")
	})
}

func TestAggregator_MissingFields(t *testing.T) {
	t.Run("only customer ids", func(t *testing.T) {
		table := newTable(map[string]map[int]metrics.Value{
			FieldItemName:   {0: metrics.Text("Sales")},
			FieldCustomerID: {0: metrics.Text("A")},
		}, FieldItemName, FieldCustomerID)

		summary := NewAggregator(testLogger()).Aggregate(context.Background(), table)
		assert.Equal(t, []string{ResultCustomerIDCounter}, summary.Names())

		omissions := summary.Omissions()
		require.Len(t, omissions, 3)
		for _, o := range omissions {
			assert.ErrorIs(t, o.Reason, metrics.ErrFieldAbsent)
		}
	})

	t.Run("nil table", func(t *testing.T) {
		summary := NewAggregator(testLogger()).Aggregate(context.Background(), nil)
		assert.Equal(t, 0, summary.Len())
	})

	t.Run("bad total keeps the groupings", func(t *testing.T) {
		table := newTable(map[string]map[int]metrics.Value{
			FieldChannel:        {0: metrics.Text("Web"), 1: metrics.Text("Web")},
			FieldTotalSaleValue: {0: metrics.Number(1), 1: metrics.Text("n.a.")},
		}, FieldChannel, FieldTotalSaleValue)

		summary := NewAggregator(testLogger()).Aggregate(context.Background(), table)
		assert.Equal(t, []string{ResultChannelData}, summary.Names())
	})
}

func TestAggregator_GeneratedExport(t *testing.T) {
	gen := newSalesDataGenerator(7)
	generated := gen.rows(150)

	rows := [][]any{salesHeader}
	var want float64
	perChannel := map[string]int{}
	for _, r := range generated {
		rows = append(rows, r.cells())
		if r.isSales() {
			want += r.value
			perChannel[r.channel]++
		}
	}
	path := writeXLSX(t, "generated.xlsx", "", rows)

	table, err := NewExtractor(testLogger()).Extract(context.Background(), path)
	require.NoError(t, err)
	summary := NewAggregator(testLogger()).Aggregate(context.Background(), table)

	total, ok := summary.Get(ResultTotalSale)
	require.True(t, ok)
	assert.InDelta(t, want, total.(float64), 0.001)

	channelData, ok := summary.Get(ResultChannelData)
	require.True(t, ok)
	g := channelData.(*metrics.Grouping)
	for ch, n := range perChannel {
		vals, ok := g.Get(ch)
		require.True(t, ok, ch)
		assert.Len(t, vals, n, ch)
	}
}
