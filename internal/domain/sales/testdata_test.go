package sales

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var salesHeader = []any{FieldItemName, FieldChannel, FieldSalesperson, FieldCustomerID, FieldTotalSaleValue}

// writeXLSX writes rows to a workbook sheet; nil cells are left empty
func writeXLSX(t *testing.T, name, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	} else {
		sheet = "Sheet1"
	}

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// salesDataGenerator builds randomized sales exports with a fixed seed
type salesDataGenerator struct {
	faker *gofakeit.Faker
}

func newSalesDataGenerator(seed int64) *salesDataGenerator {
	return &salesDataGenerator{faker: gofakeit.New(seed)}
}

var (
	salesItems    = []string{"Online Sales", "Retail sales", "SALES - Export", "Wholesale Sales"}
	nonSalesItems = []string{"Refund", "Shipping Fee", "Wholesale", "Discount", "Sale Return"}
	channels      = []string{"Web", "Retail", "Partner", "Marketplace"}
)

type generatedRow struct {
	item        string
	channel     string
	salesperson string
	customerID  string
	value       float64
}

func (g *salesDataGenerator) row() generatedRow {
	item := nonSalesItems[g.faker.Number(0, len(nonSalesItems)-1)]
	if g.faker.Bool() {
		item = salesItems[g.faker.Number(0, len(salesItems)-1)]
	}
	return generatedRow{
		item:        item,
		channel:     channels[g.faker.Number(0, len(channels)-1)],
		salesperson: g.faker.FirstName(),
		customerID:  "C" + g.faker.DigitN(2),
		value:       math.Round(g.faker.Float64Range(1, 5000)*100) / 100,
	}
}

func (g *salesDataGenerator) rows(n int) []generatedRow {
	out := make([]generatedRow, n)
	for i := range out {
		out[i] = g.row()
	}
	return out
}

func (r generatedRow) cells() []any {
	return []any{r.item, r.channel, r.salesperson, r.customerID, r.value}
}

func (r generatedRow) isSales() bool {
	return strings.Contains(strings.ToLower(r.item), "sales")
}
