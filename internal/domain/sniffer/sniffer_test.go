package sniffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		path string
		head []byte
		want Kind
	}{
		{"pdf magic", "statement.bin", []byte("%PDF-1.7\n"), KindPDF},
		{"zip magic is xlsx", "export", []byte("PK\x03\x04\x14\x00"), KindXLSX},
		{"ole magic is xls", "export.xlsx", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, KindXLS},
		{"csv extension", "sales.CSV", []byte("Item Name,Channel\n"), KindCSV},
		{"tsv extension", "sales.tsv", []byte("Item Name\tChannel\n"), KindCSV},
		{"xls extension without magic", "old.xls", []byte("garbage"), KindXLS},
		{"pdf extension without magic", "broken.pdf", []byte("not really"), KindPDF},
		{"unknown", "notes.md", []byte("# hello"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.path, tt.head))
		})
	}
}

func TestKindTabular(t *testing.T) {
	assert.True(t, KindCSV.Tabular())
	assert.True(t, KindXLSX.Tabular())
	assert.True(t, KindXLS.Tabular())
	assert.False(t, KindPDF.Tabular())
	assert.False(t, KindUnknown.Tabular())
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("pdf", func(t *testing.T) {
		path := filepath.Join(dir, "fs.dat")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%...."), 0o600))

		kind, err := DetectFile(path)
		require.NoError(t, err)
		assert.Equal(t, KindPDF, kind)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := DetectFile(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := DetectFile(filepath.Join(dir, "nope.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  rune
		count int
	}{
		{"comma", "a,b,c", ',', 2},
		{"quoted commas are not separators", `a;"1,234.00";"5,6"`, ';', 2},
		{"quoted field counts once", `Sales,"1,234.00"`, ',', 1},
		{"tab", "a\tb", '\t', 1},
		{"none", "report", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, n := detectDelimiter(tt.line)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.count, n)
		})
	}
}

func TestDetectConfig(t *testing.T) {
	t.Run("comma with header first", func(t *testing.T) {
		data := []byte("Item Name,Channel,Total Sale Value\nOnline Sales,Web,100\n")

		cfg, err := DetectConfig(data)
		require.NoError(t, err)
		assert.Equal(t, ',', cfg.Delimiter)
		assert.Equal(t, 0, cfg.SkipLines)
		assert.Equal(t, []string{"Item Name", "Channel", "Total Sale Value"}, cfg.Headers)
	})

	t.Run("semicolon after metadata", func(t *testing.T) {
		data := []byte("Quarterly export\r\nGenerated 2024-01-31\r\nItem Name;Salesperson;Customer ID\r\nStore Sales;Bob;C1\r\n")

		cfg, err := DetectConfig(data)
		require.NoError(t, err)
		assert.Equal(t, ';', cfg.Delimiter)
		assert.Equal(t, 2, cfg.SkipLines)
		assert.Equal(t, []string{"Item Name", "Salesperson", "Customer ID"}, cfg.Headers)
	})

	t.Run("bom and padded headers", func(t *testing.T) {
		data := []byte("\uFEFF Item Name |  Channel \nSales|Web\n")

		cfg, err := DetectConfig(data)
		require.NoError(t, err)
		assert.Equal(t, '|', cfg.Delimiter)
		assert.Equal(t, []string{"Item Name", "Channel"}, cfg.Headers)
	})

	t.Run("single column", func(t *testing.T) {
		cfg, err := DetectConfig([]byte("Item Name\nSales A\n"))
		require.NoError(t, err)
		assert.Equal(t, ',', cfg.Delimiter)
		assert.Equal(t, []string{"Item Name"}, cfg.Headers)
	})

	t.Run("no keywords falls back to widest line", func(t *testing.T) {
		cfg, err := DetectConfig([]byte("report\nProduct\tAmount\tNote\nA\t1\tx\n"))
		require.NoError(t, err)
		assert.Equal(t, '\t', cfg.Delimiter)
		assert.Equal(t, 1, cfg.SkipLines)
	})

	t.Run("quoted thousands in data rows", func(t *testing.T) {
		data := []byte("Item Name,Channel,Salesperson,Customer ID,Total Sale Value\n" +
			"Sales Item 1,Web,Alice,C1,\"1,234.00\"\n" +
			"Item refund,\"Web, EU\",Bob,C2,\"12,345,678.00\"\n")

		cfg, err := DetectConfig(data)
		require.NoError(t, err)
		assert.Equal(t, ',', cfg.Delimiter)
		assert.Equal(t, 0, cfg.SkipLines)
		assert.Equal(t, []string{"Item Name", "Channel", "Salesperson", "Customer ID", "Total Sale Value"}, cfg.Headers)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := DetectConfig([]byte("  \n\n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}
