// Package sales extracts sales rows from tabular exports and derives sales summaries.
package sales

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/sniffer"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoSheet           = errors.New("no suitable sheet found")
	ErrNoHeader          = errors.New("export has no header row")
	ErrMissingItemName   = errors.New(`export has no "Item Name" column`)
)

// ExtractError reports a sales export that could not be read.
// It matches metrics.ErrArtifactUnreadable as well as the underlying cause.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to read sales export %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() []error {
	return []error{metrics.ErrArtifactUnreadable, e.Err}
}

// Extractor loads a sales export and keeps the rows whose item name matches a keyword
type Extractor struct {
	logger   *slog.Logger
	keywords *KeywordMatcher
	sheet    string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithKeywords replaces the item-name keywords
func WithKeywords(keywords ...string) Option {
	return func(e *Extractor) {
		e.keywords = NewKeywordMatcher(keywords)
	}
}

// WithSheet selects a workbook sheet by name (case-insensitive)
func WithSheet(name string) Option {
	return func(e *Extractor) {
		e.sheet = strings.TrimSpace(name)
	}
}

// NewExtractor creates a sales extractor
func NewExtractor(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger:   logger,
		keywords: NewKeywordMatcher(DefaultKeywords),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// rawSheet is an export before row filtering
type rawSheet struct {
	headers []string
	rows    [][]string
}

// Extract reads the export at path and returns the kept rows as a
// column-per-field table keyed by their 0-based data row index.
func (e *Extractor) Extract(ctx context.Context, path string) (*metrics.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, err := sniffer.DetectFile(path)
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}

	var sheet *rawSheet
	switch kind {
	case sniffer.KindXLSX:
		sheet, err = e.readXLSX(path)
	case sniffer.KindCSV:
		sheet, err = readCSV(path)
	case sniffer.KindXLS:
		err = fmt.Errorf("%w: legacy xls workbook, save it as xlsx or csv", ErrUnsupportedFormat)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}

	e.logger.Info("sales export loaded",
		"path", path,
		"format", kind,
		"rows", len(sheet.rows),
		"columns", len(sheet.headers),
	)

	table, err := e.filter(sheet)
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}

	e.logger.Info("sales rows selected",
		"path", path,
		"kept", table.RowCount(),
		"keywords", e.keywords.Keywords(),
	)

	return table, nil
}

// filter keeps the rows whose item name matches a keyword
func (e *Extractor) filter(sheet *rawSheet) (*metrics.Table, error) {
	if len(sheet.headers) == 0 {
		return nil, ErrNoHeader
	}

	headers := ResolveHeaders(sheet.headers)
	itemCol := -1
	for i, h := range headers {
		if h == FieldItemName {
			itemCol = i
			break
		}
	}
	if itemCol == -1 {
		return nil, ErrMissingItemName
	}

	table := metrics.NewTable()
	for _, h := range headers {
		table.AddField(h)
	}

	for i, row := range sheet.rows {
		item := metrics.ParseCell(cellAt(row, itemCol))
		if item.IsAbsent() || !e.keywords.Match(item.String()) {
			continue
		}
		for j, h := range headers {
			table.Set(h, i, metrics.ParseCell(cellAt(row, j)))
		}
	}

	return table, nil
}

func (e *Extractor) readXLSX(path string) (*rawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	name, err := e.pickSheet(f.GetSheetList())
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	return &rawSheet{headers: rows[0], rows: rows[1:]}, nil
}

// pickSheet returns the configured sheet, or the first sheet when none is configured
func (e *Extractor) pickSheet(sheets []string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrNoSheet
	}
	if e.sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(s, e.sheet) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q not in %v", ErrNoSheet, e.sheet, sheets)
}

func readCSV(path string) (*rawSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	cfg, err := sniffer.DetectConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to detect CSV layout: %w", err)
	}

	// Drop metadata lines above the header
	if cfg.SkipLines > 0 {
		lines := strings.SplitAfter(string(data), "\n")
		data = []byte(strings.Join(lines[cfg.SkipLines:], ""))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = cfg.Delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := gocsv.NewSimpleDecoderFromCSVReader(r).GetCSVRows()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	return &rawSheet{headers: records[0], rows: records[1:]}, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
