// Package statement extracts line items from financial statement documents
// and derives margin ratios from them.
package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
)

var (
	ErrNoText   = errors.New("no text could be extracted from the document")
	ErrNotFound = errors.New("line item not found")
)

// ExtractError reports a statement that could not be read.
// It matches metrics.ErrArtifactUnreadable as well as the underlying cause.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to read statement %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() []error {
	return []error{metrics.ErrArtifactUnreadable, e.Err}
}

// PageError records a page whose text could not be extracted
type PageError struct {
	Page int
	Err  error
}

// Extraction is the output of reading one statement
type Extraction struct {
	Text      string
	Metrics   *metrics.Scalars
	Pages     int
	Skipped   []PageError
	Omissions []metrics.Omission // Line items not found or not parseable
}

// Extractor reads statement text and matches the line-item patterns against it
type Extractor struct {
	logger   *slog.Logger
	open     Opener
	patterns []Pattern
}

// Option configures an Extractor
type Option func(*Extractor)

// WithOpener replaces the document opener
func WithOpener(open Opener) Option {
	return func(e *Extractor) {
		e.open = open
	}
}

// WithPatterns replaces the line-item pattern table
func WithPatterns(patterns ...Pattern) Option {
	return func(e *Extractor) {
		e.patterns = patterns
	}
}

// NewExtractor creates a statement extractor reading PDFs by default
func NewExtractor(logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		logger:   logger,
		open:     OpenPDF,
		patterns: DefaultPatterns(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the document at path and parses its line items.
// Missing or unparseable items are omitted; only an unreadable or
// textless document is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := e.open(path)
	if err != nil {
		return nil, &ExtractError{Path: path, Err: err}
	}
	defer doc.Close()

	text, skipped := ReadText(doc)
	for _, pe := range skipped {
		e.logger.Warn("could not extract text from page", "path", path, "page", pe.Page, "error", pe.Err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractError{Path: path, Err: ErrNoText}
	}

	e.logger.Info("statement text extracted",
		"path", path,
		"chars", len(text),
		"pages", doc.NumPage(),
		"skipped_pages", len(skipped),
	)

	values, omissions := e.Parse(text)

	return &Extraction{
		Text:      text,
		Metrics:   values,
		Pages:     doc.NumPage(),
		Skipped:   skipped,
		Omissions: omissions,
	}, nil
}

// ReadText concatenates the text of every readable page, each followed by a newline
func ReadText(src PageSource) (string, []PageError) {
	var (
		b       strings.Builder
		skipped []PageError
	)
	for i := 1; i <= src.NumPage(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			skipped = append(skipped, PageError{Page: i, Err: err})
			continue
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), skipped
}

// Parse matches each pattern against text and records the amounts found
func (e *Extractor) Parse(text string) (*metrics.Scalars, []metrics.Omission) {
	values := metrics.NewScalars()
	var omissions []metrics.Omission

	for _, p := range e.patterns {
		m := p.Expr.FindStringSubmatch(text)
		if m == nil {
			e.logger.Warn("could not find line item", "item", p.Item)
			omissions = append(omissions, metrics.Omission{Name: p.Item, Reason: ErrNotFound})
			continue
		}

		raw := m[1]
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			e.logger.Warn("could not parse line item", "item", p.Item, "value", raw, "error", err)
			omissions = append(omissions, metrics.Omission{
				Name:   p.Item,
				Reason: fmt.Errorf("%w: %q: %v", metrics.ErrParseFailure, raw, err),
			})
			continue
		}

		values.Set(p.Item, v)
		e.logger.Info("found line item", "item", p.Item, "value", v)
	}

	return values, omissions
}
