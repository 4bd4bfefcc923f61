package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/analysis"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/metrics"
	"github.com/FACorreiaa/statement-analyzer/pkg/money"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var ErrUnknownFormat = errors.New("unknown output format")

const rule = "=================================================="

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML, formatText:
		return nil
	}
	return fmt.Errorf("%w %q: want json, yaml or text", ErrUnknownFormat, format)
}

// renderReport writes the report to w in the requested format
func renderReport(w io.Writer, r *analysis.Report, format, currency string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	var out []byte
	switch format {
	case formatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		out = append(b, '\n')
	case formatYAML:
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		// Going through JSON keeps the ordered metric and summary encoders
		if out, err = yaml.JSONToYAML(b); err != nil {
			return fmt.Errorf("failed to encode report as yaml: %w", err)
		}
	case formatText:
		out = []byte(textReport(r, currency))
	}

	_, err := w.Write(out)
	return err
}

func textReport(r *analysis.Report, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "ANALYSIS RESULTS (%s)\n", r.Pipeline)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Run:      %s\n", r.RunID)
	fmt.Fprintf(&b, "Artifact: %s\n", r.Path)
	if r.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", r.Error)
	}

	switch m := r.Metrics.(type) {
	case *metrics.Scalars:
		writeScalars(&b, m)
		writeSummary(&b, r.Summary, currency, "Calculated Financial Ratios", "No financial ratios were calculated")
	case *metrics.Table:
		writeTable(&b, m)
		writeSummary(&b, r.Summary, currency, "Sales Summary", "No sales summaries were calculated")
	}

	if len(r.Missing) > 0 {
		b.WriteString("\nLine items not found:\n")
		for _, o := range r.Missing {
			fmt.Fprintf(&b, "   %s\n", o.Name)
		}
	}
	if len(r.Omitted) > 0 {
		b.WriteString("\nOmitted:\n")
		for _, o := range r.Omitted {
			fmt.Fprintf(&b, "   %s: %v\n", o.Name, o.Reason)
		}
	}

	return b.String()
}

func writeScalars(b *strings.Builder, m *metrics.Scalars) {
	if m.Len() == 0 {
		b.WriteString("\nNo financial metrics were extracted\n")
		return
	}
	b.WriteString("\nExtracted Financial Metrics:\n")
	for _, name := range m.Names() {
		v, _ := m.Get(name)
		fmt.Fprintf(b, "   %s: %s\n", name, money.FormatAmount(v))
	}
}

func writeTable(b *strings.Builder, t *metrics.Table) {
	if t.RowCount() == 0 {
		b.WriteString("\nNo sales rows were selected\n")
		return
	}
	fmt.Fprintf(b, "\nSelected Sales Rows: %d\n", t.RowCount())
	for _, field := range t.Fields() {
		col, _ := t.Column(field)
		fmt.Fprintf(b, "   %s: %d values\n", field, col.Len())
	}
}

func writeSummary(b *strings.Builder, s *metrics.Summary, currency, title, empty string) {
	if s.Len() == 0 {
		fmt.Fprintf(b, "\n%s\n", empty)
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, name := range s.Names() {
		v, _ := s.Get(name)
		switch v := v.(type) {
		case float64:
			fmt.Fprintf(b, "   %s: %s\n", name, money.NewFromFloat(v, currency).Display())
		case *metrics.Grouping:
			fmt.Fprintf(b, "   %s:\n", name)
			for _, key := range v.Keys() {
				values, _ := v.Get(key)
				fmt.Fprintf(b, "      %s: %s\n", key, joinValues(values))
			}
		case *metrics.Counter:
			fmt.Fprintf(b, "   %s:\n", name)
			for _, key := range v.Keys() {
				fmt.Fprintf(b, "      %s: %d\n", key, v.Count(key))
			}
		default:
			fmt.Fprintf(b, "   %s: %v\n", name, v)
		}
	}
}

func joinValues(values []metrics.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v.IsAbsent() {
			parts[i] = "-"
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
