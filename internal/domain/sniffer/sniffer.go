// Package sniffer identifies source artifacts and detects CSV layouts.
// Kind detection looks at magic bytes first and the file extension second;
// CSV detection finds the delimiter and the header row.
package sniffer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the detected artifact format
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindCSV     Kind = "csv"
	KindXLSX    Kind = "xlsx"
	KindXLS     Kind = "xls" // Legacy BIFF workbook, recognised but not readable
	KindPDF     Kind = "pdf"
)

// Tabular reports whether the kind belongs to the sales pipeline
func (k Kind) Tabular() bool {
	return k == KindCSV || k == KindXLSX || k == KindXLS
}

var (
	magicPDF = []byte("%PDF-")
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// sniffLen is how much of a file is read to detect its kind
const sniffLen = 512

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
)

// Sales export header keywords
var headerKeywords = []string{
	"item name", "item", "channel", "salesperson", "sales person", "customer id", "customer",
	"total sale value", "sale value", "quantity", "unit price", "date", "month", "region",
}

// DetectFile reads the head of a file and returns its kind
func DetectFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return KindUnknown, fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return KindUnknown, ErrEmptyFile
	}

	return DetectKind(path, head[:n]), nil
}

// DetectKind classifies content by magic bytes, falling back to the extension
func DetectKind(path string, head []byte) Kind {
	switch {
	case bytes.HasPrefix(head, magicPDF):
		return KindPDF
	case bytes.HasPrefix(head, magicZip):
		return KindXLSX
	case bytes.HasPrefix(head, magicOLE):
		return KindXLS
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".xls":
		return KindXLS
	case ".pdf":
		return KindPDF
	}

	return KindUnknown
}

// FileConfig holds the detected layout of a CSV file
type FileConfig struct {
	Delimiter rune     // The field delimiter (',', ';', '\t', '|')
	SkipLines int      // Number of metadata lines before headers
	Headers   []string // Detected header names
}

// DetectConfig analyzes CSV content and returns its layout
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	delimiter, skipLines, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headerLine := cleanLine(lines[skipLines], skipLines == 0)
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter: delimiter,
		SkipLines: skipLines,
		Headers:   headers,
	}, nil
}

// findHeaderRow locates the header row and its delimiter.
// The line matching the most header keywords wins, column count breaks
// ties and the earlier line wins after that. Without keyword matches the
// line with the most columns is used.
func findHeaderRow(lines []string) (rune, int, error) {
	fallbackIndex := -1
	fallbackDelimiter := rune(0)
	fallbackCount := 0

	keywordIndex := -1
	keywordDelimiter := rune(0)
	keywordMatches := 0
	keywordCount := 0

	firstLine := -1

	for i, line := range lines {
		if i > 20 {
			break
		}

		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		if firstLine == -1 {
			firstLine = i
		}
		lineLower := strings.ToLower(line)

		delimiter, count := detectDelimiter(line)

		matches := 0
		for _, kw := range headerKeywords {
			if strings.Contains(lineLower, kw) {
				matches++
			}
		}

		if matches > 0 {
			better := matches > keywordMatches || (matches == keywordMatches && count > keywordCount)
			if keywordIndex == -1 || better {
				keywordMatches = matches
				keywordCount = count
				keywordDelimiter = delimiter
				keywordIndex = i
			}
		} else if count > fallbackCount {
			fallbackCount = count
			fallbackDelimiter = delimiter
			fallbackIndex = i
		}
	}

	if keywordIndex >= 0 {
		if keywordDelimiter == 0 {
			// Single-column export
			keywordDelimiter = ','
		}
		return keywordDelimiter, keywordIndex, nil
	}

	if fallbackIndex >= 0 {
		return fallbackDelimiter, fallbackIndex, nil
	}

	if firstLine >= 0 {
		return ',', firstLine, nil
	}

	return 0, 0, ErrNoHeadersFound
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// detectDelimiter returns the delimiter that splits line into the most
// fields and the number of separators it found. Delimiters inside quoted
// fields are not counted.
func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{',', ';', '\t', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := countSeparators(line, d)
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

func countSeparators(line string, delimiter rune) int {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	fields, err := reader.Read()
	if err != nil || len(fields) == 0 {
		return 0
	}
	return len(fields) - 1
}
