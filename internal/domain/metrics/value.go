// Package metrics holds the data shapes shared by both analysis pipelines:
// raw cell values, column-per-field tables, scalar line items, and the
// ordered summary of derived results.
package metrics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a Value holds
type Kind uint8

const (
	KindAbsent Kind = iota // Missing-value marker in the source
	KindNumber
	KindText
)

// Value is one raw cell taken from a source artifact.
// The zero Value is Absent.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Absent returns the explicit missing-value sentinel
func Absent() Value {
	return Value{}
}

// Number wraps a numeric cell
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text wraps a textual cell
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Kind reports the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent returns true for the missing-value sentinel
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// Float returns the numeric content of the value.
// Text cells holding a plain number (optionally with thousands separators)
// are accepted; anything else reports ok=false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v.text), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders the value as a grouping key or display string.
// Absent renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

// MarshalJSON encodes Absent as null, numbers as JSON numbers and text as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	}
	return []byte("null"), nil
}

// naMarkers are the cell spellings treated as missing values
var naMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingMarker reports whether a raw cell spells a missing value
func IsMissingMarker(raw string) bool {
	_, ok := naMarkers[strings.TrimSpace(raw)]
	return ok
}

// ParseCell converts a raw spreadsheet cell into a Value.
// Missing markers become Absent, plain numbers become Number and
// everything else is kept verbatim as Text.
func ParseCell(raw string) Value {
	if IsMissingMarker(raw) {
		return Absent()
	}
	trimmed := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(raw)
}
