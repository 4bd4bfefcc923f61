package sales

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field names read from a sales export
const (
	FieldItemName       = "Item Name"
	FieldChannel        = "Channel"
	FieldSalesperson    = "Salesperson"
	FieldCustomerID     = "Customer ID"
	FieldTotalSaleValue = "Total Sale Value"
)

var canonicalFields = []string{
	FieldItemName,
	FieldChannel,
	FieldSalesperson,
	FieldCustomerID,
	FieldTotalSaleValue,
}

// ResolveHeaders maps raw export headers onto field names.
//
// A header equal to a known field after folding case, spacing and
// punctuation ("customer_id", "TOTAL SALE VALUE") takes the field name.
// Remaining headers within one edit of a known field ("Total Sales Value",
// "Sales Person") take it too, as long as no other header claimed it.
// Everything else keeps its trimmed text; blanks become "Unnamed: <i>" and
// repeated names get a ".<n>" suffix.
func ResolveHeaders(headers []string) []string {
	out := make([]string, len(headers))
	claimed := make(map[string]bool, len(canonicalFields))

	for i, h := range headers {
		key := foldHeader(h)
		for _, field := range canonicalFields {
			if !claimed[field] && key == foldHeader(field) {
				out[i] = field
				claimed[field] = true
				break
			}
		}
	}

	for i, h := range headers {
		if out[i] != "" {
			continue
		}
		if field := nearestField(foldHeader(h), claimed); field != "" {
			out[i] = field
			claimed[field] = true
		}
	}

	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if out[i] == "" {
			out[i] = strings.TrimSpace(h)
			if out[i] == "" {
				out[i] = fmt.Sprintf("Unnamed: %d", i)
			}
		}
		if n := seen[out[i]]; n > 0 {
			seen[out[i]]++
			out[i] = fmt.Sprintf("%s.%d", out[i], n)
			continue
		}
		seen[out[i]] = 1
	}

	return out
}

func nearestField(key string, claimed map[string]bool) string {
	if len(key) < 6 {
		return ""
	}
	best := ""
	bestDistance := 2
	for _, field := range canonicalFields {
		if claimed[field] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(key, foldHeader(field)); d < bestDistance {
			best = field
			bestDistance = d
		}
	}
	return best
}

// foldHeader lowercases and keeps only letters and digits
func foldHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, h)
}
