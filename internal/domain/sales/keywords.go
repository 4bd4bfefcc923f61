package sales

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// DefaultKeywords select rows whose item name mentions sales
var DefaultKeywords = []string{"sales"}

// KeywordMatcher tests item names against a set of case-insensitive substrings
// in a single pass using the Aho-Corasick algorithm.
type KeywordMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewKeywordMatcher builds a matcher. Blank and duplicate keywords are
// dropped; an empty set falls back to DefaultKeywords.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	seen := make(map[string]bool, len(keywords))
	clean := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		clean = append(clean, kw)
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultKeywords...)
	}

	return &KeywordMatcher{
		matcher:  ahocorasick.NewStringMatcher(clean),
		keywords: clean,
	}
}

// Match reports whether text contains any keyword
func (m *KeywordMatcher) Match(text string) bool {
	if text == "" {
		return false
	}
	return len(m.matcher.Match([]byte(strings.ToLower(text)))) > 0
}

// Keywords returns the normalized keyword set
func (m *KeywordMatcher) Keywords() []string {
	out := make([]string, len(m.keywords))
	copy(out, m.keywords)
	return out
}
