package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordMatcher(t *testing.T) {
	m := NewKeywordMatcher(nil)
	assert.Equal(t, []string{"sales"}, m.Keywords())

	tests := []struct {
		text string
		want bool
	}{
		{"Online Sales", true},
		{"SALES - export", true},
		{"wholesales", true},
		{"Wholesale", false},
		{"Sale", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.text), tt.text)
	}
}

func TestKeywordMatcher_Custom(t *testing.T) {
	m := NewKeywordMatcher([]string{" Revenue ", "sales", "REVENUE", ""})
	assert.Equal(t, []string{"revenue", "sales"}, m.Keywords())
	assert.True(t, m.Match("Subscription revenue"))
	assert.True(t, m.Match("Store sales"))
	assert.False(t, m.Match("Refund"))
}
