package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrFieldAbsent marks a result skipped because a prerequisite field is missing
var ErrFieldAbsent = errors.New("required field absent")

// Result is the outcome of one derived computation: a value, or an omission with its reason
type Result struct {
	Name  string
	Value any
	Err   error
}

// Computed returns a successful result
func Computed(name string, v any) Result {
	return Result{Name: name, Value: v}
}

// Omitted returns a result that will be left out of the summary
func Omitted(name string, reason error) Result {
	return Result{Name: name, Err: reason}
}

// OK reports whether the computation succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Omission records why a named result is missing from a Summary
type Omission struct {
	Name   string
	Reason error
}

// MarshalJSON encodes the omission with its reason as text
func (o Omission) MarshalJSON() ([]byte, error) {
	reason := ""
	if o.Reason != nil {
		reason = o.Reason.Error()
	}
	return json.Marshal(struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}{o.Name, reason})
}

// Summary is the Ratio/Summary Set: derived results in the order they were computed.
// Only successful results are stored as entries; omissions are kept apart for diagnostics.
type Summary struct {
	values    map[string]any
	names     []string
	omissions []Omission
}

// NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{values: make(map[string]any)}
}

// Collect builds a summary from results, keeping successes as entries
func Collect(results ...Result) *Summary {
	s := NewSummary()
	for _, r := range results {
		s.Add(r)
	}
	return s
}

// Add appends a result to the summary
func (s *Summary) Add(r Result) {
	if !r.OK() {
		s.omissions = append(s.omissions, Omission{Name: r.Name, Reason: r.Err})
		return
	}
	if _, exists := s.values[r.Name]; !exists {
		s.names = append(s.names, r.Name)
	}
	s.values[r.Name] = r.Value
}

// Get returns a named result
func (s *Summary) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns result names in computation order
func (s *Summary) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of successful results
func (s *Summary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Omissions returns the results that were left out and why
func (s *Summary) Omissions() []Omission {
	if s == nil {
		return nil
	}
	out := make([]Omission, len(s.omissions))
	copy(out, s.omissions)
	return out
}

// MarshalJSON encodes successful results as an object in computation order
func (s *Summary) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[n])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Grouping maps each category to the ordered values found on its rows.
// Categories keep first-seen order.
type Grouping struct {
	groups   map[string][]Value
	keys     []string
	unpaired int
}

// NewGrouping creates an empty grouping
func NewGrouping() *Grouping {
	return &Grouping{groups: make(map[string][]Value)}
}

// Add appends a value under a category
func (g *Grouping) Add(key string, v Value) {
	if _, exists := g.groups[key]; !exists {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], v)
}

// SkipUnpaired records a row index found in only one of the paired columns
func (g *Grouping) SkipUnpaired() {
	g.unpaired++
}

// Unpaired returns how many rows were skipped for lack of a partner cell
func (g *Grouping) Unpaired() int {
	if g == nil {
		return 0
	}
	return g.unpaired
}

// Get returns the values for a category
func (g *Grouping) Get(key string) ([]Value, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.groups[key]
	return v, ok
}

// Keys returns categories in first-seen order
func (g *Grouping) Keys() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Len returns the number of categories
func (g *Grouping) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// MarshalJSON encodes the grouping as {"<category>": [values]} in first-seen order
func (g *Grouping) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(g.groups[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Counter is a frequency count per category in first-seen order
type Counter struct {
	counts map[string]int
	keys   []string
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add increments the count for a category
func (c *Counter) Add(key string) {
	if _, exists := c.counts[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// Count returns the count for a category (0 when unseen)
func (c *Counter) Count(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Keys returns categories in first-seen order
func (c *Counter) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of distinct categories
func (c *Counter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Map returns a copy of the counts
func (c *Counter) Map() map[string]int {
	if c == nil {
		return nil
	}
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the counter as {"<category>": count} in first-seen order
func (c *Counter) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.counts[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
