package metrics

import (
	"bytes"
	"encoding/json"
)

// Scalars is the scalar-per-field Metric Set produced from text documents.
// Items keep the order in which they were recorded.
type Scalars struct {
	values map[string]float64
	names  []string
}

// NewScalars creates an empty scalar set
func NewScalars() *Scalars {
	return &Scalars{values: make(map[string]float64)}
}

// Set records a line item
func (s *Scalars) Set(name string, v float64) {
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

// Get is the optional-field accessor: ok is false when the item was not recognized
func (s *Scalars) Get(name string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns the recorded item names in insertion order
func (s *Scalars) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of recorded items
func (s *Scalars) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// MarshalJSON encodes the set as an object in insertion order
func (s *Scalars) MarshalJSON() ([]byte, error) {
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
