package metrics

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Column holds the cells of one field keyed by source row index
type Column struct {
	cells map[int]Value
	rows  []int // kept sorted ascending
}

func newColumn() *Column {
	return &Column{cells: make(map[int]Value)}
}

// Set stores the cell for a row, replacing any previous value
func (c *Column) Set(row int, v Value) {
	if _, exists := c.cells[row]; !exists {
		idx := sort.SearchInts(c.rows, row)
		c.rows = append(c.rows, 0)
		copy(c.rows[idx+1:], c.rows[idx:])
		c.rows[idx] = row
	}
	c.cells[row] = v
}

// Get returns the cell for a row index
func (c *Column) Get(row int) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.cells[row]
	return v, ok
}

// Rows returns the row indices in ascending order
func (c *Column) Rows() []int {
	if c == nil {
		return nil
	}
	out := make([]int, len(c.rows))
	copy(out, c.rows)
	return out
}

// Values returns the cells ordered by row index
func (c *Column) Values() []Value {
	if c == nil {
		return nil
	}
	out := make([]Value, 0, len(c.rows))
	for _, r := range c.rows {
		out = append(out, c.cells[r])
	}
	return out
}

// Len returns the number of cells
func (c *Column) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// MarshalJSON encodes the column as {"<row>": value, ...} in row order
func (c *Column) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range c.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(r)))
		buf.WriteByte(':')
		b, err := json.Marshal(c.cells[r])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the column-per-field Metric Set produced from tabular artifacts.
// All columns share the row-index domain of the source sheet.
type Table struct {
	columns map[string]*Column
	fields  []string // header order
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{columns: make(map[string]*Column)}
}

// AddField registers a field so it appears even when no row is kept
func (t *Table) AddField(field string) *Column {
	if col, ok := t.columns[field]; ok {
		return col
	}
	col := newColumn()
	t.columns[field] = col
	t.fields = append(t.fields, field)
	return col
}

// Set stores a cell, registering the field on first use
func (t *Table) Set(field string, row int, v Value) {
	t.AddField(field).Set(row, v)
}

// Column is the optional-field accessor: ok is false when the field is absent
func (t *Table) Column(field string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	col, ok := t.columns[field]
	return col, ok
}

// Fields returns the field names in header order
func (t *Table) Fields() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Len returns the number of fields
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.fields)
}

// RowCount returns the number of distinct row indices across all columns
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	seen := make(map[int]struct{})
	for _, col := range t.columns {
		for _, r := range col.rows {
			seen[r] = struct{}{}
		}
	}
	return len(seen)
}

// MarshalJSON encodes the table as {"<field>": {"<row>": value}} in header order
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		b, err := t.columns[f].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
