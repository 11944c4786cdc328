package dataset

import (
	"fmt"
	"math"
)

// ColumnKind is the value type shared by every cell of a column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// Column describes one named, typed column
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Dataset is an immutable, named, columnar table. Numeric columns hold NaN
// for missing cells. Accessors hand out copies so callers cannot mutate it.
type Dataset struct {
	name    string
	source  string
	columns []Column
	index   map[string]int
	numeric map[int][]float64
	text    map[int][]string
	rows    int
}

// Name returns the logical identifier the dataset was loaded under
func (d *Dataset) Name() string { return d.name }

// Source returns the storage reference the dataset was decoded from
func (d *Dataset) Source() string { return d.source }

// RowCount returns the number of records
func (d *Dataset) RowCount() int { return d.rows }

// Columns returns the column descriptors in storage order
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Column looks up a column descriptor by name
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Float64s returns a copy of a numeric column
func (d *Dataset) Float64s(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not in dataset %s", name, d.name)
	}
	values, ok := d.numeric[i]
	if !ok {
		return nil, fmt.Errorf("column %q in dataset %s is %s, not numeric", name, d.name, d.columns[i].Kind)
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// Strings returns a copy of a column rendered as text
func (d *Dataset) Strings(name string) ([]string, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not in dataset %s", name, d.name)
	}
	if values, ok := d.text[i]; ok {
		out := make([]string, len(values))
		copy(out, values)
		return out, nil
	}
	values := d.numeric[i]
	out := make([]string, len(values))
	for r, v := range values {
		if !math.IsNaN(v) {
			out[r] = fmt.Sprintf("%g", v)
		}
	}
	return out, nil
}

// Record returns row r as a column-name keyed map. Missing numbers are nil
// and infinite ones are spelled out as "+Inf" or "-Inf".
func (d *Dataset) Record(r int) map[string]interface{} {
	rec := make(map[string]interface{}, len(d.columns))
	for i, col := range d.columns {
		if values, ok := d.numeric[i]; ok {
			switch v := values[r]; {
			case math.IsNaN(v):
				rec[col.Name] = nil
			case math.IsInf(v, 0):
				rec[col.Name] = fmt.Sprintf("%+g", v)
			default:
				rec[col.Name] = v
			}
			continue
		}
		rec[col.Name] = d.text[i][r]
	}
	return rec
}

// Records returns up to limit rows as maps; limit <= 0 means all rows
func (d *Dataset) Records(limit int) []map[string]interface{} {
	n := d.rows
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]map[string]interface{}, n)
	for r := 0; r < n; r++ {
		out[r] = d.Record(r)
	}
	return out
}

// SelectRows builds a new dataset holding the given rows in the given order.
// The receiver is left untouched.
func (d *Dataset) SelectRows(name string, rows []int) *Dataset {
	sub := &Dataset{
		name:    name,
		source:  d.source,
		columns: d.Columns(),
		index:   make(map[string]int, len(d.index)),
		numeric: make(map[int][]float64, len(d.numeric)),
		text:    make(map[int][]string, len(d.text)),
		rows:    len(rows),
	}
	for k, v := range d.index {
		sub.index[k] = v
	}
	for i, values := range d.numeric {
		picked := make([]float64, len(rows))
		for j, r := range rows {
			picked[j] = values[r]
		}
		sub.numeric[i] = picked
	}
	for i, values := range d.text {
		picked := make([]string, len(rows))
		for j, r := range rows {
			picked[j] = values[r]
		}
		sub.text[i] = picked
	}
	return sub
}
