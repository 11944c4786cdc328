package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Builder collects columns and freezes them into a Dataset
type Builder struct {
	name    string
	source  string
	columns []Column
	numeric map[int][]float64
	text    map[int][]string
	err     error
}

// NewBuilder starts a dataset with the given logical name
func NewBuilder(name string) *Builder {
	return &Builder{
		name:    name,
		numeric: make(map[int][]float64),
		text:    make(map[int][]string),
	}
}

// Source records where the data came from
func (b *Builder) Source(source string) *Builder {
	b.source = source
	return b
}

// AddNumeric appends a numeric column; values are copied
func (b *Builder) AddNumeric(name string, values []float64) *Builder {
	if b.addColumn(name, KindNumeric) {
		cp := make([]float64, len(values))
		copy(cp, values)
		b.numeric[len(b.columns)-1] = cp
	}
	return b
}

// AddText appends a text column; values are copied
func (b *Builder) AddText(name string, values []string) *Builder {
	if b.addColumn(name, KindText) {
		cp := make([]string, len(values))
		copy(cp, values)
		b.text[len(b.columns)-1] = cp
	}
	return b
}

func (b *Builder) addColumn(name string, kind ColumnKind) bool {
	if b.err != nil {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		b.err = fmt.Errorf("dataset %s: column %d has an empty name", b.name, len(b.columns))
		return false
	}
	for _, c := range b.columns {
		if c.Name == name {
			b.err = fmt.Errorf("dataset %s: duplicate column %q", b.name, name)
			return false
		}
	}
	b.columns = append(b.columns, Column{Name: name, Kind: kind})
	return true
}

// Build validates column lengths and returns the immutable dataset
func (b *Builder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	rows := -1
	for i, col := range b.columns {
		n := len(b.text[i])
		if col.Kind == KindNumeric {
			n = len(b.numeric[i])
		}
		if rows == -1 {
			rows = n
		} else if n != rows {
			return nil, fmt.Errorf("dataset %s: column %q has %d rows, expected %d", b.name, col.Name, n, rows)
		}
	}
	if rows < 0 {
		rows = 0
	}

	d := &Dataset{
		name:    b.name,
		source:  b.source,
		columns: b.columns,
		index:   make(map[string]int, len(b.columns)),
		numeric: b.numeric,
		text:    b.text,
		rows:    rows,
	}
	for i, col := range b.columns {
		d.index[col.Name] = i
	}
	// the builder must not alias the frozen dataset
	*b = *NewBuilder(b.name)
	return d, nil
}

// FromStringRows infers column kinds from raw cells: a column is numeric when
// every non-missing cell parses as a float. Short rows are padded as missing.
func FromStringRows(name, source string, headers []string, rows [][]string) (*Dataset, error) {
	b := NewBuilder(name).Source(source)
	for j, header := range headers {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if j < len(row) {
				cells[r] = strings.TrimSpace(row[j])
			}
		}
		if values, ok := parseNumericColumn(cells); ok {
			b.AddNumeric(header, values)
		} else {
			b.AddText(header, cells)
		}
	}
	return b.Build()
}

func parseNumericColumn(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	seen := false
	for i, cell := range cells {
		if IsMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
		seen = true
	}
	return values, seen || len(cells) == 0
}

// IsMissing reports whether a raw cell denotes a missing value
func IsMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "na", "nan", "null", "none", "n/a":
		return true
	}
	return false
}
