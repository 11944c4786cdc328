// Package parquet decodes columnar parquet files into datasets.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonarrate/domain/dataset"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 512

// Reader implements ports.DatasetSource for flat parquet files
type Reader struct{}

// NewReader creates a parquet dataset reader
func NewReader() *Reader {
	return &Reader{}
}

// Supports reports whether ref names a parquet file
func Supports(ref string) bool {
	ext := strings.ToLower(filepath.Ext(ref))
	return ext == ".parquet" || ext == ".pq"
}

type leaf struct {
	name    string
	kind    parquet.Kind
	numeric []float64
	text    []string
}

// Read decodes every row group of the file at ref
func (r *Reader) Read(ctx context.Context, name, ref string) (*dataset.Dataset, error) {
	start := time.Now()
	file, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat Parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	leaves, err := schemaLeaves(pf.Schema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}

	buf := make([]parquet.Row, readBatch)
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readRowGroup(rg, leaves, buf); err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
	}

	b := dataset.NewBuilder(name).Source(ref)
	for _, l := range leaves {
		if l.text != nil {
			b.AddText(l.name, l.text)
		} else {
			b.AddNumeric(l.name, l.numeric)
		}
	}
	ds, err := b.Build()
	if err != nil {
		return nil, err
	}
	log.Printf("[ParquetReader] %s decoded in %.2fms (%d columns, %d rows)",
		ref, float64(time.Since(start).Nanoseconds())/1e6, len(leaves), ds.RowCount())
	return ds, nil
}

func schemaLeaves(schema *parquet.Schema) ([]*leaf, error) {
	paths := schema.Columns()
	leaves := make([]*leaf, len(paths))
	for _, path := range paths {
		col, ok := schema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("column %s missing from schema", strings.Join(path, "."))
		}
		if col.MaxRepetitionLevel > 0 {
			return nil, fmt.Errorf("repeated column %s is not tabular", strings.Join(path, "."))
		}
		l := &leaf{name: strings.Join(path, "."), kind: col.Node.Type().Kind()}
		if l.kind == parquet.ByteArray || l.kind == parquet.FixedLenByteArray {
			l.text = []string{}
		} else {
			l.numeric = []float64{}
		}
		leaves[col.ColumnIndex] = l
	}
	return leaves, nil
}

func readRowGroup(rg parquet.RowGroup, leaves []*leaf, buf []parquet.Row) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			appendRow(row, leaves)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// appendRow assumes a flat schema: one value per leaf column per row
func appendRow(row parquet.Row, leaves []*leaf) {
	seen := make([]bool, len(leaves))
	for _, v := range row {
		c := v.Column()
		if c < 0 || c >= len(leaves) || seen[c] {
			continue
		}
		seen[c] = true
		l := leaves[c]
		if l.text != nil {
			l.text = append(l.text, textValue(v))
		} else {
			l.numeric = append(l.numeric, numericValue(v))
		}
	}
	for c, ok := range seen {
		if ok {
			continue
		}
		if leaves[c].text != nil {
			leaves[c].text = append(leaves[c].text, "")
		} else {
			leaves[c].numeric = append(leaves[c].numeric, math.NaN())
		}
	}
}

func numericValue(v parquet.Value) float64 {
	if v.IsNull() {
		return math.NaN()
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return 1
		}
		return 0
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		f, err := strconv.ParseFloat(string(v.ByteArray()), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
}

func textValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	return string(v.ByteArray())
}
