package parquet

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type carbonRow struct {
	Site  string   `parquet:"site"`
	AvgOC float64  `parquet:"avg_oc"`
	Depth int32    `parquet:"depth"`
	LabOC *float64 `parquet:"lab_oc,optional"`
}

func ptr(v float64) *float64 { return &v }

func TestReadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocarbon.parquet")
	rows := []carbonRow{
		{Site: "CR-01", AvgOC: 5, Depth: 10, LabOC: ptr(4.5)},
		{Site: "CR-02", AvgOC: 150, Depth: 20},
		{Site: "CR-03", AvgOC: 99, Depth: 30, LabOC: ptr(101)},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	ds, err := NewReader().Read(context.Background(), "ocarbon", path)
	require.NoError(t, err)

	assert.Equal(t, "ocarbon", ds.Name())
	assert.Equal(t, 3, ds.RowCount())

	avg, err := ds.Float64s("avg_oc")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 150, 99}, avg)

	depth, err := ds.Float64s("depth")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, depth)

	lab, err := ds.Float64s("lab_oc")
	require.NoError(t, err)
	assert.Equal(t, 4.5, lab[0])
	assert.True(t, math.IsNaN(lab[1]))

	sites, err := ds.Strings("site")
	require.NoError(t, err)
	assert.Equal(t, []string{"CR-01", "CR-02", "CR-03"}, sites)
}

func TestReadParquetMissingFile(t *testing.T) {
	_, err := NewReader().Read(context.Background(), "ocarbon", filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports("data/ocarbon.parquet"))
	assert.True(t, Supports("data/OCARBON.PQ"))
	assert.False(t, Supports("data/ocarbon.csv"))
}
