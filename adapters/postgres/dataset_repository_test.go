package postgres

import (
	"math"
	"testing"
	"time"

	"gonarrate/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"table:ocarbon", `SELECT * FROM "ocarbon"`, false},
		{"table:soil.ocarbon", `SELECT * FROM "soil"."ocarbon"`, false},
		{"table:soil.ocarbon?order=site_id", `SELECT * FROM "soil"."ocarbon" ORDER BY "site_id"`, false},
		{`table:we"ird`, `SELECT * FROM "we""ird"`, false},
		{"table:", "", true},
		{"table:soil.", "", true},
		{"table:x?limit=3", "", true},
		{"ocarbon.parquet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := selectQuery(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "1.25", cellString([]byte("1.25")))
	assert.Equal(t, "42", cellString(int64(42)))
	assert.Equal(t, "0.1", cellString(0.1))
	assert.Equal(t, "1", cellString(true))
	assert.Equal(t, "2024-03-01T12:00:00Z", cellString(ts))
	assert.True(t, Supports("table:ocarbon"))
	assert.False(t, Supports("ocarbon.csv"))
}

func TestSplitTable(t *testing.T) {
	tests := []struct {
		in        string
		schema    string
		name      string
		wantErr   bool
		qualified string
	}{
		{in: "ocarbon", name: "ocarbon", qualified: `"ocarbon"`},
		{in: "table:soil.ocarbon", schema: "soil", name: "ocarbon", qualified: `"soil"."ocarbon"`},
		{in: "", wantErr: true},
		{in: "a.b.c", wantErr: true},
		{in: "soil.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			schema, name, err := splitTable(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.schema, schema)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.qualified, qualify(schema, name))
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	columns := []dataset.Column{
		{Name: "site", Kind: dataset.KindText},
		{Name: "value", Kind: dataset.KindNumeric},
	}
	assert.Equal(t,
		`CREATE TABLE "soil"."ocarbon" ("site" text, "value" double precision)`,
		createTableSQL(`"soil"."ocarbon"`, columns))
}

func TestColumnValues(t *testing.T) {
	d, err := dataset.NewBuilder("ocarbon").
		AddText("site", []string{"a", "b"}).
		AddNumeric("value", []float64{1.5, math.NaN()}).
		Build()
	require.NoError(t, err)

	values, err := columnValues(d, d.Columns())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, values[0])
	assert.Equal(t, []interface{}{1.5, nil}, values[1])
}
