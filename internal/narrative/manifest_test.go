package narrative

import (
	"os"
	"path/filepath"
	"testing"

	"gonarrate/domain/chart"
	"gonarrate/domain/core"
	domain "gonarrate/domain/narrative"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
title: On delivering Appendix 1
subtitle: An interactive outline
datasets:
  - id: ocarbon
    source: ocarbon.parquet
  - id: soilgrid_corr
    source: soilgrid_corr.csv
metrics:
  - name: sites
    kind: count
    dataset: ocarbon
  - name: slope
    kind: slope
    dataset: soilgrid_corr
    column: observed
    y: predicted
    decimals: 2
blocks:
  - kind: heading
    level: 2
    text: Organic carbon
  - kind: text
    text: "{sites} sites"
  - kind: chart
    dataset: ocarbon
    below: {column: value, value: 100}
    chart:
      mark: bar
      bins: 10
      x: {field: value, title: Organic carbon, domain: {min: 0, max: 100, clamp: true}}
`

func TestParsePage(t *testing.T) {
	page, err := ParsePage([]byte(manifest))
	require.NoError(t, err)

	assert.Equal(t, "On delivering Appendix 1", page.Title)
	assert.Equal(t, []string{"ocarbon", "soilgrid_corr"}, page.DatasetIDs())
	require.Len(t, page.Metrics, 2)
	require.NotNil(t, page.Metrics[1].Decimals)
	assert.Equal(t, 2, *page.Metrics[1].Decimals)

	require.Len(t, page.Blocks, 3)
	block := page.Blocks[2]
	assert.Equal(t, domain.BlockChart, block.Kind)
	assert.Equal(t, &domain.Threshold{Column: "value", Value: 100}, block.Below)
	assert.Equal(t, chart.MarkBar, block.Chart.Mark)
	assert.Equal(t, &chart.Domain{Min: 0, Max: 100, Clamp: true}, block.Chart.X.Domain)

	assert.Equal(t, map[string]string{
		"ocarbon":       "ocarbon.parquet",
		"soilgrid_corr": "soilgrid_corr.csv",
	}, Registry(page))
}

func TestParsePageRejectsUnknownKeys(t *testing.T) {
	_, err := ParsePage([]byte("title: x\ndatasets: []\nblocks: []\nfooter: nope\n"))
	assert.Error(t, err)
}

func TestParsePageValidates(t *testing.T) {
	_, err := ParsePage([]byte("title: x\ndatasets: []\nblocks:\n  - kind: chart\n    dataset: ghost\n    chart: {mark: bar, x: {field: v}}\n"))
	assert.ErrorIs(t, err, core.ErrInvalidPage)
}

func TestParsePageRejectsUndeclaredPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		where string
	}{
		{"typo in text", "title: x\ndatasets: [{id: ocarbon, source: o.parquet}]\nmetrics: [{name: sites, kind: count, dataset: ocarbon}]\nblocks:\n  - kind: text\n    text: \"{site} sites\"\n", "block 0 (text)"},
		{"title", "title: \"{total}\"\ndatasets: []\nblocks: []\n", "title"},
		{"caption", "title: x\ndatasets: []\nblocks:\n  - kind: image\n    path: a.png\n    caption: \"{n} points\"\n", "block 0 (image)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePage([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidPage)
			assert.ErrorIs(t, err, core.ErrUnknownPlaceholder)
			assert.Contains(t, err.Error(), tt.where)
		})
	}

	page, err := ParsePage([]byte("title: x\ndatasets: []\nblocks:\n  - kind: text\n    text: \"literal {{braces}}\"\n"))
	require.NoError(t, err)
	assert.Len(t, page.Blocks, 1)
}

func TestLoadPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appendix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	page, err := LoadPage(path)
	require.NoError(t, err)
	assert.Len(t, page.Blocks, 3)

	_, err = LoadPage(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedAppendixPage(t *testing.T) {
	page, err := LoadPage(filepath.Join("..", "..", "pages", "appendix.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "On delivering Appendix 1", page.Title)
	assert.Equal(t, []string{"ocarbon", "soilgrid_corr", "soilgrid_corr_buffered", "olm_soilgrids_merged"}, page.DatasetIDs())
	require.Len(t, page.Blocks, 13)
	assert.Equal(t, domain.BlockChart, page.Blocks[4].Kind)
	require.NotNil(t, page.Blocks[4].Chart.X.Domain)
	assert.True(t, page.Blocks[4].Chart.X.Domain.Clamp)
	assert.Equal(t, chart.MarkPoint, page.Blocks[9].Chart.Mark)
}
