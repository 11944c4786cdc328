package narrative

import (
	"testing"

	"gonarrate/domain/chart"
	"gonarrate/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPage() *Page {
	return &Page{
		Title: "On delivering Appendix 1",
		Datasets: []DatasetRef{
			{ID: "ocarbon", Source: "ocarbon.parquet"},
			{ID: "soilgrid_corr", Source: "soilgrid_corr.csv"},
		},
		Metrics: []Metric{
			{Name: "n_points", Kind: MetricCount, Dataset: "ocarbon"},
			{Name: "mean_oc", Kind: MetricMean, Dataset: "ocarbon", Column: "avg_oc"},
			{Name: "fit_r2", Kind: MetricRSquared, Dataset: "soilgrid_corr", Column: "observed", Y: "predicted"},
		},
		Blocks: []Block{
			{Kind: BlockHeading, Level: 1, Text: "Soil carbon"},
			{Kind: BlockText, Text: "There are {n_points} points."},
			{Kind: BlockImage, Path: "images/oc.png", Caption: "Raster"},
			{Kind: BlockChart, Dataset: "ocarbon", Chart: &chart.Spec{Mark: chart.MarkHistogram, X: chart.Encoding{Field: "avg_oc"}}},
		},
	}
}

func TestPageValidateAcceptsWellFormedPage(t *testing.T) {
	p := validPage()
	require.NoError(t, p.Validate())
	assert.Equal(t, []string{"ocarbon", "soilgrid_corr"}, p.DatasetIDs())
}

func TestPageValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Page)
	}{
		{"duplicate dataset", func(p *Page) { p.Datasets = append(p.Datasets, DatasetRef{ID: "ocarbon", Source: "x"}) }},
		{"dataset without source", func(p *Page) { p.Datasets[0].Source = "" }},
		{"bad dataset id", func(p *Page) { p.Datasets[0].ID = "a/b" }},
		{"metric on unknown dataset", func(p *Page) { p.Metrics[0].Dataset = "missing" }},
		{"mean without column", func(p *Page) { p.Metrics[1].Column = "" }},
		{"regression metric without y", func(p *Page) { p.Metrics[2].Y = "" }},
		{"unknown metric kind", func(p *Page) { p.Metrics[0].Kind = "median" }},
		{"duplicate metric", func(p *Page) { p.Metrics = append(p.Metrics, p.Metrics[0]) }},
		{"heading level", func(p *Page) { p.Blocks[0].Level = 0 }},
		{"image without path", func(p *Page) { p.Blocks[2].Path = "" }},
		{"chart on unknown dataset", func(p *Page) { p.Blocks[3].Dataset = "nope" }},
		{"chart without spec", func(p *Page) { p.Blocks[3].Chart = nil }},
		{"invalid chart spec", func(p *Page) { p.Blocks[3].Chart = &chart.Spec{Mark: chart.MarkPoint, X: chart.Encoding{Field: "a"}} }},
		{"unknown block", func(p *Page) { p.Blocks = append(p.Blocks, Block{Kind: "video"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPage()
			tt.mutate(p)
			err := p.Validate()
			assert.ErrorIs(t, err, core.ErrInvalidPage)
		})
	}
}
