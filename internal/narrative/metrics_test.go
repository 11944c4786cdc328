package narrative

import (
	"testing"

	"gonarrate/domain/core"
	domain "gonarrate/domain/narrative"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	datasets := fixtureLoader(t)

	values, err := ComputeMetrics(datasets, []domain.Metric{
		{Name: "n", Kind: domain.MetricCount, Dataset: "ocarbon"},
		{Name: "mean", Kind: domain.MetricMean, Dataset: "ocarbon", Column: "value"},
		{Name: "median", Kind: domain.MetricMedian, Dataset: "ocarbon", Column: "value", Decimals: one()},
		{Name: "sd", Kind: domain.MetricStdDev, Dataset: "ocarbon", Column: "value"},
		{Name: "low", Kind: domain.MetricCountBelow, Dataset: "ocarbon", Column: "value", Threshold: 100},
		{Name: "r", Kind: domain.MetricCorrelation, Dataset: "ocarbon", Column: "x", Y: "y"},
		{Name: "slope", Kind: domain.MetricSlope, Dataset: "ocarbon", Column: "x", Y: "y"},
		{Name: "r2", Kind: domain.MetricRSquared, Dataset: "ocarbon", Column: "x", Y: "y", Decimals: one()},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"n":      "3",
		"mean":   "84.67",
		"median": "99.0",
		"sd":     "73.55",
		"low":    "2",
		"r":      "1.000",
		"slope":  "2.000",
		"r2":     "1.0",
	}, values)
}

func TestComputeMetricsFailure(t *testing.T) {
	datasets := fixtureLoader(t)

	values, err := ComputeMetrics(datasets, []domain.Metric{
		{Name: "n", Kind: domain.MetricCount, Dataset: "ocarbon"},
		{Name: "bad", Kind: domain.MetricMedian, Dataset: "ocarbon", Column: "site"},
	})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.Nil(t, values)

	_, err = ComputeMetrics(datasets, []domain.Metric{
		{Name: "n", Kind: domain.MetricCount, Dataset: "missing"},
	})
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}
