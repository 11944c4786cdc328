package narrative

import (
	"fmt"

	"gonarrate/domain/core"
	"gonarrate/domain/dataset"
	domain "gonarrate/domain/narrative"
	"gonarrate/internal/analysis"
)

// ComputeMetrics evaluates every metric and formats it for substitution.
// The first failure aborts the whole computation.
func ComputeMetrics(datasets map[string]*dataset.Dataset, metrics []domain.Metric) (map[string]string, error) {
	values := make(map[string]string, len(metrics))
	for _, m := range metrics {
		v, err := computeMetric(datasets, m)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Name, err)
		}
		values[m.Name] = v
	}
	return values, nil
}

func computeMetric(datasets map[string]*dataset.Dataset, m domain.Metric) (string, error) {
	d, ok := datasets[m.Dataset]
	if !ok {
		return "", core.NewDataUnavailableError(m.Dataset, nil)
	}

	switch m.Kind {
	case domain.MetricCount:
		return FormatThousands(analysis.RowCount(d)), nil

	case domain.MetricMean:
		mean, err := analysis.Mean(d, m.Column)
		if err != nil {
			return "", err
		}
		return FormatFixed(mean, decimals(m, 2)), nil

	case domain.MetricMedian, domain.MetricStdDev:
		summary, err := analysis.Summarize(d, m.Column)
		if err != nil {
			return "", err
		}
		if m.Kind == domain.MetricMedian {
			return FormatFixed(summary.Median, decimals(m, 2)), nil
		}
		return FormatFixed(summary.StdDev, decimals(m, 2)), nil

	case domain.MetricCountBelow:
		below, err := analysis.FilterBelow(d, m.Column, m.Threshold)
		if err != nil {
			return "", err
		}
		return FormatThousands(analysis.RowCount(below)), nil

	case domain.MetricCorrelation:
		r, err := analysis.Correlation(d, m.Column, m.Y)
		if err != nil {
			return "", err
		}
		return FormatFixed(r, decimals(m, 3)), nil

	case domain.MetricSlope, domain.MetricIntercept, domain.MetricRSquared:
		fit, err := analysis.RegressColumns(d, m.Column, m.Y)
		if err != nil {
			return "", err
		}
		switch m.Kind {
		case domain.MetricSlope:
			return FormatFixed(fit.Slope, decimals(m, 3)), nil
		case domain.MetricIntercept:
			return FormatFixed(fit.Intercept, decimals(m, 3)), nil
		default:
			return FormatFixed(fit.RSquared, decimals(m, 3)), nil
		}
	}
	return "", fmt.Errorf("unknown metric kind %q", m.Kind)
}

func decimals(m domain.Metric, fallback int) int {
	if m.Decimals != nil {
		return *m.Decimals
	}
	return fallback
}
