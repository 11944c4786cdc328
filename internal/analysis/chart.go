package analysis

import (
	"fmt"
	"math"

	"gonarrate/domain/chart"
	"gonarrate/domain/dataset"
)

// ChartData derives everything a chart renderer needs from d according to
// spec: bins for bar and histogram marks, valid points for point marks and
// the fitted line when a regression overlay is requested.
func ChartData(d *dataset.Dataset, spec chart.Spec) (chart.Data, error) {
	if err := spec.Validate(); err != nil {
		return chart.Data{}, err
	}
	data := chart.Data{Spec: spec}

	switch spec.Mark {
	case chart.MarkBar, chart.MarkHistogram:
		values, err := numericColumn(d, spec.X.Field)
		if err != nil {
			return chart.Data{}, err
		}
		bins, err := Histogram(values, spec.BinCount(), spec.X.Domain)
		if err != nil {
			return chart.Data{}, fmt.Errorf("chart %q on %s: %w", spec.Title, d.Name(), err)
		}
		data.Bins = bins

	case chart.MarkPoint:
		points, err := Points(d, spec.X.Field, spec.Y.Field)
		if err != nil {
			return chart.Data{}, err
		}
		xs, ys := ValidPairs(points)
		data.Points = make([]chart.XY, len(xs))
		for i := range xs {
			data.Points[i] = chart.XY{X: clampTo(xs[i], spec.X.Domain), Y: clampTo(ys[i], spec.Y.Domain)}
		}
		if spec.Regression {
			fit, err := LinearRegression(points)
			if err != nil {
				return chart.Data{}, fmt.Errorf("chart %q on %s: %w", spec.Title, d.Name(), err)
			}
			lo, hi := xs[0], xs[0]
			for _, x := range xs {
				lo = math.Min(lo, x)
				hi = math.Max(hi, x)
			}
			data.Fit = &chart.Line{
				Slope:     fit.Slope,
				Intercept: fit.Intercept,
				RSquared:  fit.RSquared,
				XMin:      lo,
				XMax:      hi,
			}
		}
	}
	return data, nil
}

func clampTo(v float64, domain *chart.Domain) float64 {
	if domain == nil || !domain.Clamp {
		return v
	}
	return math.Max(domain.Min, math.Min(domain.Max, v))
}
