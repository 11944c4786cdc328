package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonarrate/domain/core"
	"gonarrate/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the shape of one numeric column
type Summary struct {
	Column   string  `json:"column"`
	N        int     `json:"n"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// Summarize computes descriptive statistics over the non-missing values of
// column. Outliers are counted with the 1.5 IQR rule. As with Mean, an
// infinite value fails the summary.
func Summarize(d *dataset.Dataset, column string) (Summary, error) {
	values, err := numericColumn(d, column)
	if err != nil {
		return Summary{}, err
	}
	valid, err := nonMissing(d, column, values)
	if err != nil {
		return Summary{}, err
	}
	if len(valid) == 0 {
		return Summary{}, fmt.Errorf("summary of %s.%s: %w", d.Name(), column, core.ErrEmptyDataset)
	}
	sort.Float64s(valid)

	s := Summary{
		Column:  column,
		N:       len(valid),
		Missing: len(values) - len(valid),
		Min:     valid[0],
		Max:     valid[len(valid)-1],
		Q25:     stat.Quantile(0.25, stat.Empirical, valid, nil),
		Q75:     stat.Quantile(0.75, stat.Empirical, valid, nil),
	}
	if s.Mean, err = stats.Mean(valid); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(valid); err != nil {
		return Summary{}, err
	}
	if len(valid) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(valid); err != nil {
			return Summary{}, err
		}
	}
	if len(valid) > 2 && s.StdDev > 0 {
		s.Skewness = stat.Skew(valid, nil)
	}

	iqr := s.Q75 - s.Q25
	lower, upper := s.Q25-1.5*iqr, s.Q75+1.5*iqr
	for _, v := range valid {
		if v < lower || v > upper {
			s.Outliers++
		}
	}
	if math.IsNaN(s.Skewness) {
		s.Skewness = 0
	}
	return s, nil
}
