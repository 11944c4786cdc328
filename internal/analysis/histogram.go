package analysis

import (
	"fmt"
	"math"

	"gonarrate/domain/chart"
	"gonarrate/domain/core"
)

// Histogram bins values into equal-width buckets. Without a domain the range
// is the data's min/max. With a domain, out-of-range values are pinned to the
// edge buckets when clamping and dropped otherwise. Missing and infinite
// values are skipped.
func Histogram(values []float64, bins int, domain *chart.Domain) ([]chart.Bin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram needs a positive bin count, got %d", bins)
	}
	valid := finite(values)
	if len(valid) == 0 {
		return nil, fmt.Errorf("histogram: %w", core.ErrEmptyDataset)
	}

	lo, hi := valid[0], valid[0]
	for _, v := range valid {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if domain != nil {
		lo, hi = domain.Min, domain.Max
	}
	if hi == lo {
		// a single distinct value gets one unit-wide bucket
		hi = lo + 1
	}

	width := (hi - lo) / float64(bins)
	out := make([]chart.Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range valid {
		if v < lo || v > hi {
			if domain == nil || !domain.Clamp {
				continue
			}
			v = math.Max(lo, math.Min(hi, v))
		}
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}
