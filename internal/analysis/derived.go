// Package analysis computes derived views over loaded datasets. Every function
// is pure: inputs are never mutated and results are recomputed on each call.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonarrate/domain/core"
	"gonarrate/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Point is one (x, y) observation; NaN marks a missing coordinate
type Point struct {
	X float64
	Y float64
}

// Regression is an ordinary-least-squares fit y = Intercept + Slope*x
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// RowCount returns the number of records in d
func RowCount(d *dataset.Dataset) int {
	return d.RowCount()
}

// numericColumn fetches a numeric column or fails with ErrColumnNotFound
func numericColumn(d *dataset.Dataset, column string) ([]float64, error) {
	col, ok := d.Column(column)
	if !ok || col.Kind != dataset.KindNumeric {
		return nil, core.NewColumnNotFoundError(d.Name(), column)
	}
	return d.Float64s(column)
}

// Mean is the arithmetic mean of the non-missing values of column. A dataset
// with no rows, or whose column holds only missing values, fails with
// ErrEmptyDataset rather than yielding NaN. Only NaN counts as missing; an
// infinite value fails with ErrNonFiniteValue.
func Mean(d *dataset.Dataset, column string) (float64, error) {
	values, err := numericColumn(d, column)
	if err != nil {
		return 0, err
	}
	valid, err := nonMissing(d, column, values)
	if err != nil {
		return 0, err
	}
	m, err := stats.Mean(valid)
	if err != nil {
		if errors.Is(err, stats.EmptyInputErr) {
			return 0, fmt.Errorf("mean of %s.%s: %w", d.Name(), column, core.ErrEmptyDataset)
		}
		return 0, fmt.Errorf("mean of %s.%s: %w", d.Name(), column, err)
	}
	return m, nil
}

// FilterBelow returns the rows whose column value is strictly below threshold,
// in original order. Missing values never qualify.
func FilterBelow(d *dataset.Dataset, column string, threshold float64) (*dataset.Dataset, error) {
	values, err := numericColumn(d, column)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0, len(values))
	for i, v := range values {
		if v < threshold {
			rows = append(rows, i)
		}
	}
	return d.SelectRows(fmt.Sprintf("%s[%s<%g]", d.Name(), column, threshold), rows), nil
}

// Points pairs two numeric columns row by row
func Points(d *dataset.Dataset, xcol, ycol string) ([]Point, error) {
	xs, err := numericColumn(d, xcol)
	if err != nil {
		return nil, err
	}
	ys, err := numericColumn(d, ycol)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points, nil
}

// ValidPairs splits points into coordinate slices, dropping any pair with a
// missing or infinite coordinate
func ValidPairs(points []Point) (xs, ys []float64) {
	xs = make([]float64, 0, len(points))
	ys = make([]float64, 0, len(points))
	for _, p := range points {
		if isFinite(p.X) && isFinite(p.Y) {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	return xs, ys
}

// LinearRegression fits ordinary least squares to the valid pairs. Fewer than
// two valid pairs, or no spread in x, fails with ErrInsufficientData.
func LinearRegression(points []Point) (Regression, error) {
	xs, ys := ValidPairs(points)
	if len(xs) < 2 {
		return Regression{}, core.NewInsufficientDataError(fmt.Sprintf("%d valid pairs, need at least 2", len(xs)))
	}
	if stat.Variance(xs, nil) == 0 {
		return Regression{}, core.NewInsufficientDataError("x values have no spread")
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(r2) {
		// constant y is fitted exactly by a flat line
		r2 = 1
	}
	return Regression{Slope: slope, Intercept: intercept, RSquared: r2, N: len(xs)}, nil
}

// RegressColumns fits ycol on xcol of d
func RegressColumns(d *dataset.Dataset, xcol, ycol string) (Regression, error) {
	points, err := Points(d, xcol, ycol)
	if err != nil {
		return Regression{}, err
	}
	return LinearRegression(points)
}

// Correlation is the Pearson coefficient of the valid pairs of two columns
func Correlation(d *dataset.Dataset, xcol, ycol string) (float64, error) {
	points, err := Points(d, xcol, ycol)
	if err != nil {
		return 0, err
	}
	xs, ys := ValidPairs(points)
	if len(xs) < 2 {
		return 0, core.NewInsufficientDataError(fmt.Sprintf("%d valid pairs, need at least 2", len(xs)))
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, core.NewInsufficientDataError("a column has no spread")
	}
	r, err := stats.Correlation(xs, ys)
	if err != nil {
		return 0, core.NewInsufficientDataError(err.Error())
	}
	return r, nil
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

// nonMissing drops NaN cells and rejects infinite ones
func nonMissing(d *dataset.Dataset, column string, values []float64) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for row, v := range values {
		switch {
		case math.IsNaN(v):
		case math.IsInf(v, 0):
			return nil, core.NewNonFiniteValueError(d.Name(), column, row)
		default:
			out = append(out, v)
		}
	}
	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
