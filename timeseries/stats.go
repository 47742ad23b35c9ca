package timeseries

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// finite returns the non-NaN values of vs, sorted ascending.
func finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Mean returns the arithmetic mean of the non-NaN values.
func Mean(vs []float64) (float64, error) {
	xs := finite(vs)
	if len(xs) == 0 {
		return 0, ErrEmptySeries
	}
	return stat.Mean(xs, nil), nil
}

// Quantile returns the q-quantile (0 ≤ q ≤ 1) of the non-NaN values, linearly
// interpolated between the order statistics at k/n (stat.LinInterp).
func Quantile(vs []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, fmt.Errorf("%w: %g", ErrQuantileRange, q)
	}
	sorted := finite(vs)
	if len(sorted) == 0 {
		return 0, ErrEmptySeries
	}
	return stat.Quantile(q, stat.LinInterp, sorted, nil), nil
}

// OutlierRange returns the Tukey fences [Q1 - k·IQR, Q3 + k·IQR] of the
// non-NaN values. k = 1.5 gives the usual outlier bounds.
func OutlierRange(vs []float64, k float64) (lo, hi float64, err error) {
	sorted := finite(vs)
	if len(sorted) == 0 {
		return 0, 0, ErrEmptySeries
	}
	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, nil
}
