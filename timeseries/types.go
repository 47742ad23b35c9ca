// Package timeseries defines time-stamped value series and sentinel errors.
package timeseries

import (
	"errors"
	"sort"
	"time"
)

// Sentinel errors for series construction and statistics.
var (
	// ErrEmptySeries indicates a statistic over no (non-NaN) values.
	ErrEmptySeries = errors.New("timeseries: series has no values")
	// ErrLengthMismatch indicates times and values of different lengths.
	ErrLengthMismatch = errors.New("timeseries: times and values differ in length")
	// ErrQuantileRange indicates a quantile outside [0,1].
	ErrQuantileRange = errors.New("timeseries: quantile must lie in [0,1]")
)

// Point is one observation.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is a sequence of observations ordered by increasing Time.
// Use Sort after building one from unordered input.
type Series []Point

// FromValues zips times and values into a sorted Series.
func FromValues(times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return nil, ErrLengthMismatch
	}
	s := make(Series, len(times))
	for i := range times {
		s[i] = Point{Time: times[i], Value: values[i]}
	}
	s.Sort()
	return s, nil
}

// Sort orders s by time, keeping the input order of equal timestamps.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// IsSorted reports whether s is ordered by non-decreasing time.
func (s Series) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// Values returns the observation values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// ValueAt returns the value of the last observation at or before t (step
// interpolation, never linear). ok is false when t precedes the series.
// Complexity: O(log n).
func (s Series) ValueAt(t time.Time) (v float64, ok bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].Time.After(t) })
	if i == 0 {
		return 0, false
	}
	return s[i-1].Value, true
}
