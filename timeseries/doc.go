// Package timeseries holds the value series attached to calculation points
// and observation wells, and a small statistics helper.
//
// What:
//
//   - Series: observations ordered by time; ValueAt uses step
//     interpolation (the last value at or before t), which is how model
//     output between stress-period boundaries is read.
//   - Mean, Quantile and OutlierRange (Tukey fences) skip NaN values.
//
// Errors:
//
//   - ErrEmptySeries: no usable values.
//   - ErrLengthMismatch: FromValues with unequal inputs.
//   - ErrQuantileRange: q outside [0,1].
package timeseries
