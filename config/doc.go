// Package config decodes the YAML run configuration.
//
// What:
//
//   - Config: area of interest, NoData reporting, results database and one
//     list per check kind (orphan, range, riverLevel, wellSeries).
//   - Setting: a parameter given as a number or as a grid path, so a bound
//     can vary per cell.
//
// Errors:
//
//   - ErrInvalidConfig: unknown keys, malformed values, missing inputs,
//     negative thresholds or duplicate check names. Validate joins every
//     problem found, not just the first.
package config
