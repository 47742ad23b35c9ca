// Package check runs validation rules over model input files.
//
// What:
//
//   - Check: a named rule with Run(ctx, *Env).
//   - Env: the shared services (grid, point and network stores, results
//     recorder, logger) and run-wide settings.
//   - Runner: runs checks in order, one OpenTelemetry span each. A
//     ConfigurationError skips the check, other errors fail it, and the
//     remaining checks still run. Cancelling ctx stops the run.
//   - OrphanCheck, RangeCheck, RiverLevelCheck, WellSeriesCheck.
//
// Error classes:
//
//   - data-quality issues (a missing series, a grid absent from a layer
//     list) are logged at Warn and processing continues;
//   - ConfigurationError aborts one check;
//   - anything else is a processing failure wrapped with file and cell.
package check
