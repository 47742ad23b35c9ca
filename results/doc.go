// Package results collects the detail records produced by checks.
//
// A Record is one finding (check name, category, layer, location, value,
// message). Recorder has two implementations: Memory for tests and small
// runs, and SQLiteRecorder, which writes each batch in one transaction to a
// SQLite file. NaN values round-trip through SQLite as NULL.
package results
