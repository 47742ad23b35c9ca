// Package gridgraph treats a raster neighbourhood as a graph of same-valued
// cells to find orphan cells.
//
// What:
//
//   - An orphan is a cell whose value differs from its surroundings but is
//     not part of a larger contiguous same-valued feature: a stray 5 in a
//     field of 10s, as opposed to the edge of a genuine zone of 5s.
//   - Analyzer.IsOrphanCell reads (2r+1)² windows through a cursor.Cursor and
//     runs two breadth-first flood fills with an explicit level counter, so
//     plateaus terminate.
//
// Why:
//
//   - Layer-property grids (conductivity, resistance, boundary codes) are
//     zoned; a single deviating cell is usually a digitising error.
//
// Complexity:
//
//   - Analyze: O(N·(2r+1)²) for the N cells reached, with
//     N ≤ (2·r·MaxRecursiveLevel+1)².
//
// Options (OrphanOptions):
//
//   - Radius, MaxRecursiveLevel, Precision: neighbourhood shape and rounding.
//   - MaxMainConnectionCount, MinMostOccurringCount, MaxOtherValueCount,
//     ValueMargin: classification thresholds.
//   - Conn: Conn4 or Conn8 seed neighbours.
//
// Errors:
//
//   - ErrOptionViolation: options out of range.
//   - ErrConstantGrid: a constant grid has no neighbourhood.
//   - ErrNilInput: nil cursor or grid.
package gridgraph
