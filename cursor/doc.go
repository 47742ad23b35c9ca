// Package cursor aligns several raster grids of possibly different extent
// and resolution onto one iteration grid and walks it cell by cell.
//
// What:
//
//   - Reset intersects the grids' extents (and an optional area of interest)
//     and picks the finest cell size as the step.
//   - MoveNext/IsInsideExtent walk row-major: north to south, west to east.
//     The order is fixed so outputs and fixtures are reproducible.
//   - CellValue reads any participating grid at the cursor coordinate.
//     Coarser grids yield the containing cell; nothing is interpolated.
//   - CellValues/WindowAt return a (2r+1)² neighbourhood rounded to a
//     precision, used by the orphan analysis in gridgraph.
//   - CheckExtent logs grids whose extent or cell size deviates.
//
// Cancellation:
//
// Each polls a context.Context once per cell; hand-written loops should do the
// same.
//
// Errors:
//
//   - ErrNilGrid, ErrStarted: misuse of AddGrid.
//   - ErrNoGrids, ErrInvalidStep: Reset cannot derive an iteration grid.
//   - ErrOptionViolation: invalid Option passed to New.
//   - raster.ErrReleased (wrapped): a participating grid was released.
package cursor
