// Package raster provides Grid, the rectangular float64 raster underlying
// every check.
//
// What:
//
//   - Grid holds an Extent, X/Y cell sizes, a no-data sentinel and row-major
//     values (row 0 = north).
//   - GetValue/SetValue map world coordinates to cells; reads outside the
//     extent return NoData, writes outside the extent are ignored.
//   - Resample coarsens (Nearest, MostOccurring, Minimum, Maximum, Mean) or
//     refines (block replication), per axis. The east and south edges snap
//     outward to whole target cells.
//   - Add, Multiply and Scale work cell-wise with NoData propagation.
//   - ReleaseValues drops the values and keeps the header.
//
// Memory:
//
// National-scale grids are large. Release them as soon as a check is done
// with them:
//
//	g, _, err := gridStore.LoadGrid(ctx, path)
//	if err != nil {
//		return err
//	}
//	defer g.ReleaseValues()
//
// Errors:
//
//   - ErrInvalidCellSize, ErrInvalidExtent, ErrEmptyGrid: bad construction input.
//   - ErrNonRectangular, ErrShapeMismatch: input rows or operands do not line up.
//   - ErrReleased: read from a released grid.
//   - ErrUnknownMethod: unsupported resampling method.
package raster
