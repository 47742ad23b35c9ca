// Package raster defines the Grid type, its extent geometry, resampling
// methods and sentinel errors.
package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Sentinel errors for raster operations.
var (
	// ErrInvalidCellSize indicates a non-finite or non-positive cell size.
	ErrInvalidCellSize = errors.New("raster: cell size must be finite and positive")
	// ErrInvalidExtent indicates an extent with non-finite bounds or no area.
	ErrInvalidExtent = errors.New("raster: extent must be finite with MaxX > MinX and MaxY > MinY")
	// ErrEmptyGrid indicates a grid with no rows or no columns.
	ErrEmptyGrid = errors.New("raster: grid must have at least one row and one column")
	// ErrNonRectangular indicates input rows of differing lengths.
	ErrNonRectangular = errors.New("raster: all rows must have the same length")
	// ErrShapeMismatch indicates two grids (or a grid and its input) do not share a shape.
	ErrShapeMismatch = errors.New("raster: grid shapes differ")
	// ErrReleased indicates a read from a grid whose values were released.
	ErrReleased = errors.New("raster: grid values have been released")
	// ErrUnknownMethod indicates an unsupported resampling method.
	ErrUnknownMethod = errors.New("raster: unknown resampling method")
)

// DefaultNoData is the sentinel used by constant grids and by callers
// that have no file-specific no-data value.
const DefaultNoData = -9999.0

// Extent is the bounding rectangle of a spatial dataset in world units.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewExtent returns the extent (minX, minY, maxX, maxY).
func NewExtent(minX, minY, maxX, maxY float64) Extent {
	return Extent{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// ExtentFromRect converts an r2.Rect; an empty rect yields the zero Extent.
func ExtentFromRect(r r2.Rect) Extent {
	if r.IsEmpty() {
		return Extent{}
	}
	return Extent{MinX: r.X.Lo, MinY: r.Y.Lo, MaxX: r.X.Hi, MaxY: r.Y.Hi}
}

// Rect returns the extent as an r2.Rect.
func (e Extent) Rect() r2.Rect {
	return r2.Rect{X: r1.Interval{Lo: e.MinX, Hi: e.MaxX}, Y: r1.Interval{Lo: e.MinY, Hi: e.MaxY}}
}

// Width is MaxX-MinX.
func (e Extent) Width() float64 { return e.MaxX - e.MinX }

// Height is MaxY-MinY.
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// IsEmpty reports whether the extent has no area. NaN bounds count as empty.
func (e Extent) IsEmpty() bool {
	return !(e.MaxX > e.MinX && e.MaxY > e.MinY)
}

// IsFinite reports whether all four bounds are finite numbers.
func (e Extent) IsFinite() bool {
	for _, v := range [...]float64{e.MinX, e.MinY, e.MaxX, e.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Intersect returns the geometric intersection of e and o.
// Disjoint or touching extents give an empty result.
func (e Extent) Intersect(o Extent) Extent {
	return ExtentFromRect(e.Rect().Intersection(o.Rect()))
}

// Contains reports whether (x,y) lies inside e; the west and north edges are
// inclusive, the east and south edges exclusive, matching cell ownership.
func (e Extent) Contains(x, y float64) bool {
	return x >= e.MinX && x < e.MaxX && y > e.MinY && y <= e.MaxY
}

// ApproxEqual reports whether every bound of e and o differs by at most tol.
func (e Extent) ApproxEqual(o Extent, tol float64) bool {
	return math.Abs(e.MinX-o.MinX) <= tol && math.Abs(e.MinY-o.MinY) <= tol &&
		math.Abs(e.MaxX-o.MaxX) <= tol && math.Abs(e.MaxY-o.MaxY) <= tol
}

func (e Extent) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// Method selects how Resample aggregates source cells when coarsening.
// Refining a grid always replicates the containing coarse cell.
type Method int

const (
	// Nearest takes the source cell containing the target cell centre.
	Nearest Method = iota
	// MostOccurring takes the modal value; ties go to the value met first in row-major order.
	MostOccurring
	// Minimum takes the smallest contributing value.
	Minimum
	// Maximum takes the largest contributing value.
	Maximum
	// Mean takes the arithmetic mean of contributing values.
	Mean
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case MostOccurring:
		return "most-occurring"
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Grid is a rectangular raster of float64 cells with a fixed extent and cell size.
// Row 0 is the north edge; values are stored row-major.
// Shape is immutable once built; values may be changed with SetValue/SetCell
// and dropped with ReleaseValues.
//
// A constant grid (see Constant) has no extent and returns the same value at
// every coordinate; it models settings given as a single number.
type Grid struct {
	// Name identifies the grid in logs and results, typically its file path.
	Name string

	extent               Extent
	cellSizeX, cellSizeY float64
	rows, cols           int
	noData               float64
	values               []float64
	released             bool

	constant   bool
	constValue float64
}

// Stats summarises the data cells of a grid.
type Stats struct {
	Count         int
	Min, Max, Sum float64
}

// Mean returns Sum/Count, or NaN for an empty summary.
func (s Stats) Mean() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Count)
}
