package raster

import (
	"fmt"
	"math"
)

// New allocates a grid covering extent with the given cell sizes, every cell
// set to noData. rows = round(height/cellSizeY), cols = round(width/cellSizeX).
// Returns ErrInvalidCellSize, ErrInvalidExtent or ErrEmptyGrid on bad input.
// Complexity: O(rows×cols) time and memory.
func New(extent Extent, cellSizeX, cellSizeY, noData float64) (*Grid, error) {
	if !validCellSize(cellSizeX) || !validCellSize(cellSizeY) {
		return nil, fmt.Errorf("%w: (%g,%g)", ErrInvalidCellSize, cellSizeX, cellSizeY)
	}
	if !extent.IsFinite() || extent.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExtent, extent)
	}
	rows := int(math.Round(extent.Height() / cellSizeY))
	cols := int(math.Round(extent.Width() / cellSizeX))
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyGrid
	}
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = noData
	}

	return &Grid{
		extent:    extent,
		cellSizeX: cellSizeX,
		cellSizeY: cellSizeY,
		rows:      rows,
		cols:      cols,
		noData:    noData,
		values:    values,
	}, nil
}

// FromRows builds a grid from a rectangular [][]float64 (row 0 = north).
// The input is deep-copied; its dimensions must match those implied by
// extent and cell size, otherwise ErrShapeMismatch is returned.
func FromRows(extent Extent, cellSizeX, cellSizeY, noData float64, rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	w := len(rows[0])
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	g, err := New(extent, cellSizeX, cellSizeY, noData)
	if err != nil {
		return nil, err
	}
	if g.rows != len(rows) || g.cols != w {
		return nil, fmt.Errorf("%w: extent implies %dx%d, input is %dx%d",
			ErrShapeMismatch, g.rows, g.cols, len(rows), w)
	}
	for r, row := range rows {
		copy(g.values[r*g.cols:(r+1)*g.cols], row)
	}

	return g, nil
}

// Constant returns a grid without extent that yields v everywhere.
func Constant(v float64) *Grid {
	return &Grid{
		Name:       fmt.Sprintf("constant(%g)", v),
		noData:     DefaultNoData,
		constant:   true,
		constValue: v,
	}
}

func validCellSize(cs float64) bool {
	return cs > 0 && !math.IsInf(cs, 0) && !math.IsNaN(cs)
}

// Extent returns the grid's bounding rectangle (zero for constant grids).
func (g *Grid) Extent() Extent { return g.extent }

// CellSizeX returns the cell width.
func (g *Grid) CellSizeX() float64 { return g.cellSizeX }

// CellSizeY returns the cell height.
func (g *Grid) CellSizeY() float64 { return g.cellSizeY }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// NoData returns the no-data sentinel.
func (g *Grid) NoData() float64 { return g.noData }

// IsConstant reports whether g was built by Constant.
func (g *Grid) IsConstant() bool { return g.constant }

// IsReleased reports whether ReleaseValues has been called.
func (g *Grid) IsReleased() bool { return g.released }

// IsNoData reports whether v is this grid's sentinel or NaN.
func (g *Grid) IsNoData(v float64) bool {
	return v == g.noData || math.IsNaN(v)
}

// InBounds reports whether (row, col) addresses a cell.
// Complexity: O(1).
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// RowCol maps a world coordinate to the cell containing it.
// ok is false outside the extent and for constant grids.
func (g *Grid) RowCol(x, y float64) (row, col int, ok bool) {
	if g.constant || !g.extent.Contains(x, y) {
		return 0, 0, false
	}
	col = int(math.Floor((x - g.extent.MinX) / g.cellSizeX))
	row = int(math.Floor((g.extent.MaxY - y) / g.cellSizeY))
	if !g.InBounds(row, col) {
		return 0, 0, false
	}

	return row, col, true
}

// CellCenter returns the world coordinate of the centre of (row, col).
func (g *Grid) CellCenter(row, col int) (x, y float64) {
	x = g.extent.MinX + (float64(col)+0.5)*g.cellSizeX
	y = g.extent.MaxY - (float64(row)+0.5)*g.cellSizeY
	return x, y
}

// index maps (row, col) to a row-major index.
func (g *Grid) index(row, col int) int {
	return row*g.cols + col
}

// Cell returns the stored value at (row, col), or NoData when out of bounds.
func (g *Grid) Cell(row, col int) (float64, error) {
	if g.constant {
		return g.constValue, nil
	}
	if g.released {
		return 0, fmt.Errorf("%w: %s", ErrReleased, g.Name)
	}
	if !g.InBounds(row, col) {
		return g.noData, nil
	}
	return g.values[g.index(row, col)], nil
}

// GetValue returns the value of the cell containing (x,y). Coordinates
// outside the extent yield NoData. Reading a released grid fails with ErrReleased.
func (g *Grid) GetValue(x, y float64) (float64, error) {
	if g.constant {
		return g.constValue, nil
	}
	if g.released {
		return 0, fmt.Errorf("%w: %s", ErrReleased, g.Name)
	}
	row, col, ok := g.RowCol(x, y)
	if !ok {
		return g.noData, nil
	}
	return g.values[g.index(row, col)], nil
}

// SetCell writes v at (row, col). It reports false when nothing was written.
func (g *Grid) SetCell(row, col int, v float64) bool {
	if g.constant || g.released || !g.InBounds(row, col) {
		return false
	}
	g.values[g.index(row, col)] = v
	return true
}

// SetValue writes v into the cell containing (x,y). Out-of-extent writes are
// routine while accumulating warning grids and are ignored; the return value
// reports whether a cell was written.
func (g *Grid) SetValue(x, y, v float64) bool {
	row, col, ok := g.RowCol(x, y)
	if !ok {
		return false
	}
	return g.SetCell(row, col, v)
}

// ReleaseValues drops the cell values and keeps the header, so the grid can
// still be saved as a stub or described in results.
func (g *Grid) ReleaseValues() {
	if g.constant {
		return
	}
	g.values = nil
	g.released = true
}

// Clone returns a deep copy with the same name, header and values.
func (g *Grid) Clone() (*Grid, error) {
	if g.released {
		return nil, fmt.Errorf("%w: %s", ErrReleased, g.Name)
	}
	c := *g
	if g.values != nil {
		c.values = make([]float64, len(g.values))
		copy(c.values, g.values)
	}
	return &c, nil
}

// EmptyLike returns a grid with g's header and every cell set to NoData.
// Checks use it for warning and error grids.
func (g *Grid) EmptyLike(name string) (*Grid, error) {
	if g.constant {
		return nil, fmt.Errorf("%w: constant grid has no extent", ErrInvalidExtent)
	}
	out, err := New(g.extent, g.cellSizeX, g.cellSizeY, g.noData)
	if err != nil {
		return nil, err
	}
	out.Name = name
	return out, nil
}

// SameShape reports whether g and o share extent (within half a cell), cell
// size and dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	if g.constant || o.constant {
		return false
	}
	tol := math.Min(g.cellSizeX, g.cellSizeY) / 2
	return g.rows == o.rows && g.cols == o.cols &&
		g.cellSizeX == o.cellSizeX && g.cellSizeY == o.cellSizeY &&
		g.extent.ApproxEqual(o.extent, tol)
}

// Stats summarises all data cells. Constant grids report a single value.
func (g *Grid) Stats() (Stats, error) {
	if g.constant {
		return Stats{Count: 1, Min: g.constValue, Max: g.constValue, Sum: g.constValue}, nil
	}
	if g.released {
		return Stats{}, fmt.Errorf("%w: %s", ErrReleased, g.Name)
	}
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range g.values {
		if g.IsNoData(v) {
			continue
		}
		s.Count++
		s.Sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.Count == 0 {
		s.Min, s.Max = math.NaN(), math.NaN()
	}
	return s, nil
}
