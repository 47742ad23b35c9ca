package cursor

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/imodcheck/raster"
)

// Cursor walks the common region of several grids in row-major order
// (north to south, west to east) at the finest participating resolution.
//
// Typical use:
//
//	c, _ := cursor.New(cursor.WithAreaOfInterest(aoi))
//	_ = c.AddGrid(heads)
//	_ = c.AddGrid(bottom)
//	if err := c.Reset(); err != nil { ... }
//	if c.IsEmptyExtent() { log and skip }
//	for ; c.IsInsideExtent(); c.MoveNext() {
//		h, _ := c.CellValue(heads)
//		...
//	}
//
// A Cursor holds its grids by reference and never releases them. It is not
// safe for concurrent use; use one cursor per goroutine.
type Cursor struct {
	opts  Options
	grids []*raster.Grid

	started      bool
	empty        bool
	extent       raster.Extent
	stepX, stepY float64
	rows, cols   int
	row, col     int
}

// New creates a cursor. Returns ErrOptionViolation for invalid options.
func New(opts ...Option) (*Cursor, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	return &Cursor{opts: o}, nil
}

// AddGrid registers g. It must be called before the first Reset.
// Constant grids take part in value reads but not in extent or step size.
func (c *Cursor) AddGrid(g *raster.Grid) error {
	if g == nil {
		return ErrNilGrid
	}
	if c.started {
		return fmt.Errorf("%w: %s", ErrStarted, g.Name)
	}
	c.grids = append(c.grids, g)
	return nil
}

// Grids returns the participating grids in registration order.
func (c *Cursor) Grids() []*raster.Grid {
	out := make([]*raster.Grid, len(c.grids))
	copy(out, c.grids)
	return out
}

// Reset computes the iteration extent and step and rewinds to the
// north-west cell.
//
// The extent is the intersection of the area of interest (if any) and every
// non-constant grid's extent; the step is the smallest cell size per axis.
// An empty intersection is not an error: IsEmptyExtent reports true and
// IsInsideExtent false.
func (c *Cursor) Reset() error {
	c.started = true
	c.row, c.col = 0, 0

	var (
		ext   raster.Extent
		have  bool
		stepX = math.Inf(1)
		stepY = math.Inf(1)
	)
	if aoi := c.opts.AreaOfInterest; aoi != nil {
		ext, have = *aoi, true
	}
	nGrids := 0
	for _, g := range c.grids {
		if g.IsConstant() {
			continue
		}
		nGrids++
		if have {
			ext = ext.Intersect(g.Extent())
		} else {
			ext, have = g.Extent(), true
		}
		stepX = math.Min(stepX, g.CellSizeX())
		stepY = math.Min(stepY, g.CellSizeY())
	}
	if nGrids == 0 {
		c.empty = true
		return ErrNoGrids
	}
	if !validStep(stepX) || !validStep(stepY) {
		c.empty = true
		return fmt.Errorf("%w: (%g,%g)", ErrInvalidStep, stepX, stepY)
	}

	c.extent = ext
	c.stepX, c.stepY = stepX, stepY
	c.rows, c.cols = 0, 0
	if !ext.IsEmpty() {
		c.rows = int(math.Round(ext.Height() / stepY))
		c.cols = int(math.Round(ext.Width() / stepX))
	}
	c.empty = c.rows == 0 || c.cols == 0

	return nil
}

func validStep(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}

// IsEmptyExtent reports whether the last Reset produced no cells.
// Before the first Reset it reports true.
func (c *Cursor) IsEmptyExtent() bool { return !c.started || c.empty }

// IsInsideExtent reports whether the cursor points at a cell.
func (c *Cursor) IsInsideExtent() bool {
	return c.started && !c.empty && c.row < c.rows
}

// MoveNext advances one column, wrapping to the next row at the line end.
// It reports whether the cursor is still inside the extent.
func (c *Cursor) MoveNext() bool {
	if !c.IsInsideExtent() {
		return false
	}
	c.col++
	if c.col >= c.cols {
		c.col = 0
		c.row++
	}
	return c.IsInsideExtent()
}

// X returns the world x of the current cell centre.
func (c *Cursor) X() float64 { return c.extent.MinX + (float64(c.col)+0.5)*c.stepX }

// Y returns the world y of the current cell centre.
func (c *Cursor) Y() float64 { return c.extent.MaxY - (float64(c.row)+0.5)*c.stepY }

// Row returns the current iteration row.
func (c *Cursor) Row() int { return c.row }

// Col returns the current iteration column.
func (c *Cursor) Col() int { return c.col }

// Rows returns the number of iteration rows.
func (c *Cursor) Rows() int { return c.rows }

// Cols returns the number of iteration columns.
func (c *Cursor) Cols() int { return c.cols }

// Extent returns the iteration extent computed by Reset.
func (c *Cursor) Extent() raster.Extent { return c.extent }

// StepX returns the iteration cell width.
func (c *Cursor) StepX() float64 { return c.stepX }

// StepY returns the iteration cell height.
func (c *Cursor) StepY() float64 { return c.stepY }

// Each resets the cursor and calls fn once per cell. ctx is polled before
// every cell; its error is returned as is. An error from fn stops the walk
// and is returned wrapped with the cell coordinate.
func (c *Cursor) Each(ctx context.Context, fn func(c *Cursor) error) error {
	if err := c.Reset(); err != nil {
		return err
	}
	for ; c.IsInsideExtent(); c.MoveNext() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return fmt.Errorf("cell (%g,%g): %w", c.X(), c.Y(), err)
		}
	}
	return nil
}
