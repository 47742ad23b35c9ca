package cursor

import (
	"fmt"
	"math"

	"github.com/katalvlaran/imodcheck/raster"
)

// noData returns the value reported for a missing cell of g.
func (c *Cursor) noData(g *raster.Grid) float64 {
	if c.opts.NaNForNoData {
		return math.NaN()
	}
	return g.NoData()
}

// CellValue returns g's value at the current cursor coordinate, whatever
// g's own resolution: a coarser grid yields the single cell containing the
// point. Missing values come back as g's sentinel or NaN (WithNaNForNoData).
func (c *Cursor) CellValue(g *raster.Grid) (float64, error) {
	return c.valueAt(g, c.X(), c.Y())
}

func (c *Cursor) valueAt(g *raster.Grid, x, y float64) (float64, error) {
	v, err := g.GetValue(x, y)
	if err != nil {
		return 0, fmt.Errorf("cursor: read %s at (%g,%g): %w", g.Name, x, y, err)
	}
	if g.IsNoData(v) {
		return c.noData(g), nil
	}
	return v, nil
}

// CellValues returns the (2·radius+1)² window of g around the current cursor
// coordinate. See WindowAt.
func (c *Cursor) CellValues(g *raster.Grid, radius, precision int) (Window, error) {
	return c.WindowAt(g, c.X(), c.Y(), radius, precision)
}

// WindowAt returns the (2·radius+1)² window of g around (x,y), stepping by
// g's own cell size (the cursor step for constant grids). Values are rounded
// to precision decimals; a negative precision disables rounding. Cells
// outside g's extent are NoData, never zero.
func (c *Cursor) WindowAt(g *raster.Grid, x, y float64, radius, precision int) (Window, error) {
	if radius < 0 {
		radius = 0
	}
	sx, sy := g.CellSizeX(), g.CellSizeY()
	if g.IsConstant() {
		sx, sy = c.stepX, c.stepY
	}
	w := Window{Radius: radius, NoData: c.noData(g)}
	n := w.Size()
	w.Values = make([]float64, 0, n*n)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			v, err := c.valueAt(g, x+float64(dc)*sx, y-float64(dr)*sy)
			if err != nil {
				return Window{}, err
			}
			if !g.IsNoData(v) {
				v = Round(v, precision)
			}
			w.Values = append(w.Values, v)
		}
	}
	return w, nil
}

// Round rounds v to precision decimals; a negative precision returns v.
func Round(v float64, precision int) float64 {
	if precision < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// CheckExtent compares every non-constant grid with the first one and logs a
// warning for each extent or cell size difference beyond the tolerance.
// It only reports; iteration is unaffected.
func (c *Cursor) CheckExtent() []Mismatch {
	var (
		ref *raster.Grid
		out []Mismatch
	)
	tol := c.opts.ExtentTolerance
	for _, g := range c.grids {
		if g.IsConstant() {
			continue
		}
		if ref == nil {
			ref = g
			continue
		}
		if !g.Extent().ApproxEqual(ref.Extent(), tol) {
			out = append(out, Mismatch{
				Grid: g.Name, Kind: "extent",
				Want: ref.Extent().String(), Got: g.Extent().String(),
			})
		}
		if math.Abs(g.CellSizeX()-ref.CellSizeX()) > tol || math.Abs(g.CellSizeY()-ref.CellSizeY()) > tol {
			out = append(out, Mismatch{
				Grid: g.Name, Kind: "cellsize",
				Want: fmt.Sprintf("%gx%g", ref.CellSizeX(), ref.CellSizeY()),
				Got:  fmt.Sprintf("%gx%g", g.CellSizeX(), g.CellSizeY()),
			})
		}
	}
	for _, m := range out {
		c.opts.Logger.Warn("cursor: grid does not match reference",
			"grid", m.Grid, "reference", ref.Name, "kind", m.Kind, "want", m.Want, "got", m.Got)
	}
	return out
}
