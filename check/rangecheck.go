package check

import (
	"context"
	"fmt"

	"github.com/katalvlaran/imodcheck/config"
	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/raster"
	"github.com/katalvlaran/imodcheck/results"
	"github.com/katalvlaran/imodcheck/store"
)

// RangeCheck flags data cells of Grid outside [Min, Max]. Either bound can
// be a number or a grid of per-cell bounds. An unset bound, or a bound cell
// without data, does not constrain.
type RangeCheck struct {
	CheckName string
	Grid      string
	Min, Max  config.Setting
	Output    string
}

// Name implements Check.
func (r *RangeCheck) Name() string { return r.CheckName }

// Run implements Check.
func (r *RangeCheck) Run(ctx context.Context, env *Env) error {
	if !r.Min.IsSet() && !r.Max.IsSet() {
		return configErr(r.CheckName, "no bound given for %s", r.Grid)
	}
	g, err := env.loadGrid(ctx, r.CheckName, r.Grid)
	if err != nil {
		return err
	}
	defer g.ReleaseValues()
	lo, err := env.settingGrid(ctx, r.CheckName, r.Min)
	if err != nil {
		return err
	}
	hi, err := env.settingGrid(ctx, r.CheckName, r.Max)
	if err != nil {
		return err
	}
	grids := []*raster.Grid{g}
	for _, b := range [...]*raster.Grid{lo, hi} {
		if b != nil {
			defer b.ReleaseValues()
			grids = append(grids, b)
		}
	}

	c, err := env.newCursor(grids...)
	if err != nil {
		return &ConfigurationError{Check: r.CheckName, Err: err}
	}
	if ms := c.CheckExtent(); len(ms) > 0 {
		env.logger().Info("bounds read across differing grids", "check", r.CheckName, "mismatches", len(ms))
	}
	errGrid, err := g.EmptyLike(r.Output)
	if err != nil {
		return fmt.Errorf("check %s: %w", r.CheckName, err)
	}

	var recs []results.Record
	err = c.Each(ctx, func(c *cursor.Cursor) error {
		v, err := c.CellValue(g)
		if err != nil || g.IsNoData(v) {
			return err
		}
		msg, bad, err := outOfRange(c, v, lo, hi)
		if err != nil || !bad {
			return err
		}
		errGrid.SetValue(c.X(), c.Y(), v)
		recs = append(recs, results.Record{
			Check: r.CheckName, Category: results.Error, Layer: r.Grid,
			X: c.X(), Y: c.Y(), Value: v, Message: msg,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %s: %w", r.CheckName, r.Grid, err)
	}
	if len(recs) == 0 {
		return nil
	}
	if err := env.record(ctx, r.CheckName, recs); err != nil {
		return err
	}
	meta := store.Metadata{"check": r.CheckName, "source": r.Grid, "min": r.Min.String(), "max": r.Max.String()}
	if err := env.Grids.SaveGrid(ctx, errGrid, r.Output, meta); err != nil {
		return fmt.Errorf("check %s: save %s: %w", r.CheckName, r.Output, err)
	}
	return nil
}

// outOfRange tests v against the bounds at the cursor; a nil bound is open.
func outOfRange(c *cursor.Cursor, v float64, lo, hi *raster.Grid) (string, bool, error) {
	if lo != nil {
		lower, err := c.CellValue(lo)
		if err != nil {
			return "", false, err
		}
		if !lo.IsNoData(lower) && v < lower {
			return fmt.Sprintf("value %g below minimum %g", v, lower), true, nil
		}
	}
	if hi != nil {
		upper, err := c.CellValue(hi)
		if err != nil {
			return "", false, err
		}
		if !hi.IsNoData(upper) && v > upper {
			return fmt.Sprintf("value %g above maximum %g", v, upper), true, nil
		}
	}
	return "", false, nil
}
