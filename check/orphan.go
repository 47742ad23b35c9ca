package check

import (
	"context"
	"fmt"

	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/gridgraph"
	"github.com/katalvlaran/imodcheck/results"
	"github.com/katalvlaran/imodcheck/store"
)

// OrphanCheck flags isolated cells in each of its grids and saves one
// warning grid per input that has findings.
type OrphanCheck struct {
	CheckName    string
	Grids        []string
	OutputSuffix string
	Options      gridgraph.OrphanOptions
}

// Name implements Check.
func (o *OrphanCheck) Name() string { return o.CheckName }

// Run implements Check. A missing grid is logged and skipped so the other
// layers are still checked.
func (o *OrphanCheck) Run(ctx context.Context, env *Env) error {
	an, err := gridgraph.NewAnalyzer(o.Options)
	if err != nil {
		return &ConfigurationError{Check: o.CheckName, Err: err}
	}
	if env.Grids == nil {
		return configErr(o.CheckName, "%w: grid store", ErrMissingService)
	}
	for _, path := range o.Grids {
		if err := o.runGrid(ctx, env, an, path); err != nil {
			return err
		}
	}
	return nil
}

func (o *OrphanCheck) runGrid(ctx context.Context, env *Env, an *gridgraph.Analyzer, path string) error {
	g, found, err := env.Grids.LoadGrid(ctx, path)
	if err != nil {
		return fmt.Errorf("check %s: load %s: %w", o.CheckName, path, err)
	}
	if !found {
		env.logger().Warn("grid not found", "check", o.CheckName, "file", path)
		return nil
	}
	defer g.ReleaseValues()

	c, err := env.newCursor(g)
	if err != nil {
		return &ConfigurationError{Check: o.CheckName, Err: err}
	}
	out := path + o.OutputSuffix
	warn, err := g.EmptyLike(out)
	if err != nil {
		return fmt.Errorf("check %s: %s: %w", o.CheckName, path, err)
	}

	var recs []results.Record
	err = c.Each(ctx, func(c *cursor.Cursor) error {
		res, err := an.Analyze(c, g, c.X(), c.Y())
		if err != nil || !res.Orphan {
			return err
		}
		warn.SetValue(c.X(), c.Y(), res.Value)
		recs = append(recs, results.Record{
			Check:    o.CheckName,
			Category: results.Warning,
			Layer:    path,
			X:        c.X(),
			Y:        c.Y(),
			Value:    res.Value,
			Message:  fmt.Sprintf("orphan cell %g among %g", res.Value, res.MostOccurring),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %s: %w", o.CheckName, path, err)
	}
	if len(recs) == 0 {
		return nil
	}
	env.logger().Info("orphan cells found", "check", o.CheckName, "file", path, "count", len(recs))
	if err := env.record(ctx, o.CheckName, recs); err != nil {
		return err
	}
	meta := store.Metadata{"check": o.CheckName, "source": path, "legend": "orphan cell value"}
	if err := env.Grids.SaveGrid(ctx, warn, out, meta); err != nil {
		return fmt.Errorf("check %s: save %s: %w", o.CheckName, out, err)
	}
	return nil
}
