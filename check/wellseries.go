package check

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/imodcheck/results"
	"github.com/katalvlaran/imodcheck/timeseries"
)

// WellSeriesCheck flags observations outside the Tukey fences of their own
// series, for every point of a point file that references one.
type WellSeriesCheck struct {
	CheckName string
	Points    string
	// IQRFactor scales the inter-quartile range of the fences.
	IQRFactor float64
	// MinObservations skips series with fewer non-NaN values.
	MinObservations int
}

// Name implements Check.
func (w *WellSeriesCheck) Name() string { return w.CheckName }

// Run implements Check. A missing series is a data-quality issue: logged,
// then skipped.
func (w *WellSeriesCheck) Run(ctx context.Context, env *Env) error {
	if env.Points == nil {
		return configErr(w.CheckName, "%w: point store", ErrMissingService)
	}
	pts, found, err := env.Points.LoadPoints(ctx, w.Points)
	if err != nil {
		return fmt.Errorf("check %s: load %s: %w", w.CheckName, w.Points, err)
	}
	if !found {
		return configErr(w.CheckName, "point file %s not found", w.Points)
	}

	log := env.logger()
	var recs []results.Record
	for _, p := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.SeriesRef == "" {
			continue
		}
		s, found, err := env.Points.LoadSeries(ctx, p.SeriesRef)
		if err != nil {
			return fmt.Errorf("check %s: point %s: %w", w.CheckName, p.ID, err)
		}
		if !found {
			log.Warn("series not found", "check", w.CheckName, "file", w.Points, "point", p.ID, "ref", p.SeriesRef)
			continue
		}
		if observations(s) < w.MinObservations {
			continue
		}
		lo, hi, err := timeseries.OutlierRange(s.Values(), w.IQRFactor)
		if err != nil {
			continue
		}
		for _, o := range s {
			if math.IsNaN(o.Value) || (o.Value >= lo && o.Value <= hi) {
				continue
			}
			recs = append(recs, results.Record{
				Check:    w.CheckName,
				Category: results.Warning,
				Layer:    w.Points,
				X:        p.X,
				Y:        p.Y,
				Value:    o.Value,
				Message: fmt.Sprintf("well %s: %g on %s outside [%.3f, %.3f]",
					p.ID, o.Value, o.Time.Format("2006-01-02"), lo, hi),
			})
		}
	}
	return env.record(ctx, w.CheckName, recs)
}

func observations(s timeseries.Series) int {
	n := 0
	for _, p := range s {
		if !math.IsNaN(p.Value) {
			n++
		}
	}
	return n
}
