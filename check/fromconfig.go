package check

import (
	"context"

	"github.com/katalvlaran/imodcheck/config"
	"github.com/katalvlaran/imodcheck/gridgraph"
	"github.com/katalvlaran/imodcheck/network"
	"github.com/katalvlaran/imodcheck/results"
)

// FromConfig builds the checks of cfg in section order: orphan, range,
// riverLevel, wellSeries. cfg is expected to be validated (config.Parse).
func FromConfig(cfg *config.Config) []Check {
	var out []Check
	for _, o := range cfg.Orphan {
		opts := gridgraph.DefaultOrphanOptions()
		opts.Radius = o.Radius
		opts.MaxRecursiveLevel = o.MaxRecursiveLevel
		if o.Precision != nil {
			opts.Precision = *o.Precision
		}
		opts.MaxMainConnectionCount = o.MaxMainConnectionCount
		opts.MinMostOccurringCount = o.MinMostOccurringCount
		opts.MaxOtherValueCount = o.MaxOtherValueCount
		opts.ValueMargin = o.ValueMargin
		if o.Connectivity == 4 {
			opts.Conn = gridgraph.Conn4
		}
		out = append(out, &OrphanCheck{CheckName: o.Name, Grids: o.Grids, OutputSuffix: o.OutputSuffix, Options: opts})
	}
	for _, r := range cfg.Range {
		out = append(out, &RangeCheck{CheckName: r.Name, Grid: r.Grid, Min: r.Min, Max: r.Max, Output: r.Output})
	}
	for _, r := range cfg.RiverLevel {
		out = append(out, &RiverLevelCheck{
			CheckName: r.Name,
			Network:   r.Network,
			Level: network.LevelOptions{
				MaxRelativeChange: r.MaxRelativeChange,
				MaxAbsoluteChange: r.MaxAbsoluteChange,
				ValueName:         r.ValueName,
			},
			DistanceErrorMargin: r.DistanceErrorMargin,
			InteriorNodes:       r.InteriorNodes,
		})
	}
	for _, w := range cfg.WellSeries {
		out = append(out, &WellSeriesCheck{CheckName: w.Name, Points: w.Points, IQRFactor: w.IQRFactor, MinObservations: w.MinObservations})
	}
	return out
}

// OpenRecorder returns the SQLite recorder named by cfg.ResultsDB, or an
// in-memory one when it is empty. closeFn releases it.
func OpenRecorder(ctx context.Context, cfg *config.Config) (rec results.Recorder, closeFn func() error, err error) {
	if cfg.ResultsDB == "" {
		return results.NewMemory(), func() error { return nil }, nil
	}
	s, err := results.OpenSQLite(ctx, cfg.ResultsDB)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
