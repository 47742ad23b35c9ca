package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/imodcheck/network"
	"github.com/katalvlaran/imodcheck/results"
)

// RiverLevelCheck compares the levels of calculation points on either side
// of every junction of a network file.
type RiverLevelCheck struct {
	CheckName string
	Network   string
	Level     network.LevelOptions
	// DistanceErrorMargin overrides network.DefaultDistanceErrorMargin when positive.
	DistanceErrorMargin float64
	InteriorNodes       bool
}

// Name implements Check.
func (r *RiverLevelCheck) Name() string { return r.CheckName }

// Run implements Check. Series are loaded lazily from env.Points.
func (r *RiverLevelCheck) Run(ctx context.Context, env *Env) error {
	if env.Networks == nil {
		return configErr(r.CheckName, "%w: network store", ErrMissingService)
	}
	segs, found, err := env.Networks.LoadNetwork(ctx, r.Network)
	if err != nil {
		return fmt.Errorf("check %s: load %s: %w", r.CheckName, r.Network, err)
	}
	if !found {
		return configErr(r.CheckName, "network %s not found", r.Network)
	}

	opts := []network.Option{
		network.WithLogger(env.logger().With("check", r.CheckName, "file", r.Network)),
		network.WithInteriorNodes(r.InteriorNodes),
	}
	if r.DistanceErrorMargin > 0 {
		opts = append(opts, network.WithDistanceErrorMargin(r.DistanceErrorMargin))
	}
	if env.Points != nil {
		opts = append(opts, network.WithSeriesLoader(env.Points))
	}
	g, err := network.Build(ctx, segs, opts...)
	if errors.Is(err, network.ErrOptionViolation) {
		return &ConfigurationError{Check: r.CheckName, Err: err}
	}
	if err != nil {
		return fmt.Errorf("check %s: build %s: %w", r.CheckName, r.Network, err)
	}

	vs, err := g.CheckJunctionLevels(ctx, r.Level)
	if err != nil {
		return fmt.Errorf("check %s: %s: %w", r.CheckName, r.Network, err)
	}
	recs := make([]results.Record, 0, len(vs))
	for _, v := range vs {
		recs = append(recs, results.Record{
			Check:    r.CheckName,
			Category: results.Error,
			Layer:    r.Network,
			X:        v.At.X,
			Y:        v.At.Y,
			Value:    v.Difference,
			Message:  describeViolation(v),
		})
	}
	return env.record(ctx, r.CheckName, recs)
}

func describeViolation(v network.Violation) string {
	msg := fmt.Sprintf("level change %.3f between %s/%s and %s/%s exceeds %.3f",
		v.Difference, v.From.Segment.ID, v.From.ID, v.To.Segment.ID, v.To.ID, v.Allowed)
	if !v.Time.IsZero() {
		msg += " at " + v.Time.Format("2006-01-02")
	}
	return msg
}
