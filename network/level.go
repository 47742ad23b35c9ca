package network

import (
	"context"
	"math"
	"time"

	"github.com/golang/geo/r2"

	"github.com/katalvlaran/imodcheck/timeseries"
)

// CompareLevels compares two level series located at pa and pb.
//
// Points closer than margin count as one nominal unit apart, so the check
// reduces to an absolute difference; otherwise the Euclidean separation is
// used. The allowed change is max(MaxRelativeChange·separation,
// MaxAbsoluteChange). Every timestamp of ref is evaluated against the last
// value of other at or before it (step interpolation); the first violation
// is returned and the rest are not enumerated.
func CompareLevels(pa, pb r2.Point, ref, other timeseries.Series, margin float64, opts LevelOptions) (Violation, bool) {
	sep := pa.Sub(pb).Norm()
	if sep < margin {
		sep = 1
	}
	allowed := math.Max(opts.MaxRelativeChange*sep, opts.MaxAbsoluteChange)
	for _, p := range ref {
		v, ok := other.ValueAt(p.Time)
		if !ok || math.IsNaN(v) || math.IsNaN(p.Value) {
			continue
		}
		if diff := math.Abs(p.Value - v); diff > allowed {
			return Violation{Time: p.Time, Difference: diff, Allowed: allowed, Separation: sep}, true
		}
	}
	return Violation{}, false
}

// levelSeries returns the series to compare for p: the named static value
// when opts.ValueName is set, otherwise p's time series.
func (g *Graph) levelSeries(ctx context.Context, p *CalculationPoint, opts LevelOptions) (timeseries.Series, bool, error) {
	if opts.ValueName != "" {
		v, ok := p.Values[opts.ValueName]
		if !ok {
			return nil, false, nil
		}
		return timeseries.Series{{Time: time.Time{}, Value: v}}, true, nil
	}
	return g.Series(ctx, p)
}

// CheckJunctionLevels walks every junction and every pair of nodes of
// distinct segments meeting there. For each pair it picks the calculation
// point nearest to the junction on both segments and compares their levels
// with CompareLevels, the first node's point being the reference.
// Missing series are logged and skipped; ctx is polled once per junction.
func (g *Graph) CheckJunctionLevels(ctx context.Context, opts LevelOptions) ([]Violation, error) {
	var out []Violation
	for _, j := range g.Junctions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for a := 0; a < len(j.Nodes); a++ {
			for b := a + 1; b < len(j.Nodes); b++ {
				na, nb := j.Nodes[a], j.Nodes[b]
				if na.Segment == nb.Segment {
					continue
				}
				v, bad, err := g.compareAt(ctx, na, nb, opts)
				if err != nil {
					return nil, err
				}
				if bad {
					v.At = j.Point
					out = append(out, v)
				}
			}
		}
	}
	return out, nil
}

// compareAt compares the calculation points nearest to na and nb.
func (g *Graph) compareAt(ctx context.Context, na, nb *Node, opts LevelOptions) (Violation, bool, error) {
	pa := na.Segment.CalculationPointAt(na.Distance)
	pb := nb.Segment.CalculationPointAt(nb.Distance)
	if pa == nil || pb == nil {
		return Violation{}, false, nil
	}
	sa, okA, err := g.levelSeries(ctx, pa, opts)
	if err != nil {
		return Violation{}, false, err
	}
	sb, okB, err := g.levelSeries(ctx, pb, opts)
	if err != nil {
		return Violation{}, false, err
	}
	if !okA || !okB {
		g.opts.Logger.Warn("network: calculation point has no levels",
			"segment_a", pa.Segment.ID, "point_a", pa.ID, "found_a", okA,
			"segment_b", pb.Segment.ID, "point_b", pb.ID, "found_b", okB)
		return Violation{}, false, nil
	}
	la, _ := g.Locate(pa)
	lb, _ := g.Locate(pb)
	v, bad := CompareLevels(la, lb, sa, sb, g.opts.DistanceErrorMargin, opts)
	if bad {
		v.From, v.To = pa, pb
	}
	return v, bad, nil
}
