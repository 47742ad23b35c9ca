package network

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/katalvlaran/imodcheck/timeseries"
)

// bucket is a cell of the coordinate index, DistanceErrorMargin wide.
type bucket struct{ x, y int64 }

// entry is a registered node with its registration sequence number.
type entry struct {
	node *Node
	seq  int
}

// Graph is the junction index over a set of segments. Nodes whose
// coordinates differ by less than DistanceErrorMargin are one junction,
// whichever segment they belong to. A Graph is immutable after Build except
// for lazily loaded series, and is not safe for concurrent use.
type Graph struct {
	opts     Options
	segments []*Segment
	index    map[bucket][]entry
	nodes    []*Node // registration order
}

// Build registers the terminal nodes of every segment (all nodes with
// WithInteriorNodes) in the coordinate index. Nil or malformed segments are
// skipped with a warning; ctx is polled once per segment.
// Complexity: O(N) for N registered nodes.
func Build(ctx context.Context, segments []*Segment, opts ...Option) (*Graph, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	g := &Graph{opts: o, index: make(map[bucket][]entry)}
	for i, s := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s == nil || len(s.Nodes) < 2 {
			o.Logger.Warn("network: skipping malformed segment", "position", i)
			continue
		}
		g.segments = append(g.segments, s)
		for _, n := range s.Nodes {
			if !o.InteriorNodes && !n.IsTerminal() {
				continue
			}
			g.register(n)
		}
	}
	return g, nil
}

func (g *Graph) bucketOf(p r2.Point) bucket {
	m := g.opts.DistanceErrorMargin
	return bucket{int64(math.Floor(p.X / m)), int64(math.Floor(p.Y / m))}
}

func (g *Graph) register(n *Node) {
	k := g.bucketOf(n.Point)
	g.index[k] = append(g.index[k], entry{node: n, seq: len(g.nodes)})
	g.nodes = append(g.nodes, n)
}

// Segments returns the segments accepted by Build, in input order.
func (g *Graph) Segments() []*Segment { return g.segments }

// DistanceErrorMargin returns the junction tolerance.
func (g *Graph) DistanceErrorMargin() float64 { return g.opts.DistanceErrorMargin }

// Nodes returns every registered node closer than DistanceErrorMargin to
// (x,y), in registration order.
func (g *Graph) Nodes(x, y float64) []*Node {
	p := r2.Point{X: x, Y: y}
	k := g.bucketOf(p)
	var hits []entry
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, e := range g.index[bucket{k.x + dx, k.y + dy}] {
				if e.node.Point.Sub(p).Norm() < g.opts.DistanceErrorMargin {
					hits = append(hits, e)
				}
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	out := make([]*Node, len(hits))
	for i, e := range hits {
		out[i] = e.node
	}
	return out
}

// ConnectedNodes returns the nodes of other segments at n's junction.
func (g *Graph) ConnectedNodes(n *Node) []*Node {
	var out []*Node
	for _, m := range g.Nodes(n.Point.X, n.Point.Y) {
		if m.Segment != n.Segment {
			out = append(out, m)
		}
	}
	return out
}

// Junctions groups registered nodes that are chained by distances below
// DistanceErrorMargin (the grouping is transitive, so every node belongs to
// at most one junction) and returns the groups spanning at least two
// distinct segments. Junctions are ordered by their first registered node,
// which also gives the junction Point; nodes within a junction keep
// registration order.
// Complexity: O(N·k·α(N)) for N nodes with k neighbours within the margin.
func (g *Graph) Junctions() []Junction {
	seq := make(map[*Node]int, len(g.nodes))
	for i, n := range g.nodes {
		seq[n] = i
	}
	parent := make([]int, len(g.nodes))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i, n := range g.nodes {
		for _, m := range g.Nodes(n.Point.X, n.Point.Y) {
			a, b := find(i), find(seq[m])
			if a == b {
				continue
			}
			// The smaller index stays root so roots are first-registered nodes.
			if b < a {
				a, b = b, a
			}
			parent[b] = a
		}
	}

	groups := make(map[int][]*Node)
	var roots []int
	for i, n := range g.nodes {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], n)
	}
	var out []Junction
	for _, r := range roots {
		group := groups[r]
		segs := make(map[*Segment]bool, len(group))
		for _, m := range group {
			segs[m.Segment] = true
		}
		if len(segs) >= 2 {
			out = append(out, Junction{Point: g.nodes[r].Point, Nodes: group})
		}
	}
	return out
}

// Locate returns the coordinate of p on its segment. A distance beyond the
// segment length is a data-quality issue: it is logged and the segment's
// last node is returned. exact reports whether no fallback was needed.
func (g *Graph) Locate(p *CalculationPoint) (pt r2.Point, exact bool) {
	if pt, ok := p.Segment.Coordinate(p.Distance); ok {
		return pt, true
	}
	last := p.Segment.Last().Point
	g.opts.Logger.Warn("network: calculation point distance exceeds segment length",
		"segment", p.Segment.ID, "point", p.ID,
		"distance", p.Distance, "length", p.Segment.Length(),
		"x", last.X, "y", last.Y)
	return last, false
}

// Series returns p's time series, loading and caching it on first use.
// found is false when p has no series reference, no loader is configured or
// the loader does not know the reference.
func (g *Graph) Series(ctx context.Context, p *CalculationPoint) (s timeseries.Series, found bool, err error) {
	if p.loaded {
		return p.series, p.series != nil, nil
	}
	if p.SeriesRef == "" || g.opts.Loader == nil {
		return nil, false, nil
	}
	s, found, err = g.opts.Loader.LoadSeries(ctx, p.SeriesRef)
	if err != nil {
		return nil, false, fmt.Errorf("network: load series %q of %s/%s: %w", p.SeriesRef, p.Segment.ID, p.ID, err)
	}
	if !s.IsSorted() {
		s.Sort()
	}
	p.series, p.loaded = s, true
	return s, found && s != nil, nil
}
