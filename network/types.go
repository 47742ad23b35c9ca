// Package network defines the segment, node and calculation-point types,
// graph options and sentinel errors of the network package.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/geo/r2"

	"github.com/katalvlaran/imodcheck/timeseries"
)

// Sentinel errors for network operations.
var (
	// ErrShortSegment indicates a segment with fewer than two nodes.
	ErrShortSegment = errors.New("network: segment needs at least two nodes")
	// ErrEmptySegmentID indicates a segment without an identifier.
	ErrEmptySegmentID = errors.New("network: segment ID is empty")
	// ErrOptionViolation indicates an invalid Option.
	ErrOptionViolation = errors.New("network: invalid option supplied")
)

// DefaultDistanceErrorMargin is the distance below which two coordinates
// are the same junction, in map units.
const DefaultDistanceErrorMargin = 0.01

// Node is one vertex of a segment polyline.
type Node struct {
	// Point is the node coordinate.
	Point r2.Point
	// Segment is the owning segment.
	Segment *Segment
	// Index is the position in Segment.Nodes.
	Index int
	// Distance is the length along the segment from its first node.
	Distance float64
}

// IsTerminal reports whether n is the first or last node of its segment.
func (n *Node) IsTerminal() bool {
	return n.Index == 0 || n.Index == len(n.Segment.Nodes)-1
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d(%g,%g)", n.Segment.ID, n.Index, n.Point.X, n.Point.Y)
}

// CalculationPoint is a named location along a segment that carries values
// (e.g. water level, bottom level) and optionally a time series, loaded on
// first use through the graph's SeriesLoader.
type CalculationPoint struct {
	ID       string
	Distance float64
	Values   map[string]float64
	// SeriesRef identifies the series for the SeriesLoader; empty means none.
	SeriesRef string
	// Segment is set by NewSegment.
	Segment *Segment

	series timeseries.Series
	loaded bool
}

// SetSeries attaches a series directly, bypassing the loader.
func (p *CalculationPoint) SetSeries(s timeseries.Series) {
	p.series = s
	p.loaded = true
}

// Segment is a polyline stretch of river, ditch or drain with calculation
// points ordered by increasing distance from the first node.
type Segment struct {
	ID     string
	Nodes  []*Node
	Points []*CalculationPoint

	length float64
}

// SeriesLoader loads the time series of a calculation point. A missing
// series is reported as found == false, not as an error.
type SeriesLoader interface {
	LoadSeries(ctx context.Context, ref string) (s timeseries.Series, found bool, err error)
}

// Option configures Build.
type Option func(*Options)

// Options holds graph construction parameters.
type Options struct {
	// DistanceErrorMargin merges node coordinates closer than this into one junction.
	DistanceErrorMargin float64
	// InteriorNodes also registers non-terminal nodes in the junction index.
	InteriorNodes bool
	// Loader provides lazily loaded calculation-point series.
	Loader SeriesLoader
	// Logger receives data-quality warnings.
	Logger *slog.Logger

	err error
}

// DefaultOptions returns DistanceErrorMargin=DefaultDistanceErrorMargin,
// terminal nodes only, no loader and slog.Default().
func DefaultOptions() Options {
	return Options{
		DistanceErrorMargin: DefaultDistanceErrorMargin,
		Logger:              slog.Default(),
	}
}

// WithDistanceErrorMargin sets the junction tolerance; it must be positive.
func WithDistanceErrorMargin(m float64) Option {
	return func(o *Options) {
		if !(m > 0) {
			o.err = fmt.Errorf("%w: DistanceErrorMargin must be positive (%g)", ErrOptionViolation, m)
			return
		}
		o.DistanceErrorMargin = m
	}
}

// WithInteriorNodes registers interior polyline nodes as well.
func WithInteriorNodes(on bool) Option {
	return func(o *Options) { o.InteriorNodes = on }
}

// WithSeriesLoader sets the lazy series loader.
func WithSeriesLoader(l SeriesLoader) Option {
	return func(o *Options) { o.Loader = l }
}

// WithLogger sets the logger for data-quality warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Junction is a coordinate where nodes of two or more segments meet.
type Junction struct {
	Point r2.Point
	Nodes []*Node
}

// LevelOptions configures the level-change comparison across junctions.
type LevelOptions struct {
	// MaxRelativeChange is the allowed level change per map unit of separation.
	MaxRelativeChange float64
	// MaxAbsoluteChange is the allowed level change regardless of separation.
	MaxAbsoluteChange float64
	// ValueName, when set, compares the named static value of each point
	// instead of its time series.
	ValueName string
}

// Violation is the first level change found between two calculation points
// that exceeds the allowed change.
type Violation struct {
	// At is the junction coordinate the comparison was made for.
	At         r2.Point
	From, To   *CalculationPoint
	Time       time.Time
	Difference float64
	Allowed    float64
	Separation float64
}
