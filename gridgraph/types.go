// Package gridgraph defines connectivity, orphan-analysis options, results
// and sentinel errors for the gridgraph package of imodcheck.
package gridgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for gridgraph operations.
var (
	// ErrOptionViolation indicates OrphanOptions outside their valid range.
	ErrOptionViolation = errors.New("gridgraph: invalid orphan options")
	// ErrConstantGrid indicates a constant grid, which has no neighbourhood.
	ErrConstantGrid = errors.New("gridgraph: constant grid has no neighbourhood")
	// ErrNilInput indicates a nil cursor or grid.
	ErrNilInput = errors.New("gridgraph: cursor and grid must not be nil")
)

// Connectivity selects which neighbours seed a flood fill: orthogonal (Conn4)
// or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)

// offsets returns (dRow, dCol) pairs in a fixed clockwise order starting north.
func (c Connectivity) offsets() [][2]int {
	if c == Conn8 {
		return [][2]int{{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}}
	}
	return [][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}
}

// OrphanOptions holds the tunable parameters of orphan-cell detection.
type OrphanOptions struct {
	// Radius of the (2·Radius+1)² window examined around every cell; ≥ 1.
	Radius int
	// MaxRecursiveLevel bounds the flood fill: seeds are level 1 and cells at
	// this level are not expanded further; ≥ 1.
	MaxRecursiveLevel int
	// Precision is the number of decimals values are rounded to before
	// comparison; negative disables rounding.
	Precision int
	// MaxMainConnectionCount is the largest number of cells connected to the
	// centre with the centre's own value for which it is still an orphan.
	MaxMainConnectionCount int
	// MinMostOccurringCount is the smallest number of connected cells with the
	// most occurring neighbour value required for an orphan.
	MinMostOccurringCount int
	// MaxOtherValueCount is the largest number of distinct stray values
	// (neither centre nor most occurring) tolerated.
	MaxOtherValueCount int
	// ValueMargin is the minimum difference between the centre and the most
	// occurring value for the difference to count.
	ValueMargin float64
	// Conn selects the seed neighbours.
	Conn Connectivity
}

// DefaultOrphanOptions returns Radius=1, MaxRecursiveLevel=4, Precision=3,
// MaxMainConnectionCount=0, MinMostOccurringCount=4, MaxOtherValueCount=0,
// ValueMargin=0.01, Conn=Conn8.
func DefaultOrphanOptions() OrphanOptions {
	return OrphanOptions{
		Radius:                 1,
		MaxRecursiveLevel:      4,
		Precision:              3,
		MaxMainConnectionCount: 0,
		MinMostOccurringCount:  4,
		MaxOtherValueCount:     0,
		ValueMargin:            0.01,
		Conn:                   Conn8,
	}
}

// Validate reports the first out-of-range field as ErrOptionViolation.
func (o OrphanOptions) Validate() error {
	switch {
	case o.Radius < 1:
		return fmt.Errorf("%w: Radius must be ≥ 1 (%d)", ErrOptionViolation, o.Radius)
	case o.MaxRecursiveLevel < 1:
		return fmt.Errorf("%w: MaxRecursiveLevel must be ≥ 1 (%d)", ErrOptionViolation, o.MaxRecursiveLevel)
	case o.MaxMainConnectionCount < 0, o.MinMostOccurringCount < 0, o.MaxOtherValueCount < 0:
		return fmt.Errorf("%w: connection counts cannot be negative", ErrOptionViolation)
	case o.ValueMargin < 0:
		return fmt.Errorf("%w: ValueMargin cannot be negative (%g)", ErrOptionViolation, o.ValueMargin)
	case o.Conn != Conn4 && o.Conn != Conn8:
		return fmt.Errorf("%w: unknown connectivity %d", ErrOptionViolation, o.Conn)
	}
	return nil
}

// Reason explains why a cell was or was not classified as an orphan.
type Reason int

const (
	// ReasonOrphan: all three connection thresholds hold.
	ReasonOrphan Reason = iota
	// ReasonNoData: the cell itself has no value.
	ReasonNoData
	// ReasonUniform: no neighbour carries a different value.
	ReasonUniform
	// ReasonWithinMargin: the difference with the most occurring value is below ValueMargin.
	ReasonWithinMargin
	// ReasonInBetween: the value lies strictly between the neighbourhood min and max.
	ReasonInBetween
	// ReasonConnected: the flood fill found the cell to be part of a larger feature.
	ReasonConnected
)

func (r Reason) String() string {
	switch r {
	case ReasonOrphan:
		return "orphan"
	case ReasonNoData:
		return "nodata"
	case ReasonUniform:
		return "uniform"
	case ReasonWithinMargin:
		return "within-margin"
	case ReasonInBetween:
		return "in-between"
	case ReasonConnected:
		return "connected"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// OrphanResult is the full outcome of Analyze for one cell.
type OrphanResult struct {
	Orphan        bool
	Reason        Reason
	Value         float64
	MostOccurring float64
	// MainConnections counts cells reached with the centre's value.
	MainConnections int
	// MostOccurringConnections counts cells reached with the most occurring value.
	MostOccurringConnections int
	// OtherValues counts distinct stray values met during the analysis.
	OtherValues int
}
