package network

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// NewSegment builds a segment from its polyline coordinates and calculation
// points. Node distances are accumulated along the polyline; points are
// sorted by distance (stable) and linked back to the segment.
// Returns ErrEmptySegmentID or ErrShortSegment on bad input.
func NewSegment(id string, coords []r2.Point, points []*CalculationPoint) (*Segment, error) {
	if id == "" {
		return nil, ErrEmptySegmentID
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrShortSegment, id, len(coords))
	}
	s := &Segment{ID: id, Nodes: make([]*Node, len(coords))}
	for i, p := range coords {
		if i > 0 {
			s.length += p.Sub(coords[i-1]).Norm()
		}
		s.Nodes[i] = &Node{Point: p, Segment: s, Index: i, Distance: s.length}
	}
	s.Points = make([]*CalculationPoint, 0, len(points))
	for _, p := range points {
		if p == nil {
			continue
		}
		p.Segment = s
		s.Points = append(s.Points, p)
	}
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].Distance < s.Points[j].Distance })

	return s, nil
}

// Length returns the polyline length.
func (s *Segment) Length() float64 { return s.length }

// First returns the first node.
func (s *Segment) First() *Node { return s.Nodes[0] }

// Last returns the last node.
func (s *Segment) Last() *Node { return s.Nodes[len(s.Nodes)-1] }

// lengthSlack absorbs rounding in accumulated node distances.
const lengthSlack = 1e-9

// Coordinate maps a distance along the segment to a coordinate by linear
// interpolation between nodes. ok is false for a negative distance or one
// beyond the segment length; that is a data error the caller must report.
func (s *Segment) Coordinate(distance float64) (p r2.Point, ok bool) {
	if distance < -lengthSlack || distance > s.length+lengthSlack || math.IsNaN(distance) {
		return r2.Point{}, false
	}
	i := sort.Search(len(s.Nodes), func(i int) bool { return s.Nodes[i].Distance >= distance })
	switch {
	case i == 0:
		return s.Nodes[0].Point, true
	case i == len(s.Nodes):
		return s.Last().Point, true
	}
	a, b := s.Nodes[i-1], s.Nodes[i]
	span := b.Distance - a.Distance
	if span == 0 {
		return b.Point, true
	}
	t := (distance - a.Distance) / span
	return a.Point.Add(b.Point.Sub(a.Point).Mul(t)), true
}

// CalculationPointAt returns the calculation point nearest to distance,
// the earlier one on a tie, or nil for a segment without points.
// Complexity: O(log n).
func (s *Segment) CalculationPointAt(distance float64) *CalculationPoint {
	n := len(s.Points)
	if n == 0 {
		return nil
	}
	i := sort.Search(n, func(i int) bool { return s.Points[i].Distance >= distance })
	switch {
	case i == 0:
		return s.Points[0]
	case i == n:
		return s.Points[n-1]
	}
	before, after := s.Points[i-1], s.Points[i]
	if distance-before.Distance <= after.Distance-distance {
		return before
	}
	return after
}
