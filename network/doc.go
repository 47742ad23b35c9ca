// Package network builds a lightweight graph over polyline segments
// (rivers, ditches, drains) to find junctions and compare levels across them.
//
// What:
//
//   - Segment: ordered nodes plus calculation points sorted by distance.
//     Coordinate maps a distance to a point; CalculationPointAt finds the
//     nearest point to a distance.
//   - Graph: nodes indexed by coordinate in buckets DistanceErrorMargin wide.
//     Nodes closer than the margin are one junction, regardless of segment.
//   - CheckJunctionLevels: for each pair of segments meeting at a junction,
//     compares the levels of their calculation points nearest to it.
//
// Data quality:
//
// A calculation point beyond its segment's length is bad input. Coordinate
// reports ok == false; Graph.Locate logs a warning and falls back to the
// segment's last node. Processing continues.
//
// Complexity:
//
//   - Build: O(N) for N registered nodes.
//   - Nodes: O(k) for the k nodes in the 3×3 neighbouring buckets.
//   - CheckJunctionLevels: O(J·d²·T) for J junctions of degree d and series length T.
//
// Errors:
//
//   - ErrEmptySegmentID, ErrShortSegment: NewSegment input.
//   - ErrOptionViolation: invalid Option passed to Build.
package network
