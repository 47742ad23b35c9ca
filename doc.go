// Package imodcheck validates groundwater-model datasets: iMOD raster grids,
// polyline river/ditch networks and point time series.
//
// What is inside:
//
//	raster/     — Grid: extent, cell size, no-data, resampling, arithmetic, release
//	cursor/     — MultiGridCursor: lock-step row-major walk over grids of mixed resolution
//	gridgraph/  — orphan-cell detection with a depth-bounded flood fill
//	network/    — segment/junction graph and level-change comparison across junctions
//	timeseries/ — step-interpolated series and the statistics helper
//	store/      — GridStore, PointSeriesStore and NetworkFileStore collaborators
//	config/     — typed YAML configuration per check
//	results/    — detail records (memory or SQLite)
//	check/      — the Check contract, the Runner and representative checks
//
// A check builds a cursor over the grids it needs, walks it once and asks the
// analyzer per cell, or builds a network graph per input file and queries it
// per junction. Findings flow into a results.Recorder.
//
// Quick ASCII example of an orphan cell (centre 5 among 10s):
//
//	10 10 10
//	10  5 10
//	10 10 10
package imodcheck
