// Package store declares the collaborators that read and write model files,
// and an in-memory implementation of all of them.
//
// File formats (IDF, IPF, ISG and friends) live behind these interfaces.
// A file that does not exist is reported as found == false so callers branch
// on presence; an error means the file exists but could not be read.
package store

import (
	"context"

	"github.com/katalvlaran/imodcheck/network"
	"github.com/katalvlaran/imodcheck/raster"
	"github.com/katalvlaran/imodcheck/timeseries"
)

// Metadata describes a saved result grid (legend, source check, units...).
type Metadata map[string]string

// GridStore loads and saves raster grids.
type GridStore interface {
	// LoadGrid returns a grid the caller owns and must release.
	LoadGrid(ctx context.Context, path string) (g *raster.Grid, found bool, err error)
	SaveGrid(ctx context.Context, g *raster.Grid, path string, meta Metadata) error
}

// Point is one record of a point file, e.g. an observation well.
type Point struct {
	ID   string
	X, Y float64
	// Columns holds the remaining attribute columns by name.
	Columns map[string]string
	// SeriesRef references the associated time series; empty means none.
	SeriesRef string
}

// PointSeriesStore reads point files and their associated time series.
// It satisfies network.SeriesLoader.
type PointSeriesStore interface {
	LoadPoints(ctx context.Context, path string) (pts []Point, found bool, err error)
	LoadSeries(ctx context.Context, ref string) (s timeseries.Series, found bool, err error)
}

// NetworkFileStore reads polyline network files into segments.
type NetworkFileStore interface {
	LoadNetwork(ctx context.Context, path string) (segs []*network.Segment, found bool, err error)
}

var _ network.SeriesLoader = PointSeriesStore(nil)
