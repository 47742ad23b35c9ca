// Package cursor defines the MultiGridCursor, its options and sentinel errors.
package cursor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/imodcheck/raster"
)

// Sentinel errors for cursor operations.
var (
	// ErrNilGrid is returned by AddGrid for a nil grid.
	ErrNilGrid = errors.New("cursor: grid is nil")
	// ErrStarted is returned by AddGrid after the first Reset.
	ErrStarted = errors.New("cursor: grids must be added before the first Reset")
	// ErrNoGrids is returned by Reset when no grid with an extent was added.
	ErrNoGrids = errors.New("cursor: no grid with an extent was added")
	// ErrInvalidStep is returned by Reset when the step size is not finite and positive.
	ErrInvalidStep = errors.New("cursor: step size must be finite and positive")
	// ErrOptionViolation is returned by New when an invalid Option is supplied.
	ErrOptionViolation = errors.New("cursor: invalid option supplied")
)

// Option configures a Cursor via functional arguments.
// Invalid options are recorded and surfaced by New as ErrOptionViolation.
type Option func(*Options)

// Options holds the cursor parameters.
type Options struct {
	// AreaOfInterest, when set, clips the iteration extent.
	AreaOfInterest *raster.Extent

	// NaNForNoData makes CellValue and windows report IEEE NaN instead of the
	// grid's own sentinel for missing values.
	NaNForNoData bool

	// ExtentTolerance is the absolute difference in extent bounds or cell
	// sizes that CheckExtent still accepts.
	ExtentTolerance float64

	// Logger receives CheckExtent diagnostics.
	Logger *slog.Logger

	err error
}

// DefaultOptions returns Options with no area of interest, sentinel NoData,
// a tolerance of 1e-6 and slog.Default().
func DefaultOptions() Options {
	return Options{
		ExtentTolerance: 1e-6,
		Logger:          slog.Default(),
	}
}

// WithAreaOfInterest clips iteration to e. An empty or non-finite e is invalid.
func WithAreaOfInterest(e raster.Extent) Option {
	return func(o *Options) {
		if e.IsEmpty() || !e.IsFinite() {
			o.err = fmt.Errorf("%w: area of interest %s", ErrOptionViolation, e)
			return
		}
		o.AreaOfInterest = &e
	}
}

// WithNaNForNoData selects NaN (true) or the grid sentinel (false) for NoData.
func WithNaNForNoData(useNaN bool) Option {
	return func(o *Options) { o.NaNForNoData = useNaN }
}

// WithExtentTolerance sets the CheckExtent tolerance; negative values are invalid.
func WithExtentTolerance(tol float64) Option {
	return func(o *Options) {
		if tol < 0 {
			o.err = fmt.Errorf("%w: ExtentTolerance cannot be negative (%g)", ErrOptionViolation, tol)
			return
		}
		o.ExtentTolerance = tol
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Mismatch describes one grid whose extent or cell size differs from the
// first participating grid.
type Mismatch struct {
	Grid string
	Kind string // "extent" or "cellsize"
	Want string
	Got  string
}

// Window is a square block of (2·Radius+1)² values centred on a cell,
// stored row-major from the north-west corner.
type Window struct {
	Radius int
	Values []float64
	// NoData is the value used for missing cells (the sentinel or NaN).
	NoData float64
}

// Size returns the side length 2·Radius+1.
func (w Window) Size() int { return 2*w.Radius + 1 }

// At returns the value at row offset dr and column offset dc from the centre.
// Offsets beyond Radius are not checked.
func (w Window) At(dr, dc int) float64 {
	n := w.Size()
	return w.Values[(dr+w.Radius)*n+dc+w.Radius]
}

// Center returns the centre value.
func (w Window) Center() float64 { return w.At(0, 0) }
