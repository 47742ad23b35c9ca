package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/imodcheck/config"
	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/raster"
	"github.com/katalvlaran/imodcheck/results"
	"github.com/katalvlaran/imodcheck/store"
)

// ErrMissingService indicates an Env without a collaborator a check needs.
var ErrMissingService = errors.New("check: required service not configured")

// Check is one validation rule over model input files.
type Check interface {
	Name() string
	Run(ctx context.Context, env *Env) error
}

// Env carries the services shared by all checks of a run.
type Env struct {
	Grids    store.GridStore
	Points   store.PointSeriesStore
	Networks store.NetworkFileStore
	Results  results.Recorder
	Logger   *slog.Logger

	// AreaOfInterest clips every grid walk; nil means the full grids.
	AreaOfInterest *raster.Extent
	// NaNForNoData reports missing cell values as NaN.
	NaNForNoData bool
}

// Apply copies the run-wide settings of cfg into e.
func (e *Env) Apply(cfg *config.Config) {
	if cfg.AreaOfInterest != nil {
		aoi := cfg.AreaOfInterest.Raster()
		e.AreaOfInterest = &aoi
	}
	e.NaNForNoData = cfg.NaNForNoData
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// newCursor returns a cursor over grids honouring the run settings.
func (e *Env) newCursor(grids ...*raster.Grid) (*cursor.Cursor, error) {
	opts := []cursor.Option{
		cursor.WithNaNForNoData(e.NaNForNoData),
		cursor.WithLogger(e.logger()),
	}
	if e.AreaOfInterest != nil {
		opts = append(opts, cursor.WithAreaOfInterest(*e.AreaOfInterest))
	}
	c, err := cursor.New(opts...)
	if err != nil {
		return nil, err
	}
	for _, g := range grids {
		if err := c.AddGrid(g); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ConfigurationError aborts a single check: a missing input file, an
// invalid parameter or a service the check needs is absent.
type ConfigurationError struct {
	Check string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("check %s: configuration: %v", e.Check, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(check string, format string, args ...any) error {
	return &ConfigurationError{Check: check, Err: fmt.Errorf(format, args...)}
}

// IsConfigurationError reports whether err carries a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// loadGrid loads a required grid; a missing file is a ConfigurationError.
func (e *Env) loadGrid(ctx context.Context, check, path string) (*raster.Grid, error) {
	if e.Grids == nil {
		return nil, configErr(check, "%w: grid store", ErrMissingService)
	}
	g, found, err := e.Grids.LoadGrid(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("check %s: load %s: %w", check, path, err)
	}
	if !found {
		return nil, configErr(check, "grid %s not found", path)
	}
	return g, nil
}

// settingGrid resolves a setting to a constant grid or a loaded grid. An
// unset setting yields nil.
func (e *Env) settingGrid(ctx context.Context, check string, s config.Setting) (*raster.Grid, error) {
	if !s.IsSet() {
		return nil, nil
	}
	if !s.IsGrid() {
		return raster.Constant(s.Value), nil
	}
	return e.loadGrid(ctx, check, s.Path)
}

func (e *Env) record(ctx context.Context, check string, recs []results.Record) error {
	if len(recs) == 0 || e.Results == nil {
		return nil
	}
	if err := e.Results.Record(ctx, recs...); err != nil {
		return fmt.Errorf("check %s: record results: %w", check, err)
	}
	return nil
}
