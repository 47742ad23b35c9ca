package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/imodcheck/raster"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root document.
type Config struct {
	// AreaOfInterest clips every grid check; nil means the full grids.
	AreaOfInterest *Extent `yaml:"areaOfInterest,omitempty"`
	// NaNForNoData reports missing values as NaN instead of grid sentinels.
	NaNForNoData bool `yaml:"nanForNoData,omitempty"`
	// ResultsDB is a SQLite file for detail records; empty keeps them in memory.
	ResultsDB string `yaml:"resultsDB,omitempty"`

	Orphan     []OrphanCheck     `yaml:"orphan,omitempty"`
	Range      []RangeCheck      `yaml:"range,omitempty"`
	RiverLevel []RiverLevelCheck `yaml:"riverLevel,omitempty"`
	WellSeries []WellSeriesCheck `yaml:"wellSeries,omitempty"`
}

// Extent is the YAML form of raster.Extent.
type Extent struct {
	MinX float64 `yaml:"minX"`
	MinY float64 `yaml:"minY"`
	MaxX float64 `yaml:"maxX"`
	MaxY float64 `yaml:"maxY"`
}

// Raster converts e.
func (e Extent) Raster() raster.Extent {
	return raster.NewExtent(e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// OrphanCheck configures orphan-cell detection over a list of grids.
type OrphanCheck struct {
	Name  string   `yaml:"name"`
	Grids []string `yaml:"grids"`
	// OutputSuffix is appended to each grid path to name its warning grid.
	OutputSuffix string `yaml:"outputSuffix,omitempty"`

	Radius                 int     `yaml:"radius,omitempty"`
	MaxRecursiveLevel      int     `yaml:"maxRecursiveLevel,omitempty"`
	Precision              *int    `yaml:"precision,omitempty"`
	MaxMainConnectionCount int     `yaml:"maxMainConnectionCount,omitempty"`
	MinMostOccurringCount  int     `yaml:"minMostOccurringCount,omitempty"`
	MaxOtherValueCount     int     `yaml:"maxOtherValueCount,omitempty"`
	ValueMargin            float64 `yaml:"valueMargin,omitempty"`
	// Connectivity is 4 or 8.
	Connectivity int `yaml:"connectivity,omitempty"`
}

// RangeCheck flags cells of Grid outside [Min, Max].
type RangeCheck struct {
	Name string `yaml:"name"`
	Grid string `yaml:"grid"`
	// Min and Max are optional; an omitted bound does not constrain.
	Min Setting `yaml:"min,omitempty"`
	Max Setting `yaml:"max,omitempty"`
	// Output names the error grid; empty means Grid + "_range".
	Output string `yaml:"output,omitempty"`
}

// RiverLevelCheck compares levels across junctions of a network file.
type RiverLevelCheck struct {
	Name                string  `yaml:"name"`
	Network             string  `yaml:"network"`
	MaxRelativeChange   float64 `yaml:"maxRelativeChange,omitempty"`
	MaxAbsoluteChange   float64 `yaml:"maxAbsoluteChange,omitempty"`
	DistanceErrorMargin float64 `yaml:"distanceErrorMargin,omitempty"`
	// ValueName compares a static calculation-point value instead of series.
	ValueName     string `yaml:"valueName,omitempty"`
	InteriorNodes bool   `yaml:"interiorNodes,omitempty"`
}

// WellSeriesCheck flags observations outside the Tukey fences of each
// point's own series.
type WellSeriesCheck struct {
	Name   string `yaml:"name"`
	Points string `yaml:"points"`
	// IQRFactor scales the inter-quartile range; 0 means 1.5.
	IQRFactor float64 `yaml:"iqrFactor,omitempty"`
	// MinObservations skips shorter series; 0 means 4.
	MinObservations int `yaml:"minObservations,omitempty"`
}

// Setting is a check parameter given either as a number or as the path of a
// grid holding one value per cell. The zero Setting is unset: the key was
// omitted or null.
type Setting struct {
	Value float64
	Path  string

	set bool
}

// Number returns a constant setting.
func Number(v float64) Setting { return Setting{Value: v, set: true} }

// GridPath returns a setting read from the grid at path.
func GridPath(path string) Setting { return Setting{Path: path, set: true} }

// IsSet reports whether the setting was given.
func (s Setting) IsSet() bool { return s.set || s.Path != "" }

// IsGrid reports whether the setting refers to a grid file.
func (s Setting) IsGrid() bool { return s.Path != "" }

func (s Setting) String() string {
	switch {
	case s.IsGrid():
		return s.Path
	case !s.IsSet():
		return "unset"
	}
	return strconv.FormatFloat(s.Value, 'g', -1, 64)
}

// UnmarshalYAML accepts a numeric scalar, a path string or null.
func (s *Setting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: line %d: setting must be a number or a grid path", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*s = Setting{}
		return nil
	case "!!int", "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = Number(v)
		return nil
	}
	var path string
	if err := node.Decode(&path); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("config: line %d: empty grid path", node.Line)
	}
	*s = GridPath(path)
	return nil
}

// MarshalYAML writes the number, the path or null.
func (s Setting) MarshalYAML() (interface{}, error) {
	switch {
	case s.IsGrid():
		return s.Path, nil
	case !s.IsSet():
		return nil, nil
	}
	return s.Value, nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data strictly (unknown keys are errors), fills defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Orphan {
		o := &c.Orphan[i]
		if o.Radius == 0 {
			o.Radius = 1
		}
		if o.MaxRecursiveLevel == 0 {
			o.MaxRecursiveLevel = 4
		}
		if o.Precision == nil {
			p := 3
			o.Precision = &p
		}
		if o.Connectivity == 0 {
			o.Connectivity = 8
		}
		if o.OutputSuffix == "" {
			o.OutputSuffix = "_orphans"
		}
	}
	for i := range c.Range {
		if c.Range[i].Output == "" {
			c.Range[i].Output = c.Range[i].Grid + "_range"
		}
	}
	for i := range c.WellSeries {
		w := &c.WellSeries[i]
		if w.IQRFactor == 0 {
			w.IQRFactor = 1.5
		}
		if w.MinObservations == 0 {
			w.MinObservations = 4
		}
	}
}

// Validate checks every section and joins all problems into one error
// wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if e := c.AreaOfInterest; e != nil && (e.Raster().IsEmpty() || !e.Raster().IsFinite()) {
		bad("areaOfInterest %s has no area", e.Raster())
	}
	names := map[string]bool{}
	unique := func(kind, name string) {
		if name == "" {
			bad("%s check without name", kind)
			return
		}
		if names[name] {
			bad("duplicate check name %q", name)
		}
		names[name] = true
	}
	for _, o := range c.Orphan {
		unique("orphan", o.Name)
		if len(o.Grids) == 0 {
			bad("orphan %q: no grids", o.Name)
		}
		if o.Radius < 1 || o.MaxRecursiveLevel < 1 {
			bad("orphan %q: radius and maxRecursiveLevel must be ≥ 1", o.Name)
		}
		if o.MaxMainConnectionCount < 0 || o.MinMostOccurringCount < 0 || o.MaxOtherValueCount < 0 || o.ValueMargin < 0 {
			bad("orphan %q: thresholds cannot be negative", o.Name)
		}
		if o.Connectivity != 4 && o.Connectivity != 8 {
			bad("orphan %q: connectivity must be 4 or 8, got %d", o.Name, o.Connectivity)
		}
	}
	for _, r := range c.Range {
		unique("range", r.Name)
		if r.Grid == "" {
			bad("range %q: no grid", r.Name)
		}
		if !r.Min.IsSet() && !r.Max.IsSet() {
			bad("range %q: needs min, max or both", r.Name)
		}
		if r.Min.IsSet() && r.Max.IsSet() && !r.Min.IsGrid() && !r.Max.IsGrid() && r.Min.Value > r.Max.Value {
			bad("range %q: min %g exceeds max %g", r.Name, r.Min.Value, r.Max.Value)
		}
	}
	for _, r := range c.RiverLevel {
		unique("riverLevel", r.Name)
		if r.Network == "" {
			bad("riverLevel %q: no network", r.Name)
		}
		if r.MaxRelativeChange < 0 || r.MaxAbsoluteChange < 0 || r.DistanceErrorMargin < 0 {
			bad("riverLevel %q: thresholds cannot be negative", r.Name)
		}
	}
	for _, w := range c.WellSeries {
		unique("wellSeries", w.Name)
		if w.Points == "" {
			bad("wellSeries %q: no points file", w.Name)
		}
		if w.IQRFactor < 0 || w.MinObservations < 0 {
			bad("wellSeries %q: iqrFactor and minObservations cannot be negative", w.Name)
		}
	}
	return errors.Join(errs...)
}
