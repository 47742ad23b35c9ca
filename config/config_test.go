package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/imodcheck/config"
	"github.com/katalvlaran/imodcheck/raster"
)

const sample = `
areaOfInterest: {minX: 0, minY: 0, maxX: 1000, maxY: 1000}
nanForNoData: true
resultsDB: out/results.db
orphan:
  - name: kd-orphans
    grids: [kd_l1.idf, kd_l2.idf]
    precision: 0
range:
  - name: khv-range
    grid: khv_l1.idf
    min: 0
    max: bounds/khv_max.idf
riverLevel:
  - name: river-levels
    network: river.isg
    maxAbsoluteChange: 0.5
wellSeries:
  - name: heads
    points: wells.ipf
`

// TestParse_Sample decodes every section and fills defaults.
func TestParse_Sample(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	require.NotNil(t, cfg.AreaOfInterest)
	assert.Equal(t, raster.NewExtent(0, 0, 1000, 1000), cfg.AreaOfInterest.Raster())
	assert.True(t, cfg.NaNForNoData)
	assert.Equal(t, "out/results.db", cfg.ResultsDB)

	require.Len(t, cfg.Orphan, 1)
	o := cfg.Orphan[0]
	assert.Equal(t, 1, o.Radius)
	assert.Equal(t, 4, o.MaxRecursiveLevel)
	assert.Equal(t, 0, *o.Precision, "explicit zero precision is kept")
	assert.Equal(t, 8, o.Connectivity)
	assert.Equal(t, "_orphans", o.OutputSuffix)

	require.Len(t, cfg.Range, 1)
	r := cfg.Range[0]
	assert.False(t, r.Min.IsGrid())
	assert.Equal(t, 0.0, r.Min.Value)
	assert.True(t, r.Max.IsGrid())
	assert.Equal(t, "bounds/khv_max.idf", r.Max.Path)
	assert.Equal(t, "khv_l1.idf_range", r.Output)

	assert.Equal(t, 0.5, cfg.RiverLevel[0].MaxAbsoluteChange)
	assert.Equal(t, 1.5, cfg.WellSeries[0].IQRFactor)
	assert.Equal(t, 4, cfg.WellSeries[0].MinObservations)
}

// TestParse_Invalid reports validation failures as ErrInvalidConfig.
func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"UnknownKey":     "orphan:\n  - name: a\n    grids: [x]\n    radiuss: 2\n",
		"NoGrids":        "orphan:\n  - name: a\n",
		"BadConn":        "orphan:\n  - name: a\n    grids: [x]\n    connectivity: 6\n",
		"DuplicateName":  "range:\n  - {name: a, grid: x, min: 0, max: 1}\n  - {name: a, grid: y, min: 0, max: 1}\n",
		"MinAboveMax":    "range:\n  - {name: a, grid: x, min: 5, max: 1}\n",
		"NegativeChange": "riverLevel:\n  - {name: r, network: n, maxAbsoluteChange: -1}\n",
		"EmptyAOI":       "areaOfInterest: {minX: 5, minY: 0, maxX: 5, maxY: 10}\n",
		"MissingName":    "wellSeries:\n  - points: w.ipf\n",
		"NoBounds":       "range:\n  - {name: a, grid: x}\n",
		"NullBounds":     "range:\n  - {name: a, grid: x, min: null, max: ~}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

// TestSetting_RejectsMappings only accepts scalars.
func TestSetting_RejectsMappings(t *testing.T) {
	_, err := config.Parse([]byte("range:\n  - {name: a, grid: x, min: {v: 1}, max: 2}\n"))
	assert.Error(t, err)
}

// TestLoad reads from disk and accepts an empty document.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o600))
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Len(t, cfg.Orphan, 1)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err = config.Load(empty)
	require.NoError(t, err)
	assert.Empty(t, cfg.Orphan)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestSetting_String formats every form.
func TestSetting_String(t *testing.T) {
	assert.Equal(t, "0.25", config.Number(0.25).String())
	assert.Equal(t, "a.idf", config.GridPath("a.idf").String())
	assert.Equal(t, "unset", config.Setting{}.String())
}

// TestParse_OpenBound keeps an omitted bound unset instead of zero.
func TestParse_OpenBound(t *testing.T) {
	cfg, err := config.Parse([]byte("range:\n  - {name: r, grid: a.idf, min: -10}\n"))
	require.NoError(t, err)
	r := cfg.Range[0]
	assert.True(t, r.Min.IsSet())
	assert.Equal(t, -10.0, r.Min.Value)
	assert.False(t, r.Max.IsSet())

	cfg, err = config.Parse([]byte("range:\n  - {name: r, grid: a.idf, max: 0}\n"))
	require.NoError(t, err)
	r = cfg.Range[0]
	assert.False(t, r.Min.IsSet())
	assert.True(t, r.Max.IsSet(), "an explicit zero is a bound")
	assert.Equal(t, 0.0, r.Max.Value)
}
