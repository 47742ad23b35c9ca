package check_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/imodcheck/check"
	"github.com/katalvlaran/imodcheck/config"
	"github.com/katalvlaran/imodcheck/gridgraph"
	"github.com/katalvlaran/imodcheck/network"
	"github.com/katalvlaran/imodcheck/raster"
	"github.com/katalvlaran/imodcheck/results"
	"github.com/katalvlaran/imodcheck/store"
	"github.com/katalvlaran/imodcheck/timeseries"
)

const nd = raster.DefaultNoData

var t0 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func daily(vs ...float64) timeseries.Series {
	s := make(timeseries.Series, len(vs))
	for i, v := range vs {
		s[i] = timeseries.Point{Time: t0.AddDate(0, 0, i), Value: v}
	}
	return s
}

// fixture fills a store with one dataset per check kind:
//
//	a.idf      3×3 grid of 10s with a 5 in the centre
//	g.idf      2×2 grid {{1,5},{nd,-2}}, max.idf {{10,4},{10,10}}
//	river.isg  A (0,0)-(100,0) and B (100,0)-(200,0), levels 10 and 10.5
//	wells.ipf  w1 with one spike, w2 with a missing series
func fixture(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	grid := func(path string, rows [][]float64) {
		ext := raster.NewExtent(0, 0, float64(len(rows[0])), float64(len(rows)))
		g, err := raster.FromRows(ext, 1, 1, nd, rows)
		require.NoError(t, err)
		m.PutGrid(path, g)
	}
	grid("a.idf", [][]float64{{10, 10, 10}, {10, 5, 10}, {10, 10, 10}})
	grid("g.idf", [][]float64{{1, 5}, {nd, -2}})
	grid("max.idf", [][]float64{{10, 4}, {10, 10}})

	pa := &network.CalculationPoint{ID: "a50", Distance: 50, SeriesRef: "A/a50"}
	pb := &network.CalculationPoint{ID: "b50", Distance: 50, SeriesRef: "B/b50"}
	a, err := network.NewSegment("A", []r2.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, []*network.CalculationPoint{pa})
	require.NoError(t, err)
	b, err := network.NewSegment("B", []r2.Point{{X: 100, Y: 0}, {X: 200, Y: 0}}, []*network.CalculationPoint{pb})
	require.NoError(t, err)
	m.PutNetwork("river.isg", []*network.Segment{a, b})
	m.PutSeries("A/a50", daily(10, 10))
	m.PutSeries("B/b50", daily(10.5, 10.5))

	m.PutPoints("wells.ipf", []store.Point{
		{ID: "w1", X: 10, Y: 20, SeriesRef: "w1.txt"},
		{ID: "w2", X: 30, Y: 40, SeriesRef: "w2.txt"},
		{ID: "w3", X: 50, Y: 60},
	})
	m.PutSeries("w1.txt", daily(10, 10.1, 9.9, 10, 10.05, 25))
	return m
}

type CheckSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Memory
	rec   *results.Memory
	logs  *bytes.Buffer
	env   *check.Env
}

func (s *CheckSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = fixture(s.T())
	s.rec = results.NewMemory()
	s.logs = &bytes.Buffer{}
	s.env = &check.Env{
		Grids:    s.store,
		Points:   s.store,
		Networks: s.store,
		Results:  s.rec,
		Logger:   slog.New(slog.NewTextHandler(s.logs, nil)),
	}
}

func (s *CheckSuite) records(name string) []results.Record {
	recs, err := s.rec.Records(s.ctx, name)
	s.Require().NoError(err)
	return recs
}

func (s *CheckSuite) TestOrphan() {
	c := &check.OrphanCheck{
		CheckName:    "orphans",
		Grids:        []string{"a.idf", "absent.idf"},
		OutputSuffix: "_orphans",
		Options:      gridgraph.DefaultOrphanOptions(),
	}
	s.Require().NoError(c.Run(s.ctx, s.env))

	recs := s.records("orphans")
	s.Require().Len(recs, 1)
	s.Equal(1.5, recs[0].X)
	s.Equal(1.5, recs[0].Y)
	s.Equal(5.0, recs[0].Value)
	s.Equal(results.Warning, recs[0].Category)

	saved, ok := s.store.SavedGrid("a.idf_orphans")
	s.Require().True(ok)
	v, err := saved.Grid.Cell(1, 1)
	s.Require().NoError(err)
	s.Equal(5.0, v)
	v, err = saved.Grid.Cell(0, 0)
	s.Require().NoError(err)
	s.Equal(nd, v)
	s.Equal("orphans", saved.Meta["check"])

	s.Contains(s.logs.String(), "absent.idf", "a missing layer is logged, not fatal")
}

func (s *CheckSuite) TestOrphan_InvalidOptions() {
	opts := gridgraph.DefaultOrphanOptions()
	opts.Radius = 0
	err := (&check.OrphanCheck{CheckName: "bad", Grids: []string{"a.idf"}, Options: opts}).Run(s.ctx, s.env)
	s.True(check.IsConfigurationError(err))
	s.ErrorIs(err, gridgraph.ErrOptionViolation)
}

func (s *CheckSuite) TestRange() {
	c := &check.RangeCheck{
		CheckName: "range",
		Grid:      "g.idf",
		Min:       config.Number(0),
		Max:       config.GridPath("max.idf"),
		Output:    "g_range.idf",
	}
	s.Require().NoError(c.Run(s.ctx, s.env))

	recs := s.records("range")
	s.Require().Len(recs, 2)
	s.Equal([2]float64{1.5, 1.5}, [2]float64{recs[0].X, recs[0].Y})
	s.Equal(5.0, recs[0].Value)
	s.Contains(recs[0].Message, "above maximum 4")
	s.Equal([2]float64{1.5, 0.5}, [2]float64{recs[1].X, recs[1].Y})
	s.Contains(recs[1].Message, "below minimum 0")

	saved, ok := s.store.SavedGrid("g_range.idf")
	s.Require().True(ok)
	s.Equal("max.idf", saved.Meta["max"])
	st, err := saved.Grid.Stats()
	s.Require().NoError(err)
	s.Equal(2, st.Count)
}

func (s *CheckSuite) TestRange_MissingInput() {
	c := &check.RangeCheck{CheckName: "range", Grid: "g.idf", Max: config.GridPath("nope.idf")}
	err := c.Run(s.ctx, s.env)
	var ce *check.ConfigurationError
	s.Require().ErrorAs(err, &ce)
	s.Equal("range", ce.Check)
	s.Contains(err.Error(), "nope.idf")
}

func (s *CheckSuite) TestRange_OpenBound() {
	// Only a minimum: 5 has no upper bound to break, -2 is below -1.
	c := &check.RangeCheck{CheckName: "floor", Grid: "g.idf", Min: config.Number(-1), Output: "floor.idf"}
	s.Require().NoError(c.Run(s.ctx, s.env))
	recs := s.records("floor")
	s.Require().Len(recs, 1)
	s.Equal(-2.0, recs[0].Value)
	s.Contains(recs[0].Message, "below minimum -1")

	saved, ok := s.store.SavedGrid("floor.idf")
	s.Require().True(ok)
	s.Equal("unset", saved.Meta["max"])

	err := (&check.RangeCheck{CheckName: "none", Grid: "g.idf"}).Run(s.ctx, s.env)
	s.True(check.IsConfigurationError(err))
}

func (s *CheckSuite) TestRiverLevel() {
	c := &check.RiverLevelCheck{
		CheckName: "levels",
		Network:   "river.isg",
		Level:     network.LevelOptions{MaxAbsoluteChange: 1},
	}
	s.Require().NoError(c.Run(s.ctx, s.env))
	s.Empty(s.records("levels"))

	c.Level.MaxAbsoluteChange = 0.2
	s.Require().NoError(c.Run(s.ctx, s.env))
	recs := s.records("levels")
	s.Require().Len(recs, 1)
	s.Equal(100.0, recs[0].X)
	s.Equal(0.0, recs[0].Y)
	s.InDelta(0.5, recs[0].Value, 1e-12)
	s.Contains(recs[0].Message, "A/a50")
	s.Contains(recs[0].Message, "2021-01-01")
}

func (s *CheckSuite) TestRiverLevel_MissingNetwork() {
	err := (&check.RiverLevelCheck{CheckName: "levels", Network: "none.isg"}).Run(s.ctx, s.env)
	s.True(check.IsConfigurationError(err))
}

func (s *CheckSuite) TestWellSeries() {
	c := &check.WellSeriesCheck{CheckName: "heads", Points: "wells.ipf", IQRFactor: 1.5, MinObservations: 4}
	s.Require().NoError(c.Run(s.ctx, s.env))

	recs := s.records("heads")
	s.Require().Len(recs, 1)
	s.Equal(25.0, recs[0].Value)
	s.Equal(10.0, recs[0].X)
	s.Contains(recs[0].Message, "2021-01-06")
	s.Contains(s.logs.String(), "w2.txt")

	c.MinObservations = 7
	s.rec = results.NewMemory()
	s.env.Results = s.rec
	s.Require().NoError(c.Run(s.ctx, s.env))
	s.Empty(s.records("heads"), "short series are skipped")
}

func (s *CheckSuite) TestMissingService() {
	env := &check.Env{}
	for _, c := range []check.Check{
		&check.OrphanCheck{CheckName: "o", Grids: []string{"a.idf"}, Options: gridgraph.DefaultOrphanOptions()},
		&check.RangeCheck{CheckName: "r", Grid: "g.idf", Max: config.Number(1)},
		&check.RiverLevelCheck{CheckName: "l", Network: "river.isg"},
		&check.WellSeriesCheck{CheckName: "w", Points: "wells.ipf"},
	} {
		err := c.Run(s.ctx, env)
		s.ErrorIs(err, check.ErrMissingService, c.Name())
	}
}

func TestCheckSuite(t *testing.T) {
	suite.Run(t, new(CheckSuite))
}

// failing is a check that always fails with a processing error.
type failing struct{ ran *int }

func (f failing) Name() string { return "failing" }

func (f failing) Run(context.Context, *check.Env) error {
	*f.ran++
	return errors.New("boom")
}

// TestRunner_ClassifiesOutcomes keeps going after a skip and a failure.
func TestRunner_ClassifiesOutcomes(t *testing.T) {
	m := fixture(t)
	env := &check.Env{Grids: m, Points: m, Networks: m, Results: results.NewMemory(),
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
	ran := 0
	checks := []check.Check{
		&check.RangeCheck{CheckName: "missing", Grid: "absent.idf", Max: config.Number(1)},
		failing{ran: &ran},
		&check.WellSeriesCheck{CheckName: "heads", Points: "wells.ipf", IQRFactor: 1.5, MinObservations: 4},
	}
	sum, err := check.NewRunner(env).Run(context.Background(), checks)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Ran)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, ran)
	require.Len(t, sum.Outcomes, 3)
	assert.True(t, sum.Outcomes[0].Skipped)
	assert.EqualError(t, sum.Outcomes[1].Err, "boom")
	assert.NoError(t, sum.Outcomes[2].Err)
}

// TestRunner_Cancelled stops before the first check.
func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := 0
	sum, err := check.NewRunner(&check.Env{}).Run(ctx, []check.Check{failing{ran: &ran}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ran)
	assert.Empty(t, sum.Outcomes)
}

// TestEndToEnd loads a configuration, writes results to SQLite and runs
// every check kind.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	doc := fmt.Sprintf(`
resultsDB: %s
orphan:
  - name: orphans
    grids: [a.idf]
range:
  - name: range
    grid: g.idf
    min: 0
    max: max.idf
riverLevel:
  - name: levels
    network: river.isg
    maxAbsoluteChange: 0.2
wellSeries:
  - name: heads
    points: wells.ipf
`, filepath.Join(t.TempDir(), "results.db"))
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)

	rec, closeFn, err := check.OpenRecorder(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &results.SQLiteRecorder{}, rec)

	m := fixture(t)
	env := &check.Env{Grids: m, Points: m, Networks: m, Results: rec,
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
	env.Apply(cfg)

	checks := check.FromConfig(cfg)
	require.Len(t, checks, 4)
	sum, err := check.NewRunner(env).Run(ctx, checks)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Ran)

	all, err := rec.Records(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[results.Category]int{results.Warning: 2, results.Error: 3}, results.Counts(all))
	assert.Equal(t, []string{"a.idf_orphans", "g.idf_range"}, m.SavedPaths())
}

// TestEnv_AreaOfInterest clips the walk so the orphan falls outside.
func TestEnv_AreaOfInterest(t *testing.T) {
	cfg, err := config.Parse([]byte("areaOfInterest: {minX: 2, minY: 0, maxX: 3, maxY: 3}\n"))
	require.NoError(t, err)
	m := fixture(t)
	rec := results.NewMemory()
	env := &check.Env{Grids: m, Results: rec}
	env.Apply(cfg)
	require.NotNil(t, env.AreaOfInterest)

	c := &check.OrphanCheck{CheckName: "orphans", Grids: []string{"a.idf"}, OutputSuffix: "_o", Options: gridgraph.DefaultOrphanOptions()}
	require.NoError(t, c.Run(context.Background(), env))
	recs, err := rec.Records(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
