package results_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/imodcheck/results"
)

var sample = []results.Record{
	{Check: "orphan", Category: results.Warning, Layer: "kd.idf", X: 150, Y: 250, Value: 5, Message: "orphan cell"},
	{Check: "range", Category: results.Error, Layer: "khv.idf", X: 50, Y: 50, Value: -1, Message: "below minimum"},
	{Check: "orphan", Category: results.Warning, Layer: "kd.idf", X: 350, Y: 250, Value: 7, Message: "orphan cell"},
}

// RecorderSuite runs the same contract against every implementation.
type RecorderSuite struct {
	suite.Suite
	open func(t *testing.T) results.Recorder
	rec  results.Recorder
}

func (s *RecorderSuite) SetupTest() {
	s.rec = s.open(s.T())
}

func (s *RecorderSuite) TestFilterAndOrder() {
	ctx := context.Background()
	s.Require().NoError(s.rec.Record(ctx, sample...))

	all, err := s.rec.Records(ctx, "")
	s.Require().NoError(err)
	s.Equal(sample, all)

	orphans, err := s.rec.Records(ctx, "orphan")
	s.Require().NoError(err)
	s.Require().Len(orphans, 2)
	s.Equal(150.0, orphans[0].X)
	s.Equal(350.0, orphans[1].X)

	none, err := s.rec.Records(ctx, "missing")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RecorderSuite) TestNaNValue() {
	ctx := context.Background()
	s.Require().NoError(s.rec.Record(ctx, results.Record{Check: "c", Category: results.Error, Value: math.NaN()}))
	got, err := s.rec.Records(ctx, "c")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(math.IsNaN(got[0].Value))
}

func (s *RecorderSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Error(s.rec.Record(ctx, sample[0]))
}

func TestMemoryRecorder(t *testing.T) {
	suite.Run(t, &RecorderSuite{open: func(*testing.T) results.Recorder { return results.NewMemory() }})
}

func TestSQLiteRecorder(t *testing.T) {
	suite.Run(t, &RecorderSuite{open: func(t *testing.T) results.Recorder {
		r, err := results.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "results.db"))
		require.NoError(t, err)
		t.Cleanup(func() { r.Close() })
		return r
	}})
}

// TestSQLiteRecorder_Reopen keeps records across connections.
func TestSQLiteRecorder_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	r, err := results.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.Record(ctx, sample...))
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Record(ctx, sample[0]), results.ErrClosed)

	r, err = results.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Records(ctx, "range")
	require.NoError(t, err)
	assert.Equal(t, []results.Record{sample[1]}, got)
}

func TestCountsAndChecks(t *testing.T) {
	m := results.NewMemory()
	require.NoError(t, m.Record(context.Background(), sample...))
	assert.Equal(t, []string{"orphan", "range"}, m.Checks())
	assert.Equal(t, map[results.Category]int{results.Warning: 2, results.Error: 1}, results.Counts(sample))

	c, err := results.ParseCategory(results.Error.String())
	require.NoError(t, err)
	assert.Equal(t, results.Error, c)
	_, err = results.ParseCategory("fatal")
	assert.Error(t, err)
}
