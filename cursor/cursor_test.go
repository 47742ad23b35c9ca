package cursor_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/raster"
)

const nd = raster.DefaultNoData

func filled(t *testing.T, ext raster.Extent, cs, v float64) *raster.Grid {
	t.Helper()
	g, err := raster.New(ext, cs, cs, nd)
	require.NoError(t, err)
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			g.SetCell(r, c, v)
		}
	}
	return g
}

type CursorSuite struct {
	suite.Suite
	wide   *raster.Grid // (0,0,1000,1000), 100 m
	narrow *raster.Grid // (0,0,500,1000), 100 m
}

func (s *CursorSuite) SetupTest() {
	s.wide = filled(s.T(), raster.NewExtent(0, 0, 1000, 1000), 100, 1)
	s.wide.Name = "wide"
	s.narrow = filled(s.T(), raster.NewExtent(0, 0, 500, 1000), 100, 2)
	s.narrow.Name = "narrow"
}

func (s *CursorSuite) newCursor(opts ...cursor.Option) *cursor.Cursor {
	c, err := cursor.New(opts...)
	s.Require().NoError(err)
	return c
}

// TestIntersectionCoverage walks the intersection of two grids.
func (s *CursorSuite) TestIntersectionCoverage() {
	require := s.Require()
	c := s.newCursor()
	require.NoError(c.AddGrid(s.wide))
	require.NoError(c.AddGrid(s.narrow))
	require.NoError(c.Reset())

	require.False(c.IsEmptyExtent())
	require.Equal(raster.NewExtent(0, 0, 500, 1000), c.Extent())
	require.Equal(10, c.Rows())
	require.Equal(5, c.Cols())
	require.Equal(50.0, c.X())
	require.Equal(950.0, c.Y())

	seen := map[[2]float64]int{}
	var order [][2]float64
	for ; c.IsInsideExtent(); c.MoveNext() {
		xy := [2]float64{c.X(), c.Y()}
		seen[xy]++
		order = append(order, xy)
	}
	require.Len(order, 50)
	require.Len(seen, 50, "every coordinate is visited exactly once")
	require.Equal([2]float64{450, 50}, order[len(order)-1])
	require.Equal([2]float64{150, 950}, order[1], "west to east within a row")
	require.Equal([2]float64{50, 850}, order[5], "then north to south")
	require.False(c.MoveNext())
}

// TestResetRewinds checks Reset returns to the first cell.
func (s *CursorSuite) TestResetRewinds() {
	require := s.Require()
	c := s.newCursor()
	require.NoError(c.AddGrid(s.narrow))
	require.NoError(c.Reset())
	for i := 0; i < 7; i++ {
		c.MoveNext()
	}
	require.NoError(c.Reset())
	require.Equal(0, c.Row())
	require.Equal(0, c.Col())
}

// TestMixedResolution reads a coarse grid at a fine step without interpolation.
func (s *CursorSuite) TestMixedResolution() {
	require := s.Require()
	coarse, err := raster.FromRows(raster.NewExtent(0, 0, 200, 200), 100, 100, nd, [][]float64{
		{1, 2},
		{3, 4},
	})
	require.NoError(err)
	fine := filled(s.T(), raster.NewExtent(0, 0, 200, 200), 50, 0)

	c := s.newCursor()
	require.NoError(c.AddGrid(coarse))
	require.NoError(c.AddGrid(fine))
	require.NoError(c.Reset())
	require.Equal(50.0, c.StepX())
	require.Equal(4, c.Rows())

	var got []float64
	for ; c.IsInsideExtent(); c.MoveNext() {
		v, err := c.CellValue(coarse)
		require.NoError(err)
		got = append(got, v)
	}
	require.Equal([]float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, got)
}

// TestAreaOfInterest clips the iteration extent.
func (s *CursorSuite) TestAreaOfInterest() {
	require := s.Require()
	c := s.newCursor(cursor.WithAreaOfInterest(raster.NewExtent(200, 200, 400, 500)))
	require.NoError(c.AddGrid(s.wide))
	require.NoError(c.Reset())
	require.Equal(raster.NewExtent(200, 200, 400, 500), c.Extent())
	require.Equal(3, c.Rows())
	require.Equal(2, c.Cols())
}

// TestEmptyExtent does not crash on disjoint grids.
func (s *CursorSuite) TestEmptyExtent() {
	require := s.Require()
	far := filled(s.T(), raster.NewExtent(5000, 5000, 6000, 6000), 100, 1)
	c := s.newCursor()
	require.NoError(c.AddGrid(s.wide))
	require.NoError(c.AddGrid(far))
	require.NoError(c.Reset())
	require.True(c.IsEmptyExtent())
	require.False(c.IsInsideExtent())
	require.False(c.MoveNext())

	calls := 0
	require.NoError(c.Each(context.Background(), func(*cursor.Cursor) error { calls++; return nil }))
	require.Zero(calls)
}

// TestAddGridAfterReset rejects late registration.
func (s *CursorSuite) TestAddGridAfterReset() {
	c := s.newCursor()
	s.Require().NoError(c.AddGrid(s.wide))
	s.Require().NoError(c.Reset())
	s.Require().ErrorIs(c.AddGrid(s.narrow), cursor.ErrStarted)
	s.Require().ErrorIs(c.AddGrid(nil), cursor.ErrNilGrid)
}

// TestConstantGridsOnly cannot derive an extent.
func (s *CursorSuite) TestConstantGridsOnly() {
	c := s.newCursor()
	s.Require().NoError(c.AddGrid(raster.Constant(3)))
	s.Require().ErrorIs(c.Reset(), cursor.ErrNoGrids)
	s.Require().True(c.IsEmptyExtent())
}

// TestConstantSetting reads a constant alongside a real grid.
func (s *CursorSuite) TestConstantSetting() {
	require := s.Require()
	k := raster.Constant(0.5)
	c := s.newCursor()
	require.NoError(c.AddGrid(s.narrow))
	require.NoError(c.AddGrid(k))
	require.NoError(c.Reset())
	require.Equal(50, c.Rows()*c.Cols())
	v, err := c.CellValue(k)
	require.NoError(err)
	require.Equal(0.5, v)
}

// TestNaNForNoData switches the reported missing value.
func (s *CursorSuite) TestNaNForNoData() {
	require := s.Require()
	s.narrow.SetCell(0, 0, nd)
	for _, useNaN := range []bool{false, true} {
		c := s.newCursor(cursor.WithNaNForNoData(useNaN))
		require.NoError(c.AddGrid(s.narrow))
		require.NoError(c.Reset())
		v, err := c.CellValue(s.narrow)
		require.NoError(err)
		if useNaN {
			require.True(math.IsNaN(v))
		} else {
			require.Equal(nd, v)
		}
	}
}

// TestReleasedGrid surfaces raster.ErrReleased.
func (s *CursorSuite) TestReleasedGrid() {
	c := s.newCursor()
	s.Require().NoError(c.AddGrid(s.narrow))
	s.Require().NoError(c.Reset())
	s.narrow.ReleaseValues()
	_, err := c.CellValue(s.narrow)
	s.Require().ErrorIs(err, raster.ErrReleased)
}

// TestEachCancellation stops at the first poll after cancel.
func (s *CursorSuite) TestEachCancellation() {
	c := s.newCursor()
	s.Require().NoError(c.AddGrid(s.wide))
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := c.Each(ctx, func(*cursor.Cursor) error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	})
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().Equal(3, calls)
}

// TestOptionViolation rejects bad options.
func (s *CursorSuite) TestOptionViolation() {
	_, err := cursor.New(cursor.WithAreaOfInterest(raster.NewExtent(1, 1, 0, 0)))
	s.Require().ErrorIs(err, cursor.ErrOptionViolation)
	_, err = cursor.New(cursor.WithExtentTolerance(-1))
	s.Require().ErrorIs(err, cursor.ErrOptionViolation)
}

func TestCursorSuite(t *testing.T) {
	suite.Run(t, new(CursorSuite))
}
