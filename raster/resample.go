package raster

import (
	"fmt"
	"math"
)

// Resample returns a copy of g with square cells of size cellSize anchored
// at g's north-west corner (MinX, MaxY). When the extent is not a multiple of
// cellSize the east and south edges move outward to the next whole cell, so
// every source cell lands in some target cell.
//
// Each axis is handled on its own. Along an axis where cellSize is larger
// than g's cell size, every source cell whose centre falls in the target
// cell contributes and is aggregated using method; NoData sources are skipped
// and a target with no data sources becomes NoData. Along an axis where
// cellSize is not larger, the target takes the source row or column
// containing its centre (block replication). Nearest samples the source
// cell under the target centre on both axes.
//
// Complexity: O(source cells + target cells).
func (g *Grid) Resample(cellSize float64, method Method) (*Grid, error) {
	if method < Nearest || method > Mean {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	if g.constant {
		return Constant(g.constValue), nil
	}
	if g.released {
		return nil, fmt.Errorf("%w: %s", ErrReleased, g.Name)
	}
	if !validCellSize(cellSize) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidCellSize, cellSize)
	}
	out, err := New(snapExtent(g.extent, cellSize), cellSize, cellSize, g.noData)
	if err != nil {
		return nil, err
	}
	out.Name = g.Name

	coarsenX := cellSize > g.cellSizeX
	coarsenY := cellSize > g.cellSizeY
	if method == Nearest || (!coarsenX && !coarsenY) {
		g.sampleInto(out)
		return out, nil
	}
	g.aggregateInto(out, method, coarsenX, coarsenY)

	return out, nil
}

// snapExtent keeps (MinX, MaxY) and grows MaxX and MinY to whole cells of cs.
func snapExtent(e Extent, cs float64) Extent {
	cols := math.Ceil(e.Width()/cs - snapSlack)
	rows := math.Ceil(e.Height()/cs - snapSlack)
	return Extent{MinX: e.MinX, MaxX: e.MinX + cols*cs, MaxY: e.MaxY, MinY: e.MaxY - rows*cs}
}

// snapSlack keeps exact multiples from rounding up to an extra cell.
const snapSlack = 1e-9

// sampleInto copies, for every cell of out, the g cell containing its centre.
// Centres in the snapped margin past the east or south edge take the nearest
// edge cell.
func (g *Grid) sampleInto(out *Grid) {
	for r := 0; r < out.rows; r++ {
		for c := 0; c < out.cols; c++ {
			x, y := out.CellCenter(r, c)
			sr := clampIndex(int(math.Floor((g.extent.MaxY-y)/g.cellSizeY)), g.rows)
			sc := clampIndex(int(math.Floor((x-g.extent.MinX)/g.cellSizeX)), g.cols)
			out.values[out.index(r, c)] = g.values[g.index(sr, sc)]
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// accumulator collects the data values contributing to one target cell.
// Distinct values are kept in first-encounter order so the modal tie-break
// is reproducible.
type accumulator struct {
	n        int
	sum      float64
	min, max float64
	distinct []float64
	counts   []int
}

func (a *accumulator) add(v float64, trackMode bool) {
	if a.n == 0 {
		a.min, a.max = v, v
	}
	a.n++
	a.sum += v
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
	if !trackMode {
		return
	}
	for i, d := range a.distinct {
		if d == v {
			a.counts[i]++
			return
		}
	}
	a.distinct = append(a.distinct, v)
	a.counts = append(a.counts, 1)
}

func (a *accumulator) result(method Method) float64 {
	switch method {
	case Minimum:
		return a.min
	case Maximum:
		return a.max
	case Mean:
		return a.sum / float64(a.n)
	default:
		best := 0
		for i := 1; i < len(a.counts); i++ {
			if a.counts[i] > a.counts[best] {
				best = i
			}
		}
		return a.distinct[best]
	}
}

// sourceSpan returns the half-open range of source indices feeding target
// index t along one axis, with n source cells. When coarsening these are the
// sources whose centres fall in the target cell; otherwise it is the single
// source containing the target centre, or the edge source in the snapped margin.
func sourceSpan(t int, targetCS, sourceCS float64, n int, coarsen bool) (lo, hi int) {
	r := targetCS / sourceCS
	if !coarsen {
		i := clampIndex(int(math.Floor((float64(t)+0.5)*r)), n)
		return i, i + 1
	}
	lo = int(math.Ceil(float64(t)*r - 0.5))
	hi = int(math.Ceil(float64(t+1)*r - 0.5))
	if hi > n {
		hi = n
	}
	return lo, hi
}

// aggregateInto folds, for every target cell, the data cells of g selected
// per axis by sourceSpan. Sources of one target are scanned row-major.
func (g *Grid) aggregateInto(out *Grid, method Method, coarsenX, coarsenY bool) {
	trackMode := method == MostOccurring
	for tr := 0; tr < out.rows; tr++ {
		r0, r1 := sourceSpan(tr, out.cellSizeY, g.cellSizeY, g.rows, coarsenY)
		for tc := 0; tc < out.cols; tc++ {
			c0, c1 := sourceSpan(tc, out.cellSizeX, g.cellSizeX, g.cols, coarsenX)
			var acc accumulator
			for i := r0; i < r1; i++ {
				for j := c0; j < c1; j++ {
					v := g.values[g.index(i, j)]
					if g.IsNoData(v) {
						continue
					}
					acc.add(v, trackMode)
				}
			}
			if acc.n > 0 {
				out.values[out.index(tr, tc)] = acc.result(method)
			}
		}
	}
}
