package gridgraph

import (
	"math"

	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/raster"
)

// Analyzer runs orphan-cell detection with fixed options. It keeps no state
// between calls; one Analyzer can serve many cursors.
type Analyzer struct {
	opts    OrphanOptions
	offsets [][2]int
}

// NewAnalyzer validates opts and precomputes the seed offsets.
func NewAnalyzer(opts OrphanOptions) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{opts: opts, offsets: opts.Conn.offsets()}, nil
}

// Options returns the analyzer's options.
func (a *Analyzer) Options() OrphanOptions { return a.opts }

// IsOrphanCell reports whether the cell of g containing (x,y) is an orphan.
// Neighbourhood windows are read through c, so c's NoData mode applies.
func (a *Analyzer) IsOrphanCell(c *cursor.Cursor, g *raster.Grid, x, y float64) (bool, error) {
	res, err := a.Analyze(c, g, x, y)
	if err != nil {
		return false, err
	}
	return res.Orphan, nil
}

// cellKey addresses a grid cell as (row, col) everywhere in this package.
type cellKey struct{ row, col int }

// frontier is a queued flood-fill cell with its hop level.
type frontier struct {
	cellKey
	level int
}

// analysis carries the per-call state of one Analyze run.
type analysis struct {
	a       *Analyzer
	c       *cursor.Cursor
	g       *raster.Grid
	value   float64
	mo      float64
	visited map[cellKey]struct{}
	others  map[float64]struct{}
}

// Analyze classifies the cell of g containing (x,y):
//
//  1. a NoData cell is never an orphan;
//  2. the most occurring neighbour value (excluding NaN, NoData and the
//     cell's own value; ties go to the first in row-major window order) is
//     the reference;
//  3. a difference below ValueMargin is not meaningful;
//  4. a value strictly between the neighbourhood min and max is a smooth
//     transition, not an anomaly;
//  5. otherwise two depth-bounded flood fills count the cells connected with
//     the cell's own value and with the reference value, and the distinct
//     stray values met on the way;
//  6. the cell is an orphan iff main ≤ MaxMainConnectionCount,
//     most-occurring ≥ MinMostOccurringCount and strays ≤ MaxOtherValueCount.
func (a *Analyzer) Analyze(c *cursor.Cursor, g *raster.Grid, x, y float64) (OrphanResult, error) {
	if c == nil || g == nil {
		return OrphanResult{}, ErrNilInput
	}
	if g.IsConstant() {
		return OrphanResult{}, ErrConstantGrid
	}
	row, col, ok := g.RowCol(x, y)
	if !ok {
		return OrphanResult{Reason: ReasonNoData, Value: g.NoData()}, nil
	}
	cx, cy := g.CellCenter(row, col)
	w, err := c.WindowAt(g, cx, cy, a.opts.Radius, a.opts.Precision)
	if err != nil {
		return OrphanResult{}, err
	}

	v := w.Center()
	res := OrphanResult{Value: v}
	if missing(g, w, v) {
		res.Reason = ReasonNoData
		return res, nil
	}

	mo, lo, hi, found := summarize(g, w, v)
	if !found {
		res.Reason = ReasonUniform
		return res, nil
	}
	res.MostOccurring = mo
	if math.Abs(v-mo) < a.opts.ValueMargin {
		res.Reason = ReasonWithinMargin
		return res, nil
	}
	if lo < v && v < hi {
		res.Reason = ReasonInBetween
		return res, nil
	}

	an := &analysis{
		a: a, c: c, g: g, value: v, mo: mo,
		visited: map[cellKey]struct{}{{row, col}: {}},
		others:  map[float64]struct{}{},
	}
	an.noteOthers(w)
	start := cellKey{row, col}
	if res.MainConnections, err = an.spread(start, w, v); err != nil {
		return OrphanResult{}, err
	}
	if res.MostOccurringConnections, err = an.spread(start, w, mo); err != nil {
		return OrphanResult{}, err
	}
	res.OtherValues = len(an.others)

	res.Orphan = res.MainConnections <= a.opts.MaxMainConnectionCount &&
		res.MostOccurringConnections >= a.opts.MinMostOccurringCount &&
		res.OtherValues <= a.opts.MaxOtherValueCount
	res.Reason = ReasonConnected
	if res.Orphan {
		res.Reason = ReasonOrphan
	}

	return res, nil
}

// missing reports whether v is NaN or a NoData value of g or of the window.
func missing(g *raster.Grid, w cursor.Window, v float64) bool {
	return math.IsNaN(v) || v == w.NoData || v == g.NoData()
}

// summarize scans the window (centre excluded) in row-major order and returns
// the most occurring value, the min and the max among values that are
// neither missing nor equal to v. found is false when no such value exists.
func summarize(g *raster.Grid, w cursor.Window, v float64) (mo, lo, hi float64, found bool) {
	var (
		distinct []float64
		counts   []int
	)
	lo, hi = math.Inf(1), math.Inf(-1)
	center := len(w.Values) / 2
	for i, u := range w.Values {
		if i == center || missing(g, w, u) || u == v {
			continue
		}
		lo = math.Min(lo, u)
		hi = math.Max(hi, u)
		k := indexOf(distinct, u)
		if k < 0 {
			distinct = append(distinct, u)
			counts = append(counts, 1)
			continue
		}
		counts[k]++
	}
	if len(distinct) == 0 {
		return 0, 0, 0, false
	}
	best := 0
	for k := 1; k < len(counts); k++ {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return distinct[best], lo, hi, true
}

func indexOf(vs []float64, v float64) int {
	for i, u := range vs {
		if u == v {
			return i
		}
	}
	return -1
}

// noteOthers records window values that are neither the cell value nor the
// most occurring value.
func (an *analysis) noteOthers(w cursor.Window) {
	for _, u := range w.Values {
		if missing(an.g, w, u) || u == an.value || u == an.mo {
			continue
		}
		an.others[u] = struct{}{}
	}
}

// spread floods from the seed neighbours of start whose value equals target
// and returns the number of cells reached. Seeds sit at level 1; a cell
// below MaxRecursiveLevel is expanded by examining the full window around it.
// visited is shared between calls so no cell is counted twice.
//
// Time: O(N·(2r+1)²) for N reached cells, bounded by the level limit.
func (an *analysis) spread(start cellKey, w cursor.Window, target float64) (int, error) {
	var queue []frontier
	for _, d := range an.a.offsets {
		if d[0] < -w.Radius || d[0] > w.Radius || d[1] < -w.Radius || d[1] > w.Radius {
			continue
		}
		if w.At(d[0], d[1]) != target {
			continue
		}
		queue = an.enqueue(queue, cellKey{start.row + d[0], start.col + d[1]}, 1)
	}

	r := an.a.opts.Radius
	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		if cur.level >= an.a.opts.MaxRecursiveLevel {
			continue
		}
		x, y := an.g.CellCenter(cur.row, cur.col)
		nw, err := an.c.WindowAt(an.g, x, y, r, an.a.opts.Precision)
		if err != nil {
			return 0, err
		}
		an.noteOthers(nw)
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				if (dr == 0 && dc == 0) || nw.At(dr, dc) != target {
					continue
				}
				queue = an.enqueue(queue, cellKey{cur.row + dr, cur.col + dc}, cur.level+1)
			}
		}
	}

	return len(queue), nil
}

func (an *analysis) enqueue(queue []frontier, k cellKey, level int) []frontier {
	if !an.g.InBounds(k.row, k.col) {
		return queue
	}
	if _, seen := an.visited[k]; seen {
		return queue
	}
	an.visited[k] = struct{}{}
	return append(queue, frontier{cellKey: k, level: level})
}
