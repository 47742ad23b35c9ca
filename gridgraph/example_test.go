package gridgraph_test

import (
	"fmt"

	"github.com/katalvlaran/imodcheck/cursor"
	"github.com/katalvlaran/imodcheck/gridgraph"
	"github.com/katalvlaran/imodcheck/raster"
)

// ExampleAnalyzer_IsOrphanCell walks a grid and reports its orphan cells.
//
//	10 10 10 10
//	10  5 10 10
//	10 10 10  7
//	10 10 10  7
//
// The 5 is isolated; the two 7s form a feature together. The flood fill
// around the 5 meets the 7s, so one stray value is tolerated.
func ExampleAnalyzer_IsOrphanCell() {
	g, _ := raster.FromRows(raster.NewExtent(0, 0, 4, 4), 1, 1, -9999, [][]float64{
		{10, 10, 10, 10},
		{10, 5, 10, 10},
		{10, 10, 10, 7},
		{10, 10, 10, 7},
	})
	opts := gridgraph.DefaultOrphanOptions()
	opts.MaxOtherValueCount = 1
	a, _ := gridgraph.NewAnalyzer(opts)
	c, _ := cursor.New()
	_ = c.AddGrid(g)
	_ = c.Reset()
	for ; c.IsInsideExtent(); c.MoveNext() {
		if ok, _ := a.IsOrphanCell(c, g, c.X(), c.Y()); ok {
			fmt.Printf("orphan at (%g,%g)\n", c.X(), c.Y())
		}
	}
	// Output:
	// orphan at (1.5,2.5)
}
