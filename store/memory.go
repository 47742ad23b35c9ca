package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/imodcheck/network"
	"github.com/katalvlaran/imodcheck/raster"
	"github.com/katalvlaran/imodcheck/timeseries"
)

// Saved is a grid written through Memory.SaveGrid.
type Saved struct {
	Grid *raster.Grid
	Meta Metadata
}

// Memory keeps grids, points, series and networks in maps keyed by path.
// It implements GridStore, PointSeriesStore and NetworkFileStore and is safe
// for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	grids    map[string]*raster.Grid
	saved    map[string]Saved
	points   map[string][]Point
	series   map[string]timeseries.Series
	networks map[string][]*network.Segment
}

var (
	_ GridStore        = (*Memory)(nil)
	_ PointSeriesStore = (*Memory)(nil)
	_ NetworkFileStore = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		grids:    make(map[string]*raster.Grid),
		saved:    make(map[string]Saved),
		points:   make(map[string][]Point),
		series:   make(map[string]timeseries.Series),
		networks: make(map[string][]*network.Segment),
	}
}

// PutGrid registers g under path. g.Name is set to path.
func (m *Memory) PutGrid(path string, g *raster.Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.Name = path
	m.grids[path] = g
}

// LoadGrid returns a copy of the grid at path, so releasing it leaves the
// stored grid intact.
func (m *Memory) LoadGrid(ctx context.Context, path string) (*raster.Grid, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	g, ok := m.grids[path]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	c, err := g.Clone()
	if err != nil {
		return nil, false, fmt.Errorf("store: load %s: %w", path, err)
	}
	return c, true, nil
}

// SaveGrid stores a copy of g under path.
func (m *Memory) SaveGrid(ctx context.Context, g *raster.Grid, path string, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := g.Clone()
	if err != nil {
		return fmt.Errorf("store: save %s: %w", path, err)
	}
	c.Name = path
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[path] = Saved{Grid: c, Meta: meta}
	return nil
}

// SavedGrid returns what SaveGrid wrote under path.
func (m *Memory) SavedGrid(path string) (Saved, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.saved[path]
	return s, ok
}

// SavedPaths lists saved grid paths in lexical order.
func (m *Memory) SavedPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.saved))
	for p := range m.saved {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// PutPoints registers a point file.
func (m *Memory) PutPoints(path string, pts []Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[path] = pts
}

// LoadPoints returns the points registered under path.
func (m *Memory) LoadPoints(ctx context.Context, path string) ([]Point, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	pts, ok := m.points[path]
	return pts, ok, nil
}

// PutSeries registers a series under ref.
func (m *Memory) PutSeries(ref string, s timeseries.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[ref] = s
}

// LoadSeries returns the series registered under ref.
func (m *Memory) LoadSeries(ctx context.Context, ref string) (timeseries.Series, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[ref]
	return s, ok, nil
}

// PutNetwork registers the segments of a network file.
func (m *Memory) PutNetwork(path string, segs []*network.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networks[path] = segs
}

// LoadNetwork returns the segments registered under path.
func (m *Memory) LoadNetwork(ctx context.Context, path string) ([]*network.Segment, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	segs, ok := m.networks[path]
	return segs, ok, nil
}
