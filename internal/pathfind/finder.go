// Package pathfind computes shortest 8-connected routes over a grid.Grid.
//
// Three interchangeable strategies are provided: a reference A* with a
// linear-scan open list, Jump Point Search, and JPS+ over a table produced by
// package jpsplus. A Finder is safe for concurrent use; each query runs on its
// own pooled session.
package pathfind

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
)

var (
	// ErrOutOfBounds is returned when a query endpoint lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrMissingTable is returned when JPS+ is selected without a table.
	ErrMissingTable = errors.New("jps+ requires a preprocessed table")
	// ErrTableMismatch is returned when the table was built for another grid.
	ErrTableMismatch = errors.New("jps+ table does not match grid")
	// ErrExpansionLimit is returned when a query exceeds the configured
	// number of node expansions.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

// Route is the result of a query.
type Route struct {
	// Start is the query origin. It is not part of Nodes.
	Start grid.Coord
	// Nodes lists the waypoints after Start, ending at the goal. Consecutive
	// waypoints are joined by straight or diagonal segments.
	Nodes []grid.Coord
	// Cost is the metric length of the route.
	Cost int
	// Expanded is the number of nodes taken from the open list.
	Expanded int
	Found    bool
}

// Option configures a Finder.
type Option func(*Finder)

// WithAlgorithm selects the search strategy. Default is AStar.
func WithAlgorithm(a Algorithm) Option {
	return func(f *Finder) { f.algorithm = a }
}

// WithHeuristic selects the cost metric. Default is Manhattan.
func WithHeuristic(h Heuristic) Option {
	return func(f *Finder) { f.heuristic = h }
}

// WithTable supplies the JPS+ jump distance table.
func WithTable(t *jpsplus.Table) Option {
	return func(f *Finder) { f.table = t }
}

// WithMaxExpansions caps node expansions per query. 0 means unlimited.
func WithMaxExpansions(n int) Option {
	return func(f *Finder) { f.maxExpansions = max(n, 0) }
}

// Finder answers route queries over one immutable grid.
type Finder struct {
	grid          *grid.Grid
	table         *jpsplus.Table
	algorithm     Algorithm
	heuristic     Heuristic
	maxExpansions int
	strategy      strategy

	sessions sync.Pool

	mu   sync.Mutex
	last []grid.Coord
}

// New creates a Finder for g.
func New(g *grid.Grid, opts ...Option) (*Finder, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", grid.ErrInvalidGrid)
	}
	f := &Finder{grid: g}
	for _, opt := range opts {
		opt(f)
	}
	if !f.algorithm.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, f.algorithm)
	}
	if f.algorithm == JPSPlus {
		if f.table == nil {
			return nil, ErrMissingTable
		}
		if err := f.table.Check(g); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTableMismatch, err)
		}
	}
	f.strategy = strategies[f.algorithm]
	cells := g.Len()
	f.sessions.New = func() any { return newSession(cells) }
	return f, nil
}

// Grid returns the grid the Finder searches.
func (f *Finder) Grid() *grid.Grid { return f.grid }

// Algorithm returns the configured strategy.
func (f *Finder) Algorithm() Algorithm { return f.algorithm }

// Heuristic returns the configured metric.
func (f *Finder) Heuristic() Heuristic { return f.heuristic }

// Find searches for a route from start to end. An unreachable or blocked
// endpoint yields a Route with Found == false and a nil error.
func (f *Finder) Find(start, end grid.Coord) (Route, error) {
	if !f.grid.Contains(start) {
		return Route{}, fmt.Errorf("%w: start %s", ErrOutOfBounds, start)
	}
	if !f.grid.Contains(end) {
		return Route{}, fmt.Errorf("%w: end %s", ErrOutOfBounds, end)
	}

	route := Route{Start: start}
	if !f.grid.Walkable(start.X, start.Y) || !f.grid.Walkable(end.X, end.Y) {
		return route, nil
	}
	if start == end {
		route.Nodes = []grid.Coord{}
		route.Found = true
		f.remember(route.Nodes)
		return route, nil
	}

	s := f.sessions.Get().(*session)
	defer f.sessions.Put(s)
	s.reset()

	q := &query{
		grid:      f.grid,
		table:     f.table,
		heuristic: f.heuristic,
		s:         s,
		start:     int32(f.grid.Index(start)),
		goal:      int32(f.grid.Index(end)),
		goalCoord: end,
		limit:     f.maxExpansions,
	}
	found, err := f.strategy.run(q)
	route.Expanded = s.expanded
	if err != nil {
		return route, err
	}
	if !found {
		return route, nil
	}

	route.Cost = int(s.g[q.goal])
	route.Nodes = reconstruct(f.grid, s, q.start, q.goal)
	route.Found = true
	f.remember(route.Nodes)
	return route, nil
}

// FindPath returns the world positions of the route waypoints after start,
// nil when no route exists, or an empty slice when start equals end.
func (f *Finder) FindPath(start, end grid.Coord) ([]grid.Vec2, error) {
	route, err := f.Find(start, end)
	if err != nil {
		return nil, err
	}
	if !route.Found {
		return nil, nil
	}
	path := make([]grid.Vec2, len(route.Nodes))
	for i, c := range route.Nodes {
		path[i] = f.grid.World(c)
	}
	return path, nil
}

// LastRoute returns the waypoints of the most recent successful query.
func (f *Finder) LastRoute() []grid.Coord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.last)
}

func (f *Finder) remember(nodes []grid.Coord) {
	f.mu.Lock()
	f.last = slices.Clone(nodes)
	f.mu.Unlock()
}
