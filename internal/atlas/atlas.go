// Package atlas keeps the set of loaded maps and their finders.
//
// Entries are immutable and replaced wholesale on reload, so readers never
// lock. JPS+ tables are taken from a TableStore when present and rebuilt when
// missing or built for a different layout.
package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
	"github.com/udisondev/gridnav/internal/pathfind"
)

var (
	// ErrUnknownMap is returned for queries against a map ID that is not loaded.
	ErrUnknownMap = errors.New("unknown map")
	// ErrDuplicateMap is returned when two map files in a directory share an ID.
	ErrDuplicateMap = errors.New("duplicate map id")
)

// TableStore persists JPS+ tables by map ID. LoadTable must return an error
// wrapping jpsplus.ErrNotFound when no table is stored.
type TableStore interface {
	LoadTable(ctx context.Context, mapID string) (*jpsplus.Table, error)
	SaveTable(ctx context.Context, mapID string, t *jpsplus.Table) error
}

// Options configures an Atlas.
type Options struct {
	Algorithm     pathfind.Algorithm
	Heuristic     pathfind.Heuristic
	MaxExpansions int

	// Store is consulted for JPS+ tables. Nil means always build in memory.
	Store TableStore
	// RebuildMissing builds and saves a table when the store has none or
	// holds a stale one. When false such maps fail to load.
	RebuildMissing bool
	// Workers bounds preprocessing and directory loading concurrency.
	// 0 means GOMAXPROCS.
	Workers int
}

// Entry is one loaded map.
type Entry struct {
	Map      *grid.Map
	Path     string         // source file, empty for maps added directly
	Table    *jpsplus.Table // nil unless the algorithm is JPS+
	Finder   *pathfind.Finder
	LoadedAt time.Time
}

// Atlas is a concurrent registry of maps keyed by ID.
type Atlas struct {
	opts Options

	mu      sync.Mutex // serializes writers
	entries atomic.Pointer[map[string]*Entry]
}

// New creates an empty Atlas.
func New(opts Options) *Atlas {
	a := &Atlas{opts: opts}
	empty := map[string]*Entry{}
	a.entries.Store(&empty)
	return a
}

// Get returns the entry for id.
func (a *Atlas) Get(id string) (*Entry, bool) {
	e, ok := (*a.entries.Load())[id]
	return e, ok
}

// IDs returns the loaded map IDs in sorted order.
func (a *Atlas) IDs() []string {
	return slices.Sorted(maps.Keys(*a.entries.Load()))
}

// Len returns the number of loaded maps.
func (a *Atlas) Len() int {
	return len(*a.entries.Load())
}

// FindPath runs a query on map id.
func (a *Atlas) FindPath(id string, start, end grid.Coord) ([]grid.Vec2, error) {
	e, ok := a.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMap, id)
	}
	return e.Finder.FindPath(start, end)
}

// Add prepares m and registers it, replacing any entry with the same ID.
func (a *Atlas) Add(ctx context.Context, m *grid.Map) (*Entry, error) {
	return a.add(ctx, m, "")
}

func (a *Atlas) add(ctx context.Context, m *grid.Map, path string) (*Entry, error) {
	e, err := a.prepare(ctx, m)
	if err != nil {
		return nil, err
	}
	e.Path = path
	var replaced []string
	a.update(func(entries map[string]*Entry) {
		if path != "" {
			replaced = dropPath(entries, path)
		}
		entries[m.ID] = e
	})
	for _, id := range replaced {
		if id != m.ID {
			slog.Info("map removed", "map", id, "file", path)
		}
	}

	slog.Info("map loaded",
		"map", m.ID,
		"columns", m.Grid.Columns(),
		"rows", m.Grid.Rows(),
		"algorithm", a.opts.Algorithm)
	return e, nil
}

// Remove unregisters map id. It reports whether the map was loaded.
func (a *Atlas) Remove(id string) bool {
	var removed bool
	a.update(func(entries map[string]*Entry) {
		_, removed = entries[id]
		delete(entries, id)
	})
	if removed {
		slog.Info("map removed", "map", id)
	}
	return removed
}

// LoadFile reads a map file and registers it.
func (a *Atlas) LoadFile(ctx context.Context, path string) (*Entry, error) {
	m, err := grid.LoadMap(path)
	if err != nil {
		return nil, err
	}
	return a.add(ctx, m, path)
}

// RemoveFile unregisters every map loaded from path. It reports whether any
// map was loaded from it.
func (a *Atlas) RemoveFile(path string) bool {
	var removed []string
	a.update(func(entries map[string]*Entry) {
		removed = dropPath(entries, path)
	})
	for _, id := range removed {
		slog.Info("map removed", "map", id, "file", path)
	}
	return len(removed) > 0
}

// dropPath deletes the entries loaded from path and returns their IDs.
func dropPath(entries map[string]*Entry, path string) []string {
	var ids []string
	for id, e := range entries {
		if e.Path == path {
			ids = append(ids, id)
			delete(entries, id)
		}
	}
	return ids
}

// LoadDir loads every map file in dir concurrently and returns the number
// loaded. All files are parsed before any map is registered; two files with
// the same map ID fail with ErrDuplicateMap. The first failure cancels the rest.
func (a *Atlas) LoadDir(ctx context.Context, dir string) (int, error) {
	paths, err := MapFiles(dir)
	if err != nil {
		return 0, err
	}

	parsed := make([]*grid.Map, len(paths))
	var pg errgroup.Group
	if a.opts.Workers > 0 {
		pg.SetLimit(a.opts.Workers)
	}
	for i, path := range paths {
		pg.Go(func() error {
			m, err := grid.LoadMap(path)
			parsed[i] = m
			return err
		})
	}
	if err := pg.Wait(); err != nil {
		return 0, err
	}

	owners := make(map[string]string, len(parsed))
	for i, m := range parsed {
		if prev, ok := owners[m.ID]; ok {
			return 0, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateMap, m.ID, prev, paths[i])
		}
		owners[m.ID] = paths[i]
	}

	eg, ctx := errgroup.WithContext(ctx)
	if a.opts.Workers > 0 {
		eg.SetLimit(a.opts.Workers)
	}
	for i, m := range parsed {
		eg.Go(func() error {
			_, err := a.add(ctx, m, paths[i])
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	slog.Info("maps loaded", "count", len(paths), "dir", dir)
	return len(paths), nil
}

// MapFiles lists map files in dir in name order.
func MapFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !grid.IsMapFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

func (a *Atlas) update(fn func(entries map[string]*Entry)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := maps.Clone(*a.entries.Load())
	fn(next)
	a.entries.Store(&next)
}

func (a *Atlas) prepare(ctx context.Context, m *grid.Map) (*Entry, error) {
	opts := []pathfind.Option{
		pathfind.WithAlgorithm(a.opts.Algorithm),
		pathfind.WithHeuristic(a.opts.Heuristic),
		pathfind.WithMaxExpansions(a.opts.MaxExpansions),
	}

	var table *jpsplus.Table
	if a.opts.Algorithm == pathfind.JPSPlus {
		t, err := a.acquireTable(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", m.ID, err)
		}
		table = t
		opts = append(opts, pathfind.WithTable(t))
	}

	finder, err := pathfind.New(m.Grid, opts...)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", m.ID, err)
	}
	return &Entry{Map: m, Table: table, Finder: finder, LoadedAt: time.Now()}, nil
}

// acquireTable returns a table matching m.Grid. A stored table is used when
// its fingerprint matches; otherwise one is built and, with a store, saved.
// Decode failures are returned as is.
func (a *Atlas) acquireTable(ctx context.Context, m *grid.Map) (*jpsplus.Table, error) {
	if a.opts.Store == nil {
		return jpsplus.Build(ctx, m.Grid, a.opts.Workers)
	}

	t, err := a.opts.Store.LoadTable(ctx, m.ID)
	switch {
	case err == nil:
		checkErr := t.Check(m.Grid)
		if checkErr == nil {
			slog.Debug("jps+ table loaded", "map", m.ID, "jump_points", t.JumpPoints())
			return t, nil
		}
		if !a.opts.RebuildMissing {
			return nil, checkErr
		}
		slog.Warn("jps+ table stale, rebuilding",
			"map", m.ID,
			"stored", t.Fingerprint().Short(),
			"grid", m.Grid.Fingerprint().Short())
	case errors.Is(err, jpsplus.ErrNotFound):
		if !a.opts.RebuildMissing {
			return nil, err
		}
	default:
		return nil, err
	}

	return a.Rebuild(ctx, m)
}

// Rebuild builds the JPS+ table for m and saves it to the store, if any.
func (a *Atlas) Rebuild(ctx context.Context, m *grid.Map) (*jpsplus.Table, error) {
	start := time.Now()
	t, err := jpsplus.Build(ctx, m.Grid, a.opts.Workers)
	if err != nil {
		return nil, err
	}
	if a.opts.Store != nil {
		if err := a.opts.Store.SaveTable(ctx, m.ID, t); err != nil {
			return nil, err
		}
	}
	slog.Info("jps+ table built",
		"map", m.ID,
		"jump_points", t.JumpPoints(),
		"fingerprint", t.Fingerprint().Short(),
		"elapsed", time.Since(start))
	return t, nil
}
