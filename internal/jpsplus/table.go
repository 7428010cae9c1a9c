// Package jpsplus precomputes JPS+ jump point and jump distance tables for a grid.
//
// A table is built once per obstacle layout and is immutable afterwards. It must be
// rebuilt from scratch whenever the layout changes; its fingerprint ties it to the
// layout it was computed for.
package jpsplus

import (
	"errors"
	"fmt"

	"github.com/udisondev/gridnav/internal/grid"
)

var (
	// ErrNotFound is returned by stores when no table exists for a map.
	ErrNotFound = errors.New("jps+ table not found")
	// ErrCorrupt is returned when encoded table data cannot be decoded.
	ErrCorrupt = errors.New("jps+ table corrupt")
	// ErrStale is returned when a table was built for a different obstacle layout.
	ErrStale = errors.New("jps+ table stale")
)

// Table holds per-cell JPS+ data.
//
// distances follow the sign convention:
//
//	> 0  a jump point lies exactly n cells away in that direction
//	< 0  no jump point; |n| free steps remain before an obstacle or the boundary
//	  0  the very next step in that direction is blocked
type Table struct {
	columns     int
	rows        int
	fingerprint grid.Fingerprint
	// jumpFrom bit d is set when the cell is a primary jump point for travel
	// arriving from direction d.
	jumpFrom  []uint8
	distances []int32 // 8 per cell, indexed cell*8 + direction
}

func newTable(columns, rows int, fp grid.Fingerprint) *Table {
	n := columns * rows
	return &Table{
		columns:     columns,
		rows:        rows,
		fingerprint: fp,
		jumpFrom:    make([]uint8, n),
		distances:   make([]int32, n*grid.DirectionCount),
	}
}

// Columns returns the table width.
func (t *Table) Columns() int { return t.columns }

// Rows returns the table height.
func (t *Table) Rows() int { return t.rows }

// Fingerprint returns the layout fingerprint the table was built for.
func (t *Table) Fingerprint() grid.Fingerprint { return t.fingerprint }

// Distance returns the signed jump distance from c in direction d.
func (t *Table) Distance(c grid.Coord, d grid.Direction) int {
	return int(t.distances[t.index(c)*grid.DirectionCount+int(d)])
}

// DistanceAt is Distance addressed by flat cell index.
func (t *Table) DistanceAt(i int, d grid.Direction) int {
	return int(t.distances[i*grid.DirectionCount+int(d)])
}

// IsJumpPoint reports whether c is a primary jump point for any arrival direction.
func (t *Table) IsJumpPoint(c grid.Coord) bool {
	return t.jumpFrom[t.index(c)] != 0
}

// IsJumpPointFrom reports whether c is a primary jump point for travel arriving from d.
func (t *Table) IsJumpPointFrom(c grid.Coord, d grid.Direction) bool {
	return t.jumpFrom[t.index(c)]&(1<<d) != 0
}

// Check verifies that the table was built for g.
func (t *Table) Check(g *grid.Grid) error {
	if t.columns != g.Columns() || t.rows != g.Rows() {
		return fmt.Errorf("%w: table %dx%d, grid %dx%d", ErrStale, t.columns, t.rows, g.Columns(), g.Rows())
	}
	if t.fingerprint != g.Fingerprint() {
		return fmt.Errorf("%w: fingerprint %s, grid %s", ErrStale, t.fingerprint.Short(), g.Fingerprint().Short())
	}
	return nil
}

// JumpPoints returns the number of primary jump points.
func (t *Table) JumpPoints() int {
	n := 0
	for _, m := range t.jumpFrom {
		if m != 0 {
			n++
		}
	}
	return n
}

func (t *Table) index(c grid.Coord) int {
	return c.Y*t.columns + c.X
}

func (t *Table) set(i int, d grid.Direction, v int32) {
	t.distances[i*grid.DirectionCount+int(d)] = v
}

func (t *Table) get(i int, d grid.Direction) int32 {
	return t.distances[i*grid.DirectionCount+int(d)]
}
