package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when grid dimensions or cell data are inconsistent.
var ErrInvalidGrid = errors.New("invalid grid")

// Coord is a cell position in grid indices.
type Coord struct {
	X, Y int
}

// Step returns the coordinate n steps away in direction d.
func (c Coord) Step(d Direction, n int) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx*n, Y: c.Y + dy*n}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Vec2 is a world-space position.
type Vec2 struct {
	X, Y float64
}

// Cell is one grid tile. Cells are immutable once the grid is built.
type Cell struct {
	Coord
	World    Vec2
	Obstacle bool
}

// Grid is a fixed-size binary obstacle grid.
// Storage is row-major: index = y*columns + x.
// Thread-safe for reads: a grid is never modified after construction.
type Grid struct {
	columns int
	rows    int
	cells   []Cell
	blocked []bool

	fingerprint Fingerprint
}

// New builds a grid from explicit cells. Each cell is placed by its own coordinate,
// so cells may be listed in any order, but every coordinate must appear exactly once.
func New(columns, rows int, cells []Cell) (*Grid, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, columns, rows)
	}
	if len(cells) != columns*rows {
		return nil, fmt.Errorf("%w: %d cells for %dx%d grid", ErrInvalidGrid, len(cells), columns, rows)
	}

	g := &Grid{
		columns: columns,
		rows:    rows,
		cells:   make([]Cell, len(cells)),
		blocked: make([]bool, len(cells)),
	}
	seen := make([]bool, len(cells))
	for _, c := range cells {
		if !g.InBounds(c.X, c.Y) {
			return nil, fmt.Errorf("%w: cell %s outside %dx%d", ErrInvalidGrid, c.Coord, columns, rows)
		}
		i := g.Index(c.Coord)
		if seen[i] {
			return nil, fmt.Errorf("%w: duplicate cell %s", ErrInvalidGrid, c.Coord)
		}
		seen[i] = true
		g.cells[i] = c
		g.blocked[i] = c.Obstacle
	}
	g.fingerprint = fingerprintOf(g)
	return g, nil
}

// FromObstacles builds a grid from a row-major obstacle mask, placing world anchors
// with the given layout.
func FromObstacles(columns, rows int, obstacles []bool, layout Layout) (*Grid, error) {
	if columns <= 0 || rows <= 0 || len(obstacles) != columns*rows {
		return nil, fmt.Errorf("%w: %d obstacle flags for %dx%d grid", ErrInvalidGrid, len(obstacles), columns, rows)
	}
	cells := make([]Cell, len(obstacles))
	for i, blocked := range obstacles {
		c := Coord{X: i % columns, Y: i / columns}
		cells[i] = Cell{Coord: c, World: layout.Center(c), Obstacle: blocked}
	}
	return New(columns, rows, cells)
}

// Columns returns the grid width.
func (g *Grid) Columns() int { return g.columns }

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// InBounds reports whether (x, y) lies within [0, columns) × [0, rows).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.columns && y < g.rows
}

// Contains reports whether c lies within the grid.
func (g *Grid) Contains(c Coord) bool {
	return g.InBounds(c.X, c.Y)
}

// Walkable reports whether (x, y) is inside the grid and not an obstacle.
func (g *Grid) Walkable(x, y int) bool {
	return g.InBounds(x, y) && !g.blocked[y*g.columns+x]
}

// Index returns the flat index of c. c must be in bounds.
func (g *Grid) Index(c Coord) int {
	return c.Y*g.columns + c.X
}

// CoordOf returns the coordinate of flat index i.
func (g *Grid) CoordOf(i int) Coord {
	return Coord{X: i % g.columns, Y: i / g.columns}
}

// Cell returns the cell at c. c must be in bounds.
func (g *Grid) Cell(c Coord) Cell {
	return g.cells[g.Index(c)]
}

// World returns the world anchor of c. c must be in bounds.
func (g *Grid) World(c Coord) Vec2 {
	return g.cells[g.Index(c)].World
}

// Obstacles returns a copy of the row-major obstacle mask.
func (g *Grid) Obstacles() []bool {
	out := make([]bool, len(g.blocked))
	copy(out, g.blocked)
	return out
}
