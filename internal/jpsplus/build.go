package jpsplus

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/grid"
)

// Build computes the JPS+ table for g in three passes:
// primary jump points, straight distances, diagonal distances.
// workers bounds the goroutines used by the straight pass; <= 0 means GOMAXPROCS.
func Build(ctx context.Context, g *grid.Grid, workers int) (*Table, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	b := &builder{g: g, t: newTable(g.Columns(), g.Rows(), g.Fingerprint())}
	b.primaryJumpPoints()

	if err := b.straightDistances(ctx, workers); err != nil {
		return nil, fmt.Errorf("building straight distances: %w", err)
	}
	if err := b.diagonalDistances(ctx); err != nil {
		return nil, fmt.Errorf("building diagonal distances: %w", err)
	}
	return b.t, nil
}

type builder struct {
	g *grid.Grid
	t *Table
}

// corner describes one L-shaped configuration around an obstacle: the diagonal
// cell at (dx, dy) becomes a jump point for arrivals from the two listed directions
// when it and both cells flanking it are free.
type corner struct {
	dx, dy int
	from   [2]grid.Direction
}

var corners = [4]corner{
	{1, 1, [2]grid.Direction{grid.South, grid.West}},
	{1, -1, [2]grid.Direction{grid.West, grid.North}},
	{-1, -1, [2]grid.Direction{grid.East, grid.North}},
	{-1, 1, [2]grid.Direction{grid.East, grid.South}},
}

func (b *builder) primaryJumpPoints() {
	g := b.g
	for y := range g.Rows() {
		for x := range g.Columns() {
			if g.Walkable(x, y) {
				continue
			}
			for _, c := range corners {
				jx, jy := x+c.dx, y+c.dy
				if !g.Walkable(jx, jy) || !g.Walkable(x, jy) || !g.Walkable(jx, y) {
					continue
				}
				i := jy*g.Columns() + jx
				b.t.jumpFrom[i] |= 1<<c.from[0] | 1<<c.from[1]
			}
		}
	}
}

func (b *builder) straightDistances(ctx context.Context, workers int) error {
	g := b.g
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	// Rows write only East/West slots and columns only North/South slots,
	// so all lines can be scanned concurrently.
	for y := range g.Rows() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.scanLine(grid.Coord{X: 0, Y: y}, grid.West)
			b.scanLine(grid.Coord{X: g.Columns() - 1, Y: y}, grid.East)
			return nil
		})
	}
	for x := range g.Columns() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.scanLine(grid.Coord{X: x, Y: 0}, grid.South)
			b.scanLine(grid.Coord{X: x, Y: g.Rows() - 1}, grid.North)
			return nil
		})
	}
	return eg.Wait()
}

// scanLine fills distances for travel direction d along one row or column.
// start is the boundary cell on the d side; the scan walks away from it, counting
// cells since the last obstacle or jump point.
func (b *builder) scanLine(start grid.Coord, d grid.Direction) {
	g, t := b.g, b.t
	from := d.Opposite()
	soFar := -1
	seen := false

	for c := start; g.Contains(c); c = c.Step(from, 1) {
		i := g.Index(c)
		if !g.Walkable(c.X, c.Y) {
			soFar = -1
			seen = false
			t.set(i, d, 0)
			continue
		}

		soFar++
		if seen {
			t.set(i, d, int32(soFar))
		} else {
			t.set(i, d, int32(-soFar))
		}

		if t.jumpFrom[i]&(1<<from) != 0 {
			soFar = 0
			seen = true
		}
	}
}

func (b *builder) diagonalDistances(ctx context.Context) error {
	g := b.g
	eg, ctx := errgroup.WithContext(ctx)

	// South-bound diagonals depend on the row below, north-bound on the row above.
	eg.Go(func() error {
		for y := 0; y < g.Rows(); y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.diagonalRow(y, grid.SouthWest, grid.SouthEast)
		}
		return nil
	})
	eg.Go(func() error {
		for y := g.Rows() - 1; y >= 0; y-- {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.diagonalRow(y, grid.NorthWest, grid.NorthEast)
		}
		return nil
	})
	return eg.Wait()
}

func (b *builder) diagonalRow(y int, dirs ...grid.Direction) {
	g := b.g
	for x := range g.Columns() {
		if !g.Walkable(x, y) {
			continue
		}
		i := y*g.Columns() + x
		for _, d := range dirs {
			b.t.set(i, d, b.diagonalAt(x, y, d))
		}
	}
}

func (b *builder) diagonalAt(x, y int, d grid.Direction) int32 {
	g := b.g
	dx, dy := d.Delta()
	if !g.Walkable(x+dx, y) || !g.Walkable(x, y+dy) || !g.Walkable(x+dx, y+dy) {
		return 0
	}

	n := (y+dy)*g.Columns() + x + dx
	horizontal, vertical := components(d)
	if b.t.get(n, horizontal) > 0 || b.t.get(n, vertical) > 0 {
		return 1
	}

	jd := b.t.get(n, d)
	if jd > 0 {
		return 1 + jd
	}
	return -1 + jd
}

// components splits a diagonal direction into its horizontal and vertical parts.
func components(d grid.Direction) (horizontal, vertical grid.Direction) {
	dx, dy := d.Delta()
	horizontal = grid.East
	if dx < 0 {
		horizontal = grid.West
	}
	vertical = grid.North
	if dy < 0 {
		vertical = grid.South
	}
	return horizontal, vertical
}
