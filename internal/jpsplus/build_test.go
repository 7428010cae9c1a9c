package jpsplus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/testutil"
)

func build(t *testing.T, g *grid.Grid) *Table {
	t.Helper()
	table, err := Build(context.Background(), g, 0)
	require.NoError(t, err)
	return table
}

func TestPrimaryJumpPoints(t *testing.T) {
	g := testutil.MustGrid(t,
		".....",
		"..#..",
		".....",
	)
	table := build(t, g)

	tests := []struct {
		c    grid.Coord
		from []grid.Direction
	}{
		{grid.Coord{X: 3, Y: 2}, []grid.Direction{grid.South, grid.West}},
		{grid.Coord{X: 3, Y: 0}, []grid.Direction{grid.West, grid.North}},
		{grid.Coord{X: 1, Y: 0}, []grid.Direction{grid.East, grid.North}},
		{grid.Coord{X: 1, Y: 2}, []grid.Direction{grid.East, grid.South}},
	}
	for _, tt := range tests {
		assert.True(t, table.IsJumpPoint(tt.c), "%s", tt.c)
		for _, d := range grid.Directions {
			want := d == tt.from[0] || d == tt.from[1]
			assert.Equal(t, want, table.IsJumpPointFrom(tt.c, d), "%s from %s", tt.c, d)
		}
	}
	assert.Equal(t, 4, table.JumpPoints())
	assert.False(t, table.IsJumpPoint(grid.Coord{X: 0, Y: 0}))
}

func TestStraightDistances(t *testing.T) {
	g := testutil.MustGrid(t,
		".....",
		"..#..",
		".....",
	)
	table := build(t, g)

	// Travelling west from (4,2) reaches the jump point (1,2) after 3 cells.
	assert.Equal(t, 3, table.Distance(grid.Coord{X: 4, Y: 2}, grid.West))
	assert.Equal(t, 3, table.Distance(grid.Coord{X: 0, Y: 2}, grid.East))
	// Beyond the last jump point only the wall distance remains.
	assert.Equal(t, -1, table.Distance(grid.Coord{X: 1, Y: 2}, grid.West))
	// Blocked immediately.
	assert.Equal(t, 0, table.Distance(grid.Coord{X: 3, Y: 1}, grid.West))
	assert.Equal(t, 0, table.Distance(grid.Coord{X: 1, Y: 1}, grid.East))
	assert.Equal(t, -1, table.Distance(grid.Coord{X: 4, Y: 1}, grid.West))
}

func TestZeroDistanceNextToObstacle(t *testing.T) {
	g := testutil.RandomGrid(t, 42, 20, 20, 0.3)
	table := build(t, g)

	for _, c := range testutil.FreeCells(g) {
		for _, d := range grid.Directions {
			next := c.Step(d, 1)
			if g.Walkable(next.X, next.Y) {
				continue
			}
			assert.Equal(t, 0, table.Distance(c, d), "%s towards %s", c, d)
		}
	}
}

func TestBoundaryIsZeroDistance(t *testing.T) {
	g := testutil.EmptyGrid(t, 4, 4)
	table := build(t, g)

	assert.Equal(t, 0, table.Distance(grid.Coord{X: 0, Y: 2}, grid.West))
	assert.Equal(t, 0, table.Distance(grid.Coord{X: 3, Y: 3}, grid.NorthEast))
	assert.Equal(t, -3, table.Distance(grid.Coord{X: 0, Y: 0}, grid.NorthEast))
	assert.Equal(t, -3, table.Distance(grid.Coord{X: 3, Y: 1}, grid.West))
	assert.Equal(t, 0, table.JumpPoints())
}

func TestDistancesMatchBruteForce(t *testing.T) {
	cases := []struct {
		seed    uint64
		w, h    int
		density float64
	}{
		{1, 12, 9, 0.1},
		{2, 17, 13, 0.25},
		{3, 23, 19, 0.35},
		{4, 31, 7, 0.45},
		{5, 1, 15, 0.2},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("seed%d_%dx%d", tc.seed, tc.w, tc.h), func(t *testing.T) {
			g := testutil.RandomGrid(t, tc.seed, tc.w, tc.h, tc.density)
			table := build(t, g)

			for _, c := range testutil.FreeCells(g) {
				for _, d := range grid.Directions {
					want := bruteForce(g, table, c, d)
					require.Equal(t, want, table.Distance(c, d), "%s towards %s", c, d)
				}
			}
		})
	}
}

// bruteForce walks from c in direction d until it finds a jump point or is blocked.
// Straight: a jump point is a primary jump point for arrivals from d.Opposite().
// Diagonal: a jump point is a cell with a positive straight distance along either
// component of d.
func bruteForce(g *grid.Grid, table *Table, c grid.Coord, d grid.Direction) int {
	dx, dy := d.Delta()
	h, v := components(d)
	for k := 1; ; k++ {
		prev := c.Step(d, k-1)
		next := c.Step(d, k)
		if !g.Walkable(next.X, next.Y) {
			return -(k - 1)
		}
		if d.Diagonal() {
			if !g.Walkable(prev.X+dx, prev.Y) || !g.Walkable(prev.X, prev.Y+dy) {
				return -(k - 1)
			}
			if table.Distance(next, h) > 0 || table.Distance(next, v) > 0 {
				return k
			}
			continue
		}
		if table.IsJumpPointFrom(next, d.Opposite()) {
			return k
		}
	}
}

func TestCheck(t *testing.T) {
	g := testutil.MustGrid(t, "...", ".#.")
	table := build(t, g)
	require.NoError(t, table.Check(g))

	other := testutil.MustGrid(t, "...", "..#")
	require.ErrorIs(t, table.Check(other), ErrStale)

	wider := testutil.MustGrid(t, "....", ".#..")
	require.ErrorIs(t, table.Check(wider), ErrStale)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, testutil.EmptyGrid(t, 8, 8), 2)
	require.ErrorIs(t, err, context.Canceled)
}

func BenchmarkBuild(b *testing.B) {
	g := testutil.RandomGrid(b, 9, 256, 256, 0.25)
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		if _, err := Build(ctx, g, 0); err != nil {
			b.Fatal(err)
		}
	}
}
