package pathfind

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
	"github.com/udisondev/gridnav/internal/testutil"
)

var algorithms = []Algorithm{AStar, JPS, JPSPlus}

func newFinder(tb testing.TB, g *grid.Grid, a Algorithm, opts ...Option) *Finder {
	tb.Helper()

	opts = append([]Option{WithAlgorithm(a)}, opts...)
	if a == JPSPlus {
		table, err := jpsplus.Build(context.Background(), g, 0)
		require.NoError(tb, err)
		opts = append(opts, WithTable(table))
	}
	f, err := New(g, opts...)
	require.NoError(tb, err)
	return f
}

// assertLegal checks that the expanded route only steps on walkable cells,
// moves one cell at a time and never cuts a corner.
func assertLegal(t *testing.T, g *grid.Grid, start grid.Coord, nodes []grid.Coord) {
	t.Helper()

	prev := start
	for _, c := range Expand(start, nodes) {
		require.True(t, g.Walkable(c.X, c.Y), "route crosses obstacle at %s", c)
		dx, dy := c.X-prev.X, c.Y-prev.Y
		require.LessOrEqual(t, abs(dx), 1, "%s -> %s", prev, c)
		require.LessOrEqual(t, abs(dy), 1, "%s -> %s", prev, c)
		if dx != 0 && dy != 0 {
			require.True(t, g.Walkable(prev.X+dx, prev.Y), "corner cut %s -> %s", prev, c)
			require.True(t, g.Walkable(prev.X, prev.Y+dy), "corner cut %s -> %s", prev, c)
		}
		prev = c
	}
	if len(nodes) > 0 {
		require.Equal(t, nodes[len(nodes)-1], prev)
	}
}

func TestEmptyGridDiagonal(t *testing.T) {
	g := testutil.EmptyGrid(t, 5, 5)
	start, end := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 4}
	diagonal := []grid.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}

	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			route, err := newFinder(t, g, a, WithHeuristic(Octile)).Find(start, end)
			require.NoError(t, err)
			require.True(t, route.Found)
			assert.Equal(t, 4*DiagonalCost, route.Cost)
			assert.Equal(t, end, route.Nodes[len(route.Nodes)-1])
			assert.Equal(t, diagonal, Expand(start, route.Nodes))
		})
	}
}

func TestJumpPointsSkipIntermediateCells(t *testing.T) {
	g := testutil.EmptyGrid(t, 5, 5)
	start, end := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 4}

	for _, a := range []Algorithm{JPS, JPSPlus} {
		t.Run(a.String(), func(t *testing.T) {
			route, err := newFinder(t, g, a, WithHeuristic(Octile)).Find(start, end)
			require.NoError(t, err)
			assert.Equal(t, []grid.Coord{end}, route.Nodes)
		})
	}
}

func TestWallDetour(t *testing.T) {
	g := testutil.MustGrid(t,
		".....",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	)
	start, end := grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 0}
	gap := grid.Coord{X: 2, Y: 4}

	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			route, err := newFinder(t, g, a, WithHeuristic(Octile)).Find(start, end)
			require.NoError(t, err)
			require.True(t, route.Found)
			assert.Equal(t, 108, route.Cost)
			assert.Contains(t, Expand(start, route.Nodes), gap)
			assertLegal(t, g, start, route.Nodes)
		})
	}
}

func TestEnclosedTarget(t *testing.T) {
	g := testutil.MustGrid(t,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)
			route, err := f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 2})
			require.NoError(t, err)
			assert.False(t, route.Found)
			assert.Empty(t, route.Nodes)

			path, err := f.FindPath(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 2})
			require.NoError(t, err)
			assert.Nil(t, path)
		})
	}
}

func TestNoSqueezeBetweenDiagonalObstacles(t *testing.T) {
	g := testutil.MustGrid(t,
		".#",
		"#.",
	)
	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			route, err := newFinder(t, g, a).Find(grid.Coord{X: 1, Y: 0}, grid.Coord{X: 0, Y: 1})
			require.NoError(t, err)
			assert.False(t, route.Found)
		})
	}
}

func TestBlockedEndpoints(t *testing.T) {
	g := testutil.MustGrid(t,
		"...",
		".#.",
		"...",
	)
	blocked := grid.Coord{X: 1, Y: 1}
	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)

			route, err := f.Find(blocked, grid.Coord{X: 0, Y: 0})
			require.NoError(t, err)
			assert.False(t, route.Found)

			route, err = f.Find(grid.Coord{X: 0, Y: 0}, blocked)
			require.NoError(t, err)
			assert.False(t, route.Found)
		})
	}
}

func TestOutOfBounds(t *testing.T) {
	g := testutil.EmptyGrid(t, 3, 3)
	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)

			_, err := f.Find(grid.Coord{X: -1, Y: 0}, grid.Coord{X: 1, Y: 1})
			require.ErrorIs(t, err, ErrOutOfBounds)

			_, err = f.FindPath(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 3, Y: 0})
			require.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

func TestStartEqualsEnd(t *testing.T) {
	g := testutil.EmptyGrid(t, 3, 3)
	c := grid.Coord{X: 1, Y: 1}
	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)

			route, err := f.Find(c, c)
			require.NoError(t, err)
			assert.True(t, route.Found)
			assert.Empty(t, route.Nodes)
			assert.Zero(t, route.Cost)

			path, err := f.FindPath(c, c)
			require.NoError(t, err)
			assert.NotNil(t, path)
			assert.Empty(t, path)
		})
	}
}

func TestFindPathWorldPositions(t *testing.T) {
	g := testutil.EmptyGrid(t, 5, 1)
	f := newFinder(t, g, JPS)

	path, err := f.FindPath(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, []grid.Vec2{{X: 4.5, Y: 0.5}}, path)
}

func TestLastRoute(t *testing.T) {
	g := testutil.MustGrid(t,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
	f := newFinder(t, g, AStar)
	assert.Empty(t, f.LastRoute())

	route, err := f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 4})
	require.NoError(t, err)
	require.True(t, route.Found)
	assert.Equal(t, route.Nodes, f.LastRoute())

	// Failed queries keep the previous route.
	_, err = f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 2, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, route.Nodes, f.LastRoute())

	// The returned slice is a copy.
	last := f.LastRoute()
	last[0] = grid.Coord{X: 9, Y: 9}
	assert.Equal(t, route.Nodes, f.LastRoute())
}

func TestAlgorithmsAgreeOnRandomGrids(t *testing.T) {
	for _, h := range []Heuristic{Manhattan, Octile} {
		t.Run(h.String(), func(t *testing.T) {
			for seed := uint64(1); seed <= 12; seed++ {
				g := testutil.RandomGrid(t, seed, 32, 24, 0.3)
				free := testutil.FreeCells(g)
				if len(free) < 2 {
					continue
				}

				finders := make([]*Finder, len(algorithms))
				for i, a := range algorithms {
					finders[i] = newFinder(t, g, a, WithHeuristic(h))
				}

				rng := rand.New(rand.NewPCG(seed, 99))
				for range 40 {
					start := free[rng.IntN(len(free))]
					end := free[rng.IntN(len(free))]

					reference, err := finders[0].Find(start, end)
					require.NoError(t, err)
					if reference.Found {
						assertLegal(t, g, start, reference.Nodes)
						assert.Equal(t, reference.Cost, Cost(h, start, reference.Nodes))
					}

					for i, f := range finders[1:] {
						route, err := f.Find(start, end)
						require.NoError(t, err)
						a := algorithms[i+1]
						require.Equal(t, reference.Found, route.Found, "seed %d %s %s -> %s", seed, a, start, end)
						if !route.Found {
							continue
						}
						assert.Equal(t, reference.Cost, route.Cost, "seed %d %s %s -> %s", seed, a, start, end)
						assert.Equal(t, route.Cost, Cost(h, start, route.Nodes))
						assertLegal(t, g, start, route.Nodes)
					}
				}
			}
		})
	}
}

func TestRepeatedQueriesAreIdentical(t *testing.T) {
	g := testutil.RandomGrid(t, 42, 40, 40, 0.25)
	free := testutil.FreeCells(g)
	start, end := free[0], free[len(free)-1]

	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)
			first, err := f.Find(start, end)
			require.NoError(t, err)
			for range 3 {
				again, err := f.Find(start, end)
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestConcurrentQueries(t *testing.T) {
	g := testutil.RandomGrid(t, 7, 48, 48, 0.25)
	free := testutil.FreeCells(g)

	rng := rand.New(rand.NewPCG(7, 7))
	type pair struct{ start, end grid.Coord }
	pairs := make([]pair, 64)
	for i := range pairs {
		pairs[i] = pair{free[rng.IntN(len(free))], free[rng.IntN(len(free))]}
	}

	for _, a := range algorithms {
		t.Run(a.String(), func(t *testing.T) {
			f := newFinder(t, g, a)
			want := make([]Route, len(pairs))
			for i, p := range pairs {
				r, err := f.Find(p.start, p.end)
				require.NoError(t, err)
				want[i] = r
			}

			got := make([][]Route, 8)
			var wg sync.WaitGroup
			for w := range got {
				got[w] = make([]Route, len(pairs))
				wg.Go(func() {
					for i, p := range pairs {
						got[w][i], _ = f.Find(p.start, p.end)
					}
				})
			}
			wg.Wait()

			for w := range got {
				assert.Equal(t, want, got[w], "worker %d", w)
			}
		})
	}
}

func TestExpansionLimit(t *testing.T) {
	g := testutil.EmptyGrid(t, 10, 10)
	f := newFinder(t, g, AStar, WithMaxExpansions(2))

	route, err := f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 9, Y: 9})
	require.ErrorIs(t, err, ErrExpansionLimit)
	assert.False(t, route.Found)
	assert.Equal(t, 3, route.Expanded)

	// The next query on the same finder starts clean.
	route, err = f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 1, Y: 1})
	require.NoError(t, err)
	assert.True(t, route.Found)
}

func TestDefaultMetricIsManhattan(t *testing.T) {
	g := testutil.EmptyGrid(t, 5, 5)
	f := newFinder(t, g, AStar)

	route, err := f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 4})
	require.NoError(t, err)
	require.True(t, route.Found)
	assert.Equal(t, 80, route.Cost)
	assert.Equal(t, Manhattan, f.Heuristic())

	f = newFinder(t, g, AStar, WithHeuristic(Octile))
	route, err = f.Find(grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, 4*DiagonalCost, route.Cost)
}

func TestNewErrors(t *testing.T) {
	g := testutil.EmptyGrid(t, 4, 4)

	_, err := New(g, WithAlgorithm(JPSPlus))
	require.ErrorIs(t, err, ErrMissingTable)

	other := testutil.EmptyGrid(t, 5, 4)
	table, err := jpsplus.Build(context.Background(), other, 1)
	require.NoError(t, err)
	_, err = New(g, WithAlgorithm(JPSPlus), WithTable(table))
	require.ErrorIs(t, err, ErrTableMismatch)
	require.ErrorIs(t, err, jpsplus.ErrStale)

	_, err = New(g, WithAlgorithm(Algorithm(9)))
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = New(nil)
	require.ErrorIs(t, err, grid.ErrInvalidGrid)
}

func benchmarkFind(b *testing.B, a Algorithm) {
	g := testutil.RandomGrid(b, 3, 256, 256, 0.2)
	free := testutil.FreeCells(g)
	f := newFinder(b, g, a)
	rng := rand.New(rand.NewPCG(3, 3))

	b.ReportAllocs()
	for b.Loop() {
		start := free[rng.IntN(len(free))]
		end := free[rng.IntN(len(free))]
		if _, err := f.Find(start, end); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindAStar(b *testing.B)   { benchmarkFind(b, AStar) }
func BenchmarkFindJPS(b *testing.B)     { benchmarkFind(b, JPS) }
func BenchmarkFindJPSPlus(b *testing.B) { benchmarkFind(b, JPSPlus) }
