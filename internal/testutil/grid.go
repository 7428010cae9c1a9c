package testutil

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/udisondev/gridnav/internal/grid"
)

// MustGrid парсит ASCII-карту (первая строка: верхний ряд) и падает при ошибке.
func MustGrid(tb testing.TB, rows ...string) *grid.Grid {
	tb.Helper()

	g, err := grid.ParseString(strings.Join(rows, "\n"))
	if err != nil {
		tb.Fatalf("parsing grid: %v", err)
	}
	return g
}

// EmptyGrid возвращает сетку без препятствий.
func EmptyGrid(tb testing.TB, columns, rows int) *grid.Grid {
	tb.Helper()

	g, err := grid.FromObstacles(columns, rows, make([]bool, columns*rows), grid.UnitLayout)
	if err != nil {
		tb.Fatalf("building empty grid: %v", err)
	}
	return g
}

// RandomGrid генерирует сетку, где каждая клетка является препятствием с вероятностью density.
// Детерминирована для заданного seed.
func RandomGrid(tb testing.TB, seed uint64, columns, rows int, density float64) *grid.Grid {
	tb.Helper()

	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	obstacles := make([]bool, columns*rows)
	for i := range obstacles {
		obstacles[i] = rng.Float64() < density
	}
	g, err := grid.FromObstacles(columns, rows, obstacles, grid.UnitLayout)
	if err != nil {
		tb.Fatalf("building random grid: %v", err)
	}
	return g
}

// FreeCells возвращает все проходимые клетки в порядке индекса.
func FreeCells(g *grid.Grid) []grid.Coord {
	var out []grid.Coord
	for i := range g.Len() {
		c := g.CoordOf(i)
		if g.Walkable(c.X, c.Y) {
			out = append(out, c)
		}
	}
	return out
}
