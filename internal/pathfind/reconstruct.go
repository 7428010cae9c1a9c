package pathfind

import (
	"slices"

	"github.com/udisondev/gridnav/internal/grid"
)

// reconstruct walks the parent chain from goal back to start and returns the
// waypoints in travel order, start excluded. Visited entries are released
// along the way.
func reconstruct(g *grid.Grid, s *session, start, goal int32) []grid.Coord {
	var nodes []grid.Coord
	for n := goal; n != start && n >= 0; {
		nodes = append(nodes, g.CoordOf(int(n)))
		parent := s.parent[n]
		s.release(n)
		n = parent
	}
	s.release(start)
	slices.Reverse(nodes)
	return nodes
}

// Expand turns waypoints into the sequence of every cell stepped on after
// start.
func Expand(start grid.Coord, nodes []grid.Coord) []grid.Coord {
	cells := make([]grid.Coord, 0, len(nodes))
	from := start
	for _, to := range nodes {
		it := grid.NewLineIterator(from, to)
		it.Next()
		for it.Next() {
			cells = append(cells, it.Coord())
		}
		from = to
	}
	return cells
}

// Cost returns the metric length of the route from start through nodes.
func Cost(h Heuristic, start grid.Coord, nodes []grid.Coord) int {
	total := 0
	from := start
	for _, to := range nodes {
		total += h.Cost(from, to)
		from = to
	}
	return total
}
