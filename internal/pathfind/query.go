package pathfind

import (
	"fmt"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
)

// strategy runs one search over a prepared query. It reports whether the goal
// was reached; on success the parent chain from goal to start is intact.
type strategy interface {
	run(q *query) (bool, error)
}

type query struct {
	grid      *grid.Grid
	table     *jpsplus.Table
	heuristic Heuristic
	s         *session

	start, goal int32
	goalCoord   grid.Coord
	limit       int
}

func (q *query) coord(i int32) grid.Coord {
	return q.grid.CoordOf(int(i))
}

func (q *query) index(c grid.Coord) int32 {
	return int32(q.grid.Index(c))
}

func (q *query) estimate(i int32) int32 {
	return int32(q.heuristic.Cost(q.coord(i), q.goalCoord))
}

func (q *query) cost(from, to int32) int32 {
	return int32(q.heuristic.Cost(q.coord(from), q.coord(to)))
}

// expand counts one node expansion against the limit.
func (q *query) expand() error {
	q.s.expanded++
	if q.limit > 0 && q.s.expanded > q.limit {
		return fmt.Errorf("%w: %d", ErrExpansionLimit, q.limit)
	}
	return nil
}

// canStep reports whether a single move in direction d from (x, y) is legal.
// Diagonal moves need both orthogonal neighbours walkable.
func (q *query) canStep(x, y int, d grid.Direction) bool {
	dx, dy := d.Delta()
	if !q.grid.Walkable(x+dx, y+dy) {
		return false
	}
	if d.Diagonal() {
		return q.grid.Walkable(x+dx, y) && q.grid.Walkable(x, y+dy)
	}
	return true
}

// openStart pushes the start node onto the heap.
func (q *query) openStart() {
	s := q.s
	s.touch(q.start)
	s.h[q.start] = q.estimate(q.start)
	s.state[q.start] = stateOpen
	s.open.Push(q.start)
}

// relax offers to as a successor of from reached in direction d.
func (q *query) relax(from, to int32, d grid.Direction) {
	s := q.s
	s.touch(to)
	if s.state[to] == stateClosed {
		return
	}
	g := s.g[from] + q.cost(from, to)
	if s.state[to] == stateOpen && g >= s.g[to] {
		return
	}
	s.g[to] = g
	s.parent[to] = from
	s.dir[to] = d
	if s.state[to] == stateOpen {
		s.open.Update(to)
		return
	}
	s.h[to] = q.estimate(to)
	s.state[to] = stateOpen
	s.open.Push(to)
}

// searchHeap runs the heap-driven best-first loop shared by JPS and JPS+.
func (q *query) searchHeap(successors func(q *query, cur int32) error) (bool, error) {
	s := q.s
	q.openStart()
	for {
		cur, ok := s.open.Pop()
		if !ok {
			return false, nil
		}
		s.state[cur] = stateClosed
		if cur == q.goal {
			return true, nil
		}
		if err := q.expand(); err != nil {
			return false, err
		}
		if err := successors(q, cur); err != nil {
			return false, err
		}
	}
}
