package pathfind

import (
	"slices"

	"github.com/udisondev/gridnav/internal/grid"
)

// aStar is plain 8-neighbour A* with an unsorted open list scanned linearly
// for the best node.
type aStar struct{}

func (aStar) run(q *query) (bool, error) {
	s := q.s
	s.touch(q.start)
	s.h[q.start] = q.estimate(q.start)
	s.state[q.start] = stateOpen
	s.list = append(s.list, q.start)

	for len(s.list) > 0 {
		best := 0
		for i := 1; i < len(s.list); i++ {
			if s.less(s.list[i], s.list[best]) {
				best = i
			}
		}
		cur := s.list[best]
		s.list = slices.Delete(s.list, best, best+1)
		s.state[cur] = stateClosed

		if cur == q.goal {
			return true, nil
		}
		if err := q.expand(); err != nil {
			return false, err
		}

		c := q.coord(cur)
		for _, d := range grid.Directions {
			if !q.canStep(c.X, c.Y, d) {
				continue
			}
			n := q.index(c.Step(d, 1))
			s.touch(n)
			if s.state[n] == stateClosed {
				continue
			}
			g := s.g[cur] + q.cost(cur, n)
			if s.state[n] == stateOpen && g >= s.g[n] {
				continue
			}
			s.g[n] = g
			s.parent[n] = cur
			s.dir[n] = d
			if s.state[n] != stateOpen {
				s.h[n] = q.estimate(n)
				s.state[n] = stateOpen
				s.list = append(s.list, n)
			}
		}
	}
	return false, nil
}
