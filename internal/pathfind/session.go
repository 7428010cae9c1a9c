package pathfind

import (
	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/pqueue"
)

// Per-node search state.
const (
	stateNew uint8 = iota
	stateOpen
	stateClosed
)

// session holds the mutable state of one query. Arrays are indexed by
// grid cell index and lazily reset via generation stamps, so starting a new
// query costs O(1) regardless of grid size.
type session struct {
	g      []int32
	h      []int32
	parent []int32
	dir    []grid.Direction
	state  []uint8
	stamp  []uint32
	gen    uint32

	open     *pqueue.Heap[int32] // JPS and JPS+
	list     []int32             // A* linear open list
	dirs     []grid.Direction    // successor directions scratch
	expanded int
}

func newSession(cells int) *session {
	s := &session{
		g:      make([]int32, cells),
		h:      make([]int32, cells),
		parent: make([]int32, cells),
		dir:    make([]grid.Direction, cells),
		state:  make([]uint8, cells),
		stamp:  make([]uint32, cells),
		list:   make([]int32, 0, 64),
		dirs:   make([]grid.Direction, 0, grid.DirectionCount),
	}
	s.open = pqueue.New(cells, s.less, func(i int32) int { return int(i) })
	return s
}

// reset prepares the session for a new query.
func (s *session) reset() {
	s.gen++
	if s.gen == 0 {
		clear(s.stamp)
		s.gen = 1
	}
	s.open.Clear()
	s.list = s.list[:0]
	s.expanded = 0
}

// touch initialises the entry for cell i if it has not been visited by the
// current query.
func (s *session) touch(i int32) {
	if s.stamp[i] == s.gen {
		return
	}
	s.stamp[i] = s.gen
	s.g[i] = 0
	s.h[i] = 0
	s.parent[i] = -1
	s.dir[i] = grid.NoDirection
	s.state[i] = stateNew
}

// release drops cell i from the current query.
func (s *session) release(i int32) {
	s.stamp[i] = 0
}

// less orders by fCost, then by lower hCost.
func (s *session) less(a, b int32) bool {
	fa, fb := s.g[a]+s.h[a], s.g[b]+s.h[b]
	if fa != fb {
		return fa < fb
	}
	return s.h[a] < s.h[b]
}
