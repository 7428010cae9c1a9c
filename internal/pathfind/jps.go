package pathfind

import "github.com/udisondev/gridnav/internal/grid"

// jumpPointSearch prunes symmetric paths by only expanding jump points.
type jumpPointSearch struct{}

func (jumpPointSearch) run(q *query) (bool, error) {
	return q.searchHeap(jumpSuccessors)
}

func jumpSuccessors(q *query, cur int32) error {
	c := q.coord(cur)
	for _, d := range q.prunedDirections(cur, c) {
		jp, ok := q.jump(c, d)
		if !ok {
			continue
		}
		q.relax(cur, q.index(jp), d)
	}
	return nil
}

// prunedDirections returns the natural and forced neighbour directions of
// node cur given the direction it was reached from.
func (q *query) prunedDirections(cur int32, c grid.Coord) []grid.Direction {
	walkable := q.grid.Walkable
	dirs := q.s.dirs[:0]
	arrival := q.s.dir[cur]

	if arrival == grid.NoDirection {
		for _, d := range grid.Directions {
			if q.canStep(c.X, c.Y, d) {
				dirs = append(dirs, d)
			}
		}
		q.s.dirs = dirs
		return dirs
	}

	x, y := c.X, c.Y
	dx, dy := arrival.Delta()
	if arrival.Diagonal() {
		horizontal := walkable(x+dx, y)
		vertical := walkable(x, y+dy)
		if horizontal {
			dirs = append(dirs, east(dx))
		}
		if vertical {
			dirs = append(dirs, north(dy))
		}
		if horizontal && vertical && walkable(x+dx, y+dy) {
			dirs = append(dirs, arrival)
		}
		q.s.dirs = dirs
		return dirs
	}

	forward := walkable(x+dx, y+dy)
	if forward {
		dirs = append(dirs, arrival)
	}
	for _, turn := range [2]int{-2, 2} {
		side := arrival.Rotate(turn)
		sx, sy := side.Delta()
		if !walkable(x+sx, y+sy) || walkable(x-dx+sx, y-dy+sy) {
			continue
		}
		dirs = append(dirs, side)
		if forward && walkable(x+dx+sx, y+dy+sy) {
			dirs = append(dirs, arrival.Rotate(turn/2))
		}
	}
	q.s.dirs = dirs
	return dirs
}

// jump walks from c in direction d and returns the first jump point, or false
// when the walk runs into an obstacle or the grid edge.
func (q *query) jump(c grid.Coord, d grid.Direction) (grid.Coord, bool) {
	dx, dy := d.Delta()
	if !d.Diagonal() {
		return q.jumpStraight(c.X, c.Y, dx, dy)
	}

	walkable := q.grid.Walkable
	x, y := c.X, c.Y
	for {
		if !walkable(x+dx, y) || !walkable(x, y+dy) || !walkable(x+dx, y+dy) {
			return grid.Coord{}, false
		}
		x += dx
		y += dy
		if x == q.goalCoord.X && y == q.goalCoord.Y {
			return grid.Coord{X: x, Y: y}, true
		}
		if _, ok := q.jumpStraight(x, y, dx, 0); ok {
			return grid.Coord{X: x, Y: y}, true
		}
		if _, ok := q.jumpStraight(x, y, 0, dy); ok {
			return grid.Coord{X: x, Y: y}, true
		}
	}
}

func (q *query) jumpStraight(x, y, dx, dy int) (grid.Coord, bool) {
	walkable := q.grid.Walkable
	for {
		x += dx
		y += dy
		if !walkable(x, y) {
			return grid.Coord{}, false
		}
		if x == q.goalCoord.X && y == q.goalCoord.Y {
			return grid.Coord{X: x, Y: y}, true
		}
		if dx != 0 {
			if (walkable(x, y+1) && !walkable(x-dx, y+1)) ||
				(walkable(x, y-1) && !walkable(x-dx, y-1)) {
				return grid.Coord{X: x, Y: y}, true
			}
			continue
		}
		if (walkable(x+1, y) && !walkable(x+1, y-dy)) ||
			(walkable(x-1, y) && !walkable(x-1, y-dy)) {
			return grid.Coord{X: x, Y: y}, true
		}
	}
}

// east returns East for positive dx and West otherwise.
func east(dx int) grid.Direction {
	if dx > 0 {
		return grid.East
	}
	return grid.West
}

// north returns North for positive dy and South otherwise.
func north(dy int) grid.Direction {
	if dy > 0 {
		return grid.North
	}
	return grid.South
}
