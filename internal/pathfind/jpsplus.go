package pathfind

import "github.com/udisondev/gridnav/internal/grid"

// jumpPointSearchPlus reads jump distances from a jpsplus.Table instead of
// scanning the grid.
type jumpPointSearchPlus struct{}

// successorDirections is keyed by arrival direction. Cardinal arrivals keep
// the forward direction, both perpendiculars and the diagonals between them;
// diagonal arrivals keep the diagonal and its two components.
var successorDirections = [grid.DirectionCount][]grid.Direction{
	grid.North:     {grid.West, grid.NorthWest, grid.North, grid.NorthEast, grid.East},
	grid.NorthEast: {grid.North, grid.NorthEast, grid.East},
	grid.East:      {grid.North, grid.NorthEast, grid.East, grid.SouthEast, grid.South},
	grid.SouthEast: {grid.East, grid.SouthEast, grid.South},
	grid.South:     {grid.East, grid.SouthEast, grid.South, grid.SouthWest, grid.West},
	grid.SouthWest: {grid.South, grid.SouthWest, grid.West},
	grid.West:      {grid.South, grid.SouthWest, grid.West, grid.NorthWest, grid.North},
	grid.NorthWest: {grid.West, grid.NorthWest, grid.North},
}

func (jumpPointSearchPlus) run(q *query) (bool, error) {
	return q.searchHeap(tableSuccessors)
}

func tableSuccessors(q *query, cur int32) error {
	c := q.coord(cur)
	dirs := grid.Directions[:]
	if arrival := q.s.dir[cur]; arrival.Valid() {
		dirs = successorDirections[arrival]
	}

	colDiff := abs(q.goalCoord.X - c.X)
	rowDiff := abs(q.goalCoord.Y - c.Y)
	for _, d := range dirs {
		dist := q.table.DistanceAt(int(cur), d)
		reach := abs(dist)

		var (
			target grid.Coord
			ok     bool
		)
		switch {
		case !d.Diagonal() && goalAhead(c, q.goalCoord, d) && max(colDiff, rowDiff) <= reach:
			target, ok = q.goalCoord, true
		case d.Diagonal() && goalInQuadrant(c, q.goalCoord, d) && min(colDiff, rowDiff) <= reach:
			target, ok = c.Step(d, min(colDiff, rowDiff)), true
		case dist > 0:
			target, ok = c.Step(d, dist), true
		}
		if ok {
			q.relax(cur, q.index(target), d)
		}
	}
	return nil
}

// goalAhead reports whether goal lies on the ray from c in cardinal direction d.
func goalAhead(c, goal grid.Coord, d grid.Direction) bool {
	dx, dy := d.Delta()
	if dx == 0 {
		return goal.X == c.X && sign(goal.Y-c.Y) == dy
	}
	return goal.Y == c.Y && sign(goal.X-c.X) == dx
}

// goalInQuadrant reports whether goal lies strictly inside the quadrant
// spanned by diagonal direction d from c.
func goalInQuadrant(c, goal grid.Coord, d grid.Direction) bool {
	dx, dy := d.Delta()
	return sign(goal.X-c.X) == dx && sign(goal.Y-c.Y) == dy
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
