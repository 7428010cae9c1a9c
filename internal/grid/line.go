package grid

// LineIterator steps through cells along a Bresenham line from start to end,
// both inclusive.
type LineIterator struct {
	current, target Coord
	deltaX, deltaY  int
	stepX, stepY    int
	err             int
	started         bool
}

// NewLineIterator creates an iterator over the cells from start to end.
func NewLineIterator(start, end Coord) *LineIterator {
	it := &LineIterator{
		current: start,
		target:  end,
		deltaX:  absInt(end.X - start.X),
		deltaY:  -absInt(end.Y - start.Y),
		stepX:   1,
		stepY:   1,
	}
	if start.X > end.X {
		it.stepX = -1
	}
	if start.Y > end.Y {
		it.stepY = -1
	}
	it.err = it.deltaX + it.deltaY
	return it
}

// Next advances to the next cell. Returns false once the end has been visited.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.current == it.target {
		return false
	}

	e2 := 2 * it.err
	if e2 >= it.deltaY {
		it.err += it.deltaY
		it.current.X += it.stepX
	}
	if e2 <= it.deltaX {
		it.err += it.deltaX
		it.current.Y += it.stepY
	}
	return true
}

// Coord returns the current cell.
func (it *LineIterator) Coord() Coord { return it.current }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
