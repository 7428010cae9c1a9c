package grid

// Layout maps grid coordinates to world space.
// Origin is the world position of the bottom-left corner of cell (0,0).
type Layout struct {
	Origin   Vec2
	CellSize float64
}

// UnitLayout places cell (x, y) centered at (x+0.5, y+0.5).
var UnitLayout = Layout{CellSize: 1}

// Center returns the world position of the center of cell c.
func (l Layout) Center(c Coord) Vec2 {
	size := l.CellSize
	if size == 0 {
		size = 1
	}
	return Vec2{
		X: l.Origin.X + (float64(c.X)+0.5)*size,
		Y: l.Origin.Y + (float64(c.Y)+0.5)*size,
	}
}

// CoordAt returns the cell containing world position p.
// The result may lie outside the grid; callers check bounds.
func (l Layout) CoordAt(p Vec2) Coord {
	size := l.CellSize
	if size == 0 {
		size = 1
	}
	fx := (p.X - l.Origin.X) / size
	fy := (p.Y - l.Origin.Y) / size
	return Coord{X: floor(fx), Y: floor(fy)}
}

func floor(v float64) int {
	i := int(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}
