package grid

// Direction is one of the 8 grid movement directions.
// North points towards increasing Y.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// NoDirection marks a node without a parent (search root).
const NoDirection Direction = 0xFF

// DirectionCount is the number of movement directions.
const DirectionCount = 8

// Directions lists all movement directions in clockwise order starting at North.
var Directions = [DirectionCount]Direction{
	North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest,
}

var deltas = [DirectionCount][2]int{
	{0, 1},   // N
	{1, 1},   // NE
	{1, 0},   // E
	{1, -1},  // SE
	{0, -1},  // S
	{-1, -1}, // SW
	{-1, 0},  // W
	{-1, 1},  // NW
}

var directionNames = [DirectionCount]string{
	"N", "NE", "E", "SE", "S", "SW", "W", "NW",
}

// Delta returns the unit step (dx, dy) of the direction.
func (d Direction) Delta() (dx, dy int) {
	v := deltas[d]
	return v[0], v[1]
}

// Diagonal reports whether d is one of the four 45° directions.
func (d Direction) Diagonal() bool {
	return d%2 == 1
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 4) % DirectionCount
}

// Rotate returns d rotated clockwise by n eighth-turns (n may be negative).
func (d Direction) Rotate(n int) Direction {
	r := (int(d) + n) % DirectionCount
	if r < 0 {
		r += DirectionCount
	}
	return Direction(r)
}

// Valid reports whether d is one of the 8 movement directions.
func (d Direction) Valid() bool {
	return d < DirectionCount
}

func (d Direction) String() string {
	if !d.Valid() {
		return "none"
	}
	return directionNames[d]
}

// DirectionOf returns the direction of a step (dx, dy).
// Components are normalized to {-1, 0, 1}; ok is false for (0, 0).
func DirectionOf(dx, dy int) (d Direction, ok bool) {
	dx, dy = sign(dx), sign(dy)
	for i, v := range deltas {
		if v[0] == dx && v[1] == dy {
			return Direction(i), true
		}
	}
	return NoDirection, false
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
