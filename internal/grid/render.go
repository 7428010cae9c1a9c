package grid

import "strings"

// Render draws the grid as ASCII, top row first. The route is drawn with '*',
// start with 'S' and the last route node with 'G'.
func Render(g *Grid, start Coord, route []Coord) string {
	marks := make(map[int]byte, len(route)+1)
	for _, c := range route {
		if g.Contains(c) {
			marks[g.Index(c)] = '*'
		}
	}
	if len(route) > 0 && g.Contains(route[len(route)-1]) {
		marks[g.Index(route[len(route)-1])] = 'G'
	}
	if g.Contains(start) {
		marks[g.Index(start)] = 'S'
	}

	var sb strings.Builder
	sb.Grow((g.columns + 1) * g.rows)
	for y := g.rows - 1; y >= 0; y-- {
		for x := range g.columns {
			i := y*g.columns + x
			switch {
			case marks[i] != 0:
				sb.WriteByte(marks[i])
			case g.blocked[i]:
				sb.WriteByte(SymbolObstacle)
			default:
				sb.WriteByte(SymbolFree)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
