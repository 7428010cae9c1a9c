package pathfind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/gridnav/internal/grid"
)

// ErrUnknownHeuristic is returned when parsing an unsupported heuristic name.
var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Step costs.
const (
	CardinalCost = 10
	DiagonalCost = 14
)

// Heuristic is the distance metric used both as the A* estimate and as the
// cost of a straight or diagonal segment between two nodes.
type Heuristic uint8

const (
	// Manhattan charges 10*(|dx|+|dy|), so a diagonal step costs as much as two
	// cardinal steps.
	Manhattan Heuristic = iota
	// Octile charges 10 per cardinal step and 14 per diagonal step.
	Octile
)

// Cost returns the metric distance between a and b.
func (h Heuristic) Cost(a, b grid.Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if h == Octile {
		lo, hi := min(dx, dy), max(dx, dy)
		return DiagonalCost*lo + CardinalCost*(hi-lo)
	}
	return CardinalCost * (dx + dy)
}

func (h Heuristic) String() string {
	switch h {
	case Manhattan:
		return "manhattan"
	case Octile:
		return "octile"
	}
	return fmt.Sprintf("heuristic(%d)", uint8(h))
}

// ParseHeuristic parses "manhattan" or "octile". An empty name is Manhattan.
func ParseHeuristic(s string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manhattan", "":
		return Manhattan, nil
	case "octile":
		return Octile, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHeuristic, s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
