package pathfind

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned when parsing an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm selects the search strategy.
type Algorithm uint8

const (
	// AStar is the reference 8-neighbour A* with a linear-scan open list.
	AStar Algorithm = iota
	// JPS is heap-backed Jump Point Search.
	JPS
	// JPSPlus is Jump Point Search over precomputed jump distances.
	JPSPlus
)

// strategies is indexed by Algorithm.
var strategies = [...]strategy{
	AStar:   aStar{},
	JPS:     jumpPointSearch{},
	JPSPlus: jumpPointSearchPlus{},
}

func (a Algorithm) String() string {
	switch a {
	case AStar:
		return "astar"
	case JPS:
		return "jps"
	case JPSPlus:
		return "jps+"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

func (a Algorithm) valid() bool {
	return int(a) < len(strategies)
}

// ParseAlgorithm parses "astar", "jps" or "jps+" (also "jpsplus").
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "astar", "a*":
		return AStar, nil
	case "jps":
		return JPS, nil
	case "jps+", "jpsplus", "jps_plus":
		return JPSPlus, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}
