package grid

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMap is returned for malformed map files.
var ErrInvalidMap = errors.New("invalid map")

// Map symbols. The first row of a map file is the top row (highest Y).
const (
	SymbolFree     = '.'
	SymbolObstacle = '#'
)

// Map is a named grid with its world layout.
type Map struct {
	ID     string
	Layout Layout
	Grid   *Grid
}

// mapDocument is the YAML map file format.
type mapDocument struct {
	ID       string     `yaml:"id"`
	CellSize float64    `yaml:"cell_size"`
	Origin   [2]float64 `yaml:"origin"`
	Rows     []string   `yaml:"rows"`
}

// Parse reads an ASCII map: one line per row, top row first,
// '.' for free cells and '#' (or 'X') for obstacles.
func Parse(r io.Reader, layout Layout) (*Grid, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ascii map: %w", err)
	}
	return fromRows(lines, layout)
}

// ParseString is Parse over a string, convenient for fixtures.
func ParseString(s string) (*Grid, error) {
	return Parse(strings.NewReader(s), UnitLayout)
}

// DecodeMap parses a YAML map document. fallbackID is used when the document has no id.
func DecodeMap(data []byte, fallbackID string) (*Map, error) {
	var doc mapDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if doc.ID == "" {
		doc.ID = fallbackID
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidMap)
	}
	if doc.CellSize < 0 {
		return nil, fmt.Errorf("%w: negative cell_size %v", ErrInvalidMap, doc.CellSize)
	}

	layout := Layout{
		Origin:   Vec2{X: doc.Origin[0], Y: doc.Origin[1]},
		CellSize: doc.CellSize,
	}
	if layout.CellSize == 0 {
		layout.CellSize = 1
	}

	g, err := fromRows(doc.Rows, layout)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", doc.ID, err)
	}
	return &Map{ID: doc.ID, Layout: layout, Grid: g}, nil
}

// LoadMap reads a map file. ".yaml"/".yml" files are YAML documents, anything else is
// parsed as plain ASCII with a unit layout. The map ID defaults to the file base name.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}

	id := MapID(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err := DecodeMap(data, id)
		if err != nil {
			return nil, fmt.Errorf("parsing map %s: %w", path, err)
		}
		return m, nil
	default:
		g, err := Parse(bytes.NewReader(data), UnitLayout)
		if err != nil {
			return nil, fmt.Errorf("parsing map %s: %w", path, err)
		}
		return &Map{ID: id, Layout: UnitLayout, Grid: g}, nil
	}
}

// MapID derives a map identifier from a file path ("maps/forest.yaml" -> "forest").
func MapID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsMapFile reports whether path has a recognized map file extension.
func IsMapFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".map", ".txt":
		return true
	}
	return false
}

func fromRows(lines []string, layout Layout) (*Grid, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidMap)
	}
	columns := len(lines[0])
	rows := len(lines)
	obstacles := make([]bool, columns*rows)

	for li, line := range lines {
		if len(line) != columns {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMap, li, len(line), columns)
		}
		y := rows - 1 - li
		for x := range columns {
			switch line[x] {
			case SymbolFree:
			case SymbolObstacle, 'X':
				obstacles[y*columns+x] = true
			default:
				return nil, fmt.Errorf("%w: unexpected symbol %q at row %d column %d", ErrInvalidMap, line[x], li, x)
			}
		}
	}

	g, err := FromObstacles(columns, rows, obstacles, layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return g, nil
}
