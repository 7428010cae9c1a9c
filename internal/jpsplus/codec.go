package jpsplus

import (
	"encoding/binary"
	"fmt"

	"github.com/udisondev/gridnav/internal/grid"
)

// Binary format (little-endian):
//
//	magic "JPSP" | version u16 | reserved u16 | columns u32 | rows u32 | fingerprint [32]
//	per cell: jumpFrom u8 | 8 × distance i32
const (
	magic         = "JPSP"
	formatVersion = 1
	headerSize    = 4 + 2 + 2 + 4 + 4 + len(grid.Fingerprint{})
	cellSize      = 1 + 4*grid.DirectionCount
	maxCells      = 1 << 26
)

// MarshalBinary encodes the table.
func (t *Table) MarshalBinary() ([]byte, error) {
	n := t.columns * t.rows
	buf := make([]byte, headerSize+n*cellSize)

	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], formatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(t.columns))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(t.rows))
	copy(buf[16:headerSize], t.fingerprint[:])

	off := headerSize
	for i := range n {
		buf[off] = t.jumpFrom[i]
		off++
		for d := range grid.DirectionCount {
			binary.LittleEndian.PutUint32(buf[off:off+4], uint32(t.distances[i*grid.DirectionCount+d]))
			off += 4
		}
	}
	return buf, nil
}

// Unmarshal decodes a table produced by MarshalBinary.
func Unmarshal(data []byte) (*Table, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorrupt, len(data), headerSize)
	}
	if string(data[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	columns := int(binary.LittleEndian.Uint32(data[8:12]))
	rows := int(binary.LittleEndian.Uint32(data[12:16]))
	if columns <= 0 || rows <= 0 || columns*rows > maxCells {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrCorrupt, columns, rows)
	}
	n := columns * rows
	if want := headerSize + n*cellSize; len(data) != want {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrCorrupt, len(data), want)
	}

	var fp grid.Fingerprint
	copy(fp[:], data[16:headerSize])
	t := newTable(columns, rows, fp)

	off := headerSize
	for i := range n {
		t.jumpFrom[i] = data[off]
		off++
		c := grid.Coord{X: i % columns, Y: i / columns}
		for d, dir := range grid.Directions {
			dist := int32(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
			if !inReach(c, dir, dist, columns, rows) {
				return nil, fmt.Errorf("%w: distance %d from %s towards %s leaves the grid", ErrCorrupt, dist, c, dir)
			}
			t.distances[i*grid.DirectionCount+d] = dist
		}
	}
	return t, nil
}

// inReach reports whether travelling |dist| cells from c in direction d stays
// inside a columns x rows grid.
func inReach(c grid.Coord, d grid.Direction, dist int32, columns, rows int) bool {
	n := int64(dist)
	if n < 0 {
		n = -n
	}
	dx, dy := d.Delta()
	x := int64(c.X) + int64(dx)*n
	y := int64(c.Y) + int64(dy)*n
	return x >= 0 && x < int64(columns) && y >= 0 && y < int64(rows)
}
