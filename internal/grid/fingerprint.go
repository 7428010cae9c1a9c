package grid

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies an obstacle layout. Two grids with equal dimensions and
// obstacles have equal fingerprints; world anchors are not part of the digest.
type Fingerprint [blake2b.Size256]byte

// Fingerprint returns the BLAKE2b-256 digest of the grid dimensions and obstacle mask.
func (g *Grid) Fingerprint() Fingerprint { return g.fingerprint }

func fingerprintOf(g *Grid) Fingerprint {
	buf := make([]byte, 8+(len(g.blocked)+7)/8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(g.columns))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(g.rows))
	for i, blocked := range g.blocked {
		if blocked {
			buf[8+i/8] |= 1 << (i % 8)
		}
	}
	return blake2b.Sum256(buf)
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 8 hex characters, for logs.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:4])
}
