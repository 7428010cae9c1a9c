package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
)

// TableInfo describes a stored table without its payload.
type TableInfo struct {
	MapID       string
	Fingerprint grid.Fingerprint
	Columns     int
	Rows        int
	JumpPoints  int
	BuiltAt     time.Time
}

// TableRepository stores JPS+ tables keyed by map ID.
type TableRepository struct {
	pool *pgxpool.Pool
}

// NewTableRepository creates a new TableRepository.
func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

// LoadTable loads and decodes the table for mapID.
// Returns an error wrapping jpsplus.ErrNotFound if no row exists.
func (r *TableRepository) LoadTable(ctx context.Context, mapID string) (*jpsplus.Table, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM jps_tables WHERE map_id = $1`, mapID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("table %q: %w", mapID, jpsplus.ErrNotFound)
		}
		return nil, fmt.Errorf("querying table %q: %w", mapID, err)
	}

	t, err := jpsplus.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding table %q: %w", mapID, err)
	}
	return t, nil
}

// SaveTable inserts or replaces the table for mapID.
func (r *TableRepository) SaveTable(ctx context.Context, mapID string, t *jpsplus.Table) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding table %q: %w", mapID, err)
	}
	fp := t.Fingerprint()
	_, err = r.pool.Exec(ctx,
		`INSERT INTO jps_tables (map_id, fingerprint, width, height, jump_points, data, built_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (map_id) DO UPDATE SET
		   fingerprint = EXCLUDED.fingerprint,
		   width       = EXCLUDED.width,
		   height      = EXCLUDED.height,
		   jump_points = EXCLUDED.jump_points,
		   data        = EXCLUDED.data,
		   built_at    = EXCLUDED.built_at`,
		mapID, fp[:], t.Columns(), t.Rows(), t.JumpPoints(), data)
	if err != nil {
		return fmt.Errorf("saving table %q: %w", mapID, err)
	}
	return nil
}

// DeleteTable removes the table for mapID. Deleting a missing table is not
// an error.
func (r *TableRepository) DeleteTable(ctx context.Context, mapID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM jps_tables WHERE map_id = $1`, mapID); err != nil {
		return fmt.Errorf("deleting table %q: %w", mapID, err)
	}
	return nil
}

// ListTables returns metadata of all stored tables ordered by map ID.
func (r *TableRepository) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT map_id, fingerprint, width, height, jump_points, built_at
		 FROM jps_tables ORDER BY map_id`)
	if err != nil {
		return nil, fmt.Errorf("query jps_tables: %w", err)
	}
	defer rows.Close()

	var result []TableInfo
	for rows.Next() {
		var (
			info TableInfo
			fp   []byte
		)
		if err := rows.Scan(&info.MapID, &fp, &info.Columns, &info.Rows, &info.JumpPoints, &info.BuiltAt); err != nil {
			return nil, fmt.Errorf("scan jps_tables: %w", err)
		}
		if len(fp) != len(info.Fingerprint) {
			return nil, fmt.Errorf("table %q: fingerprint length %d: %w", info.MapID, len(fp), jpsplus.ErrCorrupt)
		}
		copy(info.Fingerprint[:], fp)
		result = append(result, info)
	}
	return result, rows.Err()
}
