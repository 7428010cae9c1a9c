package atlas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gridnav/internal/config"
	"github.com/udisondev/gridnav/internal/db"
	"github.com/udisondev/gridnav/internal/jpsplus"
)

// ErrNoStore is returned when an operation needs a table store but the
// backend is "none".
var ErrNoStore = errors.New("no table store configured")

// OpenStore creates the table store selected by cfg. The returned close
// function is never nil. A "none" backend yields a nil store.
func OpenStore(ctx context.Context, cfg config.Gridnav) (TableStore, func(), error) {
	switch cfg.Tables.Backend {
	case config.BackendNone:
		return nil, func() {}, nil
	case config.BackendFile:
		slog.Info("jps+ tables on disk", "dir", cfg.Tables.Dir)
		return jpsplus.NewFileStore(cfg.Tables.Dir), func() {}, nil
	case config.BackendPostgres:
		dsn := cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, func() {}, err
		}
		slog.Info("jps+ tables in postgres", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)
		return database.Tables(), database.Close, nil
	}
	return nil, func() {}, fmt.Errorf("%w: tables.backend %q", config.ErrInvalid, cfg.Tables.Backend)
}

// OptionsFrom builds Options for cfg using store.
func OptionsFrom(cfg config.Gridnav, store TableStore) (Options, error) {
	a, h, err := cfg.Pathfinding.Parse()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Algorithm:      a,
		Heuristic:      h,
		MaxExpansions:  cfg.Pathfinding.MaxExpansions,
		Store:          store,
		RebuildMissing: cfg.Tables.RebuildMissing,
		Workers:        cfg.Tables.Workers,
	}, nil
}
