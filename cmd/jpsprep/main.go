// Command jpsprep precomputes JPS+ tables for every map in the configured
// directory and writes them to the configured table store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/atlas"
	"github.com/udisondev/gridnav/internal/config"
	"github.com/udisondev/gridnav/internal/db"
	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/jpsplus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("jpsprep", flag.ContinueOnError)
	cfgPath := fs.String("config", config.Path(), "config file")
	dir := fs.String("dir", "", "map directory (overrides maps.dir)")
	list := fs.Bool("list", false, "list stored tables (postgres backend)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadGridnav(*cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))
	if *dir != "" {
		cfg.Maps.Dir = *dir
	}

	store, closeStore, err := atlas.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening table store: %w", err)
	}
	defer closeStore()
	if store == nil {
		return atlas.ErrNoStore
	}

	if *list {
		repo, ok := store.(*db.TableRepository)
		if !ok {
			return fmt.Errorf("-list requires the %s backend", config.BackendPostgres)
		}
		return listTables(ctx, repo, out)
	}

	opts, err := atlas.OptionsFrom(cfg, store)
	if err != nil {
		return err
	}
	return preprocess(ctx, atlas.New(opts), cfg.Maps.Dir, cfg.Tables.Workers, out)
}

// preprocess rebuilds and stores the table of every map file in dir.
func preprocess(ctx context.Context, maps *atlas.Atlas, dir string, workers int, out io.Writer) error {
	paths, err := atlas.MapFiles(dir)
	if err != nil {
		return err
	}

	tables := make([]*jpsplus.Table, len(paths))
	ids := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			m, err := grid.LoadMap(path)
			if err != nil {
				return err
			}
			t, err := maps.Rebuild(gctx, m)
			if err != nil {
				return fmt.Errorf("map %s: %w", m.ID, err)
			}
			ids[i], tables[i] = m.ID, t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MAP\tSIZE\tJUMP POINTS\tFINGERPRINT")
	for i, t := range tables {
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", ids[i], t.Columns(), t.Rows(), t.JumpPoints(), t.Fingerprint().Short())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	slog.Info("preprocessing done", "maps", len(tables), "dir", dir)
	return nil
}

func listTables(ctx context.Context, repo *db.TableRepository, out io.Writer) error {
	infos, err := repo.ListTables(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MAP\tSIZE\tJUMP POINTS\tFINGERPRINT\tBUILT")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\t%s\n",
			info.MapID, info.Columns, info.Rows, info.JumpPoints,
			info.Fingerprint.Short(), info.BuiltAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
