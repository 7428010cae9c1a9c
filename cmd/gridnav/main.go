// Command gridnav answers route queries over the configured maps.
//
// With -map, -from and -to it runs a single query and exits. Otherwise it
// reads queries from stdin, one per line:
//
//	<map> <x1>,<y1> <x2>,<y2>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gridnav/internal/atlas"
	"github.com/udisondev/gridnav/internal/config"
	"github.com/udisondev/gridnav/internal/grid"
	"github.com/udisondev/gridnav/internal/pathfind"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type flags struct {
	config string
	mapRef string
	from   string
	to     string
	render bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("gridnav", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", config.Path(), "config file")
	fs.StringVar(&f.mapRef, "map", "", "map ID or map file")
	fs.StringVar(&f.from, "from", "", "start cell x,y")
	fs.StringVar(&f.to, "to", "", "target cell x,y")
	fs.BoolVar(&f.render, "render", false, "draw the route")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadGridnav(f.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))
	slog.Info("config loaded",
		"algorithm", cfg.Pathfinding.Algorithm,
		"heuristic", cfg.Pathfinding.Heuristic,
		"tables", cfg.Tables.Backend)

	store, closeStore, err := atlas.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening table store: %w", err)
	}
	defer closeStore()

	opts, err := atlas.OptionsFrom(cfg, store)
	if err != nil {
		return err
	}
	maps := atlas.New(opts)

	if f.from != "" || f.to != "" {
		return single(ctx, maps, cfg, f, out)
	}

	if _, err := maps.LoadDir(ctx, cfg.Maps.Dir); err != nil {
		return fmt.Errorf("loading maps: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Maps.Watch {
		g.Go(func() error {
			return maps.Watch(gctx, cfg.Maps.Dir)
		})
	}
	// serve returns errStdinClosed at end of input, which also stops the watcher.
	g.Go(func() error {
		return serve(gctx, maps, in, out, f.render)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errStdinClosed) {
		return err
	}
	return nil
}

// single runs one query given by flags.
func single(ctx context.Context, maps *atlas.Atlas, cfg config.Gridnav, f flags, out io.Writer) error {
	from, err := parseCoord(f.from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	to, err := parseCoord(f.to)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}

	id := f.mapRef
	if grid.IsMapFile(f.mapRef) {
		e, err := maps.LoadFile(ctx, f.mapRef)
		if err != nil {
			return err
		}
		id = e.Map.ID
	} else if _, err := maps.LoadDir(ctx, cfg.Maps.Dir); err != nil {
		return fmt.Errorf("loading maps: %w", err)
	}

	return query(maps, id, from, to, f.render, out)
}

// serve answers stdin queries until the input ends or ctx is done.
func serve(ctx context.Context, maps *atlas.Atlas, in io.Reader, out io.Writer, render bool) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading queries: %w", err)
					}
				default:
				}
				return errStdinClosed
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			id, from, to, err := parseQuery(line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			if err := query(maps, id, from, to, render, out); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func query(maps *atlas.Atlas, id string, from, to grid.Coord, render bool, out io.Writer) error {
	e, ok := maps.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", atlas.ErrUnknownMap, id)
	}
	route, err := e.Finder.Find(from, to)
	if err != nil {
		return err
	}
	slog.Debug("query",
		"map", id, "from", from, "to", to,
		"found", route.Found, "cost", route.Cost, "expanded", route.Expanded)

	if !route.Found {
		fmt.Fprintf(out, "%s %s -> %s: no path\n", id, from, to)
		return nil
	}
	fmt.Fprintf(out, "%s %s -> %s: cost %d, %d waypoints, %d expanded\n",
		id, from, to, route.Cost, len(route.Nodes), route.Expanded)
	for _, c := range route.Nodes {
		w := e.Map.Grid.World(c)
		fmt.Fprintf(out, "  %s world (%g, %g)\n", c, w.X, w.Y)
	}
	if render {
		fmt.Fprint(out, grid.Render(e.Map.Grid, from, pathfind.Expand(from, route.Nodes)))
	}
	return nil
}

var errStdinClosed = errors.New("input closed")

func parseQuery(line string) (string, grid.Coord, grid.Coord, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", grid.Coord{}, grid.Coord{}, fmt.Errorf("want \"<map> x,y x,y\", got %q", line)
	}
	from, err := parseCoord(fields[1])
	if err != nil {
		return "", grid.Coord{}, grid.Coord{}, err
	}
	to, err := parseCoord(fields[2])
	if err != nil {
		return "", grid.Coord{}, grid.Coord{}, err
	}
	return fields[0], from, to, nil
}

func parseCoord(s string) (grid.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("coordinate %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return grid.Coord{X: x, Y: y}, nil
}
