package atlas

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/udisondev/gridnav/internal/grid"
)

// DefaultDebounce is how long a map file must stay quiet before a change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports map files that changed in a set of directories. A path is
// emitted once its events have settled for the debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan string
	Errors   chan error
	debounce time.Duration
	closeCh  chan struct{}
	once     sync.Once
}

// NewWatcher starts watching dirs.
func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating map watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		debounce: debounce,
		closeCh:  make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Events and Errors are closed once the run loop
// exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !grid.IsMapFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				select {
				case w.Events <- path:
				case <-w.closeCh:
					return
				}
			}
		case <-w.closeCh:
			return
		}
	}
}

// Watch reloads maps in dir as their files change until ctx is done.
func (a *Atlas) Watch(ctx context.Context, dir string) error {
	w, err := NewWatcher(DefaultDebounce, dir)
	if err != nil {
		return err
	}
	defer w.Close()
	return a.Follow(ctx, w)
}

// Follow applies changes reported by w until ctx is done or w is closed.
// A file that fails to load keeps the previous entry.
func (a *Atlas) Follow(ctx context.Context, w *Watcher) error {
	slog.Info("watching maps")
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			a.reload(ctx, path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("map watcher error", "error", err)
		}
	}
}

func (a *Atlas) reload(ctx context.Context, path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		a.RemoveFile(path)
		return
	}
	if _, err := a.LoadFile(ctx, path); err != nil {
		slog.Error("reloading map", "file", path, "error", err)
		return
	}
	slog.Info("map reloaded", "file", path)
}
