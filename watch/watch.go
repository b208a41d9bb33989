// Package watch reloads a configuration whenever one of the files it was
// read from changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/wmconf/log"
)

// DefaultDelay is how long changes must settle before a reload.
const DefaultDelay = 500 * time.Millisecond

// LoadFunc loads the configuration and returns every file it read.
type LoadFunc func(ctx context.Context) (files []string, err error)

// Option configures [Run].
type Option func(*watcher)

// WithLogger sets the logger for watch events.
func WithLogger(logger log.Logger) Option {
	return func(w *watcher) { w.logger = logger }
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *watcher) { w.delay = d }
}

type watcher struct {
	fsw    *fsnotify.Watcher
	logger log.Logger
	delay  time.Duration
	dirs   map[string]bool
	files  map[string]bool
}

// Run calls load, then calls it again each time a file from its most recent
// result is written, created, renamed, or removed. Bursts of changes within
// the delay cause a single reload. A failed load is logged and the previous
// file set stays watched. Run returns when ctx is done.
//
// Directories are watched rather than files so that editors that replace a
// file by renaming are noticed.
func Run(ctx context.Context, load LoadFunc, opts ...Option) error {
	w := &watcher{
		logger: log.Default(),
		delay:  DefaultDelay,
		dirs:   make(map[string]bool),
		files:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.fsw = fsw

	defer func() { _ = fsw.Close() }()

	w.reload(ctx, load)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if !w.files[filepath.Clean(event.Name)] ||
				!event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}

			w.logger.DebugContext(ctx, "file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			w.reload(ctx, load)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.ErrorContext(ctx, "watcher error", slog.Any("error", err))
		}
	}
}

func (w *watcher) reload(ctx context.Context, load LoadFunc) {
	files, err := load(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "reload failed", slog.Any("error", err))

		return
	}

	w.track(ctx, files)
}

// track replaces the watched file set with files.
func (w *watcher) track(ctx context.Context, files []string) {
	clear(w.files)

	dirs := make(map[string]bool)

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}

		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if w.dirs[dir] {
			continue
		}

		if err := w.fsw.Add(dir); err != nil {
			w.logger.WarnContext(ctx, "cannot watch directory",
				slog.String("dir", dir), slog.Any("error", err))

			continue
		}

		w.dirs[dir] = true
	}

	for dir := range w.dirs {
		if !dirs[dir] {
			_ = w.fsw.Remove(dir)
			delete(w.dirs, dir)
		}
	}

	w.logger.InfoContext(ctx, "watching",
		slog.Int("files", len(w.files)), slog.Int("dirs", len(w.dirs)))
}
