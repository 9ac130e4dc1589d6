package internal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file has to stay quiet before a rerun
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls a handler whenever one of the watched files changes.
// Parent directories are watched so files replaced by rename are followed.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher sets up watches for paths
func NewWatcher(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		watcher:  fw,
		timers:   make(map[string]*time.Timer),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close() // nolint: errcheck
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close() // nolint: errcheck
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run dispatches debounced change notifications to onChange until ctx is
// cancelled. onChange receives the path as it was resolved to an absolute
// path; calls are serialized.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.watcher.Close() // nolint: errcheck

	var handlers sync.WaitGroup
	defer handlers.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changed := make(chan string)
	handlers.Add(1)
	go func() {
		defer handlers.Done()
		for {
			select {
			case path := <-changed:
				onChange(path)
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev, changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event, changed chan<- string) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	path, err := filepath.Abs(ev.Name)
	if err != nil || !w.files[path] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case changed <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
