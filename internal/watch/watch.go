// Package watch re-runs a callback when watched files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a file must stay quiet before the callback runs.
const DefaultDelay = 500 * time.Millisecond

// Watcher watches files for changes
type Watcher struct {
	files    map[string]bool
	callback func(ctx context.Context) error
	watcher  *fsnotify.Watcher
	delay    time.Duration
	log      *slog.Logger
}

// NewWatcher creates a watcher for files. The directories holding them are
// watched so that editors replacing a file are seen too.
func NewWatcher(callback func(ctx context.Context) error, log *slog.Logger, files ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		callback: callback,
		watcher:  watcher,
		delay:    DefaultDelay,
		log:      log,
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	return w, nil
}

// SetDelay changes the debounce delay.
func (w *Watcher) SetDelay(d time.Duration) { w.delay = d }

// Run calls the callback once, then again after every burst of changes, until
// ctx is done. Callback errors after the first call are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.callback(ctx); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	debounce := time.NewTimer(w.delay)
	debounce.Stop()
	defer debounce.Stop()
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.files[path] {
				continue
			}
			debounce.Reset(w.delay)
			fire = debounce.C

		case <-fire:
			fire = nil
			if err := w.callback(ctx); err != nil {
				w.log.Error("Watch callback failed", "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watch error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
