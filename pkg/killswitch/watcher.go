package killswitch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher refreshes the store when the kill-switch config file changes.
// Events are debounced so editors that write multiple times (or atomic
// rename-based writers) trigger a single refresh.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *Store
	source   Source
	path     string
	debounce *Debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}
}

// NewWatcher creates a watcher that refreshes store from source whenever the
// file at path changes.
func NewWatcher(path string, store *Store, source Source, debounceInterval time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if debounceInterval <= 0 {
		debounceInterval = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:  fsw,
		store:    store,
		source:   source,
		path:     path,
		debounce: NewDebouncer(debounceInterval),
		logger:   slog.Default().With("component", "killswitch.watcher"),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching and blocks until the context is cancelled. The
// parent directory is watched rather than the file itself so atomic
// rename-into-place writes and file creation are observed.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
		w.watcher.Close()
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("kill-switch watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("kill-switch watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("kill-switch config file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.Trigger(func() {
				if err := w.store.Refresh(context.Background(), w.source); err != nil {
					w.logger.Error("kill-switch refresh after file event failed",
						"error", err,
					)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("kill-switch watcher error", "error", err)
		}
	}
}

// shouldProcess filters events down to ones affecting the watched file.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}

// Debouncer coalesces bursts of events into a single callback after a quiet
// interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules the callback after the quiet interval, replacing any
// previously scheduled callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.callback = nil
}
