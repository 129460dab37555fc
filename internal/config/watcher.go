package config

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce batches editor write bursts into a single reload.
const reloadDebounce = 500 * time.Millisecond

// IgnoreWatcher watches the daemon config file and pushes a fresh ignore
// list to its apply callback whenever the file changes. The list is
// re-read from disk on every change so the callback never sees stale
// data; a file that fails to parse leaves the previous list in effect.
type IgnoreWatcher struct {
	path     string
	debounce time.Duration
	apply    func([]string)
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
}

// NewIgnoreWatcher creates a watcher for the ignore list in the config
// file at path. apply receives the new list after each successful reload.
func NewIgnoreWatcher(path string, apply func([]string), logger *slog.Logger) *IgnoreWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &IgnoreWatcher{
		path:     path,
		debounce: reloadDebounce,
		apply:    apply,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins watching the config file. Start and Stop may be called
// from different goroutines.
func (w *IgnoreWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if addErr := watcher.Add(w.path); addErr != nil {
		watcher.Close()
		return addErr
	}

	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	w.logger.Info("Watching config for ignore-list changes", "path", w.path)
	go w.run(watcher)
	return nil
}

// Stop stops watching. Safe to call whether or not Start succeeded.
func (w *IgnoreWatcher) Stop() error {
	w.cancel()

	w.mu.Lock()
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

// run listens for file events until the watcher is stopped.
func (w *IgnoreWatcher) run(watcher *fsnotify.Watcher) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Debug("Ignore-list watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Writes cover in-place edits; creates cover editors that
			// replace the file.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}

		case <-timerC:
			w.reload()
			timerC = nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Ignore-list watcher error", "error", err)
		}
	}
}

// reload re-reads the ignore list and hands it to the apply callback. A
// parse failure keeps the list that is already in effect.
func (w *IgnoreWatcher) reload() {
	names, err := LoadIgnoreList(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload ignore list, keeping previous", "error", err)
		return
	}
	w.logger.Info("Ignore list reloaded", "count", len(names))
	w.apply(names)
}
