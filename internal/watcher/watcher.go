// Package watcher reloads the configuration file when it changes on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"schooldb/internal/config"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a config file and hands every valid new version to
// onChange. Versions that fail to load are logged and skipped.
type Watcher struct {
	path     string
	onChange func(*config.Config)
	debounce time.Duration
}

// New creates a new config watcher
func New(path string, onChange func(*config.Config)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the file for changes
// It blocks until the context is cancelled or an error occurs
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory containing the file
	// This handles cases where the file is replaced (e.g., by editors)
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	log.Printf("[config] watching %s for changes", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Check if this event is for our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// Handle write, create and editor rename-over events
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce rapid changes
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[config] watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) reload() {
	cfg, _, err := config.LoadFromPath(w.path)
	if err != nil {
		log.Printf("[config] ignoring change to %s: %v", w.path, err)
		return
	}
	log.Printf("[config] reloaded %s", w.path)
	w.onChange(cfg)
}
