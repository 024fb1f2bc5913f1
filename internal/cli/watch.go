package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet period after the last write before a change fires.
const debounce = 200 * time.Millisecond

// Watcher watches condition files for changes.
type Watcher struct {
	files    map[string]string // absolute path to the name given by the user.
	callback func(name string) error
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher creates a watcher calling back with the name of each changed
// file. The directories of the files are watched, so editors that replace
// files on save are followed.
func NewWatcher(names []string, logger *slog.Logger, callback func(name string) error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]string, len(names)),
		callback: callback,
		watcher:  watcher,
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for _, name := range names {
		abs, err := filepath.Abs(name)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("get absolute path: %w", err)
		}
		w.files[abs] = name
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("watch directory: %w", err)
			}
			dirs[dir] = true
		}
	}
	return w, nil
}

// Run delivers changes until the context is done, then closes the watcher.
// Callback errors are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]bool)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if name, ok := w.files[abs]; ok {
				pending[name] = true
				timer.Reset(debounce)
			}
		case <-timer.C:
			for name := range pending {
				w.logger.Debug("file changed", "file", name)
				if err := w.callback(name); err != nil {
					w.logger.Error("watch callback failed", "file", name, "error", err)
				}
			}
			clear(pending)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
