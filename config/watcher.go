package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk and hands the
// validated result to a callback. Invalid intermediate states (editors often
// write in several steps) are logged and skipped.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	onLoad  func(*Config)
}

// NewWatcher creates a watcher for the given config file. onLoad is called
// from the watch goroutine with every successfully reloaded config.
func NewWatcher(path string, logger *slog.Logger, onLoad func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files by rename
	// and the inode-level watch would be lost.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}
	return &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsw,
		onLoad:  onLoad,
	}, nil
}

// Run blocks processing file events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Config watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	config, err := LoadFromFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload config", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}
	if err := config.Validate(); err != nil {
		w.logger.Warn("Reloaded config is invalid", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("Reloaded config", slog.String("path", w.path))
	if w.onLoad != nil {
		w.onLoad(config)
	}
}
