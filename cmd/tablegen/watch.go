package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events editors emit for one save.
const debounce = 200 * time.Millisecond

// watch calls fn each time the file at path changes, until ctx is done.
// Errors of fn are logged and watching goes on.
func watch(ctx context.Context, path string, logger *log.Logger, fn func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Editors replace files on save, so the directory is watched.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	target := filepath.Clean(path)
	logger.Info("watching", "path", path)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == target && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fire = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher", "err", err)
		case <-fire:
			fire = nil
			logger.Info("snapshot changed, regenerating", "path", path)
			if err := fn(ctx); err != nil {
				logger.Error("regenerate", "err", err)
			}
		}
	}
}
