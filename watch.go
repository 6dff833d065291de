package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor save produces
const watchDebounce = 250 * time.Millisecond

// watchedExtensions are the files a scene can depend on
var watchedExtensions = map[string]bool{
	".toml": true, ".obj": true, ".mtl": true, ".ply": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// relevantChange reports whether a file event can affect a scene
func relevantChange(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return watchedExtensions[strings.ToLower(filepath.Ext(ev.Name))]
}

// watchScene calls rerender after each change in the directory of the
// scene file until ctx is cancelled
func watchScene(ctx context.Context, path string, logger *log.Logger, rerender func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("Watching for changes", "dir", dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevantChange(ev) {
				logger.Debug("Scene input changed", "file", ev.Name, "op", ev.Op)
				pending = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", "err", err)

		case <-pending:
			pending = nil
			logger.Info("Rendering again")
			if err := rerender(); err != nil {
				logger.Error("Render failed", "err", err)
			}
		}
	}
}
