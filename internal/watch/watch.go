// Package watch turns changes of a profile file on disk into edit events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Callback receives the file contents after each change.
type Callback func(ctx context.Context, data []byte)

// File watches the directory holding path, so editors that save by
// rename are seen too, and calls cb with the new contents on every write
// or create of path. It returns when ctx is cancelled.
func File(ctx context.Context, path string, logger *slog.Logger, cb Callback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watcher: started", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				logger.Warn("watcher: read failed", slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			if len(data) == 0 {
				// truncate half of a write; the content follows
				continue
			}
			cb(ctx, data)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}
