package roster

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the roster whenever its file changes, until ctx is done.
// Reload failures are logged and the last good roster stays in effect.
func (r *Roster) Watch(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "roster")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(r.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload(); err != nil {
					logger.Warn("roster reload failed, keeping previous roster", "error", err.Error())
					continue
				}
				logger.Info("roster reloaded", "agents", len(r.All()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("roster watch error", "error", err.Error())
			}
		}
	}()

	return nil
}
