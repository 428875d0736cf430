package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the theme file at path whenever it changes and passes the
// result to onChange. Parse failures are logged and skipped so a half-written
// file does not replace a good theme. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file itself so editors that
// save by rename keep triggering reloads.
func Watch(ctx context.Context, path string, onChange func(*Theme)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			t, err := LoadFile(abs)
			if err != nil {
				slog.Warn("theme reload failed", "path", abs, "error", err)
				continue
			}
			slog.Debug("theme reloaded", "path", abs, "theme", t.Name)
			onChange(t)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("theme watcher error", "error", err)
		}
	}
}
