package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Editors often write files in multiple steps.
const defaultDebounce = 100 * time.Millisecond

// Watch loads filename and passes the outcome to onLoad, then loads it again
// every time the root or one of its included files changes. Bursts of events
// are coalesced by the debounce delay. Watch blocks until ctx is cancelled.
//
// A failed load is reported to onLoad as well. The files of the last
// successful load stay watched, so fixing the error triggers a reload.
func (l *Loader) Watch(ctx context.Context, filename string, onLoad func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	root, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	watched := make(map[string]bool)
	reload := func() {
		result, err := l.Load(ctx, filename)
		if ctx.Err() != nil {
			return
		}
		onLoad(result, err)

		files := []string{root}
		if err == nil {
			files = result.Files()
			l.unwatchStale(watcher, watched, files)
		}
		// Re-add everything, atomic saves replace the file being watched.
		for _, file := range files {
			if err := watcher.Add(file); err != nil {
				l.logger.Warn("failed to watch file", zap.String("path", file), zap.Error(err))
				continue
			}
			watched[file] = true
		}
	}

	reload()

	fire := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Remove and Rename are common in atomic saves
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.logger.Debug("file changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(l.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// unwatchStale stops watching files that are no longer part of the journal.
func (l *Loader) unwatchStale(watcher *fsnotify.Watcher, watched map[string]bool, files []string) {
	current := make(map[string]bool, len(files))
	for _, file := range files {
		current[file] = true
	}
	for file := range watched {
		if !current[file] {
			_ = watcher.Remove(file)
			delete(watched, file)
			l.logger.Debug("stopped watching file", zap.String("path", file))
		}
	}
}
