// Package watcher observes the vault directory for document changes
// made outside the process — a human editing files directly — and
// surfaces them as events. It never mutates the vault.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mazkir/mazkir/internal/storage"
)

// EventCallback is called for each observed document change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) for
// each document change.
//
// New directories created at runtime are automatically added to the
// watch list. Temporary files from atomic writes, dotfiles, and
// non-document files (including the recovery journal) are ignored.
func Watch(ctx context.Context, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// Editors emit bursts of write events while saving; coalesce them per
	// path and flush after a quiet period.
	pendingWrites := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}
	defer func() {
		if flushTimer != nil {
			flushTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for rel := range pendingWrites {
				logger.Debug("watcher: updated", slog.String("path", rel))
				if cb != nil {
					cb("updated", rel)
				}
				delete(pendingWrites, rel)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories are added to the watch list.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					continue
				}
			}

			if !isDocument(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				logger.Debug("watcher: created", slog.String("path", rel))
				if cb != nil {
					cb("created", rel)
				}
			case ev.Op&fsnotify.Write != 0:
				pendingWrites[rel] = struct{}{}
				scheduleFlush()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path arrives as
				// a separate Create event when it stays in the vault.
				delete(pendingWrites, rel)
				logger.Debug("watcher: deleted", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// isDocument filters watch events down to real vault documents.
func isDocument(absPath string) bool {
	base := filepath.Base(absPath)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, storage.DocumentExt)
}

// addDirsRecursive adds dir and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
