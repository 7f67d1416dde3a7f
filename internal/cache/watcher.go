package cache

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/analysis/core"
)

// Watcher invalidates a session's cached reports when files under its root
// change. fsnotify watches are per-directory, so the whole tree is registered
// up front and newly created directories are added as they appear.
type Watcher struct {
	cache   *ReportCache
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

// Watch starts watching the session's tree. Close must be called to release
// the inotify resources.
func Watch(cache *ReportCache, session *core.Session, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		cache:   cache,
		watcher: fsw,
		logger:  logger.Named("watcher"),
		done:    make(chan struct{}),
	}

	if err := w.addTree(session.Root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run(session.ID)
	return w, nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) run(sessionID string) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Dot entries change constantly (editors, git); they never feed
			// analysis, so they never invalidate it.
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			w.logger.Debug("Filesystem change, dropping cached reports",
				zap.String("path", event.Name), zap.String("op", event.Op.String()))
			w.cache.InvalidateSession(sessionID)

			if event.Op.Has(fsnotify.Create) {
				// Best effort: if the new entry is a directory it needs its
				// own watch. Add fails harmlessly on plain files.
				_ = w.watcher.Add(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Filesystem watcher error", zap.Error(err))
		}
	}
}
