package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDebounce = 100 * time.Millisecond

// Watcher reports changes to the settings file made by other writers.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher starts watching the directory holding the settings file. The
// directory is watched rather than the file because saves replace the file.
func NewWatcher(store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	target, err := filepath.Abs(store.Path())
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("resolve %s: %w", store.Path(), err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	return &Watcher{
		store:    store,
		watcher:  fw,
		target:   target,
		debounce: defaultWatchDebounce,
		logger:   store.logger,
	}, nil
}

// Run calls fn with the reloaded record after each burst of writes to the
// settings file. A file that cannot be read or decoded is skipped. It returns when ctx is done and closes the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(Config)) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("settings watcher error", zap.Error(err))
		case <-timer.C:
			cfg, err := w.store.Read()
			if err != nil {
				// a half-written or hand-broken file must not replace the record
				w.logger.Warn("settings reload skipped", zap.String("path", w.target), zap.Error(err))
				continue
			}
			fn(cfg)
		}
	}
}

// Watch starts a watcher on the store's file and blocks until ctx is done.
func Watch(ctx context.Context, store *Store, fn func(Config)) error {
	w, err := NewWatcher(store)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
