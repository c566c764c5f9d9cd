package prefs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last file event before
// reloading.
const DefaultDebounce = 50 * time.Millisecond

// Watch reloads the backing file whenever it changes on disk until ctx is
// done. Listeners see a Change for every key whose value differs after the
// reload. The returned channel is closed when watching stops.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	if s.path == "" {
		return nil, ErrNoPath
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: atomic saves replace the file, which drops a
	// watch placed on the file itself.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	done := make(chan struct{})
	go s.watchLoop(ctx, w, done)
	return done, nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)
	defer w.Close()

	timer := time.NewTimer(DefaultDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			timer.Reset(DefaultDebounce)

		case <-timer.C:
			if err := s.Load(); err != nil {
				s.log.Warn("reloading preferences: %v", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn("preference watcher: %v", err)
		}
	}
}
