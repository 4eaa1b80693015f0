package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long Watch waits for more changes before signalling.
const DebounceDelay = 150 * time.Millisecond

// Watch implements service.Watcher. It signals once per burst of changes
// made to the document by another process; this store's own commits are
// not reported, unless a commit carried another process's change along.
//
// The parent directory is watched rather than the file because commits
// replace the file by rename.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("watch task file: %w", err)
	}

	if err := s.markSeen(); err != nil {
		return nil, fmt.Errorf("watch task file: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch task file: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch task file: %w", err)
	}

	out := make(chan struct{}, 1)
	go s.watchLoop(ctx, fsw, out)
	s.logger.Debug("watching task file", "path", s.path)
	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer fsw.Close()

	name := filepath.Base(s.path)
	timer := time.NewTimer(DebounceDelay)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(DebounceDelay)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("task file watcher error", "err", err)

		case <-timer.C:
			pending = false
			if !s.changedExternally() {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
				// A reload is already queued.
			}
		}
	}
}
