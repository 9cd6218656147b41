package localhub

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"alarmdeck/pkg/ha"
)

// Watch streams full snapshots until ctx is cancelled. Bursts of filesystem
// activity coalesce into a single snapshot read, and snapshots are dropped
// when the consumer is not ready so the watcher never stalls on a slow UI.
// The channel is closed once ctx is done or the watcher hits an unrecoverable
// error.
func (h *Hub) Watch(ctx context.Context) (<-chan ha.Snapshot, error) {
	if h.basePath == "" {
		return nil, errors.New("localhub: base path unknown")
	}

	if err := os.MkdirAll(h.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("localhub: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("localhub: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "localhub: watcher close: %v\n", err)
			}
		})
	}

	dirs, err := collectDirs(h.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("localhub: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("localhub: watch %s: %w", dir, err)
		}
	}

	snapshots := make(chan ha.Snapshot, 1)

	// The timer callback must never touch snapshots: it can fire after the
	// loop below has exited and closed the channel. It only nudges ticks,
	// which stays open forever, and the loop is the sole sender.
	ticks := make(chan struct{}, 1)
	throttle := newRefreshThrottle(100*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(snapshots)
		defer closeWatcher()
		defer throttle.Stop()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func() {
			snap, err := h.Current(ctx)
			if err != nil {
				return
			}
			select {
			case snapshots <- snap:
			default:
				// Drop the snapshot if the consumer is not ready; the next
				// change produces a fresh one anyway.
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				send()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Surface watcher errors as a full refresh to keep clients in
				// sync even when the change cannot be classified.
				throttle.Enqueue()
				_ = err
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					// A new domain directory means subsequent file writes
					// would be invisible without a watch on it.
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						absDir := filepath.Clean(evt.Name)
						if _, found := watched[absDir]; !found {
							if err := watcher.Add(absDir); err != nil {
								fmt.Fprintf(os.Stderr, "localhub: watch %s: %v\n", absDir, err)
							} else {
								watched[absDir] = struct{}{}
							}
						}
					}
				}

				throttle.Enqueue()
			}
		}
	}()

	return snapshots, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// refreshThrottle coalesces rapid change notifications so consumers re-read
// once per burst of filesystem activity instead of on every single write.
// Stop cannot cancel a callback already in flight, so notify must be safe to
// run at any time after Stop.
type refreshThrottle struct {
	mu     sync.Mutex
	timer  *time.Timer
	delay  time.Duration
	notify func()
}

func newRefreshThrottle(delay time.Duration, notify func()) *refreshThrottle {
	return &refreshThrottle{delay: delay, notify: notify}
}

func (t *refreshThrottle) Enqueue() {
	t.mu.Lock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.mu.Lock()
			t.timer = nil
			t.mu.Unlock()
			t.notify()
		})
	}
	t.mu.Unlock()
}

func (t *refreshThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
