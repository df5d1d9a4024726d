// Package watcher re-triggers a hoist whenever the input package tree file
// changes on disk, backing `dephoist hoist --watch`.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/dephoist/pkg/logging"
)

// ChangeEvent is a batch of writes to the watched input file, coalesced by a
// Debouncer so a burst of saves triggers one re-hoist rather than many.
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches the directory containing a single input file and
// reports writes to that file. Watching the directory rather than the file
// itself survives editors that write via rename-into-place.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	events   chan ChangeEvent
	done     chan struct{}
	closeMu  sync.Mutex
	stopped  bool
}

// NewFileWatcher creates a watcher for target, an input package tree file.
func NewFileWatcher(target string) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}

	return &FileWatcher{
		watcher: w,
		target:  abs,
		events:  make(chan ChangeEvent, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching in the background until ctx is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) {
	logging.Info("watching input file", "path", fw.target)
	go fw.run(ctx)
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.events)
	defer close(fw.done)
	defer fw.watcher.Close()

	var pending []string
	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		fw.events <- ChangeEvent{Paths: pending, Timestamp: time.Now()}
		pending = nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != fw.target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			pending = append(pending, event.Name)
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of coalesced change events.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop blocks until the watcher goroutine started by Start has exited.
// Callers cancel the context passed to Start first; Stop just waits for the
// resulting cleanup (closed events channel, released fsnotify handle).
func (fw *FileWatcher) Stop() {
	fw.closeMu.Lock()
	defer fw.closeMu.Unlock()
	if fw.stopped {
		return
	}
	fw.stopped = true
	<-fw.done
}
