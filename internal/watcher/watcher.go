// Package watcher subscribes to filesystem write events on the live
// notification database and its write-ahead-log sidecar.
package watcher

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher triggers a callback whenever the live database or its WAL sidecar
// is written. No payload accompanies the callback; the read pass re-reads
// state itself, so redundant or coalesced invocations are harmless.
type Watcher struct {
	livePath string
	onChange func()

	mu         sync.Mutex
	fs         *fsnotify.Watcher
	accessible bool
	stopped    bool
	done       chan struct{}
}

// New creates a Watcher for the given live database path. onChange is
// invoked from the watcher goroutine; callers serialize it onto their own
// run loop.
func New(livePath string, onChange func()) *Watcher {
	return &Watcher{livePath: livePath, onChange: onChange}
}

// Start opens the event source and begins watching the database and its WAL
// sidecar. An unreadable live file is not fatal: the accessible flag flips
// and access is retried lazily on the next manual check.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fs != nil {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fs watcher: %w", err)
	}

	w.accessible = canRead(w.livePath)

	if err := fs.Add(w.livePath); err != nil {
		// Permission denied or absent file: keep running, flag it.
		log.Printf("watcher: cannot watch %s: %v", w.livePath, err)
		w.accessible = false
	}
	if err := fs.Add(w.livePath + "-wal"); err != nil {
		// The sidecar may not exist yet; the main file watch covers
		// checkpoints.
		log.Printf("watcher: cannot watch wal sidecar: %v", err)
	}

	w.fs = fs
	w.stopped = false
	w.done = make(chan struct{})
	go w.loop(fs, w.done)
	return nil
}

// Stop cancels both file monitors and closes the event source. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fs := w.fs
	done := w.done
	w.fs = nil
	w.stopped = true
	w.mu.Unlock()

	if fs == nil {
		return
	}
	_ = fs.Close()
	<-done
}

// Accessible reports the last observed read-access state of the live file.
func (w *Watcher) Accessible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accessible
}

// CheckAccess re-probes read access to the live file and returns the current
// state plus whether it changed since the last check.
func (w *Watcher) CheckAccess() (accessible, changed bool) {
	now := canRead(w.livePath)

	w.mu.Lock()
	defer w.mu.Unlock()
	changed = now != w.accessible
	w.accessible = now
	return now, changed
}

func (w *Watcher) loop(fs *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case ev, ok := <-fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.onChange()
			}
		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: event source error: %v", err)
		}
	}
}

func canRead(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
