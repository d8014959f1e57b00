// Package signals implements file-based stop signaling for running
// sessions. Dropping a stop file under .vtagent/signals asks the
// active session to begin draining, the same path as Ctrl+C.
package signals

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const stopFile = "stop"

// pollInterval is the fallback cadence when the fsnotify watcher
// could not be created.
const pollInterval = 500 * time.Millisecond

// Watcher monitors the project's signals directory for a stop file.
type Watcher struct {
	dir string

	mu      sync.Mutex
	stopped bool
	notify  chan struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Dir returns the signals directory for a project root.
func Dir(projectRoot string) string {
	return filepath.Join(projectRoot, ".vtagent", "signals")
}

// NewWatcher creates a watcher for the given project root. The signals
// directory is created if missing. If the filesystem watcher cannot be
// set up, the watcher falls back to polling.
func NewWatcher(projectRoot string) (*Watcher, error) {
	dir := Dir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:    dir,
		notify: make(chan struct{}),
		done:   make(chan struct{}),
	}

	fw, err := fsnotify.NewWatcher()
	if err == nil {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			fw = nil
		}
	}
	w.watcher = fw

	if w.watcher != nil {
		go w.watch()
	} else {
		go w.poll()
	}
	return w, nil
}

// watch reacts to filesystem events on the signals directory.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == stopFile &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.markStopped()
			}
		case <-w.watcher.Errors:
			// Keep watching; ShouldStop still checks the file directly.
		}
	}
}

// poll is the fallback when no filesystem watcher is available.
func (w *Watcher) poll() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if w.ShouldStop() {
				return
			}
		}
	}
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.notify)
	}
}

// ShouldStop reports whether a stop signal has been received. It also
// checks the file directly in case the watcher missed the event.
func (w *Watcher) ShouldStop() bool {
	if _, err := os.Stat(filepath.Join(w.dir, stopFile)); err == nil {
		w.markStopped()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// Notify returns a channel closed when a stop signal arrives.
func (w *Watcher) Notify() <-chan struct{} {
	return w.notify
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// SendStop writes a stop file for the session running in projectRoot.
func SendStop(projectRoot string) error {
	dir := Dir(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	stamp := time.Now().Format(time.RFC3339)
	return os.WriteFile(filepath.Join(dir, stopFile), []byte(stamp), 0644)
}

// Clear removes any leftover stop file so a new session does not drain
// immediately on startup.
func Clear(projectRoot string) error {
	err := os.Remove(filepath.Join(Dir(projectRoot), stopFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
