// Package watch publishes file.changed events when session documents are
// modified on disk, whether by a turn's tools or by an external editor.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/logging"
)

// Watcher monitors the data directory tree and forwards document changes to
// the event bus.
type Watcher struct {
	watcher *fsnotify.Watcher
	bus     *event.Bus
	dataDir string
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher over dataDir. Existing session directories
// are registered immediately; new ones are picked up as they appear.
func NewWatcher(dataDir string, bus *event.Bus) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dataDir); err != nil {
		w.Close()
		return nil, err
	}

	entries, err := os.ReadDir(dataDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				if err := w.Add(filepath.Join(dataDir, entry.Name())); err != nil {
					logging.Warn().Err(err).Str("dir", entry.Name()).Msg("failed to watch session directory")
				}
			}
		}
	}

	return &Watcher{
		watcher: w,
		bus:     bus,
		dataDir: dataDir,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins delivering events.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel, err := filepath.Rel(w.dataDir, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if ignored(rel) {
		return
	}

	// A new session directory needs its own watch to see files inside it.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				logging.Warn().Err(err).Str("dir", rel).Msg("failed to watch new directory")
			}
			return
		}
	}

	sessionID, path := splitSessionPath(rel)
	w.bus.Publish(event.Event{
		Type: event.FileChanged,
		Data: event.FileData{SessionID: sessionID, Path: path},
	})
}

// ignored filters bookkeeping files that are not student-visible documents.
func ignored(rel string) bool {
	base := filepath.Base(rel)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, ".lock") || strings.HasSuffix(base, ".tmp"):
		return true
	case base == "sessions.json" || base == "messages.json":
		return true
	}
	return false
}

// splitSessionPath separates "sessionID/rest" paths; global files have an
// empty session id.
func splitSessionPath(rel string) (sessionID, path string) {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i], rel[i+1:]
	}
	return "", rel
}

// Stop shuts the watcher down and waits for delivery to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	if started {
		<-w.doneCh
	}
	return w.watcher.Close()
}
