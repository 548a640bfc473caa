// Package watch reports changes to monitored service documents on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"healthsync/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for further changes to a
// file before reporting it.
const DefaultDebounce = 500 * time.Millisecond

// Operation is what happened to a watched file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Event reports a debounced change to a watched file.
type Event struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Watcher watches a set of files through their parent directories, so that
// editors replacing a file by rename are seen as well.
type Watcher struct {
	mu sync.RWMutex

	files            map[string]bool
	debounceInterval time.Duration
	watcher          *fsnotify.Watcher
	pendingEvents    map[string]*debounceEntry
	stopCh           chan struct{}
	running          bool
}

type debounceEntry struct {
	event Event
	timer *time.Timer
}

// NewWatcher creates a watcher for files. A zero debounce selects
// DefaultDebounce.
func NewWatcher(debounceInterval time.Duration, files ...string) (*Watcher, error) {
	if debounceInterval == 0 {
		debounceInterval = DefaultDebounce
	}
	w := &Watcher{
		files:            make(map[string]bool, len(files)),
		debounceInterval: debounceInterval,
		pendingEvents:    make(map[string]*debounceEntry),
		stopCh:           make(chan struct{}),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Start begins watching. Events are sent to changes until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context, changes chan<- Event) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			w.mu.Unlock()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Debug("Watch", "Watching directory: %s", dir)
	}

	w.watcher = watcher
	w.running = true
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	go w.processEvents(ctx, watcher, stopCh, changes)

	logging.Info("Watch", "Started watching %d files for changes", len(w.files))
	return nil
}

func (w *Watcher) processEvents(ctx context.Context, watcher *fsnotify.Watcher, stopCh <-chan struct{}, changes chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			w.cleanupPendingEvents()
			return

		case <-stopCh:
			w.cleanupPendingEvents()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watch", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event, changes chan<- Event) {
	path, err := filepath.Abs(event.Name)
	if err != nil || !isDocumentFile(path) {
		return
	}

	w.mu.RLock()
	watching := w.files[path]
	w.mu.RUnlock()
	if !watching {
		return
	}

	var operation Operation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		operation = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		operation = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		operation = OperationDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// the replacement shows up as a create
		operation = OperationDelete
	default:
		return
	}

	w.debounceEvent(Event{Path: path, Operation: operation, Timestamp: time.Now()}, changes)
}

// debounceEvent collapses rapid successive changes to one file into one event.
func (w *Watcher) debounceEvent(event Event, changes chan<- Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := event.Path
	if entry, ok := w.pendingEvents[key]; ok {
		entry.timer.Stop()
		event.Operation = mergeOperations(entry.event.Operation, event.Operation)
	}

	timer := time.AfterFunc(w.debounceInterval, func() {
		w.mu.Lock()
		entry, ok := w.pendingEvents[key]
		if ok {
			delete(w.pendingEvents, key)
		}
		w.mu.Unlock()

		if ok {
			select {
			case changes <- entry.event:
				logging.Debug("Watch", "Emitted %s event for %s", entry.event.Operation, entry.event.Path)
			default:
				logging.Warn("Watch", "Change channel full, dropping event for %s", entry.event.Path)
			}
		}
	})

	w.pendingEvents[key] = &debounceEntry{event: event, timer: timer}
}

// mergeOperations merges two operations on the same file into one.
func mergeOperations(old, new Operation) Operation {
	switch {
	case old == OperationCreate && new == OperationUpdate:
		return OperationCreate
	case old == OperationDelete && new == OperationCreate:
		// replaced by rename
		return OperationUpdate
	default:
		return new
	}
}

func (w *Watcher) cleanupPendingEvents() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, entry := range w.pendingEvents {
		entry.timer.Stop()
	}
	w.pendingEvents = make(map[string]*debounceEntry)
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
		w.watcher = nil
	}

	logging.Info("Watch", "Stopped watching")
	return err
}

// Run starts w and calls fn for every change until ctx is done. Errors
// returned by fn are logged and watching continues.
func Run(ctx context.Context, w *Watcher, fn func(context.Context, Event) error) error {
	changes := make(chan Event, 16)
	if err := w.Start(ctx, changes); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-changes:
			if err := fn(ctx, event); err != nil {
				logging.Error("Watch", err, "Handling %s of %s failed", event.Operation, event.Path)
			}
		}
	}
}

// isDocumentFile reports whether path has a YAML or JSON extension.
func isDocumentFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml" || ext == ".json"
}
