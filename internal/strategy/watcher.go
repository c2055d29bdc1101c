package strategy

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"zapretctl/pkg/logging"
)

const (
	// DefaultDebounceInterval is the quiet period after the last change
	// before OnChange fires.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 2 * time.Second
)

// WatcherConfig holds configuration for the store watcher.
type WatcherConfig struct {
	// Path is the store file to watch.
	Path string

	// PollInterval is the fallback polling interval.
	PollInterval time.Duration

	// Debounce collapses bursts of events into one notification.
	Debounce time.Duration

	// OnChange is called after the store file was written or replaced.
	OnChange func()
}

// Watcher notifies when the strategy store changes on disk. The parent
// directory is watched because saves replace the file through a rename.
type Watcher struct {
	mu sync.Mutex

	config    WatcherConfig
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool
	lastMod   time.Time

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a store watcher; call Start to begin watching.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounceInterval
	}
	return &Watcher{config: config}
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	w.stopCh = make(chan struct{})
	w.running = true

	dir := filepath.Dir(w.config.Path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn(subsystem, "fsnotify not available, falling back to polling: %v", err)
		go w.poll()
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		logging.Warn(subsystem, "Failed to watch %s, falling back to polling: %v", dir, err)
		watcher.Close()
		go w.poll()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)
	logging.Debug(subsystem, "Watching %s", w.config.Path)
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	target := filepath.Base(w.config.Path)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logging.Debug(subsystem, "Store changed: %s", event)
			w.notifyDebounced()
		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error(subsystem, err, "fsnotify error")
		}
	}
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.lastMod = w.modTime()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if mod := w.modTime(); !mod.Equal(w.lastMod) {
				w.lastMod = mod
				w.notifyDebounced()
			}
		}
	}
}

func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.config.Path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (w *Watcher) notifyDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
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

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn(subsystem, "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}
	return nil
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
