// Package watch monitors a directory of input decks and re-runs each
// deck after it changes on disk. Rapid editor save bursts are debounced
// so a deck runs once per settled change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nastrun/internal/logging"
)

// deckExtensions are the input file suffixes worth reacting to.
var deckExtensions = []string{".bdf", ".dat", ".nas"}

// RunFunc is invoked once per settled deck change.
type RunFunc func(ctx context.Context, deckPath string)

// Stats tracks watcher activity for tests and diagnostics.
type Stats struct {
	EventsSeen    int
	RunsTriggered int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// DeckWatcher watches one directory for deck file changes.
type DeckWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	run         RunFunc
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// New creates a watcher over dir. The directory must exist.
func New(dir string, run RunFunc, debounce time.Duration) (*DeckWatcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DeckWatcher{
		watcher:     watcher,
		dir:         dir,
		run:         run,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a
// goroutine until Stop or ctx cancellation.
func (dw *DeckWatcher) Start(ctx context.Context) error {
	dw.mu.Lock()
	if dw.running {
		dw.mu.Unlock()
		return nil
	}
	dw.running = true
	dw.mu.Unlock()

	if err := dw.watcher.Add(dw.dir); err != nil {
		dw.mu.Lock()
		dw.running = false
		dw.mu.Unlock()
		return err
	}
	logging.Watch("Watching %s for deck changes (debounce %s)", dw.dir, dw.debounceDur)

	go dw.loop(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (dw *DeckWatcher) Stop() {
	dw.mu.Lock()
	if !dw.running {
		dw.mu.Unlock()
		return
	}
	dw.running = false
	dw.mu.Unlock()

	close(dw.stopCh)
	<-dw.doneCh

	if err := dw.watcher.Close(); err != nil {
		logging.WatchDebug("Error closing watcher: %v", err)
	}
	logging.Watch("Watcher stopped")
}

// IsWatching reports whether the event loop is active.
func (dw *DeckWatcher) IsWatching() bool {
	dw.mu.RLock()
	defer dw.mu.RUnlock()
	return dw.running
}

// GetStats returns a snapshot of watcher activity.
func (dw *DeckWatcher) GetStats() Stats {
	dw.mu.RLock()
	defer dw.mu.RUnlock()
	return dw.stats
}

func (dw *DeckWatcher) loop(ctx context.Context) {
	defer close(dw.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Watch context cancelled")
			return
		case <-dw.stopCh:
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchDebug("Watcher error: %v", err)
			dw.mu.Lock()
			dw.stats.Errors++
			dw.mu.Unlock()
		case <-ticker.C:
			dw.processSettled(ctx)
		}
	}
}

func (dw *DeckWatcher) handleEvent(event fsnotify.Event) {
	if !isDeckFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	logging.WatchDebug("Deck event %s for %s", event.Op, event.Name)

	dw.mu.Lock()
	dw.stats.EventsSeen++
	dw.stats.LastEventPath = event.Name
	dw.stats.LastEventTime = time.Now()
	dw.debounceMap[event.Name] = time.Now()
	dw.mu.Unlock()
}

func (dw *DeckWatcher) processSettled(ctx context.Context) {
	dw.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range dw.debounceMap {
		if now.Sub(at) >= dw.debounceDur {
			settled = append(settled, path)
			delete(dw.debounceMap, path)
		}
	}
	dw.mu.Unlock()

	for _, path := range settled {
		if _, err := os.Stat(path); err != nil {
			logging.WatchDebug("Deck vanished before run: %s", path)
			continue
		}
		logging.Watch("Deck settled, running: %s", filepath.Base(path))
		dw.mu.Lock()
		dw.stats.RunsTriggered++
		dw.mu.Unlock()
		dw.run(ctx, path)
	}
}

func isDeckFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range deckExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
