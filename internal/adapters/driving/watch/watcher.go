// Package watch triggers targeted import runs from filesystem events
// on the file upload drop directory.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driving"
	"github.com/alcove-dev/alcove/internal/logger"
)

// DefaultDebounce coalesces bursts of filesystem events into one run.
const DefaultDebounce = 2 * time.Second

// Watcher invokes the importer for one plugin when files change in its
// drop directory. Events are debounced so copying a batch of files
// triggers a single run.
type Watcher struct {
	importer   driving.Importer
	pluginName string
	dir        string
	debounce   time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New creates a watcher for the given directory. debounce <= 0 selects
// the default.
func New(importer driving.Importer, pluginName, dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		importer:   importer,
		pluginName: pluginName,
		dir:        dir,
		debounce:   debounce,
	}
}

// Start begins watching. It returns immediately; events are handled on
// a background goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.running = true

	w.wg.Add(1)
	go w.loop(ctx)

	logger.Info("watching %s for %s uploads", w.dir, w.pluginName)
	return nil
}

// Stop shuts the watcher down and waits for an in-flight run to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.fsw.Close()
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	// The timer starts drained; the first event arms it.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("watch event: %s", event)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)

		case <-timer.C:
			w.trigger(ctx)
		}
	}
}

// relevant filters for events that add or change file content.
func relevant(event fsnotify.Event) bool {
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Rename)
}

// trigger runs one targeted import for the watched plugin.
func (w *Watcher) trigger(ctx context.Context) {
	rc := domain.RunContext{
		Plugins:   []string{w.pluginName},
		InvokedAt: time.Now().UTC(),
		Trigger:   domain.TriggerWatch,
	}
	if _, err := w.importer.Run(ctx, rc); err != nil {
		logger.Warn("watch-triggered import: %v", err)
	}
}
