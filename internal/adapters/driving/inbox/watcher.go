// Package inbox selects document images dropped into a watched folder.
//
// Files named front.*, back.* and selfie.* are loaded into their slot once
// they have stopped changing for the settle delay, so a photo still being
// copied is not picked up half written.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
	"github.com/custodia-labs/kycup/internal/logger"
)

// DefaultSettle is how long a file must be quiet before it is selected.
const DefaultSettle = 500 * time.Millisecond

// Selection reports one file picked up from the inbox.
type Selection struct {
	Slot domain.Slot
	Path string

	// Err is set when the file could not be loaded or was rejected.
	Err error
}

// Watcher feeds files from a folder into an upload pipeline.
type Watcher struct {
	dir      string
	loader   driven.ImageLoader
	pipeline driving.DocumentUploadPipeline
	settle   time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
	timers  map[string]*time.Timer
}

// New creates a watcher for dir. settle <= 0 uses DefaultSettle.
func New(dir string, loader driven.ImageLoader, pipeline driving.DocumentUploadPipeline, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:      dir,
		loader:   loader,
		pipeline: pipeline,
		settle:   settle,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch selects files already in the folder, then watches for new ones.
// The returned channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Selection, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("inbox dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, errors.New("inbox watcher is closed")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		w.mu.Unlock()
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fsw
	w.mu.Unlock()

	out := make(chan Selection, domain.SlotCount)
	ready := make(chan string, domain.SlotCount)

	go w.loop(ctx, fsw, ready, out)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("inbox: scan %s: %v", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if _, ok := slotForFile(path); ok {
			w.schedule(ctx, path, ready)
		}
	}

	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, ready chan string, out chan<- Selection) {
	defer close(out)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			fsw.Close()
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path, ready)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("inbox: watcher error: %v", err)
		case path := <-ready:
			sel := w.selectFile(ctx, path)
			select {
			case out <- sel:
			case <-ctx.Done():
				fsw.Close()
				return
			}
		}
	}
}

// handleFsEvent returns the path to select for event, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if _, ok := slotForFile(event.Name); !ok {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) selectFile(ctx context.Context, path string) Selection {
	slot, _ := slotForFile(path)
	sel := Selection{Slot: slot, Path: path}

	file, err := w.loader.Load(ctx, path)
	if err != nil {
		sel.Err = err
		logger.Warn("inbox: load %s: %v", path, err)
		return sel
	}
	if err := w.pipeline.SelectFile(ctx, slot, file); err != nil {
		sel.Err = err
		logger.Warn("inbox: select %s: %v", path, err)
		return sel
	}
	logger.Info("inbox: selected %s as %s", filepath.Base(path), slot)
	return sel
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// slotForFile maps front.*, back.* and selfie.* to their slot.
// Hidden files are ignored.
func slotForFile(path string) (domain.Slot, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return 0, false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	slot, err := domain.ParseSlot(stem)
	if err != nil {
		return 0, false
	}
	return slot, true
}
