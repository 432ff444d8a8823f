package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"golang.org/x/sync/semaphore"
)

var supportedExts = []string{".url", ".urls", ".txt"}

type implWatcher struct {
	inputDir string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	opts     Options
	sem      *semaphore.Weighted // bounds files handled at once
	wg       sync.WaitGroup

	mu   sync.Mutex
	seen map[string]struct{} // files currently being handled
}

func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrent, w.inputDir)
	w.logger.Info(ctx, "Supported files: %s", strings.Join(supportedExts, ", "))

	if err := w.handleExisting(ctx); err != nil {
		return w.wait(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			return w.wait(ctx, ctx.Err())

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.wait(ctx, fmt.Errorf("watcher events channel closed"))
			}
			// Create covers new files and files moved into the inbox.
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isURLFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New inbox file detected: %s", event.Name)
			if err := w.dispatch(ctx, event.Name, w.opts.SettleDelay); err != nil {
				return w.wait(ctx, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.wait(ctx, fmt.Errorf("watcher errors channel closed"))
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) wait(ctx context.Context, err error) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "Inbox watcher stopped")
	return err
}

// handleExisting queues files that were in the inbox before start.
func (w *implWatcher) handleExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isURLFile(e.Name()) {
			files = append(files, filepath.Join(w.inputDir, e.Name()))
		}
	}
	sort.Strings(files)

	if len(files) > 0 {
		w.logger.Info(ctx, "Found %d files already in inbox", len(files))
	}
	for _, f := range files {
		if err := w.dispatch(ctx, f, 0); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler for path in a goroutine once a slot is free.
// A path already being handled is skipped.
func (w *implWatcher) dispatch(ctx context.Context, path string, delay time.Duration) error {
	w.mu.Lock()
	if _, busy := w.seen[path]; busy {
		w.mu.Unlock()
		return nil
	}
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	if err := w.sem.Acquire(ctx, 1); err != nil {
		w.forget(path)
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.Release(1)
		defer w.forget(path)

		// Let the writer finish.
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

func (w *implWatcher) forget(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}

func isURLFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range supportedExts {
		if ext == e {
			return true
		}
	}
	return false
}
