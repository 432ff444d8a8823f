// Package watcher runs a handler for every URL list file dropped into the
// inbox directory.
package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"golang.org/x/sync/semaphore"
)

// Options tune the watcher. Zero values select the defaults.
type Options struct {
	MaxConcurrent int           // default 2
	SettleDelay   time.Duration // wait before reading a new file, default 500ms
}

// New creates a Watcher on inputDir.
func New(inputDir string, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}

	return &implWatcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		seen:     make(map[string]struct{}),
	}, nil
}
