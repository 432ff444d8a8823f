package watcher

import "context"

// Watcher monitors the inbox directory for URL list files.
type Watcher interface {
	// Start handles files already in the inbox, then new ones, until ctx
	// is done. It waits for running handlers before returning.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once per inbox file.
type EventHandler func(ctx context.Context, filePath string) error
