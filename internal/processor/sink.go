package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

// ErrClientGone is returned once the sink has failed.
var ErrClientGone = errors.New("client disconnected")

// guardedSink enforces at most one terminal event and stops the request
// when the underlying sink fails.
type guardedSink struct {
	mu       sync.Mutex
	next     Sink
	cancel   context.CancelFunc
	logger   logger.Logger
	ctx      context.Context
	terminal bool
	err      error
}

func newGuardedSink(ctx context.Context, next Sink, cancel context.CancelFunc, log logger.Logger) *guardedSink {
	return &guardedSink{ctx: ctx, next: next, cancel: cancel, logger: log}
}

func (g *guardedSink) Send(ev Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return g.err
	}
	if g.terminal {
		g.logger.Warn(g.ctx, "processor: dropping %s event after terminal event", ev.Type)
		return nil
	}
	if ev.Terminal() {
		g.terminal = true
	}

	if err := g.next.Send(ev); err != nil {
		g.err = fmt.Errorf("%w: %v", ErrClientGone, err)
		g.cancel()
		return g.err
	}
	return nil
}

// failed returns the sink error, if any.
func (g *guardedSink) failed() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
