package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

func TestGuardedSinkSingleTerminal(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := newGuardedSink(ctx, rec, cancel, logger.Discard())

	g.Send(progressEvent(StageAnalyzing, "a"))
	g.Send(Event{Type: TypeComplete})
	g.Send(errorEvent(errors.New("late")))
	g.Send(progressEvent(StageAnalyzing, "b"))

	if len(rec.events) != 2 || rec.terminals() != 1 {
		t.Errorf("events = %v", rec.types())
	}
	if ctx.Err() != nil {
		t.Error("context cancelled without a sink failure")
	}
}

func TestGuardedSinkFailureCancels(t *testing.T) {
	rec := &recorder{failAt: 2}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := newGuardedSink(ctx, rec, cancel, logger.Discard())

	if err := g.Send(progressEvent(StageAnalyzing, "a")); err != nil {
		t.Fatal(err)
	}
	if err := g.Send(progressEvent(StageAnalyzing, "b")); !errors.Is(err, ErrClientGone) {
		t.Fatalf("error = %v, want ErrClientGone", err)
	}
	if ctx.Err() == nil {
		t.Error("context not cancelled after sink failure")
	}
	if err := g.Send(Event{Type: TypeComplete}); !errors.Is(err, ErrClientGone) {
		t.Errorf("later Send = %v, want ErrClientGone", err)
	}
	if !errors.Is(g.failed(), ErrClientGone) {
		t.Error("failed() did not report the sink error")
	}
}
