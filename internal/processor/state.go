package processor

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

// State is the position of a request in its lifecycle.
type State int

const (
	StateInitializing State = iota
	StateExtractingID
	StateFetchingTranscript
	StateProcessing
	StateStreaming
	StateDirectSummarizing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateExtractingID:
		return "extracting_id"
	case StateFetchingTranscript:
		return "fetching_transcript"
	case StateProcessing:
		return "processing"
	case StateStreaming:
		return "streaming"
	case StateDirectSummarizing:
		return "direct_summarizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateInitializing:       {StateExtractingID},
	StateExtractingID:       {StateFetchingTranscript},
	StateFetchingTranscript: {StateProcessing},
	StateProcessing:         {StateStreaming, StateDirectSummarizing},
	StateStreaming:          {StateCompleted},
	StateDirectSummarizing:  {StateCompleted},
}

// machine tracks one request. Any non-terminal state may fail.
type machine struct {
	state  State
	id     string
	logger logger.Logger
}

func newMachine(id string, log logger.Logger) *machine {
	return &machine{state: StateInitializing, id: id, logger: log}
}

func (m *machine) to(ctx context.Context, next State) error {
	if !m.allowed(next) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, next)
	}
	m.logger.Debug(ctx, "request %s: %s -> %s", m.id, m.state, next)
	m.state = next
	return nil
}

func (m *machine) allowed(next State) bool {
	if next == StateFailed {
		return m.state != StateCompleted && m.state != StateFailed
	}
	for _, s := range transitions[m.state] {
		if s == next {
			return true
		}
	}
	return false
}
