// Package provider defines the summarization backend abstraction and the
// candidate-model fallback shared by concrete backends.
package provider

import "context"

// Provider turns a Request into summary text.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, req Request) (string, error)
}

// Streamer is a Provider that can also deliver its output incrementally.
type Streamer interface {
	Provider
	SummarizeStream(ctx context.Context, req Request) (Stream, error)
}

// Stream is a finite, pull-based sequence of text fragments. Next returns
// io.EOF once the upstream has finished. Close releases the upstream
// connection and may be called at any time; a stream cannot be restarted.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Stage tells the backend which prompt to render for a request.
type Stage int

const (
	// StageFull summarizes a whole transcript in one pass.
	StageFull Stage = iota
	// StageSection summarizes one chunk of a longer transcript.
	StageSection
	// StageReduce merges section summaries into the final summary.
	StageReduce
)

func (s Stage) String() string {
	switch s {
	case StageFull:
		return "full"
	case StageSection:
		return "section"
	case StageReduce:
		return "reduce"
	default:
		return "unknown"
	}
}

// Request is one summarization call. Section is 1-based and only set for
// StageSection.
type Request struct {
	Text     string
	Language string
	Stage    Stage
	Section  int
	Sections int
}
