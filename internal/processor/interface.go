package processor

import (
	"context"
)

// Processor turns a summarize request into a sequence of events.
type Processor interface {
	// Process runs one request and writes its events to sink. Exactly one
	// terminal event (complete or error) is written unless the sink fails.
	Process(ctx context.Context, req Request, sink Sink) (*Result, error)
	// ProcessFile summarizes every URL listed in an inbox file and writes
	// the results next to the configured output directory.
	ProcessFile(ctx context.Context, path string) error
}

// Sink receives the events of one request. A Send error means the client
// is gone and processing should stop.
type Sink interface {
	Send(ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event) error

func (f SinkFunc) Send(ev Event) error { return f(ev) }

// Request is the body of POST /api/summarize.
type Request struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Mode     string `json:"mode"`
	AIModel  string `json:"aiModel"`
}

// Result describes a completed request.
type Result struct {
	VideoID   string
	Title     string
	Summary   string
	Language  string
	Source    string
	Model     string
	SummaryID string
	Streamed  bool
}
