package summarizer

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned for a transcript with no words.
var ErrEmptyText = errors.New("transcript is empty")

// ReductionFailedError reports the chunk whose summary could not be produced.
type ReductionFailedError struct {
	ChunkIndex int
	Err        error
}

func (e *ReductionFailedError) Error() string {
	return fmt.Sprintf("summarize chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *ReductionFailedError) Unwrap() error { return e.Err }
