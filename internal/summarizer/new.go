// Package summarizer splits long transcripts into chunks, summarizes each
// one and merges the results.
package summarizer

import (
	"github.com/nguyentantai21042004/yt-summarizer/internal/chunker"
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
)

type implSummarizer struct {
	chunker     *chunker.Chunker
	concurrency int
	logger      logger.Logger
}

// New creates a Summarizer. concurrency bounds the number of section
// summaries in flight; values below 1 mean sequential.
func New(c *chunker.Chunker, concurrency int, log logger.Logger) Summarizer {
	if c == nil {
		c = chunker.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &implSummarizer{
		chunker:     c,
		concurrency: concurrency,
		logger:      log,
	}
}
