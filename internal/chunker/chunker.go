// Package chunker splits long transcripts into overlapping, word-bounded
// chunks that fit a model's input budget.
package chunker

import (
	"errors"
	"strings"
)

const (
	DefaultChunkSize = 7000
	DefaultOverlap   = 1000
)

var (
	ErrInvalidSize    = errors.New("chunker: chunk size must be positive")
	ErrInvalidOverlap = errors.New("chunker: overlap must be non-negative and smaller than chunk size")
)

// Chunk is one slice of the source text. Index is contiguous from 0.
type Chunk struct {
	Index int
	Text  string
}

// Chunker holds validated size parameters.
type Chunker struct {
	size    int
	overlap int
}

// New returns a Chunker closing chunks once they reach chunkSize characters
// and carrying up to overlap characters of trailing words into the next
// chunk.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidOverlap
	}
	return &Chunker{size: chunkSize, overlap: overlap}, nil
}

// Default returns a Chunker using DefaultChunkSize and DefaultOverlap.
func Default() *Chunker {
	return &Chunker{size: DefaultChunkSize, overlap: DefaultOverlap}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into chunks. Every word counts len(word)+1 toward the
// budget, carried words included, so a chunk exceeds chunkSize by at most
// its last word. A trailing chunk made only of carried words is dropped.
func (c *Chunker) Split(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var (
		chunks  []Chunk
		current []string
		fresh   int // words in current not carried over
		length  int
	)

	for _, w := range words {
		current = append(current, w)
		fresh++
		length += len(w) + 1

		if length < c.size {
			continue
		}

		chunks = append(chunks, Chunk{Index: len(chunks), Text: strings.Join(current, " ")})
		current = c.tail(current)
		fresh = 0
		length = cost(current)
	}

	if fresh > 0 {
		chunks = append(chunks, Chunk{Index: len(chunks), Text: strings.Join(current, " ")})
	}

	return chunks
}

func cost(words []string) int {
	n := 0
	for _, w := range words {
		n += len(w) + 1
	}
	return n
}

// tail returns the longest suffix of words whose budget stays within the
// overlap. The result is a fresh slice.
func (c *Chunker) tail(words []string) []string {
	n := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		cost := len(words[i]) + 1
		if n+cost > c.overlap {
			break
		}
		n += cost
		start = i
	}

	out := make([]string, len(words)-start)
	copy(out, words[start:])
	return out
}
