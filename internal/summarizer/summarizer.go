package summarizer

import (
	"context"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/yt-summarizer/internal/chunker"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"golang.org/x/sync/errgroup"
)

// SectionSeparator joins section summaries in the reduce request.
const SectionSeparator = provider.SectionSeparator

// Summarize makes one provider call for a short transcript, and K+1 calls
// for a transcript split into K chunks.
func (s *implSummarizer) Summarize(ctx context.Context, text, language string, p provider.Provider, progress ProgressFunc) (string, error) {
	req, err := s.Prepare(ctx, text, language, p, progress)
	if err != nil {
		return "", err
	}

	return p.Summarize(ctx, req)
}

func (s *implSummarizer) Prepare(ctx context.Context, text, language string, p provider.Provider, progress ProgressFunc) (provider.Request, error) {
	chunks := s.chunker.Split(text)
	switch len(chunks) {
	case 0:
		return provider.Request{}, ErrEmptyText
	case 1:
		return provider.Request{Text: text, Language: language, Stage: provider.StageFull}, nil
	}

	s.logger.Info(ctx, "summarizer: %d chars split into %d chunks (%s)", len(text), len(chunks), p.Name())

	sections, err := s.summarizeChunks(ctx, chunks, language, p, progress)
	if err != nil {
		return provider.Request{}, err
	}

	return provider.Request{
		Text:     strings.Join(sections, SectionSeparator),
		Language: language,
		Stage:    provider.StageReduce,
		Sections: len(chunks),
	}, nil
}

// summarizeChunks returns one summary per chunk, in chunk order.
func (s *implSummarizer) summarizeChunks(ctx context.Context, chunks []chunker.Chunk, language string, p provider.Provider, progress ProgressFunc) ([]string, error) {
	sections := make([]string, len(chunks))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			summary, err := p.Summarize(gctx, provider.Request{
				Text:     c.Text,
				Language: language,
				Stage:    provider.StageSection,
				Section:  c.Index + 1,
				Sections: len(chunks),
			})
			if err != nil {
				s.logger.Warn(gctx, "summarizer: chunk %d/%d failed: %v", c.Index+1, len(chunks), err)
				return &ReductionFailedError{ChunkIndex: c.Index, Err: err}
			}
			sections[c.Index] = summary

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(chunks))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// A cancelled sibling may return the context error first.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return sections, nil
}
