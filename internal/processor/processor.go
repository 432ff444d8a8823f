package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/yt-summarizer/internal/provider"
	"github.com/nguyentantai21042004/yt-summarizer/internal/store"
	"github.com/nguyentantai21042004/yt-summarizer/internal/transcript"
)

// Process orchestrates one summarize request.
func (p *implProcessor) Process(ctx context.Context, req Request, sink Sink) (*Result, error) {
	req = p.withDefaults(req)
	startTime := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := uuid.NewString()[:8]
	m := newMachine(id, p.logger)
	out := newGuardedSink(ctx, sink, cancel, p.logger)

	p.logger.Info(ctx, "request %s: url=%s language=%s model=%s", id, req.URL, req.Language, req.AIModel)

	res, err := p.run(ctx, req, m, out)
	if err != nil {
		if m.allowed(StateFailed) {
			m.to(ctx, StateFailed)
		}
		// Prefer the sink error: the pipeline error is then only a
		// consequence of the cancellation.
		if sinkErr := out.failed(); sinkErr != nil {
			p.logger.Warn(ctx, "request %s: stopped after %s: %v", id, time.Since(startTime), sinkErr)
			return nil, sinkErr
		}
		p.logger.Error(ctx, "request %s: failed after %s: %v", id, time.Since(startTime), err)
		out.Send(errorEvent(err))
		return nil, err
	}

	p.logger.Info(ctx, "request %s: completed in %s (%d chars, streamed=%t)", id, time.Since(startTime), len(res.Summary), res.Streamed)
	return res, nil
}

func (p *implProcessor) run(ctx context.Context, req Request, m *machine, out *guardedSink) (*Result, error) {
	// Extract video ID
	if err := m.to(ctx, StateExtractingID); err != nil {
		return nil, err
	}
	if err := out.Send(progressEvent(StageAnalyzing, "Extracting video ID...")); err != nil {
		return nil, err
	}
	videoID, err := transcript.ExtractVideoID(req.URL)
	if err != nil {
		return nil, err
	}

	// Fetch transcript
	if err := m.to(ctx, StateFetchingTranscript); err != nil {
		return nil, err
	}
	if err := out.Send(progressEvent(StageAnalyzing, "Fetching transcript...")); err != nil {
		return nil, err
	}
	tr, err := p.fetcher.Fetch(ctx, videoID, p.transcriptLangs(req.Language))
	if err != nil {
		var unavailable *transcript.UnavailableError
		if !errors.As(err, &unavailable) && ctx.Err() == nil {
			err = &transcript.UnavailableError{VideoID: videoID, Err: err}
		}
		return nil, err
	}
	p.logger.Info(ctx, "transcript %s: %d chars, language %s, %q", videoID, len(tr.Text), tr.Language, tr.Title)

	// Summarize
	if err := m.to(ctx, StateProcessing); err != nil {
		return nil, err
	}
	prov, err := p.registry.Get(req.AIModel)
	if err != nil {
		return nil, err
	}

	res := &Result{
		VideoID:  videoID,
		Title:    tr.Title,
		Language: req.Language,
		Source:   tr.Source,
		Model:    prov.Name(),
	}

	progress := func(done, total int) {
		out.Send(progressEvent(StageProcessing, fmt.Sprintf("Summarized section %d of %d", done, total)))
	}

	if streamer, ok := prov.(provider.Streamer); ok {
		if err := m.to(ctx, StateStreaming); err != nil {
			return nil, err
		}
		if err := out.Send(progressEvent(StageProcessing, "Generating summary with streaming...")); err != nil {
			return nil, err
		}
		res.Streamed = true
		res.Summary, err = p.stream(ctx, tr.Text, req.Language, streamer, progress, out)
	} else {
		if err := m.to(ctx, StateDirectSummarizing); err != nil {
			return nil, err
		}
		if err := out.Send(progressEvent(StageProcessing, "Generating summary...")); err != nil {
			return nil, err
		}
		res.Summary, err = p.summarizer.Summarize(ctx, tr.Text, req.Language, prov, progress)
	}
	if err != nil {
		return nil, err
	}

	res.SummaryID = p.save(ctx, req, res)

	complete := Event{
		Type:      TypeComplete,
		Source:    res.Source,
		VideoID:   res.VideoID,
		Status:    StatusCompleted,
		Language:  res.Language,
		SummaryID: res.SummaryID,
	}
	if !res.Streamed {
		complete.Summary = res.Summary
	}
	if err := m.to(ctx, StateCompleted); err != nil {
		return nil, err
	}
	if err := out.Send(complete); err != nil {
		return nil, err
	}
	return res, nil
}

// stream runs the map step, then streams the final pass to out and returns
// the concatenated text.
func (p *implProcessor) stream(ctx context.Context, text, lang string, streamer provider.Streamer, progress func(int, int), out *guardedSink) (string, error) {
	final, err := p.summarizer.Prepare(ctx, text, lang, streamer, progress)
	if err != nil {
		return "", err
	}

	s, err := streamer.SummarizeStream(ctx, final)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := out.Send(Event{Type: TypeStreamStart}); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		frag, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
		if err := out.Send(Event{Type: TypeStreamChunk, Content: frag}); err != nil {
			return "", err
		}
	}

	if err := out.Send(Event{Type: TypeStreamEnd}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// save stores the summary and returns its ID. A store failure does not
// fail the request.
func (p *implProcessor) save(ctx context.Context, req Request, res *Result) string {
	if p.store == nil || strings.TrimSpace(res.Summary) == "" {
		return ""
	}
	rec, err := p.store.Save(ctx, store.Record{
		VideoID:  res.VideoID,
		Title:    res.Title,
		Content:  res.Summary,
		Language: res.Language,
		Mode:     req.Mode,
		Source:   res.Source,
		Model:    res.Model,
	})
	if err != nil {
		p.logger.Warn(ctx, "Failed to save summary for %s: %v", res.VideoID, err)
		return ""
	}
	return rec.ID
}
